// Package registry provides the central glue for the plugin system.
//
// Plugins register their tasks and ordering declarations here during the
// single-threaded registration phase at startup. The registry then answers
// per-project task resolution for the planner. Mismatches between plugins
// (duplicate task registration) are programmer errors and panic, keeping a
// wide class of runtime ambiguity out of the scheduler.
package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/anvilbuild/anvil/internal/config"
	"github.com/anvilbuild/anvil/internal/constraint"
	"github.com/anvilbuild/anvil/internal/task"
)

// Module is a compiled-in plugin. Register is called once at startup with
// the registry and the loaded configuration model.
type Module interface {
	Register(r *Registry, model *config.Model)
}

// ModuleFunc adapts a plain function to the Module interface.
type ModuleFunc func(r *Registry, model *config.Model)

// Register implements Module.
func (f ModuleFunc) Register(r *Registry, model *config.Model) { f(r, model) }

// Registry holds every registered task and the constraint store for one
// build invocation.
type Registry struct {
	tasks []task.Task
	byKey map[string]task.Task
	store *constraint.Store
}

// New returns an empty registry writing declarations into the given store.
func New(store *constraint.Store) *Registry {
	return &Registry{
		byKey: make(map[string]task.Task),
		store: store,
	}
}

// Constraints returns the constraint store plugins declare orderings on.
func (r *Registry) Constraints() *constraint.Store { return r.store }

// RegisterTask adds a task. Registering the same project-qualified name
// twice panics.
func (r *Registry) RegisterTask(t task.Task) {
	key := task.Identity{Project: t.Project(), Name: t.Name()}.String()
	if _, exists := r.byKey[key]; exists {
		panic(fmt.Sprintf("task %q already registered", key))
	}
	slog.Debug("Registering task.", "task", key)
	r.byKey[key] = t
	r.tasks = append(r.tasks, t)
}

// AllTasks returns every registered task in registration order.
func (r *Registry) AllTasks() []task.Task {
	out := make([]task.Task, len(r.tasks))
	copy(out, r.tasks)
	return out
}

// TasksFor resolves the tasks applicable to a project, keyed by task name.
// A project-qualified task shadows a bare task of the same name.
func (r *Registry) TasksFor(project string) map[string]task.Task {
	resolved := make(map[string]task.Task)
	for _, t := range r.tasks {
		if t.Project() != "" || !t.Accept(project) {
			continue
		}
		resolved[t.Name()] = t
	}
	for _, t := range r.tasks {
		if t.Project() == "" || !t.Accept(project) {
			continue
		}
		resolved[t.Name()] = t
	}
	return resolved
}

// ApplyOrderings writes the model's declared constraints into the store.
// Names are not validated here; resolution is deferred to planning.
func (r *Registry) ApplyOrderings(model *config.Model) {
	for _, o := range model.Orderings {
		switch o.Kind {
		case config.KindDependsOn:
			r.store.DependsOn(o.Task, o.Other)
		case config.KindRunsAfter:
			r.store.RunsAfter(o.Task, o.Other)
		case config.KindAlwaysAfter:
			r.store.AlwaysAfter(o.Task, o.Other)
		default:
			panic(fmt.Sprintf("unknown ordering kind %q", o.Kind))
		}
	}
}

// TaskNames returns the sorted composed identities of all registered tasks.
// Used for diagnostics.
func (r *Registry) TaskNames() []string {
	names := make([]string, 0, len(r.byKey))
	for key := range r.byKey {
		names = append(names, key)
	}
	sort.Strings(names)
	return names
}
