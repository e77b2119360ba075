// Package plan turns constraint declarations into an executable dependency
// graph for one project's requested targets.
//
// It computes the set of free tasks, the transitive closure of work implied
// by a target, and assembles the DAG the executor drains. All resolution
// errors surface as *task.UnknownTaskError; an unresolvable name is fatal
// for the project, never silently skipped.
package plan

import (
	"context"
	"fmt"
	"sort"

	"github.com/anvilbuild/anvil/internal/constraint"
	"github.com/anvilbuild/anvil/internal/ctxlog"
	"github.com/anvilbuild/anvil/internal/dag"
	"github.com/anvilbuild/anvil/internal/task"
)

// Builder resolves targets against a frozen constraint store.
type Builder struct {
	store *constraint.Store
}

// NewBuilder returns a Builder reading from the given store.
func NewBuilder(store *constraint.Store) *Builder {
	return &Builder{store: store}
}

// FreeTasks returns, sorted by name, the tasks with no incoming ordering
// constraint: no declared dependency and no forced predecessor. Free tasks
// are eligible to start immediately.
func (b *Builder) FreeTasks(tasks map[string]task.Task) []task.Task {
	var free []task.Task
	for name, t := range tasks {
		if b.store.HasDependencies(name) || b.store.HasAlwaysPredecessors(name) {
			continue
		}
		free = append(free, t)
	}
	sort.Slice(free, func(i, j int) bool { return free[i].Name() < free[j].Name() })
	return free
}

// Closure returns every task that must run to satisfy the start target:
// breadth-first expansion over the dependency relation, starting from the
// requested task. A name that does not resolve within tasks is a fatal
// *task.UnknownTaskError.
func (b *Builder) Closure(project string, tasks map[string]task.Task, start task.Identity) ([]task.Task, error) {
	frontier := []string{start.Name}
	seen := map[string]bool{start.Name: true}
	var closure []task.Task

	for len(frontier) > 0 {
		var next []string
		for _, name := range frontier {
			t, ok := tasks[name]
			if !ok {
				return nil, &task.UnknownTaskError{Name: name, Project: project}
			}
			closure = append(closure, t)

			for _, dep := range b.store.Dependencies(name) {
				if seen[dep] {
					continue
				}
				seen[dep] = true
				next = append(next, dep)
			}
		}
		frontier = next
	}

	return closure, nil
}

// Build assembles the dependency graph for the requested targets of one
// project and validates it for cycles.
func (b *Builder) Build(ctx context.Context, project string, tasks map[string]task.Task, targets []task.Identity) (*dag.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: starting graph construction.", "project", project, "targets", len(targets))

	graph := dag.New()

	// First pass: closure nodes and dependency edges per target.
	for _, target := range targets {
		if err := b.addTarget(project, tasks, graph, target); err != nil {
			return nil, err
		}
	}
	logger.Debug("Build: closure expansion complete.", "node_count", graph.Len())

	// Second pass: forced predecessors. The worklist covers predecessors
	// that themselves declare forced predecessors.
	if err := b.linkAlwaysPredecessors(project, tasks, graph); err != nil {
		return nil, err
	}
	logger.Debug("Build: forced-predecessor linking complete.", "node_count", graph.Len())

	// Third pass: ordering-only constraints between nodes already present.
	if err := b.linkOrderings(graph); err != nil {
		return nil, err
	}
	logger.Debug("Build: ordering pass complete.")

	if err := graph.DetectCycles(); err != nil {
		return nil, fmt.Errorf("error validating dependency graph: %w", err)
	}
	logger.Debug("Build: cycle detection passed.")

	return graph, nil
}

// addTarget expands one target's closure into nodes and edges.
func (b *Builder) addTarget(project string, tasks map[string]task.Task, graph *dag.Graph, target task.Identity) error {
	closure, err := b.Closure(project, tasks, target)
	if err != nil {
		return err
	}

	// A free target stands alone in the graph.
	if t, ok := tasks[target.Name]; ok && !b.store.HasDependencies(target.Name) && !b.store.HasAlwaysPredecessors(target.Name) {
		graph.AddNode(t)
	}

	for _, member := range closure {
		graph.AddNode(member)
		for _, dep := range b.store.Dependencies(member.Name()) {
			if _, ok := tasks[dep]; !ok {
				return &task.UnknownTaskError{Name: dep, Project: project}
			}
			if err := graph.AddEdge(dep, member.Name()); err != nil {
				return err
			}
		}
	}
	return nil
}

// linkAlwaysPredecessors pulls in forced predecessors for every node in the
// graph, regardless of whether they were explicitly requested.
func (b *Builder) linkAlwaysPredecessors(project string, tasks map[string]task.Task, graph *dag.Graph) error {
	worklist := graph.Nodes()
	for len(worklist) > 0 {
		name := worklist[0]
		worklist = worklist[1:]

		for _, pred := range b.store.AlwaysPredecessors(name) {
			t, ok := tasks[pred]
			if !ok {
				return &task.UnknownTaskError{Name: pred, Project: project}
			}
			known := graph.Contains(pred)
			graph.AddNode(t)
			if err := graph.AddEdge(pred, name); err != nil {
				return err
			}
			if !known {
				worklist = append(worklist, pred)
			}
		}
	}
	return nil
}

// linkOrderings adds runs-after edges between pairs of nodes that are both
// already scheduled. Names absent from the graph are ignored: the relation
// orders, it never pulls in.
func (b *Builder) linkOrderings(graph *dag.Graph) error {
	for _, name := range graph.Nodes() {
		for _, other := range b.store.OrderedAfter(name) {
			if other == name || !graph.Contains(other) {
				continue
			}
			if err := graph.AddEdge(other, name); err != nil {
				return err
			}
		}
	}
	return nil
}
