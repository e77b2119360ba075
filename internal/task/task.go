// Package task defines the capability interface for schedulable units of
// work and the identity scheme used to address them.
//
// A Task is registered by a plugin during the single-threaded registration
// phase, lives for the duration of one build invocation, and is discarded
// after. The scheduler is polymorphic only over the Task interface, never
// over concrete task types.
package task

import "context"

// Result is the outcome of executing a single task.
type Result struct {
	// OK reports whether the task succeeded.
	OK bool
	// Message is an optional human-readable note, typically set on failure.
	Message string
}

// Task is a named, project-scoped unit of work.
type Task interface {
	// Name returns the task's name, unique within its project.
	Name() string

	// Project returns the name of the owning project. An empty project
	// means the task applies to any project.
	Project() string

	// Accept reports whether the task is applicable to the given project.
	Accept(project string) bool

	// Call executes the task. The scheduler treats it as an opaque,
	// possibly slow, possibly side-effecting operation.
	Call(ctx context.Context) Result
}

// Func is a concrete Task backed by a plain function. It is the common
// concrete variant used by plugins and tests.
type Func struct {
	TaskName    string
	TaskProject string
	// AcceptFn overrides the default applicability check when non-nil.
	AcceptFn func(project string) bool
	// Fn is invoked by Call. A nil Fn succeeds without doing anything.
	Fn func(ctx context.Context) Result
}

// Name implements Task.
func (f *Func) Name() string { return f.TaskName }

// Project implements Task.
func (f *Func) Project() string { return f.TaskProject }

// Accept implements Task. By default a task with an empty project accepts
// every project, and a qualified task accepts only its own.
func (f *Func) Accept(project string) bool {
	if f.AcceptFn != nil {
		return f.AcceptFn(project)
	}
	return f.TaskProject == "" || f.TaskProject == project
}

// Call implements Task.
func (f *Func) Call(ctx context.Context) Result {
	if f.Fn == nil {
		return Result{OK: true}
	}
	return f.Fn(ctx)
}
