// Package runner wraps one or more tasks as a single schedulable unit.
//
// A Unit executes its tasks sequentially without interleaving; the executor
// uses single-task units in the normal case and multi-task units when a
// whole batch must run serially (publishing-style workloads).
package runner

import (
	"context"

	"github.com/anvilbuild/anvil/internal/ctxlog"
	"github.com/anvilbuild/anvil/internal/task"
)

// Outcome records the result of one task within a unit.
type Outcome struct {
	Task    task.Task
	OK      bool
	Message string
}

// Unit is an ordered list of tasks executed as one unit of work.
type Unit struct {
	tasks  []task.Task
	dryRun bool
}

// New returns a unit over the given tasks. When dryRun is set, execution is
// replaced by an always-succeeding no-op, used for plan validation without
// side effects.
func New(dryRun bool, tasks ...task.Task) *Unit {
	return &Unit{tasks: tasks, dryRun: dryRun}
}

// Tasks returns the unit's tasks in execution order.
func (u *Unit) Tasks() []task.Task { return u.tasks }

// Run executes every task in list order and reports per-task outcomes. A
// failure never aborts the remaining tasks; it only drags the aggregate
// down.
func (u *Unit) Run(ctx context.Context) []Outcome {
	logger := ctxlog.FromContext(ctx)
	outcomes := make([]Outcome, 0, len(u.tasks))

	for _, t := range u.tasks {
		taskLogger := logger.With("task", t.Name(), "project", t.Project())

		if u.dryRun {
			taskLogger.Info("⏭️ Would run task (dry run)")
			outcomes = append(outcomes, Outcome{Task: t, OK: true})
			continue
		}

		taskLogger.Info("▶️ Starting task")
		result := t.Call(ctx)
		if result.OK {
			taskLogger.Info("✅ Finished task")
		} else {
			taskLogger.Error("❌ Task failed", "message", result.Message)
		}
		outcomes = append(outcomes, Outcome{Task: t, OK: result.OK, Message: result.Message})
	}

	return outcomes
}

// Succeeded reports the aggregate AND of all outcome successes.
func Succeeded(outcomes []Outcome) bool {
	for _, o := range outcomes {
		if !o.OK {
			return false
		}
	}
	return true
}
