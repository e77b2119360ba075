package executor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/anvilbuild/anvil/internal/runner"
)

// Results aggregates the outcomes of one graph execution.
type Results struct {
	outcomes []runner.Outcome
	batches  [][]string
}

// Outcomes returns every recorded per-task outcome.
func (r *Results) Outcomes() []runner.Outcome { return r.outcomes }

// Batches returns the node names dispatched per scheduling round, in
// dispatch order. Diagnostic only.
func (r *Results) Batches() [][]string { return r.batches }

// OK reports whether every unit succeeded.
func (r *Results) OK() bool { return runner.Succeeded(r.outcomes) }

// Failures returns the failed outcomes, sorted by task name.
func (r *Results) Failures() []runner.Outcome {
	var failed []runner.Outcome
	for _, o := range r.outcomes {
		if !o.OK {
			failed = append(failed, o)
		}
	}
	sort.Slice(failed, func(i, j int) bool {
		return failed[i].Task.Name() < failed[j].Task.Name()
	})
	return failed
}

// ExitStatus is 0 when all units succeeded, 1 otherwise.
func (r *Results) ExitStatus() int {
	if r.OK() {
		return 0
	}
	return 1
}

// Report renders the consolidated failure report: one line per failed unit,
// so a single invocation surfaces every problem at once.
func (r *Results) Report() string {
	failed := r.Failures()
	lines := make([]string, 0, len(failed))
	for _, o := range failed {
		line := fmt.Sprintf("task %q failed", o.Task.Name())
		if o.Message != "" {
			line += ": " + o.Message
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
