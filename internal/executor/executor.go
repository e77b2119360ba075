// Package executor drains a dependency graph with controlled parallelism.
//
// The driving loop is single-threaded and cooperative: it collects every
// node with no unresolved incoming edge, dispatches the batch to a bounded
// worker pool, blocks until the whole batch completes, removes the finished
// nodes and their edges, and repeats. Nodes within one batch run in
// parallel; batches are strictly sequential relative to each other, so for
// any edge (A, B) the completion of A is ordered before the start of B.
// Workers never mutate graph structure, only report outcomes.
package executor

import (
	"context"
	"sync"

	"github.com/anvilbuild/anvil/internal/ctxlog"
	"github.com/anvilbuild/anvil/internal/dag"
	"github.com/anvilbuild/anvil/internal/runner"
	"github.com/anvilbuild/anvil/internal/task"
)

const defaultWorkers = 4

// Option configures an Executor.
type Option func(*Executor)

// WithWorkers bounds the worker pool to n concurrent units.
func WithWorkers(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.numWorkers = n
		}
	}
}

// WithDryRun replaces task execution with always-succeeding no-ops.
func WithDryRun(dryRun bool) Option {
	return func(e *Executor) { e.dryRun = dryRun }
}

// WithSerialBatches wraps each batch into a single multi-task unit executed
// on one worker. Used for workloads that must never overlap, such as
// uploads against the same remote endpoint.
func WithSerialBatches(serial bool) Option {
	return func(e *Executor) { e.serial = serial }
}

// Executor runs the nodes of one project's dependency graph.
type Executor struct {
	graph      *dag.Graph
	numWorkers int
	dryRun     bool
	serial     bool
}

// New returns an Executor over the given graph.
func New(graph *dag.Graph, opts ...Option) *Executor {
	e := &Executor{
		graph:      graph,
		numWorkers: defaultWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run drains the graph. Individual task failures do not halt later batches;
// they are recorded and surface through the returned Results (best-effort
// completion). A non-nil error means the run could not proceed at all, in
// particular *dag.CyclicDependencyError when nodes remain but none can ever
// become ready.
func (e *Executor) Run(ctx context.Context) (*Results, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Executor starting.", "nodes", e.graph.Len(), "workers", e.numWorkers, "serial", e.serial)
	logger.Debug("Execution order.", "layers", e.graph.Dump())

	results := &Results{}
	for e.graph.Len() > 0 {
		ready := e.graph.Ready()
		if len(ready) == 0 {
			// Remaining nodes wait on each other; without this guard
			// the loop would spin forever on a user-declared cycle.
			return results, &dag.CyclicDependencyError{Node: e.graph.Nodes()[0]}
		}

		logger.Debug("Dispatching batch.", "batch", len(results.batches), "nodes", ready)
		results.batches = append(results.batches, ready)

		outcomes := e.runBatch(ctx, e.unitsFor(ctx, ready))
		results.outcomes = append(results.outcomes, outcomes...)

		for _, name := range ready {
			e.graph.Remove(name)
		}
	}

	logger.Debug("Executor finished.", "batches", len(results.batches), "failed", len(results.Failures()))
	return results, nil
}

// unitsFor turns a batch of ready node names into schedulable units: one
// unit per node, or a single multi-task unit when serial execution was
// requested.
func (e *Executor) unitsFor(ctx context.Context, ready []string) []*runner.Unit {
	logger := ctxlog.FromContext(ctx)

	tasks := make([]task.Task, 0, len(ready))
	for _, name := range ready {
		t, ok := e.graph.Task(name)
		if !ok {
			logger.Warn("Node has no task payload, skipping.", "node", name)
			continue
		}
		tasks = append(tasks, t)
	}

	if e.serial {
		return []*runner.Unit{runner.New(e.dryRun, tasks...)}
	}

	units := make([]*runner.Unit, 0, len(tasks))
	for _, t := range tasks {
		units = append(units, runner.New(e.dryRun, t))
	}
	return units
}

// runBatch executes one batch of units on the worker pool and blocks until
// every unit has reported.
func (e *Executor) runBatch(ctx context.Context, units []*runner.Unit) []runner.Outcome {
	unitChan := make(chan *runner.Unit, len(units))
	outChan := make(chan []runner.Outcome, len(units))

	workers := e.numWorkers
	if workers > len(units) {
		workers = len(units)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for unit := range unitChan {
				outChan <- unit.Run(ctx)
			}
		}()
	}

	for _, unit := range units {
		unitChan <- unit
	}
	close(unitChan)
	wg.Wait()
	close(outChan)

	var outcomes []runner.Outcome
	for batch := range outChan {
		outcomes = append(outcomes, batch...)
	}
	return outcomes
}
