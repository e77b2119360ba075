// Package dag provides the directed execution graph the scheduler drains.
//
// Nodes are task references keyed by task name; an edge (from, to) means
// "from must complete before to may start". The graph is mutated only during
// construction and by the executor's single driving goroutine between
// batches, but all operations take the lock so diagnostic reads from other
// goroutines stay safe.
package dag

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/anvilbuild/anvil/internal/task"
)

// Graph is a collection of nodes and their ordering edges, representing a DAG.
type Graph struct {
	// mutex protects the nodes map during concurrent access.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by task name.
	nodes map[string]*node
}

// node is a single vertex. It is un-exported to enforce interaction with the
// graph via the public API (using task names), not by direct struct
// manipulation.
type node struct {
	// id is the task name identifying the node.
	id string
	// task is the work the node stands for. May be nil for nodes
	// auto-created by AddEdge before AddNode supplied a payload.
	task task.Task
	// deps holds the nodes that must complete before this one (predecessors).
	deps map[string]*node
	// dependents holds the nodes waiting on this one (successors).
	dependents map[string]*node
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a node for t, keyed by its name. Adding the same name twice
// leaves the node set unchanged; a payload supplied later fills in a node
// auto-created by AddEdge.
func (g *Graph) AddNode(t task.Task) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.ensure(t.Name(), t)
}

// AddEdge creates a directed edge meaning from must complete before to may
// start. Missing endpoints are auto-added as nodes. Self-referential edges
// are rejected.
func (g *Graph) AddEdge(from, to string) error {
	if from == to {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", from, from)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode := g.ensure(from, nil)
	toNode := g.ensure(to, nil)

	toNode.deps[from] = fromNode
	fromNode.dependents[to] = toNode

	return nil
}

// ensure returns the node for id, creating it if absent. The caller must
// hold the lock.
func (g *Graph) ensure(id string, t task.Task) *node {
	n, ok := g.nodes[id]
	if !ok {
		n = &node{
			id:         id,
			deps:       make(map[string]*node),
			dependents: make(map[string]*node),
		}
		g.nodes[id] = n
	}
	if n.task == nil {
		n.task = t
	}
	return n
}

// Contains reports whether a node with the given name exists.
func (g *Graph) Contains(id string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of nodes remaining in the graph.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.nodes)
}

// Nodes returns the sorted names of all nodes currently in the graph.
func (g *Graph) Nodes() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Task returns the task payload for the named node.
func (g *Graph) Task(id string) (task.Task, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok || n.task == nil {
		return nil, false
	}
	return n.task, true
}

// Ready returns the sorted names of nodes with no unresolved incoming edge.
func (g *Graph) Ready() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	var ids []string
	for id, n := range g.nodes {
		if len(n.deps) == 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Remove deletes the named node along with all edges it participates in.
// Successors whose last predecessor disappears become ready.
func (g *Graph) Remove(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	n, ok := g.nodes[id]
	if !ok {
		return
	}
	for _, dependent := range n.dependents {
		delete(dependent.deps, id)
	}
	for _, dep := range n.deps {
		delete(dep.dependents, id)
	}
	delete(g.nodes, id)
}

// Dump renders the graph in dependency layers for diagnostics. The output
// is human-readable only; no control decision depends on it.
func (g *Graph) Dump() string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	remaining := make(map[string]int, len(g.nodes))
	for id, n := range g.nodes {
		remaining[id] = len(n.deps)
	}

	var sb strings.Builder
	layer := 0
	for len(remaining) > 0 {
		var ready []string
		for id, count := range remaining {
			if count == 0 {
				ready = append(ready, id)
			}
		}
		if len(ready) == 0 {
			// Cycle: render what is left and stop.
			var stuck []string
			for id := range remaining {
				stuck = append(stuck, id)
			}
			sort.Strings(stuck)
			fmt.Fprintf(&sb, "blocked: %s\n", strings.Join(stuck, ", "))
			break
		}
		sort.Strings(ready)
		fmt.Fprintf(&sb, "%d: %s\n", layer, strings.Join(ready, ", "))
		for _, id := range ready {
			delete(remaining, id)
			for _, dependent := range g.nodes[id].dependents {
				if _, ok := remaining[dependent.id]; ok {
					remaining[dependent.id]--
				}
			}
		}
		layer++
	}
	return sb.String()
}
