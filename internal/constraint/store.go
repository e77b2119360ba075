// Package constraint holds the partial-order declarations plugins make
// about their tasks.
//
// A Store keeps three independent multi-valued relations from a task name to
// a set of task names. Declarations happen during the single-threaded
// registration phase; once the store is frozen it is read-only and safe to
// share across worker goroutines without locking. No validation happens at
// declaration time: resolving names to registered tasks is deferred to
// closure computation.
package constraint

import "sort"

// set is a collapsed, insertion-order-irrelevant collection of task names.
type set map[string]struct{}

// Store records the ordering constraints for one build invocation. It is
// constructed once and threaded through the scheduler; nothing here is
// process-wide state.
type Store struct {
	// dependsOn maps a task to the tasks that must complete before it
	// may start. Dependencies are pulled into the closure of any request
	// that reaches the task.
	dependsOn map[string]set
	// runsAfter maps a task to tasks that must precede it whenever both
	// are scheduled. Ordering only: nothing is pulled in.
	runsAfter map[string]set
	// alwaysAfter maps a task to predecessors that are forced into any
	// graph containing the task.
	alwaysAfter map[string]set

	frozen bool
}

// NewStore returns an empty, unfrozen Store.
func NewStore() *Store {
	return &Store{
		dependsOn:   make(map[string]set),
		runsAfter:   make(map[string]set),
		alwaysAfter: make(map[string]set),
	}
}

// DependsOn declares that dep must complete before t may start. Requesting
// any target whose closure reaches t also schedules dep.
func (s *Store) DependsOn(t, dep string) {
	s.insert(s.dependsOn, t, dep)
}

// RunsAfter declares that other must precede t when both end up in the same
// graph. Unlike DependsOn it never pulls other into the graph.
func (s *Store) RunsAfter(t, other string) {
	s.insert(s.runsAfter, t, other)
}

// AlwaysAfter declares that pred must always run before t: whenever t is in
// the final graph, pred is scheduled too, regardless of whether pred was
// explicitly requested.
func (s *Store) AlwaysAfter(t, pred string) {
	s.insert(s.alwaysAfter, t, pred)
}

func (s *Store) insert(rel map[string]set, key, value string) {
	if s.frozen {
		panic("constraint: declaration after store was frozen")
	}
	members, ok := rel[key]
	if !ok {
		members = make(set)
		rel[key] = members
	}
	members[value] = struct{}{}
}

// Freeze marks the end of the registration phase. Further declarations
// panic; reads remain valid and lock-free.
func (s *Store) Freeze() {
	s.frozen = true
}

// Dependencies returns the sorted set of tasks that must complete before t.
func (s *Store) Dependencies(t string) []string {
	return members(s.dependsOn, t)
}

// OrderedAfter returns the sorted set of tasks that precede t when present.
func (s *Store) OrderedAfter(t string) []string {
	return members(s.runsAfter, t)
}

// AlwaysPredecessors returns the sorted set of forced predecessors of t.
func (s *Store) AlwaysPredecessors(t string) []string {
	return members(s.alwaysAfter, t)
}

// HasDependencies reports whether t has any DependsOn declaration.
func (s *Store) HasDependencies(t string) bool {
	return len(s.dependsOn[t]) > 0
}

// HasAlwaysPredecessors reports whether t has any AlwaysAfter declaration.
func (s *Store) HasAlwaysPredecessors(t string) bool {
	return len(s.alwaysAfter[t]) > 0
}

func members(rel map[string]set, key string) []string {
	m, ok := rel[key]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
