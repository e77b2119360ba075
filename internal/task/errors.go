package task

import "fmt"

// UnknownTaskError is returned when a declared dependency name or a
// requested target does not resolve to a registered task. It aborts the
// affected project's build without corrupting state for other projects.
type UnknownTaskError struct {
	// Name is the task name that failed to resolve.
	Name string
	// Project is the project the resolution ran under.
	Project string
}

// Error implements the error interface.
func (e *UnknownTaskError) Error() string {
	if e.Project == "" {
		return fmt.Sprintf("unknown task %q", e.Name)
	}
	return fmt.Sprintf("unknown task %q for project %q", e.Name, e.Project)
}
