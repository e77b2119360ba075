package task

import (
	"fmt"
	"strings"
)

// Delimiter separates the optional project qualifier from the task name in
// a composed identity string.
const Delimiter = ":"

// Identity addresses a task by an optional project qualifier and a required
// name. A bare identity (empty Project) matches any project; a qualified
// identity matches only its named project. Two identities are equal iff
// their composed strings are equal.
type Identity struct {
	Project string
	Name    string
}

// ParseIdentity parses "project:task" or a bare "task" into an Identity.
func ParseIdentity(s string) (Identity, error) {
	before, after, found := strings.Cut(s, Delimiter)
	if !found {
		if s == "" {
			return Identity{}, fmt.Errorf("empty task identity")
		}
		return Identity{Name: s}, nil
	}
	if before == "" || after == "" {
		return Identity{}, fmt.Errorf("malformed task identity %q", s)
	}
	return Identity{Project: before, Name: after}, nil
}

// Qualified reports whether the identity names a specific project.
func (id Identity) Qualified() bool { return id.Project != "" }

// Matches reports whether the identity applies to the given project.
func (id Identity) Matches(project string) bool {
	return id.Project == "" || id.Project == project
}

// String returns the composed form of the identity.
func (id Identity) String() string {
	if id.Project == "" {
		return id.Name
	}
	return id.Project + Delimiter + id.Name
}
