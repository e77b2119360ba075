package config

// Model is the unified, format-agnostic representation of a build
// invocation's configuration: the projects, the declared tasks, and the
// ordering constraints between them.
type Model struct {
	Projects  []*Project
	Tasks     []*TaskDef
	Orderings []*Ordering
	Publish   *Publish
}

// Project is a named unit of the build. Task identities are scoped to it.
type Project struct {
	Name string
	Dir  string
	// Targets are the default targets resolved when the caller names
	// none on the command line.
	Targets []string
}

// TaskDef is the format-agnostic representation of a `task` block. The
// shell plugin turns each definition into a registered command task.
type TaskDef struct {
	Name        string
	Project     string
	Description string
	Command     []string
	Dir         string
	Env         map[string]string
}

// Kind names one of the three ordering relations.
type Kind string

const (
	// KindDependsOn pulls the other task into the closure and orders it first.
	KindDependsOn Kind = "depends_on"
	// KindRunsAfter orders the other task first when both are scheduled.
	KindRunsAfter Kind = "runs_after"
	// KindAlwaysAfter forces the other task into any graph containing this one.
	KindAlwaysAfter Kind = "always_after"
)

// Ordering is one declared constraint: Other relates to Task by Kind.
type Ordering struct {
	Kind  Kind
	Task  string
	Other string
}

// Publish holds the artifact-publishing settings consumed by the publish
// plugin. The scheduler core itself never reads these.
type Publish struct {
	Endpoint   string
	Repository string
	Files      []string
}
