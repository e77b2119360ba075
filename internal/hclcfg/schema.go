package hclcfg

import "github.com/hashicorp/hcl/v2"

// projectBlock represents a `project` block from a manifest.
type projectBlock struct {
	Name    string   `hcl:"name,label"`
	Dir     string   `hcl:"dir,optional"`
	Targets []string `hcl:"targets,optional"`
}

// taskBlock represents a `task` block from a manifest. Ordering attributes
// declare the three constraint relations inline with the task.
type taskBlock struct {
	Name        string         `hcl:"name,label"`
	Project     string         `hcl:"project,optional"`
	Description string         `hcl:"description,optional"`
	Command     []string       `hcl:"command,optional"`
	Dir         string         `hcl:"dir,optional"`
	Env         hcl.Expression `hcl:"env,optional"`
	DependsOn   []string       `hcl:"depends_on,optional"`
	RunsAfter   []string       `hcl:"runs_after,optional"`
	AlwaysAfter []string       `hcl:"always_after,optional"`
}

// publishBlock represents the `publish` block consumed by the publish plugin.
type publishBlock struct {
	Endpoint   string   `hcl:"endpoint"`
	Repository string   `hcl:"repository,optional"`
	Files      []string `hcl:"files,optional"`
}

// rootSchema is the top-level structure of a manifest file.
type rootSchema struct {
	Projects []*projectBlock `hcl:"project,block"`
	Tasks    []*taskBlock    `hcl:"task,block"`
	Publish  *publishBlock   `hcl:"publish,block"`
}
