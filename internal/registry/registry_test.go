package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anvilbuild/anvil/internal/config"
	"github.com/anvilbuild/anvil/internal/constraint"
	"github.com/anvilbuild/anvil/internal/task"
)

func newTask(project, name string) task.Task {
	return &task.Func{TaskName: name, TaskProject: project}
}

func TestRegisterTaskRejectsDuplicates(t *testing.T) {
	r := New(constraint.NewStore())
	r.RegisterTask(newTask("lib", "compile"))

	require.Panics(t, func() { r.RegisterTask(newTask("lib", "compile")) })

	// Same name under another project, or bare, is fine.
	r.RegisterTask(newTask("cli", "compile"))
	r.RegisterTask(newTask("", "compile"))
	assert.Equal(t, []string{"cli:compile", "compile", "lib:compile"}, r.TaskNames())
}

func TestTasksForShadowsBareTasks(t *testing.T) {
	r := New(constraint.NewStore())
	r.RegisterTask(newTask("", "clean"))
	r.RegisterTask(newTask("", "compile"))
	r.RegisterTask(newTask("lib", "compile"))
	r.RegisterTask(newTask("cli", "package"))

	lib := r.TasksFor("lib")
	require.Len(t, lib, 2)
	assert.Equal(t, "lib", lib["compile"].Project()) // qualified wins
	assert.Empty(t, lib["clean"].Project())

	cli := r.TasksFor("cli")
	require.Len(t, cli, 3)
	assert.Empty(t, cli["compile"].Project()) // bare fallback
}

func TestTasksForHonorsAcceptPredicate(t *testing.T) {
	r := New(constraint.NewStore())
	r.RegisterTask(&task.Func{
		TaskName: "deploy",
		AcceptFn: func(project string) bool { return project == "cli" },
	})

	assert.Empty(t, r.TasksFor("lib"))
	assert.Len(t, r.TasksFor("cli"), 1)
}

func TestApplyOrderings(t *testing.T) {
	store := constraint.NewStore()
	r := New(store)

	r.ApplyOrderings(&config.Model{Orderings: []*config.Ordering{
		{Kind: config.KindDependsOn, Task: "test", Other: "compile"},
		{Kind: config.KindRunsAfter, Task: "test", Other: "lint"},
		{Kind: config.KindAlwaysAfter, Task: "verify", Other: "upload"},
	}})

	assert.Equal(t, []string{"compile"}, store.Dependencies("test"))
	assert.Equal(t, []string{"lint"}, store.OrderedAfter("test"))
	assert.Equal(t, []string{"upload"}, store.AlwaysPredecessors("verify"))
}
