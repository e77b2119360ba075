package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anvilbuild/anvil/internal/task"
)

func recordingTask(name string, ok bool, calls *[]string) task.Task {
	return &task.Func{
		TaskName: name,
		Fn: func(context.Context) task.Result {
			*calls = append(*calls, name)
			return task.Result{OK: ok, Message: name + " says hi"}
		},
	}
}

func TestUnitRunsInOrder(t *testing.T) {
	var calls []string
	unit := New(false,
		recordingTask("compile", true, &calls),
		recordingTask("test", true, &calls),
		recordingTask("package", true, &calls),
	)

	outcomes := unit.Run(context.Background())

	assert.Equal(t, []string{"compile", "test", "package"}, calls)
	assert.True(t, Succeeded(outcomes))
}

func TestUnitFailureDoesNotAbortRemainingTasks(t *testing.T) {
	var calls []string
	unit := New(false,
		recordingTask("compile", true, &calls),
		recordingTask("test", false, &calls),
		recordingTask("package", true, &calls),
	)

	outcomes := unit.Run(context.Background())

	// Every task still runs; only the aggregate flag flips.
	assert.Equal(t, []string{"compile", "test", "package"}, calls)
	assert.False(t, Succeeded(outcomes))

	require.Len(t, outcomes, 3)
	assert.False(t, outcomes[1].OK)
	assert.Equal(t, "test", outcomes[1].Task.Name())
	assert.Equal(t, "test says hi", outcomes[1].Message)
}

func TestUnitDryRunSkipsExecution(t *testing.T) {
	var calls []string
	unit := New(true,
		recordingTask("compile", false, &calls),
		recordingTask("upload", false, &calls),
	)

	outcomes := unit.Run(context.Background())

	assert.Empty(t, calls)
	assert.True(t, Succeeded(outcomes))
	require.Len(t, outcomes, 2)
}
