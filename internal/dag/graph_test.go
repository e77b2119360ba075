package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anvilbuild/anvil/internal/task"
)

func named(name string) task.Task {
	return &task.Func{TaskName: name}
}

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.Zero(t, g.Len())
}

func TestAddNode(t *testing.T) {
	g := New()

	g.AddNode(named("a"))
	assert.Equal(t, []string{"a"}, g.Nodes())

	g.AddNode(named("a")) // idempotent
	assert.Equal(t, 1, g.Len())

	g.AddNode(named("b"))
	assert.Equal(t, []string{"a", "b"}, g.Nodes())

	got, ok := g.Task("a")
	require.True(t, ok)
	assert.Equal(t, "a", got.Name())
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := New()
		g.AddNode(named("a"))
		g.AddNode(named("b"))

		require.NoError(t, g.AddEdge("a", "b")) // b waits on a

		assert.Equal(t, []string{"a"}, g.Ready())
		g.Remove("a")
		assert.Equal(t, []string{"b"}, g.Ready())
	})

	t.Run("auto-adds missing endpoints", func(t *testing.T) {
		g := New()
		require.NoError(t, g.AddEdge("a", "b"))
		assert.Equal(t, []string{"a", "b"}, g.Nodes())
	})

	t.Run("self-referential edge rejected", func(t *testing.T) {
		g := New()
		g.AddNode(named("a"))
		err := g.AddEdge("a", "a")
		assert.ErrorContains(t, err, "self-referential edge")
	})
}

func TestRemoveUnblocksSuccessors(t *testing.T) {
	g := New()
	for _, name := range []string{"a", "b", "c", "d"} {
		g.AddNode(named(name))
	}
	// Diamond: a before b and c, both before d.
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("a", "c"))
	require.NoError(t, g.AddEdge("b", "d"))
	require.NoError(t, g.AddEdge("c", "d"))

	assert.Equal(t, []string{"a"}, g.Ready())
	g.Remove("a")
	assert.Equal(t, []string{"b", "c"}, g.Ready())
	g.Remove("b")
	assert.Equal(t, []string{"c"}, g.Ready())
	g.Remove("c")
	assert.Equal(t, []string{"d"}, g.Ready())
	g.Remove("d")
	assert.Zero(t, g.Len())
}

func TestDetectCycles(t *testing.T) {
	t.Run("empty graph has no cycles", func(t *testing.T) {
		g := New()
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("valid dag has no cycles", func(t *testing.T) {
		g := New()
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "c"))
		require.NoError(t, g.AddEdge("a", "c")) // transitive edge
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("direct cycle is detected", func(t *testing.T) {
		g := New()
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "a"))

		err := g.DetectCycles()
		var cerr *CyclicDependencyError
		require.ErrorAs(t, err, &cerr)
		assert.Contains(t, []string{"a", "b"}, cerr.Node)
	})

	t.Run("longer cycle is detected", func(t *testing.T) {
		g := New()
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "c"))
		require.NoError(t, g.AddEdge("c", "d"))
		require.NoError(t, g.AddEdge("d", "a"))
		assert.Error(t, g.DetectCycles())
	})
}

func TestDump(t *testing.T) {
	g := New()
	require.NoError(t, g.AddEdge("compile", "test"))
	require.NoError(t, g.AddEdge("test", "package"))
	require.NoError(t, g.AddEdge("compile", "lint"))

	assert.Equal(t, "0: compile\n1: lint, test\n2: package\n", g.Dump())
}

func TestDumpWithCycle(t *testing.T) {
	g := New()
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("b", "a"))

	assert.Equal(t, "blocked: a, b\n", g.Dump())
}
