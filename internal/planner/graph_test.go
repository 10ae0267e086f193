package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/kiln/internal/errors"
	"github.com/xraph/kiln/internal/model"
)

var k = model.NewKey

func keys(names ...string) []model.Key {
	out := make([]model.Key, len(names))
	for i, n := range names {
		out[i] = k(n)
	}
	return out
}

func TestDependencyGraph_TopologicalSort_Simple(t *testing.T) {
	g := NewDependencyGraph()
	g.AddNode(k("a"), nil)
	g.AddNode(k("b"), keys("a"))
	g.AddNode(k("c"), keys("b"))

	result, err := g.TopologicalSort()
	require.NoError(t, err)

	assert.Equal(t, keys("a", "b", "c"), result)
}

func TestDependencyGraph_TopologicalSort_Complex(t *testing.T) {
	g := NewDependencyGraph()
	g.AddNode(k("d"), keys("b", "c"))
	g.AddNode(k("a"), nil)
	g.AddNode(k("b"), keys("a"))
	g.AddNode(k("c"), keys("a"))

	result, err := g.TopologicalSort()
	require.NoError(t, err)

	assert.Equal(t, keys("a", "b", "c", "d"), result)
}

func TestDependencyGraph_TopologicalSort_EarliestReadyNodeFirst(t *testing.T) {
	g := NewDependencyGraph()
	g.AddNode(k("x"), keys("z"))
	g.AddNode(k("y"), nil)
	g.AddNode(k("z"), nil)

	result, err := g.TopologicalSort()
	require.NoError(t, err)

	// z waits for y: nothing placed so far needs it.
	assert.Equal(t, keys("y", "z", "x"), result)
}

func TestDependencyGraph_TopologicalSort_CycleBehindAcyclicPrefix(t *testing.T) {
	g := NewDependencyGraph()
	g.AddNode(k("free"), nil)
	g.AddNode(k("a"), keys("free", "b"))
	g.AddNode(k("b"), keys("c"))
	g.AddNode(k("c"), keys("a", "b"))

	_, err := g.TopologicalSort()
	require.ErrorIs(t, err, errors.ErrCircularDependencySentinel)
	assert.Contains(t, err.Error(), "a -> b -> c -> a")
}

func TestDependencyGraph_TopologicalSort_RegistrationOrderForFreeNodes(t *testing.T) {
	g := NewDependencyGraph()
	g.AddNode(k("z"), nil)
	g.AddNode(k("y"), nil)
	g.AddNode(k("x"), nil)

	result, err := g.TopologicalSort()
	require.NoError(t, err)
	assert.Equal(t, keys("z", "y", "x"), result)
}

func TestDependencyGraph_TopologicalSort_CircularDependency(t *testing.T) {
	g := NewDependencyGraph()
	g.AddNode(k("a"), keys("b"))
	g.AddNode(k("b"), keys("a"))

	_, err := g.TopologicalSort()
	assert.ErrorIs(t, err, errors.ErrCircularDependencySentinel)
	assert.Contains(t, err.Error(), "a -> b -> a")
}

func TestDependencyGraph_TopologicalSort_SelfReference(t *testing.T) {
	g := NewDependencyGraph()
	g.AddNode(k("a"), keys("a"))

	_, err := g.TopologicalSort()
	assert.ErrorIs(t, err, errors.ErrCircularDependencySentinel)
}

func TestDependencyGraph_TopologicalSort_MissingDependency(t *testing.T) {
	g := NewDependencyGraph()
	g.AddNode(k("a"), keys("inherited"))

	result, err := g.TopologicalSort()
	require.NoError(t, err)
	assert.Equal(t, keys("a"), result)
}

func TestDependencyGraph_TopologicalSort_Empty(t *testing.T) {
	g := NewDependencyGraph()

	result, err := g.TopologicalSort()
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.Equal(t, 0, g.Len())
}
