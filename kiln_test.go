package kiln_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/kiln"
)

func TestCompile_PublicAPI(t *testing.T) {
	foo, bar := kiln.NewKey("Foo"), kiln.NewKey("Bar")
	m := &kiln.Model{
		Bindings: []*kiln.Binding{
			kiln.ConstructorBinding(foo, "Singleton", kiln.Instance(bar)),
			kiln.ConstructorBinding(bar, ""),
		},
		Components: []kiln.Component{{
			ID:          "app",
			Scope:       "Singleton",
			EntryPoints: []kiln.DependencyRequest{kiln.Instance(foo)},
		}},
	}

	results, err := kiln.Compile(context.Background(), m, kiln.WithWorkers(1))
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, kiln.StatusAccepted, r.Status)
	require.NotNil(t, r.Plan)
	assert.Less(t, r.Plan.Position(bar), r.Plan.Position(foo))
	assert.NoError(t, results.Err())
}

func TestCompile_RejectedComponent(t *testing.T) {
	m := &kiln.Model{
		Components: []kiln.Component{{
			ID:          "app",
			EntryPoints: []kiln.DependencyRequest{kiln.Instance(kiln.NewKey("Missing"))},
		}},
	}

	results, err := kiln.New().Compile(context.Background(), m)
	require.NoError(t, err)

	assert.Equal(t, kiln.StatusRejected, results[0].Status)
	assert.Nil(t, results[0].Plan)
	assert.True(t, kiln.IsCompileFailed(results.Err()))
}

func TestCompile_InvalidModel(t *testing.T) {
	_, err := kiln.Compile(context.Background(), &kiln.Model{
		Components: []kiln.Component{{ID: "a"}, {ID: "a"}},
	})

	assert.True(t, kiln.IsInvalidModel(err))
	assert.Equal(t, kiln.CodeInvalidModel, kiln.GetErrorCode(err))
}

func TestLoadModel(t *testing.T) {
	m, err := kiln.LoadModel(filepath.Join("internal", "loader", "testdata", "app.yaml"))
	require.NoError(t, err)

	results, err := kiln.Compile(context.Background(), m)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
