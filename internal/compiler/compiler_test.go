package compiler

import (
	"context"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xraph/kiln/internal/diag"
	"github.com/xraph/kiln/internal/errors"
	"github.com/xraph/kiln/internal/model"
	"github.com/xraph/kiln/internal/observability"
	"github.com/xraph/kiln/internal/planner"
	"github.com/xraph/kiln/internal/validator"
	"github.com/xraph/kiln/logger"
)

var k = model.NewKey

func entry(keys ...model.Key) []model.DependencyRequest {
	reqs := make([]model.DependencyRequest, len(keys))
	for i, key := range keys {
		reqs[i] = model.Instance(key)
	}
	return reqs
}

func compile(t *testing.T, m *model.Model, opts ...Option) Results {
	t.Helper()
	results, err := Compile(context.Background(), m, opts...)
	require.NoError(t, err)
	require.Len(t, results, len(m.Components))
	return results
}

func result(t *testing.T, rs Results, id model.ComponentID) ComponentResult {
	t.Helper()
	r, ok := rs.Result(id)
	require.True(t, ok, "result %s", id)
	return r
}

func endToEndModel() *model.Model {
	return &model.Model{
		Components: []model.Component{{ID: "Root", Scope: "Singleton", EntryPoints: entry(k("Foo"))}},
		Bindings: []*model.Binding{
			model.ConstructorBinding(k("Foo"), "Singleton", model.Instance(k("Bar"))),
			model.ConstructorBinding(k("Bar"), ""),
		},
	}
}

func TestCompile_EndToEnd(t *testing.T) {
	rs := compile(t, endToEndModel())

	root := result(t, rs, "Root")
	assert.Equal(t, validator.StatusAccepted, root.Status)
	assert.Empty(t, root.Problems)
	require.NotNil(t, root.Plan)

	require.Len(t, root.Plan.Steps, 2)
	assert.Equal(t, k("Bar"), root.Plan.Steps[0].Key)
	assert.Equal(t, planner.TierPerCall, root.Plan.Steps[0].Tier)
	assert.Equal(t, k("Foo"), root.Plan.Steps[1].Key)
	assert.Equal(t, planner.TierPerComponentInstance, root.Plan.Steps[1].Tier)
	assert.NoError(t, rs.Err())
}

func TestCompile_Shadowing(t *testing.T) {
	m := &model.Model{
		Modules: []model.Module{{Name: "ParentModule"}, {Name: "ChildModule"}},
		Components: []model.Component{
			{ID: "root", Modules: []string{"ParentModule"}},
			{ID: "child", Parent: "root", Modules: []string{"ChildModule"}, EntryPoints: entry(k("X"))},
			{ID: "sibling", Parent: "root", EntryPoints: entry(k("X"))},
		},
		Bindings: []*model.Binding{
			model.ProvisionBinding("ParentModule", "provideX", k("X"), ""),
			model.ProvisionBinding("ChildModule", "provideX", k("X"), ""),
		},
	}

	rs := compile(t, m)

	child := result(t, rs, "child")
	require.True(t, child.Accepted(), child.Problems)
	step, ok := child.Plan.Step(k("X"))
	require.True(t, ok)
	assert.Equal(t, model.BindingID("ChildModule.provideX"), step.Binding)

	sibling := result(t, rs, "sibling")
	require.True(t, sibling.Accepted(), sibling.Problems)
	_, ok = sibling.Plan.Step(k("X"))
	assert.False(t, ok)
	assert.Equal(t, []planner.InheritedRef{{Key: k("X"), Source: "root"}}, sibling.Plan.Inherited)

	root := result(t, rs, "root")
	step, ok = root.Plan.Step(k("X"))
	require.True(t, ok)
	assert.Equal(t, model.BindingID("ParentModule.provideX"), step.Binding)
}

func TestCompile_CycleBreaking(t *testing.T) {
	build := func(kind model.RequestKind) *model.Model {
		return &model.Model{
			Components: []model.Component{{ID: "root", EntryPoints: entry(k("A"))}},
			Bindings: []*model.Binding{
				model.ConstructorBinding(k("A"), "", model.Instance(k("B"))),
				model.ConstructorBinding(k("B"), "", model.DependencyRequest{Key: k("A"), Kind: kind}),
			},
		}
	}

	plain := result(t, compile(t, build(model.RequestInstance)), "root")
	assert.False(t, plain.Accepted())
	assert.Nil(t, plain.Plan)
	assert.Equal(t, []diag.Code{diag.CodeUnbreakableCycle}, plain.Problems.Codes())

	lazy := result(t, compile(t, build(model.RequestLazy)), "root")
	require.True(t, lazy.Accepted(), lazy.Problems)
	assert.Less(t, lazy.Plan.Position(k("B")), lazy.Plan.Position(k("A")))
	assert.Equal(t, []planner.Closure{{From: k("B"), To: k("A"), Kind: model.RequestLazy}}, lazy.Plan.Closures)
}

func TestCompile_MultibindingIdempotence(t *testing.T) {
	codec := model.SetContributionBinding("CodecModule", "provideJson", k("Codec"))
	m := &model.Model{
		Modules:    []model.Module{{Name: "CodecModule"}},
		Components: []model.Component{{ID: "root", Modules: []string{"CodecModule"}, EntryPoints: entry(k("Codec"))}},
		Bindings: []*model.Binding{
			codec,
			model.SetContributionBinding("CodecModule", "provideJson", k("Codec")),
			model.SetContributionBinding("CodecModule", "provideYaml", k("Codec")),
		},
	}

	first := result(t, compile(t, m), "root")
	second := result(t, compile(t, m), "root")
	require.True(t, first.Accepted(), first.Problems)

	agg, ok := first.Plan.Step(k("Codec"))
	require.True(t, ok)
	assert.Equal(t, model.KindMultibinding, agg.Kind)
	require.Len(t, agg.Dependencies, 2)
	assert.Equal(t, codec.Key, agg.Dependencies[0].Key)
	assert.Equal(t, first.Plan, second.Plan)
}

func TestCompile_MissingThenFixed(t *testing.T) {
	m := &model.Model{
		Components: []model.Component{{ID: "root", EntryPoints: entry(k("K"))}},
	}

	missing := result(t, compile(t, m), "root")
	assert.Equal(t, validator.StatusRejected, missing.Status)
	require.Len(t, missing.Problems, 1)
	assert.Equal(t, diag.CodeMissingBinding, missing.Problems[0].Code)
	assert.Equal(t, []model.Key{k("K")}, missing.Problems[0].Keys)

	m.Bindings = append(m.Bindings, model.ConstructorBinding(k("K"), ""))
	fixed := result(t, compile(t, m), "root")
	assert.Equal(t, validator.StatusAccepted, fixed.Status)
	assert.Empty(t, fixed.Problems)
}

func TestCompile_ScopeUniqueness(t *testing.T) {
	nested := &model.Model{
		Components: []model.Component{
			{ID: "root", Scope: "Singleton"},
			{ID: "child", Parent: "root", Scope: "Singleton"},
		},
	}
	child := result(t, compile(t, nested), "child")
	assert.False(t, child.Accepted())
	require.NotEmpty(t, child.Problems.WithCode(diag.CodeDuplicateScope))
	assert.Equal(t, []model.ComponentID{"root", "child"}, child.Problems.WithCode(diag.CodeDuplicateScope)[0].Components)

	siblings := &model.Model{
		Components: []model.Component{
			{ID: "root"},
			{ID: "a", Parent: "root", Scope: "Singleton"},
			{ID: "b", Parent: "root", Scope: "Singleton"},
		},
	}
	rs := compile(t, siblings)
	assert.Empty(t, rs.Problems().WithCode(diag.CodeDuplicateScope))
	assert.Empty(t, rs.Rejected())
	assert.True(t, rs.HasWarnings())
}

func TestCompile_SiblingTreesAreIndependent(t *testing.T) {
	m := &model.Model{
		Components: []model.Component{
			{ID: "broken", EntryPoints: entry(k("Nope"))},
			{ID: "fine", EntryPoints: entry(k("Bar"))},
		},
		Bindings: []*model.Binding{model.ConstructorBinding(k("Bar"), "")},
	}

	rs := compile(t, m, WithWorkers(2))
	assert.Equal(t, model.ComponentID("broken"), rs[0].Component)
	assert.False(t, rs[0].Accepted())
	assert.Nil(t, rs[0].Plan)
	assert.Equal(t, model.ComponentID("fine"), rs[1].Component)
	assert.True(t, rs[1].Accepted())
	assert.NotNil(t, rs[1].Plan)

	err := rs.Err()
	require.Error(t, err)
	assert.True(t, errors.IsCompileFailed(err))
	assert.Equal(t, []model.ComponentID{"broken"}, rs.Rejected())
}

func TestCompile_AncestorRejected(t *testing.T) {
	m := &model.Model{
		Components: []model.Component{
			{ID: "root", EntryPoints: entry(k("Missing"))},
			{ID: "child", Parent: "root", Creator: k("ChildFactory"), EntryPoints: entry(k("Bar"))},
		},
		Bindings: []*model.Binding{model.ConstructorBinding(k("Bar"), "")},
	}

	child := result(t, compile(t, m), "child")
	assert.False(t, child.Accepted())
	assert.Equal(t, []diag.Code{diag.CodeUnusedSubcomponent, diag.CodeAncestorRejected}, child.Problems.Codes())
}

func TestCompile_Determinism(t *testing.T) {
	build := func() *model.Model {
		return &model.Model{
			Modules: []model.Module{{Name: "AppModule"}},
			Components: []model.Component{
				{ID: "one", Scope: "Singleton", Modules: []string{"AppModule"}, EntryPoints: entry(k("Foo"), k("Handler"))},
				{ID: "two", EntryPoints: entry(k("Bar"), k("Missing"))},
				{ID: "three", EntryPoints: entry(k("Foo"))},
			},
			Bindings: []*model.Binding{
				model.ConstructorBinding(k("Foo"), "Singleton", model.Instance(k("Bar")), model.Lazy(k("Handler"))),
				model.ConstructorBinding(k("Bar"), ""),
				model.MapContributionBinding("AppModule", "provideGet", k("Handler"), "GET", model.Instance(k("Bar"))),
				model.MapContributionBinding("AppModule", "providePost", k("Handler"), "POST"),
			},
		}
	}

	encode := func(workers int) []byte {
		rs := compile(t, build(), WithWorkers(workers))
		data, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(rs)
		require.NoError(t, err)
		return data
	}

	reference := encode(1)
	for _, workers := range []int{1, 2, 8} {
		assert.Equal(t, string(reference), string(encode(workers)), "workers=%d", workers)
	}
}

func TestCompile_InvalidModel(t *testing.T) {
	_, err := Compile(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidModel(err))

	_, err = Compile(context.Background(), &model.Model{
		Components: []model.Component{{ID: "child", Parent: "ghost"}},
	})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidModel(err))
}

func TestCompile_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rs, err := New().Compile(ctx, endToEndModel())
	require.Error(t, err)
	assert.True(t, errors.IsContextCancelled(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, rs)
}

func TestCompile_Observability(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	metrics := observability.NewMetrics(observability.MetricsConfig{Enabled: true})
	spans := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))

	m := endToEndModel()
	m.Components = append(m.Components, model.Component{
		ID: "other", BoundInstances: []model.Key{k("Config")}, EntryPoints: entry(k("Nope")),
	})

	compile(t, m,
		WithLogger(logger.NewZapLogger(zap.New(core))),
		WithRecorder(metrics),
		WithTracerProvider(provider),
	)

	expected := `
# HELP kiln_compile_runs_total Compile runs by outcome.
# TYPE kiln_compile_runs_total counter
kiln_compile_runs_total{outcome="rejected"} 1
# HELP kiln_components_total Compiled components by status.
# TYPE kiln_components_total counter
kiln_components_total{status="accepted"} 1
kiln_components_total{status="rejected"} 1
`
	require.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected),
		"kiln_compile_runs_total", "kiln_components_total"))

	assert.Equal(t, 1, logs.FilterMessage("compile started").Len())
	rejected := logs.FilterMessage("component rejected").All()
	require.Len(t, rejected, 1)
	assert.EqualValues(t, 1, rejected[0].ContextMap()["declared"])
	finished := logs.FilterMessage("compile finished").All()
	require.Len(t, finished, 1)
	assert.Equal(t, "rejected", finished[0].ContextMap()["outcome"])
	assert.NotEmpty(t, finished[0].ContextMap()["run_id"])

	names := make(map[string]int)
	for _, s := range spans.Ended() {
		names[s.Name()]++
	}
	assert.Equal(t, 1, names["kiln.compile"])
	assert.Equal(t, 1, names["kiln.prepare"])
	assert.Equal(t, 2, names["kiln.compile_tree"])
}

func TestCompiler_Inspect(t *testing.T) {
	m := &model.Model{
		Components: []model.Component{
			{ID: "root", EntryPoints: entry(k("Foo"))},
			{ID: "child", Parent: "root", EntryPoints: entry(k("Foo"))},
		},
		Bindings: []*model.Binding{
			model.ConstructorBinding(k("Foo"), ""),
		},
	}

	res, err := New().Inspect(context.Background(), m, "child")
	require.NoError(t, err)
	assert.Equal(t, model.ComponentID("child"), res.Component)
	require.NotNil(t, res.Graph)
	assert.True(t, res.Graph.Frozen())
	_, ok := res.Graph.Lookup(k("Foo"))
	assert.True(t, ok)

	_, err = New().Inspect(context.Background(), m, "nobody")
	assert.Equal(t, errors.CodeUnknownComponent, errors.GetErrorCode(err))
}

func TestNew_Workers(t *testing.T) {
	assert.Equal(t, 3, New(WithWorkers(3)).Workers())
	assert.Positive(t, New(WithWorkers(0)).Workers())
}
