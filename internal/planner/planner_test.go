package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/kiln/internal/catalog"
	"github.com/xraph/kiln/internal/diag"
	"github.com/xraph/kiln/internal/errors"
	"github.com/xraph/kiln/internal/hierarchy"
	"github.com/xraph/kiln/internal/model"
	"github.com/xraph/kiln/internal/resolver"
)

type fixture struct {
	tree    *hierarchy.Tree
	planner *Planner
	graphs  *resolver.TreeResult
}

func newFixture(t *testing.T, m *model.Model) *fixture {
	t.Helper()
	require.NoError(t, m.Check())
	tree, err := hierarchy.Build(m)
	require.NoError(t, err)
	cat := catalog.FromModel(m)

	res, err := resolver.New(cat, tree).ResolveTree(context.Background(), tree.Roots()[0])
	require.NoError(t, err)
	for _, g := range res.Graphs {
		g.Freeze()
	}
	return &fixture{tree: tree, planner: New(cat, tree), graphs: res}
}

func (f *fixture) plan(t *testing.T, id model.ComponentID) (*ConstructionPlan, diag.List) {
	t.Helper()
	g, ok := f.graphs.Graph(id)
	require.True(t, ok)
	plan, warnings, err := f.planner.Plan(g)
	require.NoError(t, err)
	return plan, warnings
}

func TestPlan_EndToEnd(t *testing.T) {
	m := &model.Model{
		Components: []model.Component{{ID: "root", Scope: "Singleton", EntryPoints: []model.DependencyRequest{model.Instance(k("Foo"))}}},
		Bindings: []*model.Binding{
			model.ConstructorBinding(k("Foo"), "Singleton", model.Instance(k("Bar"))),
			model.ConstructorBinding(k("Bar"), ""),
		},
	}

	plan, warnings := newFixture(t, m).plan(t, "root")

	assert.Empty(t, warnings)
	require.Len(t, plan.Steps, 2)
	assert.Equal(t, k("Bar"), plan.Steps[0].Key)
	assert.Equal(t, TierPerCall, plan.Steps[0].Tier)
	assert.Equal(t, k("Foo"), plan.Steps[1].Key)
	assert.Equal(t, TierPerComponentInstance, plan.Steps[1].Tier)
	assert.Equal(t, model.BindingID("Foo.<init>"), plan.Steps[1].Binding)
	require.Len(t, plan.EntryPoints, 1)
	assert.Equal(t, model.ComponentID("root"), plan.EntryPoints[0].Source)
	assert.Empty(t, plan.Closures)
}

func TestPlan_LazyEdgeBecomesClosure(t *testing.T) {
	m := &model.Model{
		Components: []model.Component{{ID: "root", EntryPoints: []model.DependencyRequest{model.Instance(k("A"))}}},
		Bindings: []*model.Binding{
			model.ConstructorBinding(k("A"), "", model.Instance(k("B"))),
			model.ConstructorBinding(k("B"), "", model.Lazy(k("A"))),
		},
	}

	plan, _ := newFixture(t, m).plan(t, "root")

	assert.Less(t, plan.Position(k("B")), plan.Position(k("A")))
	assert.Equal(t, []Closure{{From: k("B"), To: k("A"), Kind: model.RequestLazy}}, plan.Closures)

	b, ok := plan.Step(k("B"))
	require.True(t, ok)
	require.Len(t, b.Dependencies, 1)
	assert.True(t, b.Dependencies[0].Deferred)
}

func TestPlan_DeclarationOrderBreaksTies(t *testing.T) {
	plugins := k("Set<Plugin>")
	m := &model.Model{
		Modules: []model.Module{{Name: "AppModule"}},
		Components: []model.Component{{
			ID:             "root",
			Modules:        []string{"AppModule"},
			BoundInstances: []model.Key{k("Config")},
			EntryPoints: []model.DependencyRequest{
				model.Instance(plugins), model.Instance(k("Z")), model.Instance(k("Y")), model.Instance(k("Config")),
			},
		}},
		Bindings: []*model.Binding{
			model.ConstructorBinding(k("Y"), ""),
			model.ConstructorBinding(k("Z"), ""),
			model.SetContributionBinding("AppModule", "provideA", plugins),
		},
	}

	plan, _ := newFixture(t, m).plan(t, "root")

	got := make([]model.Key, len(plan.Steps))
	for i, s := range plan.Steps {
		got[i] = s.Key
	}
	contribution := model.ContributionKey(plugins, "AppModule", "provideA")
	// Declared bindings in model order; the synthetic multibinding last.
	assert.Equal(t, []model.Key{k("Y"), k("Z"), contribution, k("Config"), plugins}, got)

	cfg, _ := plan.Step(k("Config"))
	assert.Equal(t, TierBoundInstance, cfg.Tier)
	set, _ := plan.Step(plugins)
	assert.Equal(t, model.KindMultibinding, set.Kind)
	assert.Equal(t, model.BindingID("multibinding(Set<Plugin>)"), set.Binding)
}

func TestPlan_InheritedAndAbsentDependencies(t *testing.T) {
	m := &model.Model{
		Components: []model.Component{
			{ID: "root", Scope: "Singleton", EntryPoints: []model.DependencyRequest{model.Instance(k("ReqFactory"))}},
			{
				ID: "req", Parent: "root", Creator: k("ReqFactory"),
				EntryPoints: []model.DependencyRequest{model.Instance(k("Handler"))},
			},
		},
		Bindings: []*model.Binding{
			model.ConstructorBinding(k("Db"), "Singleton"),
			model.ConstructorBinding(k("Handler"), "", model.Instance(k("Db")), model.Instance(k("Tracer")).AsOptional()),
		},
	}
	f := newFixture(t, m)

	plan, warnings := f.plan(t, "req")

	assert.Empty(t, warnings)
	assert.Equal(t, model.ComponentID("root"), plan.Parent)
	assert.Equal(t, []InheritedRef{{Key: k("Db"), Source: "root"}}, plan.Inherited)
	require.Len(t, plan.Steps, 1)

	deps := plan.Steps[0].Dependencies
	require.Len(t, deps, 2)
	assert.True(t, deps[0].Inherited)
	assert.Equal(t, model.ComponentID("root"), deps[0].Source)
	assert.True(t, deps[1].Absent)
	assert.True(t, deps[1].Optional)

	rootPlan, _ := f.plan(t, "root")
	assert.Equal(t, []model.ComponentID{"req"}, rootPlan.Subcomponents)
	creator, ok := rootPlan.Step(k("ReqFactory"))
	require.True(t, ok)
	assert.Equal(t, model.ComponentID("req"), creator.Subcomponent)
}

func TestPlan_LifetimeViolationIsWarning(t *testing.T) {
	m := &model.Model{
		Components: []model.Component{
			{ID: "root"},
			{ID: "left", Parent: "root"},
			{ID: "right", Parent: "root"},
		},
	}
	f := newFixture(t, m)
	g, _ := f.graphs.Graph("left")
	g.EntryPoints = append(g.EntryPoints, resolver.Dependency{Request: model.Instance(k("Cache")), Owner: "right"})

	_, warnings, err := f.planner.Plan(g)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, diag.CodeLifetimeViolation, warnings[0].Code)
	assert.Equal(t, diag.SeverityWarning, warnings[0].Severity)
}

func TestPlan_RequiresValidatedGraph(t *testing.T) {
	m := &model.Model{
		Components: []model.Component{{ID: "root", EntryPoints: []model.DependencyRequest{model.Instance(k("Foo"))}}},
		Bindings:   []*model.Binding{model.ConstructorBinding(k("Foo"), "")},
	}
	require.NoError(t, m.Check())
	tree, err := hierarchy.Build(m)
	require.NoError(t, err)
	cat := catalog.FromModel(m)

	res, err := resolver.New(cat, tree).ResolveTree(context.Background(), "root")
	require.NoError(t, err)
	g, _ := res.Graph("root")

	_, _, err = New(cat, tree).Plan(g)
	require.ErrorIs(t, err, errors.ErrNotValidated)

	g.Freeze()
	plan, _, err := New(cat, tree).Plan(g)
	require.NoError(t, err)
	assert.Len(t, plan.Steps, 1)
}
