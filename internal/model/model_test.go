package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/kiln/internal/errors"
)

func TestKey_ContributionMarker(t *testing.T) {
	agg := QualifiedKey("plugins", "Set<Plugin>")
	c := ContributionKey(agg, "PluginModule", "provideA")

	assert.True(t, c.IsContribution())
	assert.False(t, agg.IsContribution())
	assert.Equal(t, agg, c.Aggregate())
	assert.NotEqual(t, agg, c)
	assert.Equal(t, "@plugins Set<Plugin>{PluginModule.provideA}", c.String())
}

func TestKey_ParseKey(t *testing.T) {
	tests := []struct {
		in   string
		want Key
	}{
		{"Foo", NewKey("Foo")},
		{"  Foo ", NewKey("Foo")},
		{"@Named Foo", QualifiedKey("Named", "Foo")},
		{"@Named", NewKey("@Named")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseKey(tt.in))
		})
	}
}

func TestKey_Less(t *testing.T) {
	assert.True(t, NewKey("A").Less(NewKey("B")))
	assert.True(t, NewKey("A").Less(QualifiedKey("q", "A")))
	assert.False(t, NewKey("A").Less(NewKey("A")))
}

func TestRequestKind_Deferred(t *testing.T) {
	assert.False(t, Instance(NewKey("A")).Deferred())
	assert.False(t, DependencyRequest{Key: NewKey("A")}.Deferred())
	assert.True(t, Provider(NewKey("A")).Deferred())
	assert.True(t, Lazy(NewKey("A")).Deferred())
	assert.True(t, ProviderOfLazy(NewKey("A")).Deferred())
	assert.False(t, RequestKind("eventually").Valid())
}

func TestDependencyRequest_String(t *testing.T) {
	assert.Equal(t, "Foo", Instance(NewKey("Foo")).String())
	assert.Equal(t, "lazy<Foo>", Lazy(NewKey("Foo")).String())
	assert.Equal(t, "optional<provider<Foo>>", Provider(NewKey("Foo")).AsOptional().String())
}

func TestBindingKind_Classification(t *testing.T) {
	assert.True(t, KindConstructor.IsImplicit())
	assert.True(t, KindAssistedInjection.IsImplicit())
	assert.True(t, KindProvision.IsModuleOwned())
	assert.True(t, KindBoundInstance.IsComponentOwned())
	assert.True(t, KindMapContribution.IsContribution())
	assert.False(t, KindMultibinding.Declared())
	assert.True(t, KindMultibinding.Synthetic())
	assert.False(t, KindBoundInstance.Constructed())
	assert.True(t, KindProvision.Constructed())
}

func TestModel_AllBindingsSynthesizesComponentBindings(t *testing.T) {
	m := &Model{
		Components: []Component{
			{ID: "app", BoundInstances: []Key{NewKey("Config")}},
			{ID: "req", Parent: "app", Creator: NewKey("ReqFactory"), Dependencies: []Key{NewKey("Clock")}},
		},
		Bindings: []*Binding{ConstructorBinding(NewKey("Foo"), "")},
	}

	all := m.AllBindings()
	require.Len(t, all, 4)
	assert.Equal(t, KindConstructor, all[0].Kind)
	assert.Equal(t, KindBoundInstance, all[1].Kind)
	assert.Equal(t, KindComponentDependency, all[2].Kind)
	assert.Equal(t, KindSubcomponentCreator, all[3].Kind)
	assert.Equal(t, ComponentID("app"), all[3].Component)
	assert.Equal(t, ComponentID("req"), all[3].Subcomponent)
}

func TestModel_CheckAcceptsWellFormedModel(t *testing.T) {
	m := &Model{
		Modules: []Module{{Name: "AppModule", Includes: []string{"NetModule"}}, {Name: "NetModule"}},
		Components: []Component{
			{ID: "app", Scope: "Singleton", Modules: []string{"AppModule"}, EntryPoints: []DependencyRequest{Instance(NewKey("Foo"))}},
			{ID: "req", Parent: "app", Creator: NewKey("ReqFactory")},
		},
		Bindings: []*Binding{
			ProvisionBinding("AppModule", "provideFoo", NewKey("Foo"), "Singleton"),
			SetContributionBinding("NetModule", "provideA", NewKey("Set<A>")),
			MapContributionBinding("NetModule", "provideB", NewKey("Map<B>"), "b"),
			AssistedFactoryBinding("AppModule", NewKey("BFactory"), NewKey("B")),
		},
	}

	assert.NoError(t, m.Check())
}

func TestModel_CheckReportsEveryViolation(t *testing.T) {
	m := &Model{
		Modules: []Module{{Name: "AppModule", Includes: []string{"Ghost"}}},
		Components: []Component{
			{ID: "app", Creator: NewKey("AppFactory")},
			{ID: "app"},
			{ID: "orphan", Parent: "nowhere", Modules: []string{"Missing"}},
		},
		Bindings: []*Binding{
			{ID: "AppModule.provideSet", Key: NewKey("Set<A>"), Kind: KindSetContribution, Module: "AppModule"},
			{ID: "AppModule.provideMap", Key: ContributionKey(NewKey("Map<A>"), "AppModule", "provideMap"), Kind: KindMapContribution, Module: "AppModule"},
			{ID: "weird", Key: NewKey("W"), Kind: "factory"},
		},
	}

	err := m.Check()
	require.Error(t, err)
	assert.True(t, errors.IsInvalidModel(err))

	msg := err.Error()
	assert.Contains(t, msg, `module "AppModule" includes unknown module "Ghost"`)
	assert.Contains(t, msg, `duplicate component id "app"`)
	assert.Contains(t, msg, `root component "app" declares a creator`)
	assert.Contains(t, msg, `component "orphan" has unknown parent "nowhere"`)
	assert.Contains(t, msg, `installs unknown module "Missing"`)
	assert.Contains(t, msg, "contribution without contribution key")
	assert.Contains(t, msg, "map contribution without map key")
	assert.Contains(t, msg, `unknown kind "factory"`)
}

func TestModel_CheckDetectsParentCycle(t *testing.T) {
	m := &Model{
		Components: []Component{
			{ID: "a", Parent: "b"},
			{ID: "b", Parent: "a"},
		},
	}

	err := m.Check()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `component "a" is part of a parent cycle`)
	assert.Contains(t, err.Error(), `component "b" is part of a parent cycle`)
}

func TestModel_CheckNil(t *testing.T) {
	var m *Model
	assert.True(t, errors.IsInvalidModel(m.Check()))
	assert.True(t, errors.IsInvalidModel((&Model{}).Check()))
}
