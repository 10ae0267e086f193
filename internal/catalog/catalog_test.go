package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/kiln/internal/errors"
	"github.com/xraph/kiln/internal/model"
)

var (
	foo     = model.NewKey("Foo")
	plugins = model.NewKey("Set<Plugin>")
)

func TestBuilder_RegisterKeepsDuplicates(t *testing.T) {
	b := NewBuilder()
	first := model.ProvisionBinding("A", "provideFoo", foo, "")
	second := model.ProvisionBinding("B", "provideFoo", foo, "")
	require.NoError(t, b.RegisterAll(first, second, nil))

	c := b.Build()

	assert.Equal(t, []*model.Binding{first, second}, c.Lookup(foo))
	assert.Equal(t, 0, c.Index(first))
	assert.Equal(t, 1, c.Index(second))
	assert.Equal(t, 2, c.Len())
	assert.Empty(t, c.Lookup(model.NewKey("Bar")))
}

func TestBuilder_FrozenAfterBuild(t *testing.T) {
	b := NewBuilder()
	b.Build()

	err := b.Register(model.ConstructorBinding(foo, ""))
	assert.ErrorIs(t, err, errors.ErrCatalogFrozen)
}

func TestCatalog_ContributionsDeduplicatedByMethod(t *testing.T) {
	a := model.SetContributionBinding("PluginModule", "provideA", plugins)
	again := model.SetContributionBinding("PluginModule", "provideA", plugins)
	b := model.SetContributionBinding("OtherModule", "provideB", plugins)
	decl := model.MultibindsDeclaration("PluginModule", "plugins", plugins)

	builder := NewBuilder()
	require.NoError(t, builder.RegisterAll(a, again, b, decl))
	c := builder.Build()

	assert.Equal(t, []*model.Binding{a, b}, c.Contributions(plugins))
	assert.Equal(t, c.Contributions(plugins), c.Contributions(a.Key))
	assert.Equal(t, []*model.Binding{decl}, c.Declarations(plugins))
	// Both registrations stay visible under the exact contribution key.
	assert.Len(t, c.Lookup(a.Key), 2)
}

func TestCatalog_OwnerIndexes(t *testing.T) {
	ctor := model.ConstructorBinding(foo, "Singleton")
	prov := model.ProvisionBinding("AppModule", "provideBar", model.NewKey("Bar"), "")

	m := &model.Model{
		Components: []model.Component{
			{ID: "app", BoundInstances: []model.Key{model.NewKey("Config")}},
			{ID: "req", Parent: "app", Creator: model.NewKey("ReqFactory")},
		},
		Bindings: []*model.Binding{ctor, prov},
	}
	c := FromModel(m)

	assert.Equal(t, []*model.Binding{ctor}, c.Implicit(foo))
	assert.Empty(t, c.Implicit(prov.Key))
	assert.Equal(t, []*model.Binding{prov}, c.Lookup(prov.Key))

	cfg := c.Lookup(model.NewKey("Config"))
	require.Len(t, cfg, 1)
	assert.Equal(t, model.KindBoundInstance, cfg[0].Kind)
	assert.Equal(t, model.ComponentID("app"), cfg[0].Component)
	creator := c.Lookup(model.NewKey("ReqFactory"))
	require.Len(t, creator, 1)
	assert.Equal(t, model.KindSubcomponentCreator, creator[0].Kind)

	assert.Equal(t, []*model.Binding{prov}, c.ByModule("AppModule"))
	assert.Equal(t, []*model.Binding{cfg[0], creator[0]}, c.ByComponent("app"))
	assert.Empty(t, c.ByComponent("req"))
	assert.Equal(t, -1, c.Index(model.ConstructorBinding(foo, "")))
}

func TestCatalog_LookupReturnsCopy(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Register(model.ConstructorBinding(foo, "")))
	c := b.Build()

	got := c.Lookup(foo)
	got[0] = nil

	assert.NotNil(t, c.Lookup(foo)[0])
}
