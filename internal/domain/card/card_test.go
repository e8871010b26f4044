package card

import (
	"dashboard-strategy/internal/domain/model"
	"dashboard-strategy/internal/domain/registry"
	"dashboard-strategy/internal/domain/resolver"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() *model.Snapshot {
	return &model.Snapshot{
		States: map[string]model.EntityState{
			"light.ceiling":          {State: "on"},
			"light.lamp":             {State: "off"},
			"sensor.kitchen_battery": {State: "80"},
		},
		Entities: []model.EntityRegistryEntry{
			{EntityID: "light.ceiling", AreaID: "kitchen", DeviceID: "dev_ceiling"},
			{EntityID: "light.lamp", AreaID: "kitchen"},
			{EntityID: "switch.identify", AreaID: "kitchen", EntityCategory: "config"},
			{EntityID: "sensor.rssi", AreaID: "kitchen", EntityCategory: "diagnostic"},
			{EntityID: "weird.thing", AreaID: "kitchen"},
			{EntityID: "sensor.kitchen_battery", DeviceID: "magic", TranslationKey: "aggregate_battery"},
		},
		Devices: []model.DeviceRegistryEntry{
			{ID: "dev_ceiling", AreaID: "kitchen", Name: "Ceiling"},
			{ID: "magic", AreaID: "kitchen", Name: "Kitchen", Manufacturer: registry.MagicAreasManufacturer},
		},
		Areas: []model.AreaRegistryEntry{{AreaID: "kitchen", Name: "Kitchen", Icon: "mdi:stove"}},
	}
}

func testFactory(t *testing.T, options *model.StrategyOptions) *Factory {
	t.Helper()
	s := registry.New(nil)
	require.NoError(t, s.Initialize(testSnapshot(), options))
	f, err := NewFactory(s, nil)
	require.NoError(t, err)
	return f
}

func entity(t *testing.T, f *Factory, id string) *model.StrategyEntity {
	t.Helper()
	e, ok := f.State().Entity(id)
	require.True(t, ok, id)
	return e
}

func TestNewFactory_RequiresInitializedRegistry(t *testing.T) {
	_, err := NewFactory(registry.New(nil), nil)
	assert.ErrorIs(t, err, registry.ErrNotInitialized)
}

func TestEntityCard_DefaultsRoundTrip(t *testing.T) {
	f := testFactory(t, nil)

	c, ok := f.EntityCard(entity(t, f, "light.lamp"), f.DomainOptions("light"))
	require.True(t, ok)
	assert.Equal(t, model.Config{
		"type":                    "custom:mushroom-light-card",
		"entity":                  "light.lamp",
		"show_brightness_control": true,
		"show_color_control":      true,
		"use_light_color":         true,
		"collapsible_controls":    true,
	}, c)
	assert.Equal(t, Builtin("light.lamp"), c)

	misc, _ := f.EntityCard(entity(t, f, "weird.thing"), f.DomainOptions("weird"))
	assert.Equal(t, model.Config{"type": TypeEntity, "entity": "weird.thing", "secondary_info": "last-changed"}, misc)
}

func TestEntityCard_DefaultTypeNeverOverrides(t *testing.T) {
	f := testFactory(t, &model.StrategyOptions{CardOptions: map[string]model.CardOptions{
		"light.lamp": {Overrides: model.Config{"type": "default", "use_light_color": false}},
	}})

	c, _ := f.EntityCard(entity(t, f, "light.lamp"), f.DomainOptions("light"))
	assert.Equal(t, "custom:mushroom-light-card", c["type"])
	assert.Equal(t, false, c["use_light_color"])
}

func TestEntityCard_LayerPrecedence(t *testing.T) {
	options := &model.StrategyOptions{
		Domains: map[string]model.DomainOptions{
			model.DefaultsKey: {CardDefaults: model.Config{"layout": "horizontal", "fill_container": true}},
			"light":           {CardDefaults: model.Config{"layout": "vertical"}},
		},
		CardOptions: map[string]model.CardOptions{
			"dev_ceiling":   {Overrides: model.Config{"layout": "device", "icon": "mdi:ceiling-light"}},
			"light.ceiling": {Overrides: model.Config{"layout": "entity", "type": "tile"}},
		},
	}
	f := testFactory(t, options)

	ceiling, _ := f.EntityCard(entity(t, f, "light.ceiling"), f.DomainOptions("light"))
	assert.Equal(t, "entity", ceiling["layout"])
	assert.Equal(t, "tile", ceiling["type"])
	assert.Equal(t, "mdi:ceiling-light", ceiling["icon"])
	assert.Equal(t, true, ceiling["fill_container"])

	lamp, _ := f.EntityCard(entity(t, f, "light.lamp"), f.DomainOptions("light"))
	assert.Equal(t, "vertical", lamp["layout"])
	assert.Equal(t, "custom:mushroom-light-card", lamp["type"])
}

func TestEntityCards_Filtering(t *testing.T) {
	f := testFactory(t, &model.StrategyOptions{CardOptions: map[string]model.CardOptions{
		"dev_ceiling": {Hidden: true},
	}})
	entities := []*model.StrategyEntity{
		entity(t, f, "light.ceiling"),
		entity(t, f, "light.lamp"),
		entity(t, f, "switch.identify"),
		entity(t, f, "sensor.rssi"),
	}

	cards := f.EntityCards(entities, f.DomainOptions("light"))
	require.Len(t, cards, 1)
	assert.Equal(t, "light.lamp", cards[0]["entity"])

	shown := f.DomainOptions("light")
	shown.HideConfigEntities = model.Bool(false)
	assert.Len(t, f.EntityCards(entities, shown), 2)
}

func TestController_SingleEntityToggle(t *testing.T) {
	f := testFactory(t, nil)

	c := f.Controller(model.EntitiesTarget([]string{"light.lamp"}), Header{Title: "Lamp"}, "light")
	cards := c["cards"].([]interface{})
	require.Len(t, cards, 2)
	assert.Equal(t, model.Config{"type": TypeTitle, "title": "Lamp"}, cards[0])

	chips := cards[1].(model.Config)["chips"].([]interface{})
	require.Len(t, chips, 1)
	assert.Equal(t, model.Config{"action": "toggle"}, chips[0].(model.Config)["tap_action"])
}

func TestController_GroupTurnOff(t *testing.T) {
	f := testFactory(t, nil)

	c := f.Controller(model.AreaTarget("kitchen"), Header{Title: "Kitchen", Icon: "mdi:stove", Path: "kitchen"}, "light")
	cards := c["cards"].([]interface{})
	require.Len(t, cards, 2)
	assert.Equal(t, TypeTemplate, cards[0].(model.Config)["type"])

	chips := cards[1].(model.Config)["chips"].([]interface{})
	require.Len(t, chips, 1)
	action := chips[0].(model.Config)["tap_action"].(model.Config)
	assert.Equal(t, "light.turn_off", action["perform_action"])
	assert.Equal(t, model.Config{"area_id": []string{"kitchen"}}, action["target"])
}

func TestController_NoControls(t *testing.T) {
	f := testFactory(t, &model.StrategyOptions{Domains: map[string]model.DomainOptions{
		"light": {ShowControls: model.Bool(false), ControllerCardOptions: model.Config{"alignment": "center"}},
	}})

	c := f.Controller(model.AreaTarget("kitchen"), Header{Title: "Kitchen"}, "lock")
	assert.Len(t, c["cards"], 1)

	// light keeps its extra controls, which resolve nothing without an area device
	c = f.Controller(model.AreaTarget("kitchen"), Header{Title: "Kitchen"}, "light")
	cards := c["cards"].([]interface{})
	require.Len(t, cards, 1)
	assert.Equal(t, "center", cards[0].(model.Config)["alignment"])
}

func TestController_ExtraControls(t *testing.T) {
	calls := 0
	f := testFactory(t, &model.StrategyOptions{Domains: map[string]model.DomainOptions{
		"lock": {ExtraControls: func(d *model.MagicAreaDevice) []model.Config {
			calls++
			return []model.Config{{"type": "entity", "entity": d.EntityID("aggregate_battery")}}
		}},
	}})
	device := f.State().MagicArea("kitchen")

	c := f.Controller(model.AreaTarget("kitchen"), Header{Title: "Kitchen", Device: device}, "lock")
	cards := c["cards"].([]interface{})
	require.Len(t, cards, 2)
	assert.Equal(t, 1, calls)
	chips := cards[1].(model.Config)["chips"].([]interface{})
	assert.Equal(t, "sensor.kitchen_battery", chips[0].(model.Config)["entity"])
}

func TestGroup_Carousel(t *testing.T) {
	f := testFactory(t, nil)
	two := []model.Config{{"entity": "a.a"}, {"entity": "a.b"}}
	assert.Equal(t, two, f.Group(two))

	three := append(two, model.Config{"entity": "a.c"})
	grouped := f.Group(three)
	require.Len(t, grouped, 1)
	assert.Equal(t, TypeSwipe, grouped[0]["type"])
	assert.Len(t, grouped[0]["cards"], 3)
}

func TestArea_Kinds(t *testing.T) {
	f := testFactory(t, nil)
	kitchen, _ := f.State().Area("kitchen")
	undisclosed, _ := f.State().Area(model.UndisclosedID)

	minimal, err := f.Area(AreaKindMinimal, kitchen)
	require.NoError(t, err)
	assert.Equal(t, model.Config{
		"type":       TypeTemplate,
		"primary":    "Kitchen",
		"icon":       "mdi:stove",
		"icon_color": "blue",
		"tap_action": model.Config{"action": "navigate", "navigation_path": "kitchen"},
	}, minimal)

	def, err := f.Area("", kitchen)
	require.NoError(t, err)
	assert.Equal(t, TypeStackIn, def["type"])
	assert.Len(t, def["cards"], 2)

	_, err = f.Area("custom:fancy-area", kitchen)
	assert.ErrorIs(t, err, ErrUnknownKind)
	_, err = f.Area(AreaKindNative, undisclosed)
	assert.ErrorIs(t, err, ErrUnsupportedArea)

	undisclosedCard, err := f.Area(AreaKindMinimal, undisclosed)
	require.NoError(t, err)
	assert.Equal(t, model.UndisclosedIcon, undisclosedCard["icon"])
}

func TestAggregate(t *testing.T) {
	f := testFactory(t, nil)
	kitchen, _ := f.State().Area("kitchen")

	battery := f.Aggregate(kitchen, resolver.AggregateBattery)
	require.NotNil(t, battery)
	assert.Equal(t, "{{ states('sensor.kitchen_battery') }}%", battery["secondary"])
	assert.Nil(t, f.Aggregate(kitchen, resolver.AggregateHumidity))
}

func TestDefinitions(t *testing.T) {
	defs := Definitions()
	assert.Equal(t, "light", defs[0].ID)

	f := testFactory(t, nil)
	light := f.DomainOptions("light")
	assert.Equal(t, "Lights", light.Title)
	assert.Equal(t, "light.turn_off", light.OffService)
	assert.True(t, model.BoolValue(light.HideConfigEntities, false))
	assert.NotNil(t, light.ExtraControls)

	unknown := f.DomainOptions("weird")
	assert.True(t, model.BoolValue(unknown.HideDiagnosticEntities, false))
	assert.Nil(t, unknown.ExtraControls)
}
