package chip

import (
	"dashboard-strategy/internal/domain/model"
	"dashboard-strategy/internal/domain/registry"
	"dashboard-strategy/internal/domain/resolver"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFactory(t *testing.T) *Factory {
	t.Helper()
	snap := &model.Snapshot{
		States: map[string]model.EntityState{
			"light.ceiling":                {State: "on"},
			"light.lamp":                   {State: "unavailable"},
			"binary_sensor.kitchen_state":  {State: "on"},
			"binary_sensor.kitchen_motion": {State: "off", Attributes: map[string]interface{}{"device_class": "motion"}},
			"sensor.kitchen_battery":       {State: "42"},
			"sensor.kitchen_temperature":   {State: "20"},
			"switch.kitchen_light_control": {State: "on"},
		},
		Entities: []model.EntityRegistryEntry{
			{EntityID: "light.ceiling", AreaID: "kitchen"},
			{EntityID: "light.lamp", AreaID: "kitchen"},
			{EntityID: "binary_sensor.kitchen_motion", AreaID: "kitchen"},
			{EntityID: "binary_sensor.kitchen_state", DeviceID: "magic", TranslationKey: "area_state"},
			{EntityID: "sensor.kitchen_battery", DeviceID: "magic", TranslationKey: "aggregate_battery"},
			{EntityID: "sensor.kitchen_temperature", DeviceID: "magic", TranslationKey: "aggregate_temperature"},
			{EntityID: "switch.kitchen_light_control", DeviceID: "magic", TranslationKey: "light_control"},
		},
		Devices: []model.DeviceRegistryEntry{
			{ID: "magic", AreaID: "kitchen", Name: "Kitchen", Manufacturer: registry.MagicAreasManufacturer},
		},
		Areas: []model.AreaRegistryEntry{{AreaID: "kitchen", Name: "Kitchen"}},
	}
	s := registry.New(nil)
	require.NoError(t, s.Initialize(snap, nil))
	f, err := NewFactory(s)
	require.NoError(t, err)
	return f
}

func TestNewFactory_RequiresInitializedRegistry(t *testing.T) {
	_, err := NewFactory(registry.New(nil))
	assert.ErrorIs(t, err, registry.ErrNotInitialized)
}

func TestWeather_DefaultsRoundTrip(t *testing.T) {
	f := testFactory(t)
	assert.Equal(t, model.Config{
		"type":             "weather",
		"entity":           "weather.home",
		"show_conditions":  true,
		"show_temperature": true,
	}, f.Weather("weather.home", nil))

	out := f.Weather("weather.home", model.Config{"type": "default", "show_conditions": false})
	assert.Equal(t, "weather", out["type"])
	assert.Equal(t, false, out["show_conditions"])
}

func TestCount(t *testing.T) {
	f := testFactory(t)

	c := f.Count("light", nil, nil)
	require.NotNil(t, c)
	assert.Equal(t, "template", c["type"])
	assert.Equal(t, "mdi:lightbulb-group", c["icon"])
	assert.Contains(t, c["content"], "states['light.ceiling'], states['light.lamp']")
	assert.Equal(t, model.Config{"action": "navigate", "navigation_path": "light"}, c["tap_action"])

	assert.Nil(t, f.Count("fan", nil, nil))
	assert.Nil(t, f.Count("weather", nil, nil))
}

func TestUnavailable(t *testing.T) {
	f := testFactory(t)

	c := f.Unavailable([]string{"light", "switch"}, nil)
	require.NotNil(t, c)
	assert.Contains(t, c["content"], "selectattr('state','eq','unavailable')")
	assert.Nil(t, f.Unavailable([]string{"switch"}, nil))
}

func TestAreaChips(t *testing.T) {
	f := testFactory(t)

	state := f.AreaState("kitchen", nil)
	assert.Equal(t, "binary_sensor.kitchen_state", state["entity"])
	assert.Contains(t, state["icon"], "is_state('binary_sensor.kitchen_motion', 'on')")

	battery := f.Aggregate("kitchen", resolver.AggregateBattery, nil)
	assert.Equal(t, "{{ states('sensor.kitchen_battery') }}%", battery["content"])
	assert.Contains(t, battery["icon"], "mdi:battery-alert")

	temp := f.Aggregate("kitchen", resolver.AggregateTemperature, nil)
	assert.Equal(t, model.Config{
		"type": "entity", "entity": "sensor.kitchen_temperature", "icon": "mdi:thermometer", "icon_color": "red",
	}, temp)

	control := f.LightControl("kitchen", nil)
	assert.Equal(t, "switch.kitchen_light_control", control["entity"])
	assert.Equal(t, model.Config{"action": "toggle"}, control["tap_action"])

	chips := model.Compact(
		f.AreaState("garage", nil),
		f.Presence("kitchen", nil),
		f.AllLights("kitchen", nil),
		f.Aggregate("kitchen", resolver.AggregateHumidity, nil),
		state,
	)
	assert.Equal(t, []model.Config{state}, chips)
}

func TestToggleAndTurnOff(t *testing.T) {
	f := testFactory(t)

	toggle := f.Toggle("light.ceiling", "mdi:lightbulb", "mdi:lightbulb-off", nil)
	assert.Equal(t, "{% if is_state('light.ceiling', 'on') %}mdi:lightbulb{% else %}mdi:lightbulb-off{% endif %}", toggle["icon"])
	assert.Empty(t, model.Compact(f.Toggle("light.x'y", "a", "b", nil)))

	off := f.TurnOff("light.turn_off", model.AreaTarget("kitchen"), "mdi:lightbulb-off", nil)
	assert.Equal(t, model.Config{
		"action":         "perform-action",
		"perform_action": "light.turn_off",
		"target":         model.Config{"area_id": []string{"kitchen"}},
	}, off["tap_action"])
	assert.Nil(t, f.TurnOff("", model.AreaTarget("kitchen"), "", nil))
	assert.Nil(t, f.TurnOff("light.turn_off", model.Target{}, "", nil))
}
