package jinja

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote(t *testing.T) {
	assert.Equal(t, `'on'`, Quote("on"))
	assert.Equal(t, `'it\'s'`, Quote("it's"))
	assert.Equal(t, `'a\\b'`, Quote(`a\b`))
}

func TestStateRef(t *testing.T) {
	ref, err := StateRef("light.kitchen")
	require.NoError(t, err)
	assert.Equal(t, "states['light.kitchen']", ref)

	for _, id := range []string{"light", "light.kit'chen", "Light.kitchen", "light.a] + states['x.y"} {
		_, err := StateRef(id)
		assert.ErrorIs(t, err, ErrUnsafeEntityID, id)
	}
}

func TestCountTemplate(t *testing.T) {
	tpl, err := CountTemplate([]string{"light.a", "light.b"}, "eq", "on")
	require.NoError(t, err)
	assert.Equal(t,
		"{% set entities = [states['light.a'], states['light.b']] %} {{ entities | selectattr('state','eq','on') | list | count }}",
		tpl)

	tpl, err = CountTemplate(nil, "ne", "off")
	require.NoError(t, err)
	assert.Contains(t, tpl, "{% set entities = [] %}")

	_, err = CountTemplate([]string{"light.a"}, "in", "on")
	assert.ErrorIs(t, err, ErrInvalidOperator)
	_, err = CountTemplate([]string{"light.a"}, "eq", "on' }}{{ 1")
	assert.ErrorIs(t, err, ErrUnsafeValue)
	_, err = CountTemplate([]string{"bad"}, "eq", "on")
	assert.ErrorIs(t, err, ErrUnsafeEntityID)
}

func TestBatteryLadder(t *testing.T) {
	l, err := BatteryLadder("sensor.kitchen_battery")
	require.NoError(t, err)
	require.NoError(t, l.Validate())

	// unknown, ten thresholds below 100, then the full bucket
	assert.Len(t, l.Buckets, 12)
	assert.Equal(t, "level == 100", l.Buckets[len(l.Buckets)-1].When)

	icon := l.IconTemplate()
	assert.True(t, strings.HasPrefix(icon, "{% set level = states['sensor.kitchen_battery'].state | int(-1) %}{% if level < 0 %}"))
	assert.Contains(t, icon, "{% elif level < 10 %}mdi:battery-alert")
	assert.Contains(t, icon, "{% elif level == 100 %}mdi:battery")
	assert.True(t, strings.HasSuffix(icon, "{% else %}mdi:battery-unknown{% endif %}"))
	assert.Contains(t, l.ColorTemplate(), "{% elif level < 20 %}red")

	// same input, same text
	again, _ := BatteryLadder("sensor.kitchen_battery")
	assert.Equal(t, icon, again.IconTemplate())

	_, err = BatteryLadder("sensor.x'y")
	assert.ErrorIs(t, err, ErrUnsafeEntityID)
}

func TestOccupancyLadder_Priority(t *testing.T) {
	l, err := OccupancyLadder(OccupancySources{
		Motion:      "binary_sensor.motion",
		Presence:    "binary_sensor.presence",
		Occupancy:   "binary_sensor.occupancy",
		MediaPlayer: "media_player.tv",
		AreaState:   "binary_sensor.area_state",
	})
	require.NoError(t, err)
	require.NoError(t, l.Validate())

	order := []string{"motion", "presence", "occupancy", "media_player.tv", "presence_hold", "sleep", "extended", "occupied"}
	require.Len(t, l.Buckets, len(order))
	for i, token := range order {
		assert.Contains(t, l.Buckets[i].When, token)
	}
	assert.Equal(t, "mdi:home-outline", l.Otherwise.Icon)

	icon := l.IconTemplate()
	last := -1
	for _, token := range order {
		idx := strings.Index(icon, token)
		assert.Greater(t, idx, last, token)
		last = idx
	}
}

func TestOccupancyLadder_MissingSources(t *testing.T) {
	l, err := OccupancyLadder(OccupancySources{Presence: "binary_sensor.presence"})
	require.NoError(t, err)
	require.Len(t, l.Buckets, 1)
	assert.Equal(t, "{% if is_state('binary_sensor.presence', 'on') %}red{% else %}grey{% endif %}", l.ColorTemplate())

	empty, err := OccupancyLadder(OccupancySources{})
	require.NoError(t, err)
	assert.Equal(t, "mdi:home-outline", empty.IconTemplate())

	_, err = OccupancyLadder(OccupancySources{AreaState: "sensor.bad id"})
	assert.ErrorIs(t, err, ErrUnsafeEntityID)
}

func TestLadder_Validate(t *testing.T) {
	l := Ladder{Buckets: []Bucket{{When: "x", Icon: "mdi:a"}}, Otherwise: Bucket{Icon: "mdi:b", Color: "red"}}
	assert.ErrorIs(t, l.Validate(), ErrIncompleteLadder)
}
