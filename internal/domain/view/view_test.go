package view

import (
	"dashboard-strategy/internal/domain/card"
	"dashboard-strategy/internal/domain/model"
	"dashboard-strategy/internal/domain/registry"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newAssembler(t *testing.T, snap *model.Snapshot, options *model.StrategyOptions, logger *zap.Logger) *Assembler {
	t.Helper()
	s := registry.New(nil)
	require.NoError(t, s.Initialize(snap, options))
	a, err := NewAssembler(s, logger)
	require.NoError(t, err)
	return a
}

func definition(t *testing.T, id string) card.Definition {
	t.Helper()
	def, ok := card.Lookup(id)
	require.True(t, ok, id)
	return def
}

func kitchenSnapshot() *model.Snapshot {
	return &model.Snapshot{
		States: map[string]model.EntityState{
			"light.kitchen_ceiling": {State: "on"},
			"light.kitchen_hidden":  {State: "off"},
		},
		Entities: []model.EntityRegistryEntry{
			{EntityID: "light.kitchen_ceiling", AreaID: "kitchen", Name: "Ceiling"},
			{EntityID: "light.kitchen_hidden", AreaID: "kitchen", Name: "Hidden", HiddenBy: "user"},
		},
		Devices: []model.DeviceRegistryEntry{},
		Areas:   []model.AreaRegistryEntry{{AreaID: "kitchen", Name: "Kitchen"}},
	}
}

func cardsOf(c model.Config) []interface{} {
	cards, _ := c["cards"].([]interface{})
	return cards
}

func TestNewAssembler_RequiresInitializedRegistry(t *testing.T) {
	_, err := NewAssembler(registry.New(nil), nil)
	assert.ErrorIs(t, err, registry.ErrNotInitialized)
}

func TestDomainView_KitchenHiddenLight(t *testing.T) {
	a := newAssembler(t, kitchenSnapshot(), nil, nil)

	v, err := a.DomainView(definition(t, "light"))
	require.NoError(t, err)
	require.Len(t, v.Sections, 2)

	// view controller, then the floor holding the kitchen
	assert.Len(t, v.Sections[0].Cards, 1)
	floor := v.Sections[1].Cards
	require.Len(t, floor, 3)
	assert.Equal(t, "Undisclosed", cardsOf(floor[0])[0].(model.Config)["title"])

	areaController := cardsOf(floor[1])[0].(model.Config)
	assert.Equal(t, "Kitchen", areaController["primary"])

	assert.Equal(t, "custom:mushroom-light-card", floor[2]["type"])
	assert.Equal(t, "light.kitchen_ceiling", floor[2]["entity"])
	for _, c := range floor {
		assert.NotEqual(t, card.TypeSwipe, c["type"])
	}
}

func TestDomainView_EmptyDomain(t *testing.T) {
	a := newAssembler(t, kitchenSnapshot(), nil, nil)

	v, err := a.DomainView(definition(t, "vacuum"))
	require.NoError(t, err)
	assert.NotNil(t, v.Sections)
	assert.Empty(t, v.Sections)

	doc, err := json.Marshal(v.Document())
	require.NoError(t, err)
	assert.Contains(t, string(doc), `"sections":[]`)
}

func houseSnapshot() *model.Snapshot {
	return &model.Snapshot{
		States: map[string]model.EntityState{},
		Entities: []model.EntityRegistryEntry{
			{EntityID: "light.attic", AreaID: "attic", Name: "Attic"},
			{EntityID: "light.b_lamp", AreaID: "living", Name: "b lamp"},
			{EntityID: "light.a_lamp", AreaID: "living", Name: "A lamp"},
			{EntityID: "light.c_lamp", AreaID: "living", Name: "C lamp"},
			{EntityID: "light.desk", DeviceID: "dev_desk", Name: "Desk"},
			{EntityID: "light.loose", Name: "Loose"},
			{EntityID: "switch.cellar_pump", AreaID: "cellar", Name: "Pump"},
			{EntityID: "sensor.living_co2", AreaID: "living", Name: "CO2"},
			{EntityID: "update.living_tv", AreaID: "living", Name: "TV firmware"},
		},
		Devices: []model.DeviceRegistryEntry{
			{ID: "dev_desk", AreaID: "office", Name: "Desk"},
		},
		Areas: []model.AreaRegistryEntry{
			{AreaID: "attic", Name: "Attic", FloorID: "top"},
			{AreaID: "living", Name: "Living", FloorID: "ground"},
			{AreaID: "office", Name: "Office", FloorID: "ground"},
			{AreaID: "cellar", Name: "Cellar", FloorID: "basement"},
		},
		Floors: []model.FloorRegistryEntry{
			{FloorID: "top", Name: "Top", Level: model.Int(1)},
			{FloorID: "basement", Name: "Basement", Level: model.Int(-1)},
			{FloorID: "ground", Name: "Ground", Level: model.Int(0)},
		},
	}
}

func TestDomainView_HierarchyAndOrder(t *testing.T) {
	a := newAssembler(t, houseSnapshot(), nil, nil)

	v, err := a.DomainView(definition(t, "light"))
	require.NoError(t, err)

	// basement has no lights: view controller, ground, top, undisclosed
	require.Len(t, v.Sections, 4)
	titles := []string{}
	for _, s := range v.Sections[1:] {
		titles = append(titles, cardsOf(s.Cards[0])[0].(model.Config)["title"].(string))
	}
	assert.Equal(t, []string{"Ground", "Top", "Undisclosed"}, titles)

	ground := v.Sections[1].Cards
	// floor controller, living controller + swipe, office controller + desk
	require.Len(t, ground, 5)
	assert.Equal(t, "Living", cardsOf(ground[1])[0].(model.Config)["primary"])
	swipe := ground[2]
	assert.Equal(t, card.TypeSwipe, swipe["type"])
	var order []string
	for _, c := range cardsOf(swipe) {
		order = append(order, c.(model.Config)["entity"].(string))
	}
	assert.Equal(t, []string{"light.a_lamp", "light.b_lamp", "light.c_lamp"}, order)
	assert.Equal(t, "light.desk", ground[4]["entity"])

	floorChips := cardsOf(ground[0])[1].(model.Config)["chips"].([]interface{})
	target := floorChips[0].(model.Config)["tap_action"].(model.Config)["target"]
	assert.Equal(t, model.Config{"floor_id": []string{"ground"}}, target)
}

func TestDomainView_UndisclosedTargetsEntities(t *testing.T) {
	a := newAssembler(t, houseSnapshot(), nil, nil)

	v, err := a.DomainView(definition(t, "light"))
	require.NoError(t, err)
	undisclosed := v.Sections[3].Cards
	require.Len(t, undisclosed, 3)

	areaChips := cardsOf(undisclosed[1])[1].(model.Config)["chips"].([]interface{})
	require.Len(t, areaChips, 1)
	// a single entity gets a toggle instead of a turn-off call
	assert.Equal(t, "light.loose", areaChips[0].(model.Config)["entity"])
	assert.Equal(t, model.UndisclosedIcon, cardsOf(undisclosed[1])[0].(model.Config)["icon"])
}

func TestDomainView_Idempotent(t *testing.T) {
	a := newAssembler(t, houseSnapshot(), nil, nil)
	b := newAssembler(t, houseSnapshot(), nil, nil)

	for _, def := range a.Definitions() {
		v1, err := a.DomainView(def)
		require.NoError(t, err)
		v2, err := b.DomainView(def)
		require.NoError(t, err)
		d1, _ := json.Marshal(v1.Document())
		d2, _ := json.Marshal(v2.Document())
		assert.Equal(t, string(d1), string(d2), def.ID)
	}
}

func TestDomainView_FailingAreaIsSkipped(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	options := &model.StrategyOptions{Domains: map[string]model.DomainOptions{
		"light": {ExtraControls: func(d *model.MagicAreaDevice) []model.Config {
			if d != nil && d.AreaID == "living" {
				panic("boom")
			}
			return nil
		}},
	}}
	a := newAssembler(t, houseSnapshot(), options, zap.New(core))

	v, err := a.DomainView(definition(t, "light"))
	require.NoError(t, err)
	ground := v.Sections[1].Cards
	require.Len(t, ground, 3)
	assert.Equal(t, "Office", cardsOf(ground[1])[0].(model.Config)["primary"])
	assert.Equal(t, 1, logs.FilterMessage("skipping area that failed to build").Len())
}

func TestDomainView_NotGroupable(t *testing.T) {
	snap := houseSnapshot()
	snap.Entities = append(snap.Entities,
		model.EntityRegistryEntry{EntityID: "camera.door", AreaID: "living"},
		model.EntityRegistryEntry{EntityID: "camera.garden"},
	)
	a := newAssembler(t, snap, nil, nil)

	v, err := a.DomainView(definition(t, "camera"))
	require.NoError(t, err)
	require.Len(t, v.Sections, 2)
	require.Len(t, v.Sections[1].Cards, 2)
	assert.Equal(t, "camera.door", v.Sections[1].Cards[0]["entity"])
}

func TestDomainView_NotGroupableFailingAreaIsSkipped(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	snap := houseSnapshot()
	snap.Entities = append(snap.Entities, model.EntityRegistryEntry{EntityID: "camera.door", AreaID: "living"})
	a := newAssembler(t, snap, nil, zap.New(core))
	a.query = nil

	v, err := a.DomainView(definition(t, "camera"))
	require.NoError(t, err)
	assert.Empty(t, v.Sections)
	assert.Equal(t, len(a.state.Areas()), logs.FilterMessage("skipping area that failed to build").Len())
}

func TestDefinitions_Order(t *testing.T) {
	a := newAssembler(t, houseSnapshot(), &model.StrategyOptions{
		Views:   map[string]model.ViewOptions{"sensor": {Order: model.Int(1)}, "fan": {Hidden: true}},
		Domains: map[string]model.DomainOptions{"cover": {Hidden: model.Bool(true)}},
		Side:    model.SideOptions{ExcludedDomains: []string{"lock"}},
	}, nil)

	var got []string
	for _, d := range a.Definitions() {
		got = append(got, d.ID)
	}
	assert.Equal(t, []string{"sensor", "light", "switch", "climate", "camera", "media_player", "vacuum", "binary_sensor"}, got)

	_, err := a.View("fan")
	assert.ErrorIs(t, err, ErrViewNotFound)
}

func TestHomeView(t *testing.T) {
	snap := houseSnapshot()
	snap.Entities = append(snap.Entities,
		model.EntityRegistryEntry{EntityID: "weather.home"},
		model.EntityRegistryEntry{EntityID: "person.alex", Name: "Alex"},
	)
	snap.States["light.attic"] = model.EntityState{EntityID: "light.attic", State: "unavailable"}
	a := newAssembler(t, snap, &model.StrategyOptions{
		QuickAccessCards: []model.Config{{"type": "button", "entity": "light.attic"}},
		ExtraCards:       []model.Config{{"type": "markdown", "content": "hi"}},
	}, nil)

	v, err := a.HomeView()
	require.NoError(t, err)
	require.Len(t, v.Sections, 6)

	chips := v.Sections[0].Cards[0]["chips"].([]interface{})
	assert.Equal(t, "weather", chips[0].(model.Config)["type"])
	last := chips[len(chips)-1].(model.Config)
	assert.Equal(t, "mdi:alert-circle-outline", last["icon"])

	assert.Equal(t, "custom:mushroom-person-card", cardsOf(v.Sections[1].Cards[0])[0].(model.Config)["type"])
	assert.Equal(t, "mdi:hand-wave", v.Sections[2].Cards[0]["icon"])
	assert.Equal(t, "button", v.Sections[3].Cards[0]["type"])

	areas := v.Sections[4].Cards
	// title, then attic+living, office+cellar, undisclosed
	require.Len(t, areas, 4)
	assert.Len(t, cardsOf(areas[1]), 2)
	assert.Len(t, cardsOf(areas[3]), 1)
	assert.Equal(t, "markdown", v.Sections[5].Cards[0]["type"])
}

func TestHomeView_HiddenSections(t *testing.T) {
	a := newAssembler(t, houseSnapshot(), &model.StrategyOptions{HomeView: model.HomeViewOptions{
		Hidden: []string{model.HomeSectionChips, model.HomeSectionGreeting, model.HomeSectionAreas},
	}}, nil)

	v, err := a.HomeView()
	require.NoError(t, err)
	assert.Empty(t, v.Sections)
}

func TestHomeView_AreaKindFallback(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	a := newAssembler(t, houseSnapshot(), &model.StrategyOptions{
		Debug: true,
		Areas: map[string]model.AreaOptions{
			model.DefaultsKey: {Type: "native"},
			"attic":           {Type: "custom:broken"},
		},
	}, zap.New(core))

	v, err := a.HomeView()
	require.NoError(t, err)
	var areas []model.Config
	for _, s := range v.Sections {
		if len(s.Cards) > 0 && s.Cards[0]["title"] == "Areas" {
			areas = s.Cards[1:]
		}
	}
	require.NotEmpty(t, areas)
	first := cardsOf(areas[0])
	assert.Equal(t, card.TypeStackIn, first[0].(model.Config)["type"])
	assert.Equal(t, card.TypeNativeArea, first[1].(model.Config)["type"])

	// attic falls back, so does the Undisclosed Area which the native card cannot show
	assert.Equal(t, 2, logs.FilterMessage("area card kind failed, using default").Len())
}

func TestAreaView(t *testing.T) {
	snap := houseSnapshot()
	snap.Devices = append(snap.Devices, model.DeviceRegistryEntry{
		ID: "magic_living", AreaID: "living", Name: "Living", Manufacturer: registry.MagicAreasManufacturer,
	})
	snap.Entities = append(snap.Entities,
		model.EntityRegistryEntry{EntityID: "binary_sensor.living_state", DeviceID: "magic_living", TranslationKey: "area_state"},
		model.EntityRegistryEntry{EntityID: "sensor.living_temperature", DeviceID: "magic_living", TranslationKey: "aggregate_temperature"},
	)
	a := newAssembler(t, snap, nil, nil)
	living, _ := a.state.Area("living")

	v, err := a.AreaView(living)
	require.NoError(t, err)
	assert.True(t, v.Subview)
	assert.Equal(t, "living", v.Path)
	assert.Equal(t, []model.Config{
		{"type": "entity", "entity": "binary_sensor.living_state"},
		{"type": "entity", "entity": "sensor.living_temperature"},
	}, v.Badges)

	// overview, lights, sensors, binary sensors, miscellaneous
	require.Len(t, v.Sections, 5)
	assert.Equal(t, "sensor.living_temperature", v.Sections[0].Cards[0]["entity"])
	lights := v.Sections[1].Cards
	assert.Equal(t, "Lights", cardsOf(lights[0])[0].(model.Config)["title"])
	assert.Equal(t, card.TypeSwipe, lights[1]["type"])

	misc := v.Sections[4].Cards
	assert.Equal(t, "Miscellaneous", misc[0]["title"])
	require.Len(t, misc, 2)
	assert.Equal(t, "update.living_tv", misc[1]["entity"])
}

func TestView_Dispatch(t *testing.T) {
	a := newAssembler(t, houseSnapshot(), nil, nil)

	home, err := a.View(HomeID)
	require.NoError(t, err)
	assert.Equal(t, "Home", home.Title)

	light, err := a.View("light")
	require.NoError(t, err)
	assert.Equal(t, "Lights", light.Title)

	attic, err := a.View("attic")
	require.NoError(t, err)
	assert.True(t, attic.Subview)

	_, err = a.View("nowhere")
	assert.ErrorIs(t, err, ErrViewNotFound)
}
