package card

import (
	"dashboard-strategy/internal/domain/jinja"
	"dashboard-strategy/internal/domain/model"
	"dashboard-strategy/internal/domain/resolver"
	"errors"
	"fmt"
)

var (
	// ErrUnknownKind is returned for an area card kind missing from the registry.
	ErrUnknownKind = errors.New("unknown card kind")
	// ErrUnsupportedArea is returned when a kind cannot render the given area.
	ErrUnsupportedArea = errors.New("area not supported by card kind")
)

const (
	AreaKindDefault = "default"
	AreaKindMinimal = "minimal"
	AreaKindNative  = "native"
)

type areaBuilder func(f *Factory, area *model.StrategyArea) (model.Config, error)

var areaBuilders = map[string]areaBuilder{
	AreaKindDefault: (*Factory).defaultArea,
	AreaKindMinimal: (*Factory).minimalArea,
	AreaKindNative:  (*Factory).nativeArea,
}

// Area builds the home view card of area with the given kind. An empty kind is the default one.
func (f *Factory) Area(kind string, area *model.StrategyArea) (model.Config, error) {
	if kind == "" {
		kind = AreaKindDefault
	}
	b, ok := areaBuilders[kind]
	if !ok {
		return nil, fmt.Errorf("%w: area card %q", ErrUnknownKind, kind)
	}
	return b(f, area)
}

// AreaIcon falls back to the help circle for the Undisclosed Area.
func AreaIcon(area *model.StrategyArea) string {
	if area.Icon != "" {
		return area.Icon
	}
	if area.IsUndisclosed() {
		return model.UndisclosedIcon
	}
	return "mdi:texture-box"
}

func (f *Factory) minimalArea(area *model.StrategyArea) (model.Config, error) {
	return model.Config{
		"type":       TypeTemplate,
		"primary":    area.Name,
		"icon":       AreaIcon(area),
		"icon_color": "blue",
		"tap_action": model.Config{"action": "navigate", "navigation_path": area.Slug},
	}, nil
}

// defaultArea stacks the area title over its capability chips.
func (f *Factory) defaultArea(area *model.StrategyArea) (model.Config, error) {
	title, _ := f.minimalArea(area)
	if state := model.Compact(f.chips.AreaState(area.Slug, nil)); len(state) == 1 {
		title["icon_color"] = state[0]["icon_color"]
	}
	chips := model.Compact(
		f.chips.Presence(area.Slug, nil),
		f.chips.Aggregate(area.Slug, resolver.AggregateTemperature, nil),
		f.chips.Aggregate(area.Slug, resolver.AggregateHumidity, nil),
		f.chips.Aggregate(area.Slug, resolver.AggregateBattery, nil),
		f.chips.LightControl(area.Slug, nil),
		f.chips.AllLights(area.Slug, nil),
	)
	cards := []model.Config{title}
	if len(chips) > 0 {
		cards = append(cards, f.ChipsCard(chips, model.Config{"alignment": "center"}))
	}
	return model.Config{"type": TypeStackIn, "cards": cardList(cards)}, nil
}

// nativeArea uses the host's own area card, which only knows registry areas.
func (f *Factory) nativeArea(area *model.StrategyArea) (model.Config, error) {
	if area.IsUndisclosed() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedArea, area.AreaID)
	}
	return model.Config{
		"type":            TypeNativeArea,
		"area":            area.AreaID,
		"navigation_path": area.Slug,
		"display_type":    "compact",
	}, nil
}

var aggregateCards = map[resolver.Capability]model.Config{
	resolver.AggregateTemperature: {"icon": "mdi:thermometer", "icon_color": "red"},
	resolver.AggregateHumidity:    {"icon": "mdi:water-percent", "icon_color": "indigo"},
	resolver.AggregateIlluminance: {"icon": "mdi:brightness-5", "icon_color": "yellow"},
}

// Aggregate shows one Magic Areas aggregate of the area, or nil when the area has none.
// Battery renders through the level ladder.
func (f *Factory) Aggregate(area *model.StrategyArea, capability resolver.Capability) model.Config {
	id := f.resolver.EntityID(area.Slug, capability)
	if id == "" {
		return nil
	}
	if capability == resolver.AggregateBattery {
		ladder, err := jinja.BatteryLadder(id)
		if err != nil {
			return nil
		}
		return model.Config{
			"type":       TypeTemplate,
			"entity":     id,
			"primary":    "Battery",
			"secondary":  "{{ states(" + jinja.Quote(id) + ") }}%",
			"icon":       ladder.IconTemplate(),
			"icon_color": ladder.ColorTemplate(),
		}
	}
	c := model.Merge(aggregateCards[capability])
	c["type"] = TypeEntity
	c["entity"] = id
	return c
}
