package chip

import (
	"dashboard-strategy/internal/domain/jinja"
	"dashboard-strategy/internal/domain/model"
	"dashboard-strategy/internal/domain/query"
	"dashboard-strategy/internal/domain/resolver"

	"github.com/samber/lo"
)

const (
	TypeTemplate = "template"
	TypeEntity   = "entity"
	TypeWeather  = "weather"
	TypeAlarm    = "alarm-control-panel"
)

type countDefinition struct {
	icon  string
	color string
	op    string
	value string
}

// countDefinitions configure the domain count chips.
var countDefinitions = map[string]countDefinition{
	"light":        {icon: "mdi:lightbulb-group", color: "amber", op: "eq", value: "on"},
	"fan":          {icon: "mdi:fan", color: "green", op: "eq", value: "on"},
	"cover":        {icon: "mdi:window-open", color: "cyan", op: "eq", value: "open"},
	"switch":       {icon: "mdi:dip-switch", color: "blue", op: "eq", value: "on"},
	"climate":      {icon: "mdi:thermostat", color: "orange", op: "ne", value: "off"},
	"media_player": {icon: "mdi:play-circle", color: "dark-grey", op: "eq", value: "playing"},
}

// CountDomains lists the domains Count knows, in display order.
var CountDomains = []string{"light", "fan", "cover", "switch", "climate", "media_player"}

func navigate(path string) model.Config {
	return model.Config{"action": "navigate", "navigation_path": path}
}

func (f *Factory) Weather(entityID string, options model.Config) model.Config {
	return model.Compose(model.Config{
		"type":             TypeWeather,
		"entity":           entityID,
		"show_conditions":  true,
		"show_temperature": true,
	}, options)
}

func (f *Factory) Alarm(entityID string, options model.Config) model.Config {
	return model.Compose(model.Config{
		"type":       TypeAlarm,
		"entity":     entityID,
		"tap_action": model.Config{"action": "more-info"},
	}, options)
}

// Count shows how many entities of domain are active, across every area or
// within areaSlugs, and navigates to the domain view.
func (f *Factory) Count(domain string, areaSlugs []string, options model.Config) model.Config {
	def, ok := countDefinitions[domain]
	if !ok {
		return nil
	}
	filter := query.Filter{Domain: domain, AreaSlugs: areaSlugs}
	if len(f.query.EntityIDs(filter)) == 0 {
		return nil
	}
	content, err := f.query.CountTemplate(filter, def.op, def.value)
	if err != nil {
		return nil
	}
	return f.Navigate(domain, def.icon, model.Compose(model.Config{
		"icon_color": def.color,
		"content":    content,
	}, options))
}

// Unavailable counts unavailable entities across domains. It is only built
// when at least one of them is unavailable in the snapshot.
func (f *Factory) Unavailable(domains []string, options model.Config) model.Config {
	var ids []string
	matching := 0
	for _, d := range domains {
		filter := query.Filter{Domain: d}
		n, err := f.query.CountMatching(filter, "eq", "unavailable")
		if err != nil {
			return nil
		}
		matching += n
		ids = append(ids, f.query.EntityIDs(filter)...)
	}
	if matching == 0 {
		return nil
	}
	content, err := jinja.CountTemplate(lo.Uniq(ids), "eq", "unavailable")
	if err != nil {
		return nil
	}
	return model.Compose(model.Config{
		"type":       TypeTemplate,
		"icon":       "mdi:alert-circle-outline",
		"icon_color": "orange",
		"content":    content,
		"tap_action": model.Config{"action": "none"},
	}, options)
}

// AreaState colors the area by its occupancy signals.
func (f *Factory) AreaState(slug string, options model.Config) model.Config {
	id := f.resolver.EntityID(slug, resolver.AreaState)
	if id == "" {
		return model.Config{"type": TypeTemplate, "entity": ""}
	}
	src := jinja.OccupancySources{
		Motion:      f.first(query.Filter{Domain: "binary_sensor", DeviceClass: "motion", AreaSlugs: []string{slug}}),
		Presence:    f.resolver.EntityID(slug, resolver.Presence),
		Occupancy:   f.first(query.Filter{Domain: "binary_sensor", DeviceClass: "occupancy", AreaSlugs: []string{slug}}),
		MediaPlayer: f.first(query.Filter{Domain: "media_player", AreaSlugs: []string{slug}}),
		AreaState:   id,
	}
	if src.Presence == "" {
		src.Presence = f.first(query.Filter{Domain: "binary_sensor", DeviceClass: "presence", AreaSlugs: []string{slug}})
	}
	ladder, err := jinja.OccupancyLadder(src)
	if err != nil {
		return nil
	}
	return model.Compose(model.Config{
		"type":       TypeTemplate,
		"entity":     id,
		"icon":       ladder.IconTemplate(),
		"icon_color": ladder.ColorTemplate(),
		"tap_action": model.Config{"action": "more-info"},
	}, options)
}

func (f *Factory) first(filter query.Filter) string {
	ids := f.query.EntityIDs(filter)
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

func (f *Factory) Presence(slug string, options model.Config) model.Config {
	return model.Compose(model.Config{
		"type":         TypeEntity,
		"entity":       f.resolver.EntityID(slug, resolver.Presence),
		"content_info": "none",
		"icon_color":   "red",
	}, options)
}

func (f *Factory) LightControl(slug string, options model.Config) model.Config {
	id := f.resolver.EntityID(slug, resolver.LightControl)
	return f.Toggle(id, "mdi:lightbulb-auto", "mdi:lightbulb-auto-outline", options)
}

func (f *Factory) AllLights(slug string, options model.Config) model.Config {
	id := f.resolver.EntityID(slug, resolver.AllLights)
	return f.Toggle(id, "mdi:lightbulb-group", "mdi:lightbulb-group-off", options)
}

var aggregateIcons = map[resolver.Capability][2]string{
	resolver.AggregateTemperature: {"mdi:thermometer", "red"},
	resolver.AggregateHumidity:    {"mdi:water-percent", "indigo"},
	resolver.AggregateIlluminance: {"mdi:brightness-5", "yellow"},
}

// Aggregate shows a Magic Areas aggregate sensor. Battery uses the level ladder.
func (f *Factory) Aggregate(slug string, capability resolver.Capability, options model.Config) model.Config {
	id := f.resolver.EntityID(slug, capability)
	if capability == resolver.AggregateBattery && id != "" {
		ladder, err := jinja.BatteryLadder(id)
		if err != nil {
			return nil
		}
		return model.Compose(model.Config{
			"type":       TypeTemplate,
			"entity":     id,
			"icon":       ladder.IconTemplate(),
			"icon_color": ladder.ColorTemplate(),
			"content":    "{{ states(" + jinja.Quote(id) + ") }}%",
			"tap_action": model.Config{"action": "more-info"},
		}, options)
	}
	builtin := model.Config{"type": TypeEntity, "entity": id}
	if icon, ok := aggregateIcons[capability]; ok {
		builtin["icon"] = icon[0]
		builtin["icon_color"] = icon[1]
	}
	return model.Compose(builtin, options)
}

// Toggle reads the live state of entityID and toggles it on tap.
func (f *Factory) Toggle(entityID, iconOn, iconOff string, options model.Config) model.Config {
	if !jinja.ValidEntityID(entityID) {
		return model.Config{"type": TypeTemplate, "entity": ""}
	}
	on := "is_state(" + jinja.Quote(entityID) + ", 'on')"
	return model.Compose(model.Config{
		"type":       TypeTemplate,
		"entity":     entityID,
		"icon":       "{% if " + on + " %}" + iconOn + "{% else %}" + iconOff + "{% endif %}",
		"icon_color": "{% if " + on + " %}amber{% else %}grey{% endif %}",
		"tap_action": model.Config{"action": "toggle"},
	}, options)
}

// TurnOff calls service on target. It is one-directional: no state is read.
func (f *Factory) TurnOff(service string, target model.Target, icon string, options model.Config) model.Config {
	if service == "" || target.IsEmpty() {
		return nil
	}
	if icon == "" {
		icon = "mdi:power"
	}
	return model.Compose(model.Config{
		"type":       TypeTemplate,
		"icon":       icon,
		"icon_color": "red",
		"tap_action": model.Config{
			"action":         "perform-action",
			"perform_action": service,
			"target":         target.Config(),
		},
	}, options)
}

// Navigate is a template chip that opens path on tap.
func (f *Factory) Navigate(path, icon string, options model.Config) model.Config {
	return model.Compose(model.Config{
		"type":       TypeTemplate,
		"icon":       icon,
		"tap_action": navigate(path),
	}, options)
}
