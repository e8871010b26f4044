package card

import (
	"dashboard-strategy/internal/domain/model"
)

// Definition is one built-in domain view. Token selects its entities
// ("domain" or "domain:device_class").
type Definition struct {
	ID        string
	Token     string
	Icon      string
	Groupable bool
	Options   model.DomainOptions
}

var commonOptions = model.DomainOptions{
	HideConfigEntities:     model.Bool(true),
	HideDiagnosticEntities: model.Bool(true),
}

// definitions lists the domain views in their built-in order.
var definitions = []Definition{
	{ID: "light", Token: "light", Icon: "mdi:lightbulb-group", Groupable: true, Options: model.DomainOptions{
		Title: "Lights", ShowControls: model.Bool(true),
		IconOn: "mdi:lightbulb", IconOff: "mdi:lightbulb-off",
		OnService: "light.turn_on", OffService: "light.turn_off",
	}},
	{ID: "fan", Token: "fan", Icon: "mdi:fan", Groupable: true, Options: model.DomainOptions{
		Title: "Fans", ShowControls: model.Bool(true),
		IconOn: "mdi:fan", IconOff: "mdi:fan-off",
		OnService: "fan.turn_on", OffService: "fan.turn_off",
	}},
	{ID: "cover", Token: "cover", Icon: "mdi:window-open", Groupable: true, Options: model.DomainOptions{
		Title: "Covers", ShowControls: model.Bool(true),
		IconOn: "mdi:arrow-up", IconOff: "mdi:arrow-down",
		OnService: "cover.open_cover", OffService: "cover.close_cover",
	}},
	{ID: "switch", Token: "switch", Icon: "mdi:dip-switch", Groupable: true, Options: model.DomainOptions{
		Title: "Switches", ShowControls: model.Bool(true),
		IconOn: "mdi:power-plug", IconOff: "mdi:power-plug-off",
		OnService: "switch.turn_on", OffService: "switch.turn_off",
	}},
	{ID: "climate", Token: "climate", Icon: "mdi:thermostat", Groupable: true, Options: model.DomainOptions{
		Title: "Climates", ShowControls: model.Bool(false),
	}},
	{ID: "camera", Token: "camera", Icon: "mdi:cctv", Groupable: false, Options: model.DomainOptions{
		Title: "Cameras", ShowControls: model.Bool(false),
	}},
	{ID: "media_player", Token: "media_player", Icon: "mdi:play-circle", Groupable: true, Options: model.DomainOptions{
		Title: "Media Players", ShowControls: model.Bool(false),
	}},
	{ID: "vacuum", Token: "vacuum", Icon: "mdi:robot-vacuum", Groupable: true, Options: model.DomainOptions{
		Title: "Vacuums", ShowControls: model.Bool(false),
	}},
	{ID: "lock", Token: "lock", Icon: "mdi:lock", Groupable: true, Options: model.DomainOptions{
		Title: "Locks", ShowControls: model.Bool(false),
	}},
	{ID: "sensor", Token: "sensor", Icon: "mdi:eye", Groupable: true, Options: model.DomainOptions{
		Title: "Sensors", ShowControls: model.Bool(false),
	}},
	{ID: "binary_sensor", Token: "binary_sensor", Icon: "mdi:radiobox-marked", Groupable: true, Options: model.DomainOptions{
		Title: "Binary sensors", ShowControls: model.Bool(false),
	}},
}

// Definitions returns the built-in domain views in order.
func Definitions() []Definition {
	return append([]Definition(nil), definitions...)
}

func Lookup(id string) (Definition, bool) {
	for _, d := range definitions {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

// builtinOptions layers the common defaults under the domain's own.
func builtinOptions(domain string) model.DomainOptions {
	layered := &model.StrategyOptions{Domains: map[string]model.DomainOptions{
		model.DefaultsKey: commonOptions,
	}}
	if d, ok := Lookup(domain); ok {
		layered.Domains[domain] = d.Options
	}
	return layered.Domain(domain, model.DomainOptions{})
}
