package model

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// DefaultsKey addresses the entry applied to every area or domain.
const DefaultsKey = "_"

// Home view section names usable in home_view.hidden.
const (
	HomeSectionChips       = "chips"
	HomeSectionPersons     = "persons"
	HomeSectionGreeting    = "greeting"
	HomeSectionAreas       = "areas"
	HomeSectionQuickAccess = "quick_access"
	HomeSectionExtra       = "extra"
)

// ExtraControlsFunc receives the Magic Areas device of the controlled area (nil
// when there is none) and returns chips appended after the built-in controls.
type ExtraControlsFunc func(device *MagicAreaDevice) []Config

type StrategyOptions struct {
	Debug            bool                     `json:"debug,omitempty" yaml:"debug"`
	Areas            map[string]AreaOptions   `json:"areas,omitempty" yaml:"areas"`
	Domains          map[string]DomainOptions `json:"domains,omitempty" yaml:"domains"`
	Views            map[string]ViewOptions   `json:"views,omitempty" yaml:"views"`
	HomeView         HomeViewOptions          `json:"home_view,omitempty" yaml:"home_view"`
	CardOptions      map[string]CardOptions   `json:"card_options,omitempty" yaml:"card_options"`
	ExtraViews       []Config                 `json:"extra_views,omitempty" yaml:"extra_views"`
	ExtraCards       []Config                 `json:"extra_cards,omitempty" yaml:"extra_cards"`
	QuickAccessCards []Config                 `json:"quick_access_cards,omitempty" yaml:"quick_access_cards"`
	Side             SideOptions              `json:"side,omitempty" yaml:"side"`
}

type AreaOptions struct {
	Name       string   `json:"name,omitempty" yaml:"name"`
	Icon       string   `json:"icon,omitempty" yaml:"icon"`
	Order      *int     `json:"order,omitempty" yaml:"order"`
	Hidden     *bool    `json:"hidden,omitempty" yaml:"hidden"`
	Type       string   `json:"type,omitempty" yaml:"type"`
	ExtraCards []Config `json:"extra_cards,omitempty" yaml:"extra_cards"`
}

type DomainOptions struct {
	Title                  string            `json:"title,omitempty" yaml:"title"`
	ShowControls           *bool             `json:"showControls,omitempty" yaml:"showControls"`
	IconOn                 string            `json:"iconOn,omitempty" yaml:"iconOn"`
	IconOff                string            `json:"iconOff,omitempty" yaml:"iconOff"`
	OnService              string            `json:"onService,omitempty" yaml:"onService"`
	OffService             string            `json:"offService,omitempty" yaml:"offService"`
	Hidden                 *bool             `json:"hidden,omitempty" yaml:"hidden"`
	HideConfigEntities     *bool             `json:"hide_config_entities,omitempty" yaml:"hide_config_entities"`
	HideDiagnosticEntities *bool             `json:"hide_diagnostic_entities,omitempty" yaml:"hide_diagnostic_entities"`
	ControllerCardOptions  Config            `json:"controllerCardOptions,omitempty" yaml:"controllerCardOptions"`
	CardDefaults           Config            `json:"card_defaults,omitempty" yaml:"card_defaults"`
	Order                  *int              `json:"order,omitempty" yaml:"order"`
	ExtraControls          ExtraControlsFunc `json:"-" yaml:"-"`
}

type ViewOptions struct {
	Title  string `json:"title,omitempty" yaml:"title"`
	Icon   string `json:"icon,omitempty" yaml:"icon"`
	Order  *int   `json:"order,omitempty" yaml:"order"`
	Hidden bool   `json:"hidden,omitempty" yaml:"hidden"`
}

type HomeViewOptions struct {
	Hidden []string `json:"hidden,omitempty" yaml:"hidden"`
}

func (h HomeViewOptions) IsHidden(section string) bool {
	for _, s := range h.Hidden {
		if s == section {
			return true
		}
	}
	return false
}

// SideOptions carries settings that are not visual defaults.
type SideOptions struct {
	AlarmEntityIDs        []string `json:"alarm_entity_ids,omitempty" yaml:"alarm_entity_ids"`
	WeatherEntityID       string   `json:"weather_entity_id,omitempty" yaml:"weather_entity_id"`
	ExcludedEntities      []string `json:"excluded_entities,omitempty" yaml:"excluded_entities"`
	ExcludedDomains       []string `json:"excluded_domains,omitempty" yaml:"excluded_domains"`
	ExcludedDeviceClasses []string `json:"excluded_device_classes,omitempty" yaml:"excluded_device_classes"`
	ExcludedIntegrations  []string `json:"excluded_integrations,omitempty" yaml:"excluded_integrations"`
}

// CardOptions are per entity or per device card overrides.
type CardOptions struct {
	Hidden    bool
	Overrides Config
}

func (c *CardOptions) fromMap(m map[string]interface{}) {
	c.Hidden, _ = m["hidden"].(bool)
	delete(m, "hidden")
	c.Overrides = Config(m)
}

func (c *CardOptions) UnmarshalJSON(data []byte) error {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	c.fromMap(m)
	return nil
}

func (c *CardOptions) UnmarshalYAML(value *yaml.Node) error {
	var m map[string]interface{}
	if err := value.Decode(&m); err != nil {
		return err
	}
	c.fromMap(m)
	return nil
}

func (c CardOptions) toMap() Config {
	m := c.Overrides.Clone()
	if m == nil {
		m = Config{}
	}
	if c.Hidden {
		m["hidden"] = true
	}
	return m
}

func (c CardOptions) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.toMap())
}

func (c CardOptions) MarshalYAML() (interface{}, error) {
	return map[string]interface{}(c.toMap()), nil
}

// Domain returns the effective options for domain: built-in defaults, then the
// "_" entry, then the domain entry.
func (o *StrategyOptions) Domain(domain string, builtin DomainOptions) DomainOptions {
	out := builtin
	if o == nil {
		return out
	}
	if d, ok := o.Domains[DefaultsKey]; ok {
		out = d.over(out)
	}
	if d, ok := o.Domains[domain]; ok {
		out = d.over(out)
	}
	return out
}

func (d DomainOptions) over(base DomainOptions) DomainOptions {
	out := base
	if d.Title != "" {
		out.Title = d.Title
	}
	if d.ShowControls != nil {
		out.ShowControls = d.ShowControls
	}
	if d.IconOn != "" {
		out.IconOn = d.IconOn
	}
	if d.IconOff != "" {
		out.IconOff = d.IconOff
	}
	if d.OnService != "" {
		out.OnService = d.OnService
	}
	if d.OffService != "" {
		out.OffService = d.OffService
	}
	if d.Hidden != nil {
		out.Hidden = d.Hidden
	}
	if d.HideConfigEntities != nil {
		out.HideConfigEntities = d.HideConfigEntities
	}
	if d.HideDiagnosticEntities != nil {
		out.HideDiagnosticEntities = d.HideDiagnosticEntities
	}
	if d.ControllerCardOptions != nil {
		out.ControllerCardOptions = Merge(base.ControllerCardOptions, d.ControllerCardOptions)
	}
	if d.CardDefaults != nil {
		out.CardDefaults = Merge(base.CardDefaults, d.CardDefaults)
	}
	if d.Order != nil {
		out.Order = d.Order
	}
	if d.ExtraControls != nil {
		out.ExtraControls = d.ExtraControls
	}
	return out
}

// Area returns the effective options for areaID, with "_" as the base.
func (o *StrategyOptions) Area(areaID string) AreaOptions {
	var out AreaOptions
	if o == nil {
		return out
	}
	if a, ok := o.Areas[DefaultsKey]; ok {
		out = a
	}
	a, ok := o.Areas[areaID]
	if !ok {
		return out
	}
	if a.Name != "" {
		out.Name = a.Name
	}
	if a.Icon != "" {
		out.Icon = a.Icon
	}
	if a.Order != nil {
		out.Order = a.Order
	}
	if a.Hidden != nil {
		out.Hidden = a.Hidden
	}
	if a.Type != "" {
		out.Type = a.Type
	}
	if a.ExtraCards != nil {
		out.ExtraCards = a.ExtraCards
	}
	return out
}

// CardOverrides returns the merged overrides for an entity and its device,
// and whether either of them hides the card.
func (o *StrategyOptions) CardOverrides(entityID, deviceID string) (Config, bool) {
	if o == nil {
		return Config{}, false
	}
	var layers []Config
	hidden := false
	if deviceID != "" {
		if c, ok := o.CardOptions[deviceID]; ok {
			layers = append(layers, c.Overrides)
			hidden = hidden || c.Hidden
		}
	}
	if c, ok := o.CardOptions[entityID]; ok {
		layers = append(layers, c.Overrides)
		hidden = hidden || c.Hidden
	}
	return Merge(layers...), hidden
}

func BoolValue(b *bool, fallback bool) bool {
	if b == nil {
		return fallback
	}
	return *b
}

func Bool(b bool) *bool { return &b }
func Int(i int) *int    { return &i }
