package resolver

import (
	"dashboard-strategy/internal/domain/registry"
)

type Capability string

const (
	AreaState    Capability = "area_state"
	Presence     Capability = "presence"
	LightControl Capability = "light_control"
	AllLights    Capability = "all_lights"

	AggregateTemperature Capability = "aggregate_temperature"
	AggregateHumidity    Capability = "aggregate_humidity"
	AggregateIlluminance Capability = "aggregate_illuminance"
	AggregateBattery     Capability = "aggregate_battery"
	Health               Capability = "health"
	ClimateGroup         Capability = "climate_group"
	CoverGroup           Capability = "cover_group"
	FanGroup             Capability = "fan_group"
	MediaPlayerGroup     Capability = "media_player_group"
)

type Source string

const (
	SourceLinusBrain Source = "linus_brain"
	SourceMagicAreas Source = "magic_areas"
	SourceNone       Source = "none"
)

// Resolution names the entity backing a capability. Fallback is the next
// source's entity for the same capability, when the winner was not the last one.
type Resolution struct {
	EntityID string `json:"entity_id,omitempty"`
	Source   Source `json:"source"`
	Fallback string `json:"fallback,omitempty"`
}

func (r Resolution) Found() bool {
	return r.EntityID != ""
}

// CapabilityResolver is one integration able to back area capabilities.
type CapabilityResolver interface {
	Source() Source
	Resolve(slug string, capability Capability) (string, bool)
}

// Chain asks its resolvers in order; the first answer wins.
type Chain struct {
	resolvers []CapabilityResolver
}

func NewChain(resolvers ...CapabilityResolver) *Chain {
	return &Chain{resolvers: resolvers}
}

// Default prefers Linus Brain over Magic Areas.
func Default(state *registry.State) *Chain {
	return NewChain(NewLinusBrain(state), NewMagicAreas(state))
}

func (c *Chain) Resolve(slug string, capability Capability) Resolution {
	for i, r := range c.resolvers {
		id, ok := r.Resolve(slug, capability)
		if !ok {
			continue
		}
		res := Resolution{EntityID: id, Source: r.Source()}
		for _, next := range c.resolvers[i+1:] {
			if fb, ok := next.Resolve(slug, capability); ok {
				res.Fallback = fb
				break
			}
		}
		return res
	}
	return Resolution{Source: SourceNone}
}

// EntityID is Resolve without the provenance.
func (c *Chain) EntityID(slug string, capability Capability) string {
	return c.Resolve(slug, capability).EntityID
}
