package resolver

import (
	"dashboard-strategy/internal/domain/registry"
)

// linusBrainPatterns maps the capabilities Linus Brain provides to its entity id prefix.
var linusBrainPatterns = map[Capability]string{
	AreaState:    "sensor.linus_brain_activity_",
	Presence:     "binary_sensor.linus_brain_presence_detection_",
	LightControl: "switch.linus_brain_feature_automatic_lighting_",
	AllLights:    "light.linus_brain_all_lights_",
}

// LinusBrain derives entity ids from the area slug. It answers only when a
// Linus Brain device is registered and the derived entity has a live state.
type LinusBrain struct {
	state *registry.State
}

func NewLinusBrain(state *registry.State) *LinusBrain {
	return &LinusBrain{state: state}
}

func (l *LinusBrain) Source() Source { return SourceLinusBrain }

func (l *LinusBrain) Resolve(slug string, capability Capability) (string, bool) {
	if !l.state.HasLinusBrain() {
		return "", false
	}
	prefix, ok := linusBrainPatterns[capability]
	if !ok {
		return "", false
	}
	id := prefix + slug
	if _, live := l.state.EntityState(id); !live {
		return "", false
	}
	return id, true
}

// MagicAreas reads the role map of the area's Magic Areas device. It has no
// presence entity.
type MagicAreas struct {
	state *registry.State
}

func NewMagicAreas(state *registry.State) *MagicAreas {
	return &MagicAreas{state: state}
}

func (m *MagicAreas) Source() Source { return SourceMagicAreas }

func (m *MagicAreas) Resolve(slug string, capability Capability) (string, bool) {
	if capability == Presence {
		return "", false
	}
	id := m.state.MagicArea(slug).EntityID(string(capability))
	return id, id != ""
}
