package model

import (
	"strings"
	"time"
)

// EntityState is the live state of one Home Assistant entity.
type EntityState struct {
	EntityID    string                 `json:"entity_id"`
	State       string                 `json:"state"`
	Attributes  map[string]interface{} `json:"attributes"`
	LastChanged time.Time              `json:"last_changed"`
}

// Attribute returns a string attribute or "".
func (s EntityState) Attribute(key string) string {
	v, _ := s.Attributes[key].(string)
	return v
}

type EntityRegistryEntry struct {
	EntityID       string   `json:"entity_id"`
	Name           string   `json:"name,omitempty"`
	OriginalName   string   `json:"original_name,omitempty"`
	Icon           string   `json:"icon,omitempty"`
	AreaID         string   `json:"area_id,omitempty"`
	DeviceID       string   `json:"device_id,omitempty"`
	HiddenBy       string   `json:"hidden_by,omitempty"`
	DisabledBy     string   `json:"disabled_by,omitempty"`
	EntityCategory string   `json:"entity_category,omitempty"`
	TranslationKey string   `json:"translation_key,omitempty"`
	Platform       string   `json:"platform,omitempty"`
	Labels         []string `json:"labels,omitempty"`
}

type DeviceRegistryEntry struct {
	ID           string `json:"id"`
	AreaID       string `json:"area_id,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
	Name         string `json:"name,omitempty"`
	NameByUser   string `json:"name_by_user,omitempty"`
	DisabledBy   string `json:"disabled_by,omitempty"`
}

// DisplayName prefers the user-assigned name.
func (d DeviceRegistryEntry) DisplayName() string {
	if d.NameByUser != "" {
		return d.NameByUser
	}
	return d.Name
}

type AreaRegistryEntry struct {
	AreaID  string   `json:"area_id"`
	Name    string   `json:"name"`
	Icon    string   `json:"icon,omitempty"`
	FloorID string   `json:"floor_id,omitempty"`
	Picture string   `json:"picture,omitempty"`
	Aliases []string `json:"aliases,omitempty"`
}

type FloorRegistryEntry struct {
	FloorID string   `json:"floor_id"`
	Name    string   `json:"name"`
	Level   *int     `json:"level,omitempty"`
	Icon    string   `json:"icon,omitempty"`
	Aliases []string `json:"aliases,omitempty"`
}

// Snapshot is one in-memory copy of the smart home registries.
// Registries are slices so that registry order survives decoding.
type Snapshot struct {
	States   map[string]EntityState `json:"states"`
	Entities []EntityRegistryEntry  `json:"entities"`
	Devices  []DeviceRegistryEntry  `json:"devices"`
	Areas    []AreaRegistryEntry    `json:"areas"`
	Floors   []FloorRegistryEntry   `json:"floors"`
}

// Domain returns the part of an entity id before the first dot.
func Domain(entityID string) string {
	domain, _, found := strings.Cut(entityID, ".")
	if !found {
		return ""
	}
	return domain
}
