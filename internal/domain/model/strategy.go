package model

const (
	UndisclosedID   = "undisclosed"
	UndisclosedIcon = "mdi:help-circle"
)

type StrategyEntity struct {
	EntityRegistryEntry
	FloorID string `json:"floor_id,omitempty"`
}

func (e *StrategyEntity) Domain() string {
	return Domain(e.EntityID)
}

// Visible reports whether neither the user nor an integration hid or disabled the entity.
func (e *StrategyEntity) Visible() bool {
	return e.HiddenBy == "" && e.DisabledBy == ""
}

type StrategyDevice struct {
	DeviceRegistryEntry
	Entities []string `json:"entities"`
	FloorID  string   `json:"floor_id,omitempty"`
}

type StrategyArea struct {
	AreaRegistryEntry
	Slug     string                       `json:"slug"`
	Domains  map[string][]*StrategyEntity `json:"-"`
	Entities []string                     `json:"entities"`
	Devices  []string                     `json:"devices"`
	Order    *int                         `json:"order,omitempty"`
	Hidden   bool                         `json:"hidden,omitempty"`
}

func (a *StrategyArea) IsUndisclosed() bool {
	return a.AreaID == UndisclosedID
}

type StrategyFloor struct {
	FloorRegistryEntry
	AreasSlug []string `json:"areas_slug"`
}

func (f *StrategyFloor) IsUndisclosed() bool {
	return f.FloorID == UndisclosedID
}

// MagicAreaDevice is the aggregate device the Magic Areas integration creates per area.
// Entities is keyed by the entity's translation key (its role).
type MagicAreaDevice struct {
	DeviceID string                     `json:"device_id"`
	AreaID   string                     `json:"area_id,omitempty"`
	Slug     string                     `json:"slug"`
	Entities map[string]*StrategyEntity `json:"entities"`
}

// EntityID returns the entity playing role, or "".
func (m *MagicAreaDevice) EntityID(role string) string {
	if m == nil {
		return ""
	}
	if e, ok := m.Entities[role]; ok {
		return e.EntityID
	}
	return ""
}
