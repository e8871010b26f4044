package registry

import "dashboard-strategy/internal/domain/model"

// State is the derived, read-only view over one snapshot. A new generation pass
// builds a new State; nothing in it changes afterwards.
type State struct {
	Options *model.StrategyOptions

	states map[string]model.EntityState

	entities   []*model.StrategyEntity
	entityByID map[string]*model.StrategyEntity
	byDomain   map[string][]*model.StrategyEntity

	devices    []*model.StrategyDevice
	deviceByID map[string]*model.StrategyDevice

	areas      []*model.StrategyArea
	areaByID   map[string]*model.StrategyArea
	areaBySlug map[string]*model.StrategyArea

	floors    []*model.StrategyFloor
	floorByID map[string]*model.StrategyFloor

	magicAreas map[string]*model.MagicAreaDevice
	linusBrain bool
}

func (s *State) EntityState(entityID string) (model.EntityState, bool) {
	st, ok := s.states[entityID]
	return st, ok
}

func (s *State) Entity(entityID string) (*model.StrategyEntity, bool) {
	e, ok := s.entityByID[entityID]
	return e, ok
}

// Entities returns every registry entity in registry order.
func (s *State) Entities() []*model.StrategyEntity {
	return s.entities
}

func (s *State) EntitiesByDomain(domain string) []*model.StrategyEntity {
	return s.byDomain[domain]
}

func (s *State) Device(deviceID string) (*model.StrategyDevice, bool) {
	d, ok := s.deviceByID[deviceID]
	return d, ok
}

// Areas returns every area in display order, Undisclosed last.
func (s *State) Areas() []*model.StrategyArea {
	return s.areas
}

func (s *State) Area(areaID string) (*model.StrategyArea, bool) {
	a, ok := s.areaByID[areaID]
	return a, ok
}

func (s *State) AreaBySlug(slug string) (*model.StrategyArea, bool) {
	a, ok := s.areaBySlug[slug]
	return a, ok
}

// Floors returns every floor by ascending level, Undisclosed last.
func (s *State) Floors() []*model.StrategyFloor {
	return s.floors
}

// FloorAreas resolves the floor's area slugs in order.
func (s *State) FloorAreas(floor *model.StrategyFloor) []*model.StrategyArea {
	out := make([]*model.StrategyArea, 0, len(floor.AreasSlug))
	for _, slug := range floor.AreasSlug {
		if a, ok := s.areaBySlug[slug]; ok {
			out = append(out, a)
		}
	}
	return out
}

// MagicArea returns the Magic Areas device for an area slug, or nil.
func (s *State) MagicArea(slug string) *model.MagicAreaDevice {
	return s.magicAreas[slug]
}

// HasLinusBrain reports whether a Linus Brain device exists in the device registry.
func (s *State) HasLinusBrain() bool {
	return s.linusBrain
}

// AreaID returns the area the entity effectively belongs to: its own area,
// else its device's area, else the Undisclosed Area.
// References to unknown areas count as unassigned.
func (s *State) AreaID(e *model.StrategyEntity) string {
	id := e.AreaID
	if id == "" {
		if d, ok := s.deviceByID[e.DeviceID]; ok {
			id = d.AreaID
		}
	}
	if _, known := s.areaByID[id]; id == "" || !known {
		return model.UndisclosedID
	}
	return id
}

// DisplayName is the registry name, else the friendly_name attribute, else the original name.
func (s *State) DisplayName(e *model.StrategyEntity) string {
	if e.Name != "" {
		return e.Name
	}
	if st, ok := s.states[e.EntityID]; ok {
		if n := st.Attribute("friendly_name"); n != "" {
			return n
		}
	}
	return e.OriginalName
}

// DeviceClass reads the live device_class attribute.
func (s *State) DeviceClass(entityID string) string {
	st, ok := s.states[entityID]
	if !ok {
		return ""
	}
	return st.Attribute("device_class")
}

// Provider hands out the current registry state.
type Provider interface {
	State() (*State, error)
}

// State lets a fixed *State serve as a Provider.
func (s *State) State() (*State, error) {
	if s == nil {
		return nil, ErrNotInitialized
	}
	return s, nil
}
