package registry

import (
	"context"
	"dashboard-strategy/internal/domain/model"
	"dashboard-strategy/internal/ports"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

const (
	MagicAreasManufacturer = "Magic Areas"
	LinusBrainManufacturer = "Linus Brain"

	undisclosedName = "Undisclosed"
)

// Store owns the registry state of one dashboard. Initialize replaces the whole
// state atomically; readers keep the *State they obtained.
type Store struct {
	logger *zap.Logger

	mu    sync.RWMutex
	state *State
}

func New(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{logger: logger.Named("registry")}
}

func (s *Store) IsInitialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state != nil
}

// State returns the current state or ErrNotInitialized.
func (s *Store) State() (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return nil, ErrNotInitialized
	}
	return s.state, nil
}

// Initialize normalizes snap into a new State. On failure the store is left
// uninitialized; a partially built state is never published.
func (s *Store) Initialize(snap *model.Snapshot, options *model.StrategyOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = nil
	st, err := build(snap, options, s.logger)
	if err != nil {
		return err
	}
	s.state = st

	s.logger.Debug("registry initialized",
		zap.Int("entities", len(st.entities)),
		zap.Int("devices", len(st.devices)),
		zap.Int("areas", len(st.areas)),
		zap.Int("floors", len(st.floors)),
		zap.Int("magic_areas", len(st.magicAreas)),
		zap.Bool("linus_brain", st.linusBrain),
	)
	return nil
}

// Refresh fetches a fresh snapshot and re-initializes with options. A failed
// fetch leaves the store uninitialized.
func (s *Store) Refresh(ctx context.Context, source ports.SnapshotSource, options *model.StrategyOptions) error {
	snap, err := source.Fetch(ctx)
	if err != nil {
		s.mu.Lock()
		s.state = nil
		s.mu.Unlock()
		return fmt.Errorf("fetching registries: %w", err)
	}
	return s.Initialize(snap, options)
}

func build(snap *model.Snapshot, options *model.StrategyOptions, logger *zap.Logger) (*State, error) {
	if err := validate(snap); err != nil {
		return nil, err
	}
	if options == nil {
		options = &model.StrategyOptions{}
	}

	st := &State{
		Options:    options,
		states:     snap.States,
		entityByID: make(map[string]*model.StrategyEntity, len(snap.Entities)),
		byDomain:   make(map[string][]*model.StrategyEntity),
		deviceByID: make(map[string]*model.StrategyDevice, len(snap.Devices)),
		areaByID:   make(map[string]*model.StrategyArea, len(snap.Areas)+1),
		areaBySlug: make(map[string]*model.StrategyArea, len(snap.Areas)+1),
		floorByID:  make(map[string]*model.StrategyFloor, len(snap.Floors)+1),
		magicAreas: make(map[string]*model.MagicAreaDevice),
	}

	st.normalizeEntities(snap.Entities)
	st.normalizeDevices(snap.Devices)
	st.normalizeAreas(snap.Areas, options, logger)
	st.buildMagicAreas(logger)
	st.normalizeFloors(snap.Floors)
	st.inheritFloors()
	return st, nil
}

func validate(snap *model.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: snapshot is nil", ErrInvalidSnapshot)
	}
	switch {
	case snap.States == nil:
		return fmt.Errorf("%w: states missing", ErrInvalidSnapshot)
	case snap.Entities == nil:
		return fmt.Errorf("%w: entity registry missing", ErrInvalidSnapshot)
	case snap.Devices == nil:
		return fmt.Errorf("%w: device registry missing", ErrInvalidSnapshot)
	case snap.Areas == nil:
		return fmt.Errorf("%w: area registry missing", ErrInvalidSnapshot)
	}

	seen := make(map[string]struct{}, len(snap.Entities))
	for i, e := range snap.Entities {
		if model.Domain(e.EntityID) == "" {
			return fmt.Errorf("%w: entity %d has malformed id %q", ErrInvalidSnapshot, i, e.EntityID)
		}
		if _, dup := seen[e.EntityID]; dup {
			return fmt.Errorf("%w: duplicate entity id %q", ErrInvalidSnapshot, e.EntityID)
		}
		seen[e.EntityID] = struct{}{}
	}

	areaIDs := make(map[string]struct{}, len(snap.Areas))
	for i, a := range snap.Areas {
		if a.AreaID == "" || a.AreaID == model.UndisclosedID {
			return fmt.Errorf("%w: area %d has reserved or empty id %q", ErrInvalidSnapshot, i, a.AreaID)
		}
		if _, dup := areaIDs[a.AreaID]; dup {
			return fmt.Errorf("%w: duplicate area id %q", ErrInvalidSnapshot, a.AreaID)
		}
		areaIDs[a.AreaID] = struct{}{}
	}

	for i, d := range snap.Devices {
		if d.ID == "" {
			return fmt.Errorf("%w: device %d has no id", ErrInvalidSnapshot, i)
		}
	}
	return nil
}

func (st *State) normalizeEntities(raw []model.EntityRegistryEntry) {
	st.entities = make([]*model.StrategyEntity, 0, len(raw))
	for _, r := range raw {
		e := &model.StrategyEntity{EntityRegistryEntry: r}
		st.entities = append(st.entities, e)
		st.entityByID[e.EntityID] = e
		st.byDomain[e.Domain()] = append(st.byDomain[e.Domain()], e)
	}
}

func (st *State) normalizeDevices(raw []model.DeviceRegistryEntry) {
	st.devices = make([]*model.StrategyDevice, 0, len(raw))
	for _, r := range raw {
		d := &model.StrategyDevice{DeviceRegistryEntry: r, Entities: []string{}}
		st.devices = append(st.devices, d)
		st.deviceByID[d.ID] = d
		if r.Manufacturer == LinusBrainManufacturer {
			st.linusBrain = true
		}
	}
	for _, e := range st.entities {
		if d, ok := st.deviceByID[e.DeviceID]; ok {
			d.Entities = append(d.Entities, e.EntityID)
		}
	}
}

// buildMagicAreas groups each Magic Areas device's entities by translation key
// and files the device under the slug of its area. A device without a known
// area falls back to the slug of its name. A repeated role overwrites the
// earlier entity; a second device for the same slug is dropped. Both are logged.
func (st *State) buildMagicAreas(logger *zap.Logger) {
	for _, d := range st.devices {
		if d.Manufacturer != MagicAreasManufacturer {
			continue
		}
		slug := Slugify(d.DisplayName())
		if a, ok := st.areaByID[d.AreaID]; ok && d.AreaID != "" {
			slug = a.Slug
		}
		if slug == "" {
			logger.Warn("magic areas device has no area", zap.String("device", d.ID))
			continue
		}
		if prev, taken := st.magicAreas[slug]; taken {
			logger.Warn("magic areas device already registered for area, ignoring it",
				zap.String("area", slug),
				zap.String("previous", prev.DeviceID),
				zap.String("device", d.ID),
			)
			continue
		}
		magic := &model.MagicAreaDevice{
			DeviceID: d.ID,
			AreaID:   d.AreaID,
			Slug:     slug,
			Entities: make(map[string]*model.StrategyEntity),
		}
		for _, id := range d.Entities {
			e := st.entityByID[id]
			if e.TranslationKey == "" {
				continue
			}
			if prev, dup := magic.Entities[e.TranslationKey]; dup {
				logger.Warn("magic area role defined twice, keeping the last entity",
					zap.String("area", slug),
					zap.String("role", e.TranslationKey),
					zap.String("previous", prev.EntityID),
					zap.String("entity", e.EntityID),
				)
			}
			magic.Entities[e.TranslationKey] = e
		}
		st.magicAreas[slug] = magic
	}
}

func (st *State) normalizeAreas(raw []model.AreaRegistryEntry, options *model.StrategyOptions, logger *zap.Logger) {
	areas := make([]*model.StrategyArea, 0, len(raw)+1)
	registryNames := make(map[string]string, len(raw))
	for _, r := range raw {
		areas = append(areas, st.newArea(r, options))
		registryNames[r.AreaID] = r.Name
	}
	undisclosed := st.newArea(model.AreaRegistryEntry{
		AreaID: model.UndisclosedID,
		Name:   undisclosedName,
		Icon:   model.UndisclosedIcon,
	}, options)

	// the synthetic area owns its slug before registry areas are slugged
	undisclosed.Slug = model.UndisclosedID
	st.areaByID[undisclosed.AreaID] = undisclosed
	st.areaBySlug[undisclosed.Slug] = undisclosed
	for _, a := range areas {
		a.Slug = st.uniqueSlug(a.AreaID, registryNames[a.AreaID], logger)
		st.areaByID[a.AreaID] = a
		st.areaBySlug[a.Slug] = a
	}

	for _, d := range st.devices {
		owner := undisclosed
		if a, ok := st.areaByID[d.AreaID]; ok && d.AreaID != "" {
			owner = a
		}
		owner.Devices = append(owner.Devices, d.ID)
	}
	for _, e := range st.entities {
		owner := st.areaByID[st.AreaID(e)]
		owner.Entities = append(owner.Entities, e.EntityID)
		owner.Domains[e.Domain()] = append(owner.Domains[e.Domain()], e)
	}

	sort.SliceStable(areas, func(i, j int) bool {
		oi, oj := areas[i].Order, areas[j].Order
		switch {
		case oi == nil:
			return false
		case oj == nil:
			return true
		}
		return *oi < *oj
	})
	st.areas = append(areas, undisclosed)
}

func (st *State) newArea(r model.AreaRegistryEntry, options *model.StrategyOptions) *model.StrategyArea {
	a := &model.StrategyArea{
		AreaRegistryEntry: r,
		Domains:           make(map[string][]*model.StrategyEntity),
		Entities:          []string{},
		Devices:           []string{},
	}
	o := options.Area(r.AreaID)
	if o.Name != "" {
		a.Name = o.Name
	}
	if o.Icon != "" {
		a.Icon = o.Icon
	}
	a.Order = o.Order
	a.Hidden = model.BoolValue(o.Hidden, false)
	return a
}

// uniqueSlug slugs the registry name of the area, so a display name override
// never moves it. A slug already taken falls back to the area id, then to a
// numeric suffix; areas are never merged.
func (st *State) uniqueSlug(areaID, name string, logger *zap.Logger) string {
	candidates := []string{Slugify(name), Slugify(areaID)}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, taken := st.areaBySlug[c]; !taken {
			return c
		}
		logger.Warn("area slug collision", zap.String("area_id", areaID), zap.String("slug", c))
	}
	base := Slugify(areaID)
	if base == "" {
		base = "area"
	}
	for i := 2; ; i++ {
		c := base + "_" + strconv.Itoa(i)
		if _, taken := st.areaBySlug[c]; !taken {
			return c
		}
	}
}

func (st *State) normalizeFloors(raw []model.FloorRegistryEntry) {
	floors := make([]*model.StrategyFloor, 0, len(raw)+1)
	for _, r := range raw {
		if r.FloorID == "" || r.FloorID == model.UndisclosedID {
			continue
		}
		if _, dup := st.floorByID[r.FloorID]; dup {
			continue
		}
		f := &model.StrategyFloor{FloorRegistryEntry: r, AreasSlug: []string{}}
		floors = append(floors, f)
		st.floorByID[f.FloorID] = f
	}
	undisclosed := &model.StrategyFloor{
		FloorRegistryEntry: model.FloorRegistryEntry{
			FloorID: model.UndisclosedID,
			Name:    undisclosedName,
			Icon:    model.UndisclosedIcon,
		},
		AreasSlug: []string{},
	}

	for _, a := range st.areas {
		if a.IsUndisclosed() {
			continue
		}
		if f, ok := st.floorByID[a.FloorID]; ok {
			f.AreasSlug = append(f.AreasSlug, a.Slug)
			continue
		}
		undisclosed.AreasSlug = append(undisclosed.AreasSlug, a.Slug)
	}
	undisclosed.AreasSlug = append(undisclosed.AreasSlug, model.UndisclosedID)

	sort.SliceStable(floors, func(i, j int) bool {
		li, lj := floors[i].Level, floors[j].Level
		switch {
		case li == nil:
			return false
		case lj == nil:
			return true
		}
		return *li < *lj
	})
	st.floors = append(floors, undisclosed)
	st.floorByID[undisclosed.FloorID] = undisclosed
}

func (st *State) inheritFloors() {
	floorOf := make(map[string]string, len(st.areas))
	for _, f := range st.floors {
		for _, slug := range f.AreasSlug {
			if a, ok := st.areaBySlug[slug]; ok {
				floorOf[a.AreaID] = f.FloorID
			}
		}
	}
	for _, d := range st.devices {
		if d.AreaID != "" {
			d.FloorID = realFloor(floorOf[d.AreaID])
		}
	}
	for _, e := range st.entities {
		e.FloorID = realFloor(floorOf[st.AreaID(e)])
	}
}

// realFloor hides the synthetic floor id from entity and device records.
func realFloor(id string) string {
	if id == model.UndisclosedID {
		return ""
	}
	return id
}
