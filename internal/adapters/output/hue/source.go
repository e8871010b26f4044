package hue

import (
	"context"
	"dashboard-strategy/internal/domain/model"
	"dashboard-strategy/internal/domain/registry"
	"dashboard-strategy/internal/ports"
	"fmt"
	"strconv"
	"strings"

	"github.com/amimof/huego"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Platform tags every entity this source produces.
const Platform = "hue"

var roomIcons = map[string]string{
	"Living room":  "mdi:sofa",
	"Kitchen":      "mdi:stove",
	"Dining":       "mdi:silverware-fork-knife",
	"Bedroom":      "mdi:bed",
	"Kids bedroom": "mdi:teddy-bear",
	"Bathroom":     "mdi:shower",
	"Office":       "mdi:desk",
	"Hallway":      "mdi:door",
	"Garage":       "mdi:garage",
	"Garden":       "mdi:flower",
	"Terrace":      "mdi:table-chair",
}

// Bridge is the part of the Hue API the source reads.
type Bridge interface {
	GetLightsContext(ctx context.Context) ([]huego.Light, error)
	GetGroupsContext(ctx context.Context) ([]huego.Group, error)
	GetSensorsContext(ctx context.Context) ([]huego.Sensor, error)
}

var _ ports.SnapshotSource = (*Source)(nil)

// Source builds registries from a Hue bridge: rooms become areas, lights and
// supported sensors become entities.
type Source struct {
	bridge      Bridge
	translators *Factory
	logger      *zap.Logger
}

func NewSource(host, user string, logger *zap.Logger) *Source {
	return NewSourceWithBridge(huego.New(host, user), logger)
}

func NewSourceWithBridge(bridge Bridge, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{
		bridge:      bridge,
		translators: NewFactory(),
		logger:      logger.Named("hue"),
	}
}

func (s *Source) Fetch(ctx context.Context) (*model.Snapshot, error) {
	var (
		lights  []huego.Light
		groups  []huego.Group
		sensors []huego.Sensor
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		lights, err = s.bridge.GetLightsContext(gctx)
		return wrap("lights", err)
	})
	g.Go(func() (err error) {
		groups, err = s.bridge.GetGroupsContext(gctx)
		return wrap("groups", err)
	})
	g.Go(func() (err error) {
		sensors, err = s.bridge.GetSensorsContext(gctx)
		return wrap("sensors", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b := newSnapshotBuilder()
	lightRoom := b.addRooms(groups)
	for _, l := range lights {
		b.addLight(l, lightRoom[strconv.Itoa(l.ID)], s.translators.GetLightTranslator(l.Type))
	}
	for _, sensor := range sensors {
		t, ok := s.translators.GetSensorTranslator(sensor.Type)
		if !ok {
			s.logger.Debug("skipping sensor", zap.String("name", sensor.Name), zap.String("type", sensor.Type))
			continue
		}
		b.addSensor(sensor, t)
	}

	s.logger.Debug("bridge read",
		zap.Int("lights", len(lights)),
		zap.Int("rooms", len(b.snap.Areas)),
		zap.Int("entities", len(b.snap.Entities)),
	)
	return b.snap, nil
}

func wrap(resource string, err error) error {
	if err != nil {
		return fmt.Errorf("reading hue %s: %w", resource, err)
	}
	return nil
}

type snapshotBuilder struct {
	snap    *model.Snapshot
	ids     map[string]bool
	devices map[string]bool
}

func newSnapshotBuilder() *snapshotBuilder {
	return &snapshotBuilder{
		snap: &model.Snapshot{
			States:   map[string]model.EntityState{},
			Entities: []model.EntityRegistryEntry{},
			Devices:  []model.DeviceRegistryEntry{},
			Areas:    []model.AreaRegistryEntry{},
		},
		ids:     map[string]bool{},
		devices: map[string]bool{},
	}
}

// addRooms registers every Room group as an area and returns the area of each light id.
func (b *snapshotBuilder) addRooms(groups []huego.Group) map[string]string {
	lightRoom := map[string]string{}
	for _, g := range groups {
		if g.Type != "Room" {
			continue
		}
		areaID := fmt.Sprintf("hue_room_%d", g.ID)
		b.snap.Areas = append(b.snap.Areas, model.AreaRegistryEntry{
			AreaID: areaID,
			Name:   g.Name,
			Icon:   roomIcons[g.Class],
		})
		for _, id := range g.Lights {
			lightRoom[id] = areaID
		}
	}
	return lightRoom
}

func (b *snapshotBuilder) addLight(l huego.Light, areaID string, t LightTranslator) {
	deviceID := l.UniqueID
	if deviceID == "" {
		deviceID = fmt.Sprintf("hue_light_%d", l.ID)
	}
	b.addDevice(model.DeviceRegistryEntry{
		ID:           deviceID,
		AreaID:       areaID,
		Manufacturer: l.ManufacturerName,
		Model:        l.ModelID,
		Name:         l.Name,
	})
	b.addEntity(t.FromLight(l), l.Name, deviceID, "")
}

func (b *snapshotBuilder) addSensor(s huego.Sensor, t SensorTranslator) {
	// one physical sensor exposes several resources sharing the MAC prefix
	deviceID, _, _ := strings.Cut(s.UniqueID, "-")
	if deviceID == "" {
		deviceID = fmt.Sprintf("hue_sensor_%d", s.ID)
	}
	first := b.addDevice(model.DeviceRegistryEntry{
		ID:           deviceID,
		Manufacturer: s.ManufacturerName,
		Model:        s.ModelID,
		Name:         s.Name,
	})
	b.addEntity(t.FromSensor(s), s.Name, deviceID, "")

	battery, ok := s.Config["battery"].(float64)
	if first && ok {
		b.addEntity(Reading{
			Domain: "sensor",
			State:  strconv.Itoa(int(battery)),
			Attributes: map[string]interface{}{
				"device_class":        "battery",
				"unit_of_measurement": "%",
			},
		}, s.Name+" battery", deviceID, "diagnostic")
	}
}

func (b *snapshotBuilder) addDevice(d model.DeviceRegistryEntry) bool {
	if b.devices[d.ID] {
		return false
	}
	b.devices[d.ID] = true
	b.snap.Devices = append(b.snap.Devices, d)
	return true
}

func (b *snapshotBuilder) addEntity(r Reading, name, deviceID, category string) {
	entityID := b.entityID(r.Domain, name)
	attrs := r.Attributes
	if attrs == nil {
		attrs = map[string]interface{}{}
	}
	attrs["friendly_name"] = name

	b.snap.Entities = append(b.snap.Entities, model.EntityRegistryEntry{
		EntityID:       entityID,
		OriginalName:   name,
		DeviceID:       deviceID,
		EntityCategory: category,
		Platform:       Platform,
	})
	b.snap.States[entityID] = model.EntityState{
		EntityID:   entityID,
		State:      r.State,
		Attributes: attrs,
	}
}

func (b *snapshotBuilder) entityID(domain, name string) string {
	base := registry.Slugify(name)
	if base == "" {
		base = Platform
	}
	id := domain + "." + base
	for n := 2; b.ids[id]; n++ {
		id = fmt.Sprintf("%s.%s_%d", domain, base, n)
	}
	b.ids[id] = true
	return id
}
