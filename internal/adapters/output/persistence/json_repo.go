package persistence

import (
	"context"
	"dashboard-strategy/internal/domain/model"
	"dashboard-strategy/internal/ports"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/samber/lo"
)

var _ ports.SnapshotSource = (*JSONSnapshotRepository)(nil)

// JSONSnapshotRepository reads registries dumped to one JSON file.
type JSONSnapshotRepository struct {
	filepath string
	mu       sync.RWMutex
}

// Internal structure so both states layouts decode
type snapshotFile struct {
	States   json.RawMessage             `json:"states"`
	Entities []model.EntityRegistryEntry `json:"entities"`
	Devices  []model.DeviceRegistryEntry `json:"devices"`
	Areas    []model.AreaRegistryEntry   `json:"areas"`
	Floors   []model.FloorRegistryEntry  `json:"floors"`
}

func NewJSONSnapshotRepository(filepath string) *JSONSnapshotRepository {
	return &JSONSnapshotRepository{filepath: filepath}
}

func (r *JSONSnapshotRepository) Fetch(ctx context.Context) (*model.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.filepath)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot file: %w", err)
	}

	var raw snapshotFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding snapshot file: %w", err)
	}
	states, err := decodeStates(raw.States)
	if err != nil {
		return nil, err
	}
	return &model.Snapshot{
		States:   states,
		Entities: raw.Entities,
		Devices:  raw.Devices,
		Areas:    raw.Areas,
		Floors:   raw.Floors,
	}, nil
}

// decodeStates accepts states keyed by entity id, or the plain list that the
// REST states endpoint returns.
func decodeStates(raw json.RawMessage) (map[string]model.EntityState, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var byID map[string]model.EntityState
	if err := json.Unmarshal(raw, &byID); err == nil {
		for id, st := range byID {
			if st.EntityID == "" {
				st.EntityID = id
				byID[id] = st
			}
		}
		return byID, nil
	}

	var list []model.EntityState
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decoding states: %w", err)
	}
	return lo.Associate(list, func(st model.EntityState) (string, model.EntityState) {
		return st.EntityID, st
	}), nil
}

// Save writes snap in the keyed layout.
func (r *JSONSnapshotRepository) Save(ctx context.Context, snap *model.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(r.filepath, data, 0644)
}
