package persistence

import (
	"context"
	"dashboard-strategy/internal/domain/model"
	"dashboard-strategy/internal/ports"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

var _ ports.OptionsRepository = (*YAMLOptionsRepository)(nil)

// YAMLOptionsRepository keeps the strategy options in a YAML file. JSON files
// load as well since the keys match.
type YAMLOptionsRepository struct {
	filepath string
	mu       sync.RWMutex
}

func NewYAMLOptionsRepository(filepath string) *YAMLOptionsRepository {
	return &YAMLOptionsRepository{filepath: filepath}
}

func (r *YAMLOptionsRepository) Get(ctx context.Context) (*model.StrategyOptions, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.StrategyOptions{}, nil
		}
		return nil, err
	}

	var opts model.StrategyOptions
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("decoding options file: %w", err)
	}
	return &opts, nil
}

func (r *YAMLOptionsRepository) Save(ctx context.Context, options *model.StrategyOptions) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := yaml.Marshal(options)
	if err != nil {
		return err
	}

	return os.WriteFile(r.filepath, data, 0644)
}
