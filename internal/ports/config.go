package ports

import (
	"context"
	"dashboard-strategy/internal/domain/model"
)

type OptionsRepository interface {
	Get(ctx context.Context) (*model.StrategyOptions, error)
	Save(ctx context.Context, options *model.StrategyOptions) error
}
