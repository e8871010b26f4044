package ports

import (
	"context"
	"dashboard-strategy/internal/domain/model"
)

type DashboardPort interface {
	Generate(ctx context.Context) (*model.Dashboard, error)
	View(ctx context.Context, id string) (*model.View, error)
	Refresh(ctx context.Context) error

	GetOptions(ctx context.Context) (*model.StrategyOptions, error)
	UpdateOptions(ctx context.Context, options *model.StrategyOptions) error
}
