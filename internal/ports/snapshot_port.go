package ports

import (
	"context"
	"dashboard-strategy/internal/domain/model"
)

// SnapshotSource delivers one in-memory copy of the smart home registries.
type SnapshotSource interface {
	Fetch(ctx context.Context) (*model.Snapshot, error)
}
