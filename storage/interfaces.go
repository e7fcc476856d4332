package storage

import (
	"context"

	"umico-analytics/models"
)

// SnapshotWriter is the interface any snapshot backend must satisfy.
// Write replaces the stored snapshot with the given listings.
type SnapshotWriter interface {
	Write(ctx context.Context, listings []*models.Listing) error
	Close() error
}

// SnapshotReader loads a previously stored snapshot for reporting.
type SnapshotReader interface {
	FetchAll(ctx context.Context) ([]*models.Listing, error)
	Close() error
}
