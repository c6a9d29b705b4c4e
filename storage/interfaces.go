package storage

import (
	"context"

	"apartment-watcher/models"
)

// ListingStore is the interface any state backend must satisfy. Load fails
// with models.ErrCorruptState and Save with models.ErrPersistence.
type ListingStore interface {
	Load(ctx context.Context) ([]models.Listing, error)
	Save(ctx context.Context, listings []models.Listing) error
	Close() error
}

// HistoryWriter records newly discovered listings outside the state store.
type HistoryWriter interface {
	Append(listings []models.Listing) error
	Close() error
}
