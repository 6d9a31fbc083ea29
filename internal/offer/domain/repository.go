package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Repository persists current offers and the canonical registry. Methods
// take the database handle explicitly so the merge orchestrator can pass a
// transaction.
type Repository interface {
	ListBySource(ctx context.Context, db *gorm.DB, sourceName string) ([]CurrentOffer, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]CurrentOffer, error)
	Insert(ctx context.Context, db *gorm.DB, rows []CurrentOffer) error
	Update(ctx context.Context, db *gorm.DB, sourceName string, ts time.Time, o Offer) error
	Delete(ctx context.Context, db *gorm.DB, sourceName string, ids []string) error

	KnownIDs(ctx context.Context, db *gorm.DB) (map[string]struct{}, error)
	InsertCanonical(ctx context.Context, db *gorm.DB, rows []CanonicalOffer) error
}
