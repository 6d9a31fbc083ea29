// Package meta is a small key-value store over the meta table, used for
// internal bookkeeping such as the scheduler's daily snapshot stamp.
package meta

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Get returns the most recent value for key, or "" when the key was never
// set.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var values []string
	err := s.db.WithContext(ctx).
		Table("meta").
		Where("k = ?", key).
		Order("ts DESC").
		Limit(1).
		Pluck("v", &values).Error
	if err != nil {
		return "", err
	}
	if len(values) == 0 {
		return "", nil
	}
	return values[0], nil
}

func (s *Store) Set(ctx context.Context, key, value string, now time.Time) error {
	return s.db.WithContext(ctx).Exec(
		`INSERT INTO meta (ts, k, v) VALUES (?, ?, ?)`,
		now,
		key,
		value,
	).Error
}
