package repository

import (
	"context"

	"github.com/flatwatch/flatwatch/internal/subscriber/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, sub *domain.Subscriber) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO subscribers (id, email, lat, lon, max_price, max_radius)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sub.ID,
		sub.Email,
		sub.Lat,
		sub.Lon,
		sub.MaxPrice,
		sub.MaxRadius,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Subscriber, error) {
	var subs []domain.Subscriber
	err := db.WithContext(ctx).Raw(
		`SELECT id, email, lat, lon, max_price, max_radius FROM subscribers`,
	).Scan(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}
