package repository

import (
	"context"
	"time"

	"github.com/flatwatch/flatwatch/internal/offer/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListBySource(ctx context.Context, db *gorm.DB, sourceName string) ([]domain.CurrentOffer, error) {
	var rows []domain.CurrentOffer
	err := db.WithContext(ctx).Raw(
		`SELECT source_name, ts, id, lat, lon, price, original_price, rooms, url, address
		 FROM current_offers WHERE source_name = ?`,
		sourceName,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.CurrentOffer, error) {
	var rows []domain.CurrentOffer
	err := db.WithContext(ctx).
		Model(&domain.CurrentOffer{}).
		Where("price <= ?", filter.MaxPrice).
		Where("price > 0").
		Where("rooms IN ?", filter.Rooms).
		Where("lat BETWEEN ? AND ?", filter.Lat[0], filter.Lat[1]).
		Where("lon BETWEEN ? AND ?", filter.Lon[0], filter.Lon[1]).
		Limit(filter.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rows []domain.CurrentOffer) error {
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&rows).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, sourceName string, ts time.Time, o domain.Offer) error {
	return db.WithContext(ctx).Exec(
		`UPDATE current_offers
		 SET ts = ?, price = ?, rooms = ?, address = ?, url = ?, lat = ?, lon = ?, original_price = ?
		 WHERE source_name = ? AND id = ?`,
		ts,
		o.Price,
		o.Rooms,
		o.Address,
		o.URL,
		o.Lat,
		o.Lon,
		o.OriginalPrice,
		sourceName,
		o.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, sourceName string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`DELETE FROM current_offers WHERE source_name = ? AND id IN ?`,
		sourceName,
		ids,
	).Error
}

func (r *repo) KnownIDs(ctx context.Context, db *gorm.DB) (map[string]struct{}, error) {
	var ids []string
	if err := db.WithContext(ctx).Model(&domain.CanonicalOffer{}).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}
	return known, nil
}

func (r *repo) InsertCanonical(ctx context.Context, db *gorm.DB, rows []domain.CanonicalOffer) error {
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&rows).Error
}
