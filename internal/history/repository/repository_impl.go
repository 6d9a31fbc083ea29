package repository

import (
	"context"
	"time"

	"github.com/flatwatch/flatwatch/internal/history/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertPriceSnapshots(ctx context.Context, db *gorm.DB, ts time.Time) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO price_snapshots (ts, id, price, original_price)
		 SELECT ?, c.id, c.price, c.original_price FROM current_offers c`,
		ts,
	).Error
}

func (r *repo) SquaresExist(ctx context.Context, db *gorm.DB, ts time.Time) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.HistorySquare{}).
		Where("ts = ?", ts).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) JoinedOffers(ctx context.Context, db *gorm.DB, ts time.Time) ([]domain.JoinedOffer, error) {
	var rows []domain.JoinedOffer
	err := db.WithContext(ctx).Raw(
		`SELECT p.id AS id, p.price AS price, o.lat AS lat, o.lon AS lon
		 FROM price_snapshots p
		 JOIN offers o ON o.id = p.id
		 WHERE p.ts = ?`,
		ts,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) InsertSquares(ctx context.Context, db *gorm.DB, rows []domain.HistorySquare) error {
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&rows).Error
}

func (r *repo) SquaresInRange(ctx context.Context, db *gorm.DB, x1, x2, y1, y2 int) ([]domain.HistorySquare, error) {
	var rows []domain.HistorySquare
	err := db.WithContext(ctx).Raw(
		`SELECT ts, x, y, sum, count FROM history_squares
		 WHERE x BETWEEN ? AND ? AND y BETWEEN ? AND ?`,
		x1, x2, y1, y2,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
