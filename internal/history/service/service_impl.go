package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/flatwatch/flatwatch/internal/clock"
	"github.com/flatwatch/flatwatch/internal/history/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p ServiceParam) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("history.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) SaveDailySnapshot(ctx context.Context) (time.Time, error) {
	ts := s.clock.Now()
	if err := s.repo.InsertPriceSnapshots(ctx, s.db, ts); err != nil {
		return time.Time{}, fmt.Errorf("save price snapshot: %w", err)
	}
	return ts, nil
}

func (s *Service) GenerateSquares(ctx context.Context, ts time.Time) (domain.GenerateResult, error) {
	exists, err := s.repo.SquaresExist(ctx, s.db, ts)
	if err != nil {
		return domain.GenerateResult{}, err
	}
	if exists {
		return domain.GenerateResult{AlreadyExists: true}, nil
	}

	offers, err := s.repo.JoinedOffers(ctx, s.db, ts)
	if err != nil {
		return domain.GenerateResult{}, err
	}

	type cell struct{ x, y int }
	squares := make(map[cell]*domain.HistorySquare)
	order := make([]cell, 0)
	for _, o := range offers {
		x, y := domain.CellOf(o.Lat, o.Lon)
		key := cell{x, y}
		sq, ok := squares[key]
		if !ok {
			sq = &domain.HistorySquare{TS: ts, X: x, Y: y}
			squares[key] = sq
			order = append(order, key)
		}
		sq.Sum += o.Price
		sq.Count++
	}

	rows := make([]domain.HistorySquare, 0, len(order))
	for _, key := range order {
		rows = append(rows, *squares[key])
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.InsertSquares(ctx, tx, rows)
	})
	if err != nil {
		return domain.GenerateResult{}, fmt.Errorf("insert squares: %w", err)
	}

	return domain.GenerateResult{Created: len(rows)}, nil
}

func (s *Service) Query(ctx context.Context, filter domain.QueryFilter) ([]domain.Point, error) {
	x1, y1 := domain.CellOf(filter.Lat[0], filter.Lon[0])
	x2, y2 := domain.CellOf(filter.Lat[1], filter.Lon[1])

	rows, err := s.repo.SquaresInRange(ctx, s.db, x1, x2, y1, y2)
	if err != nil {
		return nil, err
	}

	byTS := make(map[time.Time]*domain.Point)
	for _, row := range rows {
		p, ok := byTS[row.TS]
		if !ok {
			p = &domain.Point{TS: row.TS}
			byTS[row.TS] = p
		}
		p.Price += row.Sum
		p.Count += row.Count
	}

	points := make([]domain.Point, 0, len(byTS))
	for _, p := range byTS {
		if p.Count > 0 {
			p.Price = p.Price / float64(p.Count)
		}
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].TS.Before(points[j].TS)
	})
	return points, nil
}
