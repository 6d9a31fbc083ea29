package service

import (
	"context"

	"github.com/flatwatch/flatwatch/internal/offer/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p ServiceParam) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("offer.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]domain.Offer, error) {
	if filter.Limit <= 0 {
		return nil, domain.ErrMissingLimit
	}
	if len(filter.Rooms) == 0 {
		return nil, domain.ErrMissingRooms
	}

	rows, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	offers := make([]domain.Offer, 0, len(rows))
	for _, row := range rows {
		offers = append(offers, row.Offer())
	}
	return offers, nil
}
