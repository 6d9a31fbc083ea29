package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/flatwatch/flatwatch/internal/subscriber/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p ServiceParam) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("subscriber.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Subscriber, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidEmail
	}
	if req.MaxPrice <= 0 || req.MaxRadius <= 0 {
		return nil, domain.ErrInvalidRegion
	}

	sub := &domain.Subscriber{
		ID:        s.genID.Generate(),
		Email:     email,
		Lat:       req.Lat,
		Lon:       req.Lon,
		MaxPrice:  req.MaxPrice,
		MaxRadius: req.MaxRadius,
	}
	if err := s.repo.Insert(ctx, s.db, sub); err != nil {
		return nil, err
	}

	s.log.Info("subscriber added",
		zap.String("email", email),
		zap.Int("max_price", req.MaxPrice),
		zap.Int("max_radius", req.MaxRadius),
	)
	return sub, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Subscriber, error) {
	return s.repo.List(ctx, s.db)
}
