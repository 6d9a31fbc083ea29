package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Subscriber is one interest region for one email address. The same email
// may appear multiple times with different regions.
type Subscriber struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Email     string       `gorm:"type:varchar(100);not null"`
	Lat       float64      `gorm:"not null"`
	Lon       float64      `gorm:"not null"`
	MaxPrice  int          `gorm:"column:max_price;not null"`
	MaxRadius int          `gorm:"column:max_radius;not null"`
}

func (Subscriber) TableName() string { return "subscribers" }

type CreateRequest struct {
	Email     string  `json:"email"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	MaxPrice  int     `json:"maxPrice"`
	MaxRadius int     `json:"maxRadius"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Subscriber, error)
	List(ctx context.Context) ([]Subscriber, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, sub *Subscriber) error
	List(ctx context.Context, db *gorm.DB) ([]Subscriber, error)
}

var (
	ErrInvalidEmail  = errors.New("invalid_email")
	ErrInvalidRegion = errors.New("invalid_region")
)
