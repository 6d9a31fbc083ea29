package domain

import (
	"context"
	"errors"
)

// Service answers current-offer queries for the frontend map.
type Service interface {
	List(ctx context.Context, filter ListFilter) ([]Offer, error)
}

// ListFilter bounds a current-offers query. Limit is required.
type ListFilter struct {
	Rooms    []int      `json:"rooms"`
	MaxPrice float64    `json:"maxPrice"`
	Lat      [2]float64 `json:"lat"`
	Lon      [2]float64 `json:"lon"`
	Limit    int        `json:"limit"`
}

var (
	ErrMissingLimit = errors.New("missing_limit")
	ErrMissingRooms = errors.New("missing_rooms")
)
