package domain

import (
	"context"
	"math"
	"time"

	"gorm.io/gorm"
)

// PriceSnapshot is one timestamped price observation for one offer,
// written in a batch by the daily snapshot job.
type PriceSnapshot struct {
	TS            time.Time `gorm:"column:ts;primaryKey;not null;index:ix_price_snapshots_ts"`
	ID            string    `gorm:"column:id;primaryKey;not null"`
	Price         float64   `gorm:"column:price;not null"`
	OriginalPrice string    `gorm:"column:original_price;type:varchar(1000);not null"`
}

func (PriceSnapshot) TableName() string { return "price_snapshots" }

// HistorySquare aggregates offer prices inside one grid cell at one
// snapshot timestamp.
type HistorySquare struct {
	TS    time.Time `gorm:"column:ts;not null;index:ix_history_squares_ts_x_y,priority:1"`
	X     int       `gorm:"column:x;not null;index:ix_history_squares_ts_x_y,priority:2"`
	Y     int       `gorm:"column:y;not null;index:ix_history_squares_ts_x_y,priority:3"`
	Sum   float64   `gorm:"column:sum;not null"`
	Count int       `gorm:"column:count;not null"`
}

func (HistorySquare) TableName() string { return "history_squares" }

// CellOf buckets coordinates into the fixed-size aggregation grid. One
// cell spans 0.01 degrees, roughly a kilometer of latitude. The fixed
// offsets shift the indices so the covered cities land on positive cells.
func CellOf(lat, lon float64) (x, y int) {
	x = int(math.Floor((lon + 90) * 100))
	y = int(math.Floor((lat + 180) * 100))
	return x, y
}

// QueryFilter bounds a trend query. Squares carry no per-price or
// per-rooms breakdown, so MaxPrice and Rooms do not narrow the result;
// they are accepted for API symmetry with the offers filter.
type QueryFilter struct {
	Lat      [2]float64 `json:"lat"`
	Lon      [2]float64 `json:"lon"`
	MaxPrice float64    `json:"maxPrice"`
	Rooms    []int      `json:"rooms"`
}

// Point is one trend sample: the average price and offer count over all
// matching cells at one snapshot timestamp.
type Point struct {
	TS    time.Time `json:"ts"`
	Price float64   `json:"price"`
	Count int       `json:"count"`
}

// GenerateResult reports what GenerateSquares did for one timestamp.
type GenerateResult struct {
	Created       int
	AlreadyExists bool
}

type Service interface {
	// SaveDailySnapshot copies all current offer prices into
	// price_snapshots under a fresh timestamp and returns it.
	SaveDailySnapshot(ctx context.Context) (time.Time, error)
	// GenerateSquares builds the grid aggregate for one snapshot
	// timestamp. Idempotent: re-runs short-circuit once squares exist.
	GenerateSquares(ctx context.Context, ts time.Time) (GenerateResult, error)
	Query(ctx context.Context, filter QueryFilter) ([]Point, error)
}

// JoinedOffer is a price snapshot row joined with the canonical registry,
// carrying the coordinates needed for bucketing.
type JoinedOffer struct {
	ID    string
	Price float64
	Lat   float64
	Lon   float64
}

type Repository interface {
	InsertPriceSnapshots(ctx context.Context, db *gorm.DB, ts time.Time) error
	SquaresExist(ctx context.Context, db *gorm.DB, ts time.Time) (bool, error)
	JoinedOffers(ctx context.Context, db *gorm.DB, ts time.Time) ([]JoinedOffer, error)
	InsertSquares(ctx context.Context, db *gorm.DB, rows []HistorySquare) error
	SquaresInRange(ctx context.Context, db *gorm.DB, x1, x2, y1, y2 int) ([]HistorySquare, error)
}
