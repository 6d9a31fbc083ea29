package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/flatwatch/flatwatch/internal/clock"
	"github.com/flatwatch/flatwatch/internal/history/domain"
	"github.com/flatwatch/flatwatch/internal/history/repository"
	offerdomain "github.com/flatwatch/flatwatch/internal/offer/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (domain.Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&offerdomain.CurrentOffer{},
		&offerdomain.CanonicalOffer{},
		&domain.PriceSnapshot{},
		&domain.HistorySquare{},
	))

	fakeClock := clock.NewFakeClock(time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC))
	svc := New(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: fakeClock,
		Repo:  repository.Provide(),
	})
	return svc, db, fakeClock
}

func seedOffer(t *testing.T, db *gorm.DB, id string, price, lat, lon float64) {
	t.Helper()
	o := offerdomain.Offer{
		ID:            id,
		Price:         price,
		OriginalPrice: fmt.Sprintf("%.0f dollars", price),
		Lat:           lat,
		Lon:           lon,
		Rooms:         1,
		Address:       "street name, 12",
		URL:           "https://www.example.com/" + id,
	}
	current := offerdomain.NewCurrentOffer("city1", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), o)
	require.NoError(t, db.Create(&current).Error)
	canonical := offerdomain.NewCanonicalOffer(o)
	require.NoError(t, db.Create(&canonical).Error)
}

func TestSaveDailySnapshot_CopiesCurrentPrices(t *testing.T) {
	svc, db, _ := setup(t)
	seedOffer(t, db, "1", 300, 10.005, 10.005)
	seedOffer(t, db, "2", 500, 10.005, 10.005)

	ts, err := svc.SaveDailySnapshot(context.Background())
	require.NoError(t, err)

	var rows []domain.PriceSnapshot
	require.NoError(t, db.Where("ts = ?", ts).Order("id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, float64(300), rows[0].Price)
	assert.Equal(t, "300 dollars", rows[0].OriginalPrice)
	assert.Equal(t, float64(500), rows[1].Price)
}

func TestGenerateSquares_BucketsByCell(t *testing.T) {
	svc, db, _ := setup(t)
	ctx := context.Background()

	// Two offers in one cell, one in a neighboring cell.
	seedOffer(t, db, "1", 300, 10.005, 10.005)
	seedOffer(t, db, "2", 500, 10.006, 10.006)
	seedOffer(t, db, "3", 900, 10.015, 10.015)

	ts, err := svc.SaveDailySnapshot(ctx)
	require.NoError(t, err)

	result, err := svc.GenerateSquares(ctx, ts)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.False(t, result.AlreadyExists)

	x, y := domain.CellOf(10.005, 10.005)
	var sq domain.HistorySquare
	require.NoError(t, db.Where("x = ? AND y = ?", x, y).First(&sq).Error)
	assert.Equal(t, float64(800), sq.Sum)
	assert.Equal(t, 2, sq.Count)
}

func TestGenerateSquares_Idempotent(t *testing.T) {
	svc, db, _ := setup(t)
	ctx := context.Background()
	seedOffer(t, db, "1", 300, 10.005, 10.005)

	ts, err := svc.SaveDailySnapshot(ctx)
	require.NoError(t, err)

	first, err := svc.GenerateSquares(ctx, ts)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)

	second, err := svc.GenerateSquares(ctx, ts)
	require.NoError(t, err)
	assert.True(t, second.AlreadyExists)
	assert.Zero(t, second.Created)

	var count int64
	require.NoError(t, db.Model(&domain.HistorySquare{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestQuery_AveragesPerTimestampInAscendingOrder(t *testing.T) {
	svc, db, fakeClock := setup(t)
	ctx := context.Background()

	seedOffer(t, db, "1", 300, 10.005, 10.005)
	seedOffer(t, db, "2", 500, 10.015, 10.015)

	day1, err := svc.SaveDailySnapshot(ctx)
	require.NoError(t, err)
	_, err = svc.GenerateSquares(ctx, day1)
	require.NoError(t, err)

	// Next day the prices moved.
	require.NoError(t, db.Model(&offerdomain.CurrentOffer{}).Where("id = ?", "1").Update("price", 400).Error)
	fakeClock.Advance(24 * time.Hour)
	day2, err := svc.SaveDailySnapshot(ctx)
	require.NoError(t, err)
	_, err = svc.GenerateSquares(ctx, day2)
	require.NoError(t, err)

	points, err := svc.Query(ctx, domain.QueryFilter{
		Lat: [2]float64{10.0, 10.02},
		Lon: [2]float64{10.0, 10.02},
	})
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.True(t, points[0].TS.Before(points[1].TS))
	assert.Equal(t, float64(400), points[0].Price)
	assert.Equal(t, 2, points[0].Count)
	assert.Equal(t, float64(450), points[1].Price)
	assert.Equal(t, 2, points[1].Count)
}

func TestQuery_ExcludesCellsOutsideArea(t *testing.T) {
	svc, db, _ := setup(t)
	ctx := context.Background()

	seedOffer(t, db, "1", 300, 10.005, 10.005)
	seedOffer(t, db, "2", 9000, 50.005, 50.005)

	ts, err := svc.SaveDailySnapshot(ctx)
	require.NoError(t, err)
	_, err = svc.GenerateSquares(ctx, ts)
	require.NoError(t, err)

	points, err := svc.Query(ctx, domain.QueryFilter{
		Lat: [2]float64{10.0, 10.01},
		Lon: [2]float64{10.0, 10.01},
	})
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, float64(300), points[0].Price)
	assert.Equal(t, 1, points[0].Count)
}
