package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/flatwatch/flatwatch/internal/offer/domain"
	"github.com/flatwatch/flatwatch/internal/offer/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.CurrentOffer{}))

	svc := New(ServiceParam{
		DB:   db,
		Log:  zap.NewNop(),
		Repo: repository.Provide(),
	})
	return svc, db
}

func seed(t *testing.T, db *gorm.DB, id string, price float64, rooms int, lat, lon float64) {
	t.Helper()
	row := domain.NewCurrentOffer("city1", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), domain.Offer{
		ID:            id,
		Price:         price,
		OriginalPrice: fmt.Sprintf("%.0f dollars", price),
		Lat:           lat,
		Lon:           lon,
		Rooms:         rooms,
		Address:       "street name, 12",
		URL:           "https://www.example.com/" + id,
	})
	require.NoError(t, db.Create(&row).Error)
}

func baseFilter() domain.ListFilter {
	return domain.ListFilter{
		Rooms:    []int{1, 2},
		MaxPrice: 1000,
		Lat:      [2]float64{10, 20},
		Lon:      [2]float64{10, 20},
		Limit:    100,
	}
}

func TestList_FiltersByAreaPriceAndRooms(t *testing.T) {
	svc, db := setup(t)
	seed(t, db, "in-area", 300, 1, 15, 15)
	seed(t, db, "too-expensive", 2000, 1, 15, 15)
	seed(t, db, "wrong-rooms", 300, 3, 15, 15)
	seed(t, db, "out-of-area", 300, 1, 50, 50)

	offers, err := svc.List(context.Background(), baseFilter())
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, "in-area", offers[0].ID)
	assert.Equal(t, "300 dollars", offers[0].OriginalPrice)
}

func TestList_ExcludesZeroPricedOffers(t *testing.T) {
	svc, db := setup(t)
	seed(t, db, "free", 0, 1, 15, 15)
	seed(t, db, "priced", 300, 1, 15, 15)

	offers, err := svc.List(context.Background(), baseFilter())
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, "priced", offers[0].ID)
}

func TestList_AppliesLimit(t *testing.T) {
	svc, db := setup(t)
	for i := 0; i < 5; i++ {
		seed(t, db, fmt.Sprintf("offer-%d", i), 300, 1, 15, 15)
	}

	filter := baseFilter()
	filter.Limit = 3
	offers, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, offers, 3)
}

func TestList_RequiresLimitAndRooms(t *testing.T) {
	svc, _ := setup(t)

	filter := baseFilter()
	filter.Limit = 0
	_, err := svc.List(context.Background(), filter)
	assert.ErrorIs(t, err, domain.ErrMissingLimit)

	filter = baseFilter()
	filter.Rooms = nil
	_, err = svc.List(context.Background(), filter)
	assert.ErrorIs(t, err, domain.ErrMissingRooms)
}
