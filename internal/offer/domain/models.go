package domain

import (
	"strconv"
	"strings"
	"time"
)

// Offer is the canonical in-memory form of one listing as reported by a
// source. ID is assigned by the source and identifies the entity; the
// remaining fields are display state that may change between snapshots.
type Offer struct {
	ID            string  `json:"id"`
	Price         float64 `json:"price"`
	OriginalPrice string  `json:"originalPrice"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	Rooms         int     `json:"rooms"`
	Address       string  `json:"address"`
	URL           string  `json:"url"`
}

// ContentID derives the content-equality key over the mutable display
// fields. Two offers with the same ContentID are considered unchanged even
// if they came from different snapshots.
func (o Offer) ContentID() string {
	return strings.Join([]string{
		formatFloat(o.Price),
		formatFloat(o.Lat),
		formatFloat(o.Lon),
		strconv.Itoa(o.Rooms),
		o.Address,
		o.URL,
	}, "/")
}

// ContentEqual compares content only, never IDs.
func (o Offer) ContentEqual(other Offer) bool {
	return o.ContentID() == other.ContentID()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CurrentOffer is the latest known state of one offer for one source.
type CurrentOffer struct {
	SourceName    string    `gorm:"column:source_name;not null;index:ux_current_offers_source_id,unique,priority:1"`
	TS            time.Time `gorm:"column:ts;not null"`
	ID            string    `gorm:"column:id;not null;index:ux_current_offers_source_id,unique,priority:2"`
	Lat           float64   `gorm:"column:lat;not null"`
	Lon           float64   `gorm:"column:lon;not null"`
	Price         float64   `gorm:"column:price;not null"`
	OriginalPrice string    `gorm:"column:original_price;type:varchar(1000);not null"`
	Rooms         int       `gorm:"column:rooms;not null"`
	URL           string    `gorm:"column:url;type:varchar(2000);not null"`
	Address       string    `gorm:"column:address;type:varchar(400);not null"`
}

func (CurrentOffer) TableName() string { return "current_offers" }

// Offer converts a stored row back into the domain value. Stored rows are
// trusted, so no validation happens here.
func (r CurrentOffer) Offer() Offer {
	return Offer{
		ID:            r.ID,
		Price:         r.Price,
		OriginalPrice: r.OriginalPrice,
		Lat:           r.Lat,
		Lon:           r.Lon,
		Rooms:         r.Rooms,
		Address:       r.Address,
		URL:           r.URL,
	}
}

// NewCurrentOffer builds the stored row for an offer observed in a source
// snapshot taken at ts.
func NewCurrentOffer(sourceName string, ts time.Time, o Offer) CurrentOffer {
	return CurrentOffer{
		SourceName:    sourceName,
		TS:            ts,
		ID:            o.ID,
		Lat:           o.Lat,
		Lon:           o.Lon,
		Price:         o.Price,
		OriginalPrice: o.OriginalPrice,
		Rooms:         o.Rooms,
		URL:           o.URL,
		Address:       o.Address,
	}
}

// CanonicalOffer is the global write-once registry entry for an offer id.
// It records static facts only and is never updated after first sight.
type CanonicalOffer struct {
	ID      string  `gorm:"column:id;not null;uniqueIndex:ux_offers_id"`
	URL     string  `gorm:"column:url;type:varchar(2000);not null"`
	Rooms   int     `gorm:"column:rooms;not null"`
	Lat     float64 `gorm:"column:lat;not null"`
	Lon     float64 `gorm:"column:lon;not null"`
	Address string  `gorm:"column:address;type:varchar(400);not null"`
}

func (CanonicalOffer) TableName() string { return "offers" }

// NewCanonicalOffer extracts the static fields registered on first sight.
func NewCanonicalOffer(o Offer) CanonicalOffer {
	return CanonicalOffer{
		ID:      o.ID,
		URL:     o.URL,
		Rooms:   o.Rooms,
		Lat:     o.Lat,
		Lon:     o.Lon,
		Address: o.Address,
	}
}
