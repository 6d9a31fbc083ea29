package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// ValidationError reports a malformed raw offer field. It aborts the whole
// ingestion call, so it carries enough context to point at the bad record.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid offer: field %q %s", e.Field, e.Reason)
}

// ParseFromSource validates a raw record uploaded by a scraper source and
// returns the canonical Offer value. Every field is required; string and
// numeric kinds are enforced.
func ParseFromSource(raw map[string]any) (Offer, error) {
	id, err := stringField(raw, "id")
	if err != nil {
		return Offer{}, err
	}
	price, err := numberField(raw, "price")
	if err != nil {
		return Offer{}, err
	}
	originalPrice, err := stringField(raw, "originalPrice")
	if err != nil {
		return Offer{}, err
	}
	lat, err := numberField(raw, "lat")
	if err != nil {
		return Offer{}, err
	}
	lon, err := numberField(raw, "lon")
	if err != nil {
		return Offer{}, err
	}
	rooms, err := numberField(raw, "rooms")
	if err != nil {
		return Offer{}, err
	}
	address, err := stringField(raw, "address")
	if err != nil {
		return Offer{}, err
	}
	url, err := stringField(raw, "url")
	if err != nil {
		return Offer{}, err
	}

	return Offer{
		ID:            id,
		Price:         price,
		OriginalPrice: originalPrice,
		Lat:           lat,
		Lon:           lon,
		Rooms:         int(rooms),
		Address:       address,
		URL:           url,
	}, nil
}

func stringField(raw map[string]any, field string) (string, error) {
	v, ok := raw[field]
	if !ok || v == nil {
		return "", &ValidationError{Field: field, Reason: "is missing"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &ValidationError{Field: field, Reason: "must be a string"}
	}
	return s, nil
}

func numberField(raw map[string]any, field string) (float64, error) {
	v, ok := raw[field]
	if !ok || v == nil {
		return 0, &ValidationError{Field: field, Reason: "is missing"}
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, &ValidationError{Field: field, Reason: "must be a number"}
		}
		return f, nil
	default:
		return 0, &ValidationError{Field: field, Reason: "must be a number"}
	}
}
