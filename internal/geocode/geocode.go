// Package geocode resolves free-text place names into coordinates through a
// MapTiler-compatible forward-geocoding API.
package geocode

import (
	"context"
	"errors"
)

var (
	// ErrNoResult means the provider answered but matched nothing.
	ErrNoResult = errors.New("geocode: no result for query")

	ErrUnauthorized = errors.New("geocode: unauthorized")
)

type Result struct {
	Longitude   float64 `json:"longitude"`
	Latitude    float64 `json:"latitude"`
	DisplayName string  `json:"display_name"`
}

type Geocoder interface {
	// Forward resolves the query to the provider's first match. Returns
	// ErrNoResult when the provider finds nothing.
	Forward(ctx context.Context, query string) (*Result, error)
}
