// README: Shared Google Maps client and the error values returned by the map services.
package maps

import (
	"errors"
	"fmt"

	"googlemaps.github.io/maps"

	"jeeny/internal/types"
)

const (
	// Results are requested in Arabic and biased to Jordan.
	defaultLanguage = "ar"
	defaultRegion   = "jo"
)

var (
	ErrNoRoute  = errors.New("no route found")
	ErrNotFound = errors.New("no results")
)

// NewClient creates the maps client shared by every service in this package.
// Extra options (e.g. maps.WithBaseURL for tests) are applied after the key.
func NewClient(apiKey string, opts ...maps.ClientOption) (*maps.Client, error) {
	all := append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)
	client, err := maps.NewClient(all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return client, nil
}

func toLatLng(p types.Point) maps.LatLng {
	return maps.LatLng{Lat: p.Lat, Lng: p.Lng}
}

func fromLatLng(ll maps.LatLng) types.Point {
	return types.Point{Lat: ll.Lat, Lng: ll.Lng}
}
