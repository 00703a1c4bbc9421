package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"jeeny/internal/types"
)

type GeocodeResult struct {
	Point            types.Point
	FormattedAddress string
}

// GeocodeService resolves free-text addresses through the Geocoding API.
type GeocodeService struct {
	client *maps.Client
}

func NewGeocodeService(client *maps.Client) *GeocodeService {
	return &GeocodeService{client: client}
}

// Geocode returns the first match for query, or ErrNotFound.
func (s *GeocodeService) Geocode(ctx context.Context, query string) (GeocodeResult, error) {
	results, err := s.client.Geocode(ctx, &maps.GeocodingRequest{
		Address:  query,
		Region:   defaultRegion,
		Language: defaultLanguage,
	})
	if err != nil {
		return GeocodeResult{}, fmt.Errorf("geocoding api error: %w", err)
	}
	if len(results) == 0 {
		return GeocodeResult{}, ErrNotFound
	}
	return GeocodeResult{
		Point:            fromLatLng(results[0].Geometry.Location),
		FormattedAddress: results[0].FormattedAddress,
	}, nil
}
