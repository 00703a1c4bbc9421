package maps

import (
	"context"
	"fmt"
	"math"

	"googlemaps.github.io/maps"

	"jeeny/internal/types"
)

// The library has no constant for this generic type.
const placeTypePOI = maps.PlaceType("point_of_interest")

// PlacesService handles interactions with the Google Places API.
type PlacesService struct {
	client *maps.Client
}

func NewPlacesService(client *maps.Client) *PlacesService {
	return &PlacesService{client: client}
}

// Nearby returns the locations of points of interest within radiusM of
// center, in the order the API ranks them.
func (s *PlacesService) Nearby(ctx context.Context, center types.Point, radiusM float64) ([]types.Point, error) {
	radius := uint(math.Max(1, math.Round(radiusM)))
	loc := toLatLng(center)

	resp, err := s.client.NearbySearch(ctx, &maps.NearbySearchRequest{
		Location: &loc,
		Radius:   radius,
		Type:     placeTypePOI,
		Language: defaultLanguage,
	})
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	out := make([]types.Point, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, fromLatLng(r.Geometry.Location))
	}
	return out, nil
}
