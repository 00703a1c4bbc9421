package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"jeeny/internal/types"
)

// RoadsService snaps coordinates onto the road network.
type RoadsService struct {
	client *maps.Client
}

func NewRoadsService(client *maps.Client) *RoadsService {
	return &RoadsService{client: client}
}

// SnapToRoad returns the nearest on-road position for p, or ErrNotFound.
func (s *RoadsService) SnapToRoad(ctx context.Context, p types.Point) (types.Point, error) {
	resp, err := s.client.SnapToRoad(ctx, &maps.SnapToRoadRequest{
		Path: []maps.LatLng{toLatLng(p)},
	})
	if err != nil {
		return types.Point{}, fmt.Errorf("roads api error: %w", err)
	}
	if resp == nil || len(resp.SnappedPoints) == 0 {
		return types.Point{}, ErrNotFound
	}
	return fromLatLng(resp.SnappedPoints[0].Location), nil
}
