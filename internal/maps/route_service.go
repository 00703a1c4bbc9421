package maps

import (
	"context"
	"fmt"
	"time"

	"googlemaps.github.io/maps"

	"jeeny/internal/types"
)

// Route is the first leg of the best driving route between two points.
type Route struct {
	DistanceMeters int
	DistanceText   string
	Duration       time.Duration
	DurationText   string
	// Polyline is the decoded overview polyline, origin first.
	Polyline []types.Point
}

func (r Route) DistanceKm() float64 {
	return float64(r.DistanceMeters) / 1000
}

func (r Route) DurationMin() float64 {
	return r.Duration.Minutes()
}

// RouteService handles interactions with the Google Directions API.
type RouteService struct {
	client *maps.Client
}

func NewRouteService(client *maps.Client) *RouteService {
	return &RouteService{client: client}
}

// Route returns the driving route from origin to destination.
// ErrNoRoute is returned when the provider has no route between them.
func (s *RouteService) Route(ctx context.Context, origin, destination types.Point) (Route, error) {
	r := &maps.DirectionsRequest{
		Origin:      origin.String(),
		Destination: destination.String(),
		Mode:        maps.TravelModeDriving,
		Language:    defaultLanguage,
		Region:      defaultRegion,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return Route{}, fmt.Errorf("maps api error: %w", err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return Route{}, ErrNoRoute
	}

	leg := routes[0].Legs[0]
	out := Route{
		DistanceMeters: leg.Distance.Meters,
		DistanceText:   leg.Distance.HumanReadable,
		Duration:       leg.Duration,
		DurationText:   FormatDuration(leg.Duration),
	}

	if routes[0].OverviewPolyline.Points != "" {
		path, err := routes[0].OverviewPolyline.Decode()
		if err != nil {
			return Route{}, fmt.Errorf("decode polyline: %w", err)
		}
		out.Polyline = make([]types.Point, len(path))
		for i, ll := range path {
			out.Polyline[i] = fromLatLng(ll)
		}
	}
	return out, nil
}

// FormatDuration renders d in whole minutes the way the Arabic Directions
// API does, e.g. "25 دقيقة" or "1 ساعة 5 دقيقة".
func FormatDuration(d time.Duration) string {
	mins := int(d.Round(time.Minute).Minutes())
	if mins < 1 {
		mins = 1
	}
	if mins < 60 {
		return fmt.Sprintf("%d دقيقة", mins)
	}
	h, m := mins/60, mins%60
	if m == 0 {
		return fmt.Sprintf("%d ساعة", h)
	}
	return fmt.Sprintf("%d ساعة %d دقيقة", h, m)
}
