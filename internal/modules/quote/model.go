// README: Trip quote and driver placement values returned to callers.
package quote

import (
	"context"
	"errors"
	"time"

	"jeeny/internal/modules/location"
	"jeeny/internal/modules/placement"
	"jeeny/internal/modules/pricing"
	"jeeny/internal/types"
)

var ErrNoRouteFound = errors.New("no route found")

type TripQuote struct {
	DistanceText string           `json:"distance_text"`
	DurationText string           `json:"duration_text"`
	DistanceKm   float64          `json:"distance_km"`
	DurationMin  float64          `json:"duration_min"`
	Cost         types.Money      `json:"cost"`
	CarClass     pricing.CarClass `json:"car_class"`
}

// DriverPlacement is a fabricated nearby driver. OffsetDistanceM is the
// nominal distance requested from the engine, not the measured one.
type DriverPlacement struct {
	Position        types.Point      `json:"position"`
	OffsetDistanceM int              `json:"offset_distance_m"`
	ETAMin          float64          `json:"eta_min"`
	CarClass        pricing.CarClass `json:"car_class"`
	Tier            placement.Tier   `json:"tier"`
	Snapped         bool             `json:"snapped"`
}

// Plan is a quote plus a driver for one trip.
type Plan struct {
	Start  location.Location `json:"start"`
	End    location.Location `json:"end"`
	Quote  TripQuote         `json:"quote"`
	Driver DriverPlacement   `json:"driver"`
}

// Placer positions a driver around a rider. It must not fail.
type Placer interface {
	Place(ctx context.Context, rider types.Point, offsetM float64) placement.Result
}

// RoadSnapper moves a point onto the nearest road.
type RoadSnapper interface {
	SnapToRoad(ctx context.Context, p types.Point) (types.Point, error)
}

type Config struct {
	MinOffsetM int `mapstructure:"min_offset_m"`
	MaxOffsetM int `mapstructure:"max_offset_m"`
	// ApproachSpeedMPerMin converts the offset into an ETA.
	ApproachSpeedMPerMin float64       `mapstructure:"approach_speed_m_per_min"`
	RouteTimeout         time.Duration `mapstructure:"route_timeout"`
	SnapToRoad           bool          `mapstructure:"snap_to_road"`
	SnapTimeout          time.Duration `mapstructure:"snap_timeout"`
}

func DefaultConfig() Config {
	return Config{
		MinOffsetM:           100,
		MaxOffsetM:           300,
		ApproachSpeedMPerMin: 200,
		RouteTimeout:         10 * time.Second,
		SnapTimeout:          3 * time.Second,
	}
}
