// README: Placement tiers, tunables and the collaborators the engine depends on.
package placement

import (
	"context"
	"errors"
	"time"

	"jeeny/internal/maps"
	"jeeny/internal/types"
)

var (
	// ErrNoCandidate means a tier ran but produced nothing usable.
	ErrNoCandidate = errors.New("no candidate")
	// ErrNotApplicable means a tier does not apply to this request.
	ErrNotApplicable = errors.New("tier not applicable")
)

// NearbyFinder lists points of interest around a center.
type NearbyFinder interface {
	Nearby(ctx context.Context, center types.Point, radiusM float64) ([]types.Point, error)
}

// Router returns a driving route between two points.
type Router interface {
	Route(ctx context.Context, origin, destination types.Point) (maps.Route, error)
}

// Rand is the random source used by the engine. *math/rand/v2.Rand satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// Tier identifies which fallback produced a placement.
type Tier int

const (
	TierNearbyPlace Tier = iota + 1
	TierShortOffset
	TierRouteProbe
	TierJitter
	TierFixed
)

var tierNames = map[Tier]string{
	TierNearbyPlace: "nearby_place",
	TierShortOffset: "short_offset",
	TierRouteProbe:  "route_probe",
	TierJitter:      "jitter",
	TierFixed:       "fixed",
}

func (t Tier) String() string {
	if n, ok := tierNames[t]; ok {
		return n
	}
	return "unknown"
}

func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

type Result struct {
	Position types.Point
	Tier     Tier
}

// Config holds the engine's tunables. Zero fields are replaced by the
// DefaultConfig values in NewEngine.
type Config struct {
	// ProviderTimeout bounds every external call made by a tier.
	ProviderTimeout time.Duration `mapstructure:"provider_timeout"`

	// Nearby place search radius is min(offset*SearchRadiusFactor, SearchRadiusMaxM);
	// the first of CandidateLimit results within CandidateTolerance*offset of
	// the nominal offset wins.
	SearchRadiusFactor float64 `mapstructure:"search_radius_factor"`
	SearchRadiusMaxM   float64 `mapstructure:"search_radius_max_m"`
	CandidateLimit     int     `mapstructure:"candidate_limit"`
	CandidateTolerance float64 `mapstructure:"candidate_tolerance"`

	// Offsets up to ShortOffsetMaxM are placed directly at ShortOffsetFactor*offset.
	ShortOffsetMaxM   float64 `mapstructure:"short_offset_max_m"`
	ShortOffsetFactor float64 `mapstructure:"short_offset_factor"`

	// Longer offsets probe ProbeBearings evenly spaced bearings at
	// ProbeFactor*offset and take the second polyline point of a route with
	// more than MinPolylinePoints points.
	ProbeFactor       float64 `mapstructure:"probe_factor"`
	ProbeBearings     int     `mapstructure:"probe_bearings"`
	MinPolylinePoints int     `mapstructure:"min_polyline_points"`

	JitterFactor   float64 `mapstructure:"jitter_factor"`
	FixedJitterDeg float64 `mapstructure:"fixed_jitter_deg"`
}

func DefaultConfig() Config {
	return Config{
		ProviderTimeout:    3 * time.Second,
		SearchRadiusFactor: 2,
		SearchRadiusMaxM:   1000,
		CandidateLimit:     5,
		CandidateTolerance: 0.5,
		ShortOffsetMaxM:    2000,
		ShortOffsetFactor:  0.8,
		ProbeFactor:        0.5,
		ProbeBearings:      8,
		MinPolylinePoints:  3,
		JitterFactor:       0.3,
		FixedJitterDeg:     0.002,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ProviderTimeout <= 0 {
		c.ProviderTimeout = d.ProviderTimeout
	}
	if c.SearchRadiusFactor <= 0 {
		c.SearchRadiusFactor = d.SearchRadiusFactor
	}
	if c.SearchRadiusMaxM <= 0 {
		c.SearchRadiusMaxM = d.SearchRadiusMaxM
	}
	if c.CandidateLimit <= 0 {
		c.CandidateLimit = d.CandidateLimit
	}
	if c.CandidateTolerance <= 0 {
		c.CandidateTolerance = d.CandidateTolerance
	}
	if c.ShortOffsetMaxM <= 0 {
		c.ShortOffsetMaxM = d.ShortOffsetMaxM
	}
	if c.ShortOffsetFactor <= 0 {
		c.ShortOffsetFactor = d.ShortOffsetFactor
	}
	if c.ProbeFactor <= 0 {
		c.ProbeFactor = d.ProbeFactor
	}
	if c.ProbeBearings <= 0 {
		c.ProbeBearings = d.ProbeBearings
	}
	if c.MinPolylinePoints <= 0 {
		c.MinPolylinePoints = d.MinPolylinePoints
	}
	if c.JitterFactor <= 0 {
		c.JitterFactor = d.JitterFactor
	}
	if c.FixedJitterDeg <= 0 {
		c.FixedJitterDeg = d.FixedJitterDeg
	}
	return c
}
