package placement

import (
	"context"
	"fmt"
	"math"

	"jeeny/internal/geo"
	"jeeny/internal/maps"
	"jeeny/internal/types"
)

// nearbyPlace picks the first of the top nearby points of interest whose
// distance from the rider is within tolerance of the offset.
func (e *Engine) nearbyPlace(ctx context.Context, rider types.Point, offsetM float64) (types.Point, error) {
	if e.places == nil {
		return types.Point{}, ErrNotApplicable
	}
	radius := math.Min(offsetM*e.cfg.SearchRadiusFactor, e.cfg.SearchRadiusMaxM)

	candidates, err := callWithTimeout(ctx, e.cfg.ProviderTimeout, "places", func(ctx context.Context) ([]types.Point, error) {
		return e.places.Nearby(ctx, rider, radius)
	})
	if err != nil {
		return types.Point{}, fmt.Errorf("nearby search: %w", err)
	}

	if len(candidates) > e.cfg.CandidateLimit {
		candidates = candidates[:e.cfg.CandidateLimit]
	}
	for _, c := range candidates {
		if !geo.ValidPoint(c) {
			continue
		}
		if math.Abs(geo.HaversineMeters(rider, c)-offsetM) < e.cfg.CandidateTolerance*offsetM {
			return c, nil
		}
	}
	return types.Point{}, ErrNoCandidate
}

// shortOffset places the driver on a random heading using a flat-Earth
// offset. Only used for offsets up to ShortOffsetMaxM.
func (e *Engine) shortOffset(_ context.Context, rider types.Point, offsetM float64) (types.Point, error) {
	if offsetM > e.cfg.ShortOffsetMaxM {
		return types.Point{}, ErrNotApplicable
	}
	angle := e.rnd.Float64() * 2 * math.Pi
	return geo.FlatOffset(rider, angle, offsetM, e.cfg.ShortOffsetFactor), nil
}

// routeProbe walks evenly spaced bearings, asks for a route from a probe
// point back to the rider, and takes the second point of the first route
// that is detailed enough to lie on a real road.
func (e *Engine) routeProbe(ctx context.Context, rider types.Point, offsetM float64) (types.Point, error) {
	if offsetM <= e.cfg.ShortOffsetMaxM || e.router == nil {
		return types.Point{}, ErrNotApplicable
	}

	step := 360.0 / float64(e.cfg.ProbeBearings)
	for i := 0; i < e.cfg.ProbeBearings; i++ {
		if ctx.Err() != nil {
			return types.Point{}, ctx.Err()
		}
		probe := geo.Destination(rider, float64(i)*step, offsetM*e.cfg.ProbeFactor)

		route, err := callWithTimeout(ctx, e.cfg.ProviderTimeout, "directions", func(ctx context.Context) (maps.Route, error) {
			return e.router.Route(ctx, probe, rider)
		})
		if err != nil {
			e.log.WithField("bearing", float64(i)*step).WithError(err).Debug("route probe failed")
			continue
		}
		if len(route.Polyline) > e.cfg.MinPolylinePoints {
			return route.Polyline[1], nil
		}
	}
	return types.Point{}, ErrNoCandidate
}

// jitter moves the rider by a fixed fraction of the offset on each axis,
// with an independent random sign per axis.
func (e *Engine) jitter(_ context.Context, rider types.Point, offsetM float64) (types.Point, error) {
	dLat := offsetM / geo.MetersPerDegreeLat * e.cfg.JitterFactor * e.sign()
	dLng := offsetM / geo.MetersPerDegreeLng(rider.Lat) * e.cfg.JitterFactor * e.sign()
	return types.Point{Lat: rider.Lat + dLat, Lng: rider.Lng + dLng}, nil
}

// fixed is the last resort. It must not panic, so a failing random source
// degrades to a positive shift on both axes.
func (e *Engine) fixed(rider types.Point) (p types.Point) {
	d := e.cfg.FixedJitterDeg
	defer func() {
		if recover() != nil {
			p = types.Point{Lat: rider.Lat + d, Lng: rider.Lng + d}
		}
	}()
	return types.Point{Lat: rider.Lat + e.sign()*d, Lng: rider.Lng + e.sign()*d}
}
