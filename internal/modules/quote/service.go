// README: Quote service assembles trip estimates and fabricated drivers.
package quote

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"jeeny/internal/geo"
	"jeeny/internal/maps"
	"jeeny/internal/modules/location"
	"jeeny/internal/modules/placement"
	"jeeny/internal/modules/pricing"
	"jeeny/internal/observability"
)

type ServiceDeps struct {
	Router  placement.Router
	Pricing *pricing.Service
	Placer  Placer
	// Snapper is only used when Config.SnapToRoad is set.
	Snapper RoadSnapper
	Rand    placement.Rand
	Config  Config
	Log     logrus.FieldLogger
}

type Service struct {
	router  placement.Router
	pricing *pricing.Service
	placer  Placer
	snapper RoadSnapper
	rnd     placement.Rand
	cfg     Config
	log     logrus.FieldLogger
}

func NewService(deps ServiceDeps) *Service {
	cfg := deps.Config
	def := DefaultConfig()
	if cfg.MinOffsetM <= 0 {
		cfg.MinOffsetM = def.MinOffsetM
	}
	if cfg.MaxOffsetM <= 0 {
		cfg.MaxOffsetM = def.MaxOffsetM
	}
	if cfg.MaxOffsetM < cfg.MinOffsetM {
		cfg.MaxOffsetM = cfg.MinOffsetM
	}
	if cfg.ApproachSpeedMPerMin <= 0 {
		cfg.ApproachSpeedMPerMin = def.ApproachSpeedMPerMin
	}
	if cfg.RouteTimeout <= 0 {
		cfg.RouteTimeout = def.RouteTimeout
	}
	if cfg.SnapTimeout <= 0 {
		cfg.SnapTimeout = def.SnapTimeout
	}
	if deps.Rand == nil {
		deps.Rand = placement.NewSeededRand(0)
	}
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	return &Service{
		router:  deps.Router,
		pricing: deps.Pricing,
		placer:  deps.Placer,
		snapper: deps.Snapper,
		rnd:     deps.Rand,
		cfg:     cfg,
		log:     deps.Log.WithField("component", "quote"),
	}
}

// ComputeQuote routes start to end once and prices the result. A missing
// route is returned as ErrNoRouteFound and is not retried.
func (s *Service) ComputeQuote(ctx context.Context, start, end location.Location, class pricing.CarClass) (*TripQuote, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RouteTimeout)
	defer cancel()

	route, err := s.router.Route(ctx, start.Point, end.Point)
	if errors.Is(err, maps.ErrNoRoute) {
		observability.QuotesTotal.WithLabelValues("no_route").Inc()
		return nil, fmt.Errorf("%w: %s -> %s", ErrNoRouteFound, start.Name, end.Name)
	}
	if err != nil {
		observability.QuotesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("route %s -> %s: %w", start.Name, end.Name, err)
	}

	km, mins := route.DistanceKm(), route.DurationMin()
	observability.QuotesTotal.WithLabelValues("ok").Inc()
	return &TripQuote{
		DistanceText: route.DistanceText,
		DurationText: route.DurationText,
		DistanceKm:   km,
		DurationMin:  mins,
		Cost:         s.pricing.Estimate(km, mins, class),
		CarClass:     class,
	}, nil
}

// MakeDriver draws a fresh offset and places a driver around start. Every
// call samples again.
func (s *Service) MakeDriver(ctx context.Context, start location.Location, class pricing.CarClass) DriverPlacement {
	offset := s.cfg.MinOffsetM + s.rnd.IntN(s.cfg.MaxOffsetM-s.cfg.MinOffsetM+1)
	res := s.placer.Place(ctx, start.Point, float64(offset))

	d := DriverPlacement{
		Position:        res.Position,
		OffsetDistanceM: offset,
		ETAMin:          math.Round(float64(offset)*10/s.cfg.ApproachSpeedMPerMin) / 10,
		CarClass:        class,
		Tier:            res.Tier,
	}
	if s.cfg.SnapToRoad && s.snapper != nil {
		d = s.snap(ctx, d)
	}

	s.log.WithFields(logrus.Fields{
		"offset_m": offset,
		"tier":     res.Tier.String(),
		"snapped":  d.Snapped,
	}).Debug("driver placed")
	return d
}

// Plan quotes the trip and places a driver. The driver is only placed once
// a route exists.
func (s *Service) Plan(ctx context.Context, start, end location.Location, class pricing.CarClass) (*Plan, error) {
	q, err := s.ComputeQuote(ctx, start, end, class)
	if err != nil {
		return nil, err
	}
	return &Plan{
		Start:  start,
		End:    end,
		Quote:  *q,
		Driver: s.MakeDriver(ctx, start, class),
	}, nil
}

// snap keeps the placed point when snapping fails or lands implausibly far
// from where the driver was placed.
func (s *Service) snap(ctx context.Context, d DriverPlacement) DriverPlacement {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.SnapTimeout)
	defer cancel()

	p, err := s.snapper.SnapToRoad(ctx, d.Position)
	if err != nil {
		s.log.WithError(err).Debug("snap to road failed")
		return d
	}
	if !geo.ValidPoint(p) || geo.HaversineMeters(d.Position, p) > float64(s.cfg.MaxOffsetM) {
		return d
	}
	d.Position = p
	d.Snapped = true
	return d
}
