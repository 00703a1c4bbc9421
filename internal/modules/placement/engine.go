// README: Driver placement engine; picks a plausible driver position near a rider through ordered fallbacks.
package placement

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"jeeny/internal/geo"
	"jeeny/internal/observability"
	"jeeny/internal/types"
)

type tierFunc func(ctx context.Context, rider types.Point, offsetM float64) (types.Point, error)

type tierStep struct {
	tier Tier
	run  tierFunc
}

type Engine struct {
	places NearbyFinder
	router Router
	rnd    Rand
	cfg    Config
	log    logrus.FieldLogger
}

// NewEngine wires the engine. places and router may be nil, in which case
// the tiers that need them are skipped.
func NewEngine(places NearbyFinder, router Router, rnd Rand, cfg Config, log logrus.FieldLogger) *Engine {
	if rnd == nil {
		rnd = NewSeededRand(0)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{
		places: places,
		router: router,
		rnd:    rnd,
		cfg:    cfg.withDefaults(),
		log:    log.WithField("component", "placement"),
	}
}

func (e *Engine) Config() Config {
	return e.cfg
}

// Place returns a driver position roughly offsetM metres from rider. It never
// fails: provider errors and timeouts fall through to the next tier, and any
// panic lands on the fixed fallback.
func (e *Engine) Place(ctx context.Context, rider types.Point, offsetM float64) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			e.log.WithField("panic", r).Error("placement failed, using fixed fallback")
			res = Result{Position: e.fixed(rider), Tier: TierFixed}
		}
		observability.PlacementsTotal.WithLabelValues(res.Tier.String()).Inc()
	}()

	if !(offsetM > 0) || math.IsInf(offsetM, 0) {
		return Result{Position: e.fixed(rider), Tier: TierFixed}
	}

	for _, t := range e.tiers() {
		p, err := t.run(ctx, rider, offsetM)
		if err == nil && !geo.ValidPoint(p) {
			err = fmt.Errorf("%w: invalid coordinate %v", ErrNoCandidate, p)
		}
		if err != nil {
			e.log.WithFields(logrus.Fields{"tier": t.tier.String(), "error": err}).Debug("placement tier skipped")
			continue
		}
		return Result{Position: p, Tier: t.tier}
	}
	return Result{Position: e.fixed(rider), Tier: TierFixed}
}

// tiers lists the fallbacks in the order they are tried. The fixed fallback
// is not listed; Place applies it when every step fails.
func (e *Engine) tiers() []tierStep {
	return []tierStep{
		{TierNearbyPlace, e.nearbyPlace},
		{TierShortOffset, e.shortOffset},
		{TierRouteProbe, e.routeProbe},
		{TierJitter, e.jitter},
	}
}

// sign returns -1 or +1 with equal probability.
func (e *Engine) sign() float64 {
	if e.rnd.IntN(2) == 0 {
		return -1
	}
	return 1
}

// callWithTimeout runs fn under the provider timeout. A provider that ignores
// its context is abandoned once the deadline passes, and a panicking provider
// is reported as an error.
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, provider string, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	start := time.Now()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: fmt.Errorf("%s panicked: %v", provider, r)}
			}
		}()
		v, err := fn(ctx)
		ch <- result{v: v, err: err}
	}()

	select {
	case r := <-ch:
		observability.ProviderLatency.WithLabelValues(provider).Observe(time.Since(start).Seconds())
		return r.v, r.err
	case <-ctx.Done():
		observability.ProviderLatency.WithLabelValues(provider).Observe(time.Since(start).Seconds())
		var zero T
		return zero, fmt.Errorf("%s: %w", provider, ctx.Err())
	}
}
