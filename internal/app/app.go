// README: Builds the service graph from config; shared by the API server and the terminal chat.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"jeeny/internal/ai"
	"jeeny/internal/config"
	"jeeny/internal/infra"
	"jeeny/internal/maps"
	"jeeny/internal/modules/aiusage"
	"jeeny/internal/modules/location"
	"jeeny/internal/modules/placement"
	"jeeny/internal/modules/pricing"
	"jeeny/internal/modules/quote"
	"jeeny/internal/modules/session"
	"jeeny/internal/service"
)

type Options struct {
	// InMemorySessions ignores Redis even when it is configured.
	InMemorySessions bool
}

type App struct {
	Planner   *service.TripPlanner
	Quotes    *quote.Service
	Locations *location.Service
	Usage     *aiusage.Service

	closers []func()
}

// Build wires providers, stores and services. The caller must Close the App.
func Build(ctx context.Context, cfg config.Config, log *logrus.Logger, opts Options) (*App, error) {
	a := &App{}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	mapsClient, err := maps.NewClient(cfg.Maps.APIKey)
	if err != nil {
		return nil, err
	}
	routes := maps.NewRouteService(mapsClient)

	llm, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey, cfg.AI.Model)
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	a.closers = append(a.closers, llm.Close)

	var db *pgxpool.Pool
	if cfg.DB.DSN != "" {
		db, err = infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
	}

	rates := cfg.Pricing
	if db != nil {
		stored, err := pricing.NewStore(db).GetRates(ctx, cfg.Pricing)
		if err != nil {
			log.WithError(err).Warn("fare rates unavailable, using configured rates")
		} else {
			rates = stored
		}
	}
	pricingSvc := pricing.NewService(rates, log)

	saved, err := savedPlaces(cfg, db)
	if err != nil {
		return nil, err
	}

	var sessions session.Store = session.NewMemoryStore()
	var usage aiusage.Store = aiusage.NewMemoryStore()
	if !opts.InMemorySessions && cfg.Redis.Addr != "" {
		client, err := infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		sessions = session.NewRedisStore(client, cfg.Session.TTL)
		usage = aiusage.NewRedisStore(client)
	}
	a.Usage = aiusage.NewService(usage, cfg.AI.SessionQuota, cfg.AI.QuotaWindow)

	rnd := placement.NewSeededRand(0)
	engine := placement.NewEngine(maps.NewPlacesService(mapsClient), routes, rnd, cfg.Placement, log)

	a.Quotes = quote.NewService(quote.ServiceDeps{
		Router:  routes,
		Pricing: pricingSvc,
		Placer:  engine,
		Snapper: maps.NewRoadsService(mapsClient),
		Rand:    rnd,
		Config:  cfg.Quote,
		Log:     log,
	})
	a.Locations = location.NewService(location.ServiceDeps{
		Saved:    saved,
		Geocoder: maps.NewGeocodeService(mapsClient),
		Matcher:  llm,
		Region:   cfg.Region,
		Log:      log,
	})
	a.Planner = service.NewTripPlanner(service.TripPlannerDeps{
		AI:       llm,
		Resolver: a.Locations,
		Quotes:   a.Quotes,
		Sessions: sessions,
		Log:      log,
	})

	ok = true
	return a, nil
}

// Close releases connections in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func savedPlaces(cfg config.Config, db *pgxpool.Pool) (location.SavedPlaces, error) {
	switch {
	case db != nil:
		return location.NewStore(db), nil
	case cfg.Places.File != "":
		return location.LoadStaticPlaces(cfg.Places.File)
	default:
		return location.NewStaticPlaces(nil), nil
	}
}
