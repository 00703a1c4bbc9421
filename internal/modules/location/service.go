// README: Location service turns user-supplied place text into named coordinates.
package location

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"jeeny/internal/geo"
	"jeeny/internal/types"
)

// Country suffixes tried in order when geocoding free text.
var geocodeSuffixes = []string{"، الأردن", ", Jordan"}

type ServiceDeps struct {
	Saved    SavedPlaces
	Geocoder Geocoder
	// Matcher is optional; without it only exact and substring matches apply.
	Matcher PlaceMatcher
	Region  geo.Region
	Timeout time.Duration
	Log     logrus.FieldLogger
}

type Service struct {
	saved    SavedPlaces
	geocoder Geocoder
	matcher  PlaceMatcher
	region   geo.Region
	timeout  time.Duration
	log      logrus.FieldLogger
}

func NewService(deps ServiceDeps) *Service {
	if deps.Region == (geo.Region{}) {
		deps.Region = geo.DefaultRegion
	}
	if deps.Timeout <= 0 {
		deps.Timeout = 5 * time.Second
	}
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	if deps.Saved == nil {
		deps.Saved = NewStaticPlaces(nil)
	}
	return &Service{
		saved:    deps.Saved,
		geocoder: deps.Geocoder,
		matcher:  deps.Matcher,
		region:   deps.Region,
		timeout:  deps.Timeout,
		log:      deps.Log.WithField("component", "location"),
	}
}

// Resolve turns raw place text into a Location. Saved place names are tried
// first, then literal "lat,lng", then the geocoder. Results outside the
// service region fail with ErrOutOfRegion.
func (s *Service) Resolve(ctx context.Context, raw string, role Role) (Location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Location{}, ErrEmptyPlace
	}

	name, query, matched := raw, raw, false
	if _, literal := ParseCoordinates(raw); !literal {
		if sp, ok := s.matchSaved(ctx, raw); ok {
			name, query, matched = sp.Name, sp.Value, true
		}
	}

	var loc Location
	if p, ok := ParseCoordinates(query); ok {
		if !matched {
			name = s.nameForPoint(ctx, p, role)
		}
		loc = Location{Name: name, Point: p}
	} else {
		p, err := s.geocode(ctx, query)
		if err != nil {
			return Location{}, fmt.Errorf("%w: %q: %w", ErrGeocodingFailed, raw, err)
		}
		loc = Location{Name: name, Point: p}
	}

	if !s.region.Contains(loc.Point) {
		return Location{}, fmt.Errorf("%w: %q at %s", ErrOutOfRegion, raw, loc.Point)
	}
	return loc, nil
}

// SavedPlaces lists every saved place.
func (s *Service) SavedPlaces(ctx context.Context) ([]SavedPlace, error) {
	return s.saved.List(ctx)
}

// SavePlace stores name -> value. A coordinate value must fall inside the
// service region.
func (s *Service) SavePlace(ctx context.Context, name, value string) (SavedPlace, error) {
	name, value = strings.TrimSpace(name), strings.TrimSpace(value)
	if name == "" || value == "" {
		return SavedPlace{}, ErrEmptyPlace
	}
	sp := NewSavedPlace(name, value)
	if sp.Point != nil && !s.region.Contains(*sp.Point) {
		return SavedPlace{}, fmt.Errorf("%w: %s", ErrOutOfRegion, value)
	}
	if err := s.saved.Save(ctx, sp); err != nil {
		return SavedPlace{}, err
	}
	return sp, nil
}

// matchSaved looks for an exact name, then a case-insensitive substring in
// either direction, then asks the matcher.
func (s *Service) matchSaved(ctx context.Context, raw string) (SavedPlace, bool) {
	places, err := s.saved.List(ctx)
	if err != nil {
		s.log.WithError(err).Warn("saved places unavailable")
		return SavedPlace{}, false
	}
	if len(places) == 0 {
		return SavedPlace{}, false
	}

	for _, sp := range places {
		if sp.Name == raw {
			return sp, true
		}
	}

	lower := strings.ToLower(raw)
	for _, sp := range places {
		n := strings.ToLower(sp.Name)
		if strings.Contains(lower, n) || strings.Contains(n, lower) {
			return sp, true
		}
	}

	if s.matcher == nil {
		return SavedPlace{}, false
	}
	names := make([]string, len(places))
	for i, sp := range places {
		names[i] = sp.Name
	}
	mctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	choice, err := s.matcher.MatchPlace(mctx, raw, names)
	if err != nil {
		s.log.WithError(err).Debug("place matcher failed")
		return SavedPlace{}, false
	}
	for _, sp := range places {
		if sp.Name == choice {
			return sp, true
		}
	}
	return SavedPlace{}, false
}

func (s *Service) nameForPoint(ctx context.Context, p types.Point, role Role) string {
	sp, ok, err := s.saved.FindNear(ctx, p)
	if err != nil {
		s.log.WithError(err).Debug("reverse saved place lookup failed")
	}
	if ok {
		return sp.Name
	}
	return role.defaultName()
}

func (s *Service) geocode(ctx context.Context, query string) (types.Point, error) {
	if s.geocoder == nil {
		return types.Point{}, errors.New("no geocoder configured")
	}
	var lastErr error
	for _, suffix := range geocodeSuffixes {
		gctx, cancel := context.WithTimeout(ctx, s.timeout)
		res, err := s.geocoder.Geocode(gctx, query+suffix)
		cancel()
		if err == nil {
			return res.Point, nil
		}
		lastErr = err
		s.log.WithFields(logrus.Fields{"query": query + suffix, "error": err}).Debug("geocode attempt failed")
	}
	return types.Point{}, lastErr
}
