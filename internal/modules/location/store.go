// README: Saved place stores backed by PostgreSQL or an in-memory table.
package location

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"jeeny/internal/geo"
	"jeeny/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) List(ctx context.Context) ([]SavedPlace, error) {
	rows, err := s.db.Query(ctx, `SELECT name, value, lat, lng, geohash FROM saved_places ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list saved places: %w", err)
	}
	defer rows.Close()
	return scanSavedPlaces(rows)
}

func (s *Store) FindNear(ctx context.Context, p types.Point) (SavedPlace, bool, error) {
	rows, err := s.db.Query(ctx, `
		SELECT name, value, lat, lng, geohash
		FROM saved_places
		WHERE geohash = ANY($1)`, geo.GeohashCells(p))
	if err != nil {
		return SavedPlace{}, false, fmt.Errorf("find saved place: %w", err)
	}
	defer rows.Close()

	places, err := scanSavedPlaces(rows)
	if err != nil {
		return SavedPlace{}, false, err
	}
	sp, ok := nearest(places, p)
	return sp, ok, nil
}

func (s *Store) Save(ctx context.Context, sp SavedPlace) error {
	var lat, lng *float64
	var hash *string
	if sp.Point != nil {
		lat, lng, hash = &sp.Point.Lat, &sp.Point.Lng, &sp.Geohash
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO saved_places (name, value, lat, lng, geohash)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE
		SET value = EXCLUDED.value, lat = EXCLUDED.lat, lng = EXCLUDED.lng, geohash = EXCLUDED.geohash`,
		sp.Name, sp.Value, lat, lng, hash)
	if err != nil {
		return fmt.Errorf("save place %q: %w", sp.Name, err)
	}
	return nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanSavedPlaces(rows rowScanner) ([]SavedPlace, error) {
	var out []SavedPlace
	for rows.Next() {
		var (
			sp       SavedPlace
			lat, lng *float64
			hash     *string
		)
		if err := rows.Scan(&sp.Name, &sp.Value, &lat, &lng, &hash); err != nil {
			return nil, fmt.Errorf("scan saved place: %w", err)
		}
		if lat != nil && lng != nil {
			sp.Point = &types.Point{Lat: *lat, Lng: *lng}
		}
		if hash != nil {
			sp.Geohash = *hash
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

func nearest(places []SavedPlace, p types.Point) (SavedPlace, bool) {
	var (
		best  SavedPlace
		bestD = -1.0
	)
	for _, sp := range places {
		if sp.Point == nil {
			continue
		}
		d := geo.HaversineMeters(p, *sp.Point)
		if bestD < 0 || d < bestD {
			best, bestD = sp, d
		}
	}
	return best, bestD >= 0
}

// StaticPlaces keeps saved places in memory. Used by the terminal client and
// whenever no database is configured.
type StaticPlaces struct {
	mu     sync.RWMutex
	places map[string]SavedPlace
}

func NewStaticPlaces(entries map[string]string) *StaticPlaces {
	s := &StaticPlaces{places: make(map[string]SavedPlace, len(entries))}
	for name, value := range entries {
		s.places[name] = NewSavedPlace(name, value)
	}
	return s
}

// LoadStaticPlaces reads a JSON object of name -> address or "lat,lng".
func LoadStaticPlaces(path string) (*StaticPlaces, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read saved places: %w", err)
	}
	var entries map[string]string
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse saved places %s: %w", path, err)
	}
	return NewStaticPlaces(entries), nil
}

func (s *StaticPlaces) List(_ context.Context) ([]SavedPlace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SavedPlace, 0, len(s.places))
	for _, sp := range s.places {
		out = append(out, sp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *StaticPlaces) FindNear(_ context.Context, p types.Point) (SavedPlace, bool, error) {
	cells := make(map[string]bool)
	for _, c := range geo.GeohashCells(p) {
		cells[c] = true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var hits []SavedPlace
	for _, sp := range s.places {
		if cells[sp.Geohash] {
			hits = append(hits, sp)
		}
	}
	sp, ok := nearest(hits, p)
	return sp, ok, nil
}

func (s *StaticPlaces) Save(_ context.Context, sp SavedPlace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.places[sp.Name] = sp
	return nil
}
