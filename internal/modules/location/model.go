// README: Resolved locations and the user's saved places.
package location

import (
	"context"
	"errors"
	"regexp"
	"strconv"

	"jeeny/internal/geo"
	"jeeny/internal/maps"
	"jeeny/internal/types"
)

var (
	ErrEmptyPlace      = errors.New("empty place")
	ErrGeocodingFailed = errors.New("geocoding failed")
	ErrOutOfRegion     = errors.New("location outside service area")
)

// Role says which end of the trip a place is being resolved for.
type Role int

const (
	RoleStart Role = iota
	RoleEnd
)

// defaultName labels a bare coordinate that matches no saved place.
func (r Role) defaultName() string {
	if r == RoleEnd {
		return "الوجهة المحددة"
	}
	return "الموقع المحدد"
}

// Location is a named coordinate. Edits return a new value.
type Location struct {
	Name  string      `json:"name"`
	Point types.Point `json:"point"`
}

func (l Location) Rename(name string) Location {
	l.Name = name
	return l
}

func (l Location) WithPoint(p types.Point) Location {
	l.Point = p
	return l
}

// SavedPlace maps a personal name ("البيت") to either an address or a
// literal "lat,lng". Point and Geohash are set only for literal coordinates.
type SavedPlace struct {
	Name    string       `json:"name"`
	Value   string       `json:"value"`
	Point   *types.Point `json:"point,omitempty"`
	Geohash string       `json:"geohash,omitempty"`
}

// NewSavedPlace fills Point and Geohash when value is a coordinate.
func NewSavedPlace(name, value string) SavedPlace {
	sp := SavedPlace{Name: name, Value: value}
	if p, ok := ParseCoordinates(value); ok {
		sp.Point = &p
		sp.Geohash = geo.Geohash(p)
	}
	return sp
}

// SavedPlaces is the saved place repository.
type SavedPlaces interface {
	List(ctx context.Context) ([]SavedPlace, error)
	// FindNear returns the saved place closest to p among those sharing one
	// of its geohash cells.
	FindNear(ctx context.Context, p types.Point) (SavedPlace, bool, error)
	Save(ctx context.Context, sp SavedPlace) error
}

// Geocoder resolves an address to a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (maps.GeocodeResult, error)
}

// PlaceMatcher picks which saved name, if any, the user meant. It returns ""
// when none fits.
type PlaceMatcher interface {
	MatchPlace(ctx context.Context, place string, candidates []string) (string, error)
}

var coordPattern = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*$`)

// ParseCoordinates accepts "lat,lng" with optional spaces.
func ParseCoordinates(s string) (types.Point, bool) {
	m := coordPattern.FindStringSubmatch(s)
	if m == nil {
		return types.Point{}, false
	}
	lat, err1 := strconv.ParseFloat(m[1], 64)
	lng, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil {
		return types.Point{}, false
	}
	p := types.Point{Lat: lat, Lng: lng}
	if !geo.ValidPoint(p) {
		return types.Point{}, false
	}
	return p, true
}
