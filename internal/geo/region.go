package geo

import (
	"math"

	"jeeny/internal/types"
)

// Region is an axis-aligned lat/lng bounding box.
type Region struct {
	MinLat float64 `mapstructure:"min_lat"`
	MaxLat float64 `mapstructure:"max_lat"`
	MinLng float64 `mapstructure:"min_lng"`
	MaxLng float64 `mapstructure:"max_lng"`
}

// DefaultRegion is the operating box around Jordan.
var DefaultRegion = Region{MinLat: 29.0, MaxLat: 33.5, MinLng: 34.8, MaxLng: 39.5}

func (r Region) Contains(p types.Point) bool {
	return p.Lat >= r.MinLat && p.Lat <= r.MaxLat &&
		p.Lng >= r.MinLng && p.Lng <= r.MaxLng
}

// ValidPoint reports whether p is a finite coordinate inside the WGS-84 ranges.
func ValidPoint(p types.Point) bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}
