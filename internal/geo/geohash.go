package geo

import (
	"github.com/mmcloughlin/geohash"

	"jeeny/internal/types"
)

// GeohashPrecision gives cells of roughly 5m x 5m, enough to treat two
// coordinates as the same saved place.
const GeohashPrecision = 9

func Geohash(p types.Point) string {
	return geohash.EncodeWithPrecision(p.Lat, p.Lng, GeohashPrecision)
}

// GeohashCells returns the cell containing p followed by its eight neighbours,
// so lookups do not miss a match sitting just across a cell edge.
func GeohashCells(p types.Point) []string {
	h := Geohash(p)
	return append([]string{h}, geohash.Neighbors(h)...)
}
