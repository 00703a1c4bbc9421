// Package geo contains pure geographic computation helpers on a spherical Earth.
package geo

import (
	"math"

	"jeeny/internal/types"
)

const (
	earthRadiusKm = 6371.0
	earthRadiusM  = earthRadiusKm * 1000

	// MetersPerDegreeLat is the flat-Earth approximation used for small offsets.
	MetersPerDegreeLat = 111000.0
)

// HaversineKm returns the great-circle distance in kilometres between a and b.
func HaversineKm(a, b types.Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// HaversineMeters is HaversineKm in metres.
func HaversineMeters(a, b types.Point) float64 {
	return HaversineKm(a, b) * 1000
}

// Destination solves the direct geodesic problem on a sphere: the point reached
// from origin after travelling distanceM metres on the initial bearing
// (degrees clockwise from north). The longitude is normalized to [-180, 180].
func Destination(origin types.Point, bearingDeg, distanceM float64) types.Point {
	lat1 := degreesToRadians(origin.Lat)
	lng1 := degreesToRadians(origin.Lng)
	brng := degreesToRadians(bearingDeg)
	ang := distanceM / earthRadiusM

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(ang) +
		math.Cos(lat1)*math.Sin(ang)*math.Cos(brng))
	lng2 := lng1 + math.Atan2(
		math.Sin(brng)*math.Sin(ang)*math.Cos(lat1),
		math.Cos(ang)-math.Sin(lat1)*math.Sin(lat2),
	)

	return types.Point{
		Lat: radiansToDegrees(lat2),
		Lng: NormalizeLng(radiansToDegrees(lng2)),
	}
}

// FlatOffset shifts origin by distanceM*factor metres along angleRad using a
// local flat-Earth projection. The angle is measured from east, so sin drives
// latitude and cos drives longitude.
func FlatOffset(origin types.Point, angleRad, distanceM, factor float64) types.Point {
	d := distanceM * factor
	return types.Point{
		Lat: origin.Lat + d*math.Sin(angleRad)/MetersPerDegreeLat,
		Lng: origin.Lng + d*math.Cos(angleRad)/MetersPerDegreeLng(origin.Lat),
	}
}

// MetersPerDegreeLng is the length of one degree of longitude at lat.
func MetersPerDegreeLng(lat float64) float64 {
	return MetersPerDegreeLat * math.Cos(degreesToRadians(lat))
}

// NormalizeLng wraps a longitude into [-180, 180].
func NormalizeLng(lng float64) float64 {
	if lng >= -180 && lng <= 180 {
		return lng
	}
	lng = math.Mod(lng+180, 360)
	if lng < 0 {
		lng += 360
	}
	return lng - 180
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func radiansToDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
