// Package geo provides the geodetic helpers the simulator runs on: great-circle
// distance, bearings, a small-area planar projection, and slope. All routines
// assume a spherical Earth; route extents are tens of kilometres at most, so
// the equirectangular local frame is accurate enough for position fusion.
package geo

import "math"

const (
	// EarthRadiusM is the WGS84 equatorial radius in metres.
	EarthRadiusM = 6378137.0

	Deg2Rad = math.Pi / 180.0
	Rad2Deg = 180.0 / math.Pi
)

// Point is a geodetic coordinate in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// XY is a position in a local planar frame, metres east/north of the origin.
type XY struct {
	X float64
	Y float64
}

// Distance returns the great-circle distance between a and b in metres,
// using the haversine formula.
func Distance(a, b Point) float64 {
	dLat := (b.Lat - a.Lat) * Deg2Rad
	dLon := (b.Lon - a.Lon) * Deg2Rad
	lat1 := a.Lat * Deg2Rad
	lat2 := b.Lat * Deg2Rad

	s := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(s), math.Sqrt(1-s))
	return EarthRadiusM * c
}

// Bearing returns the initial heading from a to b in radians, in (-pi, pi].
func Bearing(a, b Point) float64 {
	dLon := (b.Lon - a.Lon) * Deg2Rad
	lat1 := a.Lat * Deg2Rad
	lat2 := b.Lat * Deg2Rad

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	return math.Atan2(y, x)
}

// ToLocalPlane projects p into the planar frame anchored at origin using an
// equirectangular approximation. Longitude is scaled by the cosine of the
// mean latitude so east-west metres stay honest away from the equator.
func ToLocalPlane(origin, p Point) XY {
	meanLat := (origin.Lat + p.Lat) * 0.5 * Deg2Rad
	return XY{
		X: (p.Lon - origin.Lon) * Deg2Rad * EarthRadiusM * math.Cos(meanLat),
		Y: (p.Lat - origin.Lat) * Deg2Rad * EarthRadiusM,
	}
}

// FromLocalPlane inverts ToLocalPlane. Latitude recovers directly, which
// makes the forward projection's mean latitude available for the longitude
// scale, so the round-trip is exact.
func FromLocalPlane(origin Point, xy XY) Point {
	lat := origin.Lat + (xy.Y/EarthRadiusM)*Rad2Deg
	latMid := (origin.Lat + lat) * 0.5 * Deg2Rad
	return Point{
		Lat: lat,
		Lon: origin.Lon + (xy.X/(EarthRadiusM*math.Cos(latMid)))*Rad2Deg,
	}
}

// SlopeDeg returns the road grade in degrees for an elevation change over a
// horizontal distance. Distances at or below a millimetre are treated as
// degenerate and yield zero rather than a spike.
func SlopeDeg(dzM, distM float64) float64 {
	if distM <= 1e-3 {
		return 0.0
	}
	return math.Atan2(dzM, distM) * Rad2Deg
}

// NormalizeAngle wraps an angle into (-pi, pi].
func NormalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// CornerSpeedKmh estimates the comfortable speed through a bend from the
// heading change across a segment. The bend is modelled as an arc of radius
// segment/angle and the speed bounded by a lateral-acceleration budget, with
// extra reduction for sharp turns.
func CornerSpeedKmh(turnAngleRad, segmentLenM, maxLateralMs2, maxSpeedKmh float64) float64 {
	if math.Abs(turnAngleRad) < 1e-3 {
		return maxSpeedKmh
	}
	radius := math.Max(1.0, segmentLenM/math.Max(1e-3, math.Abs(turnAngleRad)))
	vmax := math.Min(math.Sqrt(maxLateralMs2*radius)*3.6, maxSpeedKmh)

	turnDeg := math.Abs(turnAngleRad) * Rad2Deg
	switch {
	case turnDeg > 90:
		vmax *= 0.35
	case turnDeg > 60:
		vmax *= 0.55
	case turnDeg > 30:
		vmax *= 0.75
	}
	return math.Max(15.0, vmax)
}
