package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance_Symmetry(t *testing.T) {
	pairs := [][2]Point{
		{{Lat: 41.0, Lon: 29.0}, {Lat: 41.01, Lon: 29.02}},
		{{Lat: 51.5074, Lon: -0.1278}, {Lat: 51.4816, Lon: -3.1791}},
		{{Lat: -33.8688, Lon: 151.2093}, {Lat: -33.9, Lon: 151.3}},
	}
	for _, p := range pairs {
		assert.InDelta(t, Distance(p[0], p[1]), Distance(p[1], p[0]), 1e-9)
	}
}

func TestDistance_ZeroForIdenticalPoints(t *testing.T) {
	p := Point{Lat: 41.0082, Lon: 28.9784}
	assert.Equal(t, 0.0, Distance(p, p))
}

func TestDistance_KnownSegment(t *testing.T) {
	// ~100 m due north near Istanbul: 0.0009 deg of latitude.
	a := Point{Lat: 41.0000, Lon: 29.0000}
	b := Point{Lat: 41.0009, Lon: 29.0000}
	assert.InDelta(t, 100.0, Distance(a, b), 1.0)
}

func TestBearing_CardinalDirections(t *testing.T) {
	origin := Point{Lat: 41.0, Lon: 29.0}

	north := Bearing(origin, Point{Lat: 41.001, Lon: 29.0})
	assert.InDelta(t, 0.0, north, 1e-3)

	east := Bearing(origin, Point{Lat: 41.0, Lon: 29.001})
	assert.InDelta(t, math.Pi/2, east, 1e-3)

	south := Bearing(origin, Point{Lat: 40.999, Lon: 29.0})
	assert.InDelta(t, math.Pi, math.Abs(south), 1e-3)
}

func TestLocalPlane_RoundTrip(t *testing.T) {
	origin := Point{Lat: 41.0082, Lon: 28.9784}
	points := []Point{
		{Lat: 41.0082, Lon: 28.9784},
		{Lat: 41.05, Lon: 29.02},
		{Lat: 40.97, Lon: 28.93},
		{Lat: 41.01, Lon: 28.99},
		// Diagonal displacements near the 10 km edge of the frame, where an
		// inverse using the wrong latitude scale drifts past 1e-5 degrees.
		{Lat: 41.0682, Lon: 29.0584},
		{Lat: 40.9482, Lon: 28.8984},
	}
	for _, p := range points {
		back := FromLocalPlane(origin, ToLocalPlane(origin, p))
		assert.InDelta(t, p.Lat, back.Lat, 1e-6)
		assert.InDelta(t, p.Lon, back.Lon, 1e-6)
	}
}

func TestSlopeDeg(t *testing.T) {
	// 10 m rise over 100 m horizontal: atan(0.1) ~ 5.71 deg.
	assert.InDelta(t, 5.71, SlopeDeg(10, 100), 0.01)
	assert.InDelta(t, -5.71, SlopeDeg(-10, 100), 0.01)

	// Degenerate horizontal distance must not blow up.
	assert.Equal(t, 0.0, SlopeDeg(10, 0))
	assert.Equal(t, 0.0, SlopeDeg(10, 1e-4))
}

func TestNormalizeAngle(t *testing.T) {
	assert.InDelta(t, -math.Pi/2, NormalizeAngle(3*math.Pi/2), 1e-12)
	assert.InDelta(t, math.Pi/2, NormalizeAngle(-3*math.Pi/2), 1e-12)
	assert.InDelta(t, 0.0, NormalizeAngle(4*math.Pi), 1e-12)
	assert.InDelta(t, math.Pi, NormalizeAngle(math.Pi), 1e-12)
	assert.InDelta(t, 1.0, NormalizeAngle(1.0), 1e-12)
}

func TestCornerSpeedKmh(t *testing.T) {
	// Straight segment keeps the cap.
	assert.Equal(t, 120.0, CornerSpeedKmh(0.0, 50, 2.0, 120))

	// Sharper turns slow the vehicle more.
	gentle := CornerSpeedKmh(0.1, 50, 2.0, 120)
	sharp := CornerSpeedKmh(1.2, 50, 2.0, 120)
	assert.Greater(t, gentle, sharp)

	// Floor at 15 km/h even for hairpins.
	assert.GreaterOrEqual(t, CornerSpeedKmh(math.Pi, 5, 2.0, 120), 15.0)
}
