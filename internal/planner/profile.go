// Package planner derives a target-speed profile for a route from its
// geometry: corners limit speed through a lateral-acceleration budget, grades
// slow climbs and mildly reward descents, and the resulting profile is
// smoothed forward and backward under comfort acceleration limits so the
// vehicle never sees a demand it cannot physically follow.
package planner

import (
	"math"

	"github.com/ukydev/route-dynamics/internal/geo"
	"github.com/ukydev/route-dynamics/internal/models"
)

// Config bounds the planner's output.
type Config struct {
	MaxSpeedKmh   float64 `yaml:"max_speed_kmh"`
	MinSpeedKmh   float64 `yaml:"min_speed_kmh"`
	MaxLateralMs2 float64 `yaml:"max_lateral_ms2"`
	ComfortAccel  float64 `yaml:"comfort_accel_ms2"`
	ComfortDecel  float64 `yaml:"comfort_decel_ms2"`
}

// DefaultConfig returns bus-like comfort limits.
func DefaultConfig() Config {
	return Config{
		MaxSpeedKmh:   120.0,
		MinSpeedKmh:   15.0,
		MaxLateralMs2: 2.0,
		ComfortAccel:  1.8,
		ComfortDecel:  3.5,
	}
}

// TargetSpeeds returns one target speed (m/s) per route point. The first
// entry mirrors the second so a run has a sensible launch target.
func TargetSpeeds(points []models.RoutePoint, cfg Config) []float64 {
	n := len(points)
	targets := make([]float64, n)
	if n == 0 {
		return targets
	}

	segDist := make([]float64, n)
	segHeading := make([]float64, n)
	for i := 1; i < n; i++ {
		a := geo.Point{Lat: points[i-1].Lat, Lon: points[i-1].Lon}
		b := geo.Point{Lat: points[i].Lat, Lon: points[i].Lon}
		segDist[i] = geo.Distance(a, b)
		segHeading[i] = geo.Bearing(a, b)
	}

	for i := 1; i < n; i++ {
		kmh := cfg.MaxSpeedKmh
		if i >= 2 {
			turn := geo.NormalizeAngle(segHeading[i] - segHeading[i-1])
			kmh = geo.CornerSpeedKmh(turn, math.Max(1.0, segDist[i]), cfg.MaxLateralMs2, cfg.MaxSpeedKmh)
		}
		kmh *= slopeFactor(points[i-1], points[i], segDist[i])
		targets[i] = clamp(kmh, cfg.MinSpeedKmh, cfg.MaxSpeedKmh) / 3.6
	}
	if n > 1 {
		targets[0] = targets[1]
	}

	smoothForward(targets, segDist, cfg)
	smoothBackward(targets, segDist, cfg)
	return targets
}

// slopeFactor reduces speed on climbs and allows a mild bonus downhill.
func slopeFactor(a, b models.RoutePoint, distM float64) float64 {
	if distM <= 1e-3 {
		return 1.0
	}
	s := geo.SlopeDeg(b.Elevation-a.Elevation, distM)
	switch {
	case s > 0:
		return math.Max(0.6, 1.0-0.03*s)
	case s < 0:
		return math.Min(1.10, 1.0-0.01*s)
	default:
		return 1.0
	}
}

// smoothForward caps how fast the profile may rise given the comfort
// acceleration and an estimate of the time available on each segment.
func smoothForward(v, segDist []float64, cfg Config) {
	if len(v) < 2 {
		return
	}
	prev := v[0]
	for i := 1; i < len(v); i++ {
		tEst := segmentTime(segDist[i], prev)
		if limit := prev + cfg.ComfortAccel*tEst; v[i] > limit {
			v[i] = limit
		}
		prev = v[i]
	}
}

// smoothBackward propagates braking demands upstream so the profile never
// asks for more deceleration than the comfort limit allows.
func smoothBackward(v, segDist []float64, cfg Config) {
	if len(v) < 2 {
		return
	}
	next := v[len(v)-1]
	for i := len(v) - 2; i >= 0; i-- {
		tEst := segmentTime(segDist[i+1], next)
		if limit := next + cfg.ComfortDecel*tEst; v[i] > limit {
			v[i] = limit
		}
		next = v[i]
	}
}

func segmentTime(distM, speedMs float64) float64 {
	return math.Max(0.3, math.Max(1.0, distM)/math.Max(speedMs, 0.5))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
