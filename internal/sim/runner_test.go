package sim

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ukydev/route-dynamics/internal/config"
	"github.com/ukydev/route-dynamics/internal/models"
)

// straightRoute runs due north along a meridian with one point per second,
// roughly 11.1 m apart.
func straightRoute(n int) []models.RoutePoint {
	points := make([]models.RoutePoint, n)
	for i := range points {
		points[i] = models.RoutePoint{
			Lat:       41.0 + float64(i)*0.0001,
			Lon:       29.0,
			Timestamp: float64(i),
		}
	}
	return points
}

func TestRun_TooFewPoints(t *testing.T) {
	r := NewRunner(config.Default())
	_, err := r.Run([]models.RoutePoint{{Lat: 41.0, Lon: 29.0}})
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestRun_StraightRoute(t *testing.T) {
	route := straightRoute(10)
	r := NewRunner(config.Default())

	result, err := r.Run(route)
	assert.NoError(t, err)
	assert.Len(t, result.EnhancedResult, 10)

	assert.Equal(t, 10, result.Statistics.NumPoints)
	assert.InDelta(t, 9.0, result.Statistics.DurationS, 1e-9)
	assert.InDelta(t, 100.2, result.Statistics.TotalDistanceM, 1.0)

	first := result.EnhancedResult[0]
	second := result.EnhancedResult[1]

	// Waypoints number from 1 and the first record borrows the kinematics
	// of the first real segment.
	assert.Equal(t, 1, first.Waypoint)
	assert.Equal(t, 10, result.EnhancedResult[9].Waypoint)
	assert.InDelta(t, second.SpeedKmh, first.SpeedKmh, 1e-9)
	assert.Equal(t, 0.0, first.Distance)

	for i, rec := range result.EnhancedResult {
		if i == 0 {
			continue
		}
		// Constant spacing at 1 Hz: ~11.1 m/s due north, no turning, flat.
		assert.InDelta(t, 11.13, rec.Distance/1.0, 0.05, "waypoint %d", rec.Waypoint)
		assert.InDelta(t, 40.1, rec.SpeedKmh, 0.5, "waypoint %d", rec.Waypoint)
		assert.InDelta(t, 0.0, rec.HeadingDeg, 0.01, "waypoint %d", rec.Waypoint)
		assert.InDelta(t, 0.0, rec.SlopeDeg, 1e-6)
		assert.InDelta(t, 0.0, rec.IMU.GyroZ, 1e-6)
		assert.InDelta(t, 0.0, rec.AccelerationMs2, 0.05)
		assert.Greater(t, rec.TimeSec, result.EnhancedResult[i-1].TimeSec)
	}

	// Magnetometer points along magnetic north for a northbound heading.
	assert.InDelta(t, 60.0, second.IMU.MagX, 0.1)
	assert.InDelta(t, 0.0, second.IMU.MagY, 0.1)
	assert.InDelta(t, 9.80665, second.IMU.AccelZ, 1e-9)

	// The fused track settles onto the measurements.
	last := result.EnhancedResult[9]
	assert.InDelta(t, route[9].Lat, last.FusedLat, 5e-4)
	assert.InDelta(t, route[9].Lon, last.FusedLon, 5e-4)

	// Drivetrain telemetry is populated on every record.
	for _, rec := range result.EnhancedResult {
		assert.GreaterOrEqual(t, rec.Engine.Gear, 1)
		assert.GreaterOrEqual(t, rec.Engine.RPM, 0.0)
		assert.GreaterOrEqual(t, rec.TargetSpeedKmh, 0.0)
	}
}

func TestRun_CornerKinematics(t *testing.T) {
	// Northbound leg, right-angle turn, eastbound leg.
	points := []models.RoutePoint{}
	for i := 0; i < 5; i++ {
		points = append(points, models.RoutePoint{
			Lat: 41.0 + float64(i)*0.0001, Lon: 29.0, Timestamp: float64(i),
		})
	}
	for i := 1; i < 5; i++ {
		points = append(points, models.RoutePoint{
			Lat: 41.0004, Lon: 29.0 + float64(i)*0.0001, Timestamp: float64(4 + i),
		})
	}

	r := NewRunner(config.Default())
	result, err := r.Run(points)
	assert.NoError(t, err)

	var sawTurn bool
	for _, rec := range result.EnhancedResult {
		assert.LessOrEqual(t, math.Abs(rec.IMU.GyroZ), 0.6+1e-9)
		assert.LessOrEqual(t, math.Abs(rec.VehicleState.RollRad), 0.25+1e-9)
		if math.Abs(rec.IMU.GyroZ) > 0.1 {
			sawTurn = true
			// Lateral acceleration is consistent with v·ω.
			assert.InDelta(t, rec.VehicleState.VelocityMs*rec.IMU.GyroZ, rec.IMU.AccelY, 1e-9)
		}
	}
	assert.True(t, sawTurn, "expected the corner to register on the gyro")
}

func TestRun_UphillPitch(t *testing.T) {
	points := straightRoute(6)
	for i := range points {
		// 1 m of climb per ~11.1 m of travel, about 5.1 degrees.
		points[i].Elevation = float64(i)
	}

	r := NewRunner(config.Default())
	result, err := r.Run(points)
	assert.NoError(t, err)

	rec := result.EnhancedResult[3]
	assert.InDelta(t, 5.13, rec.SlopeDeg, 0.1)
	assert.InDelta(t, rec.SlopeDeg*math.Pi/180.0, rec.VehicleState.PitchRad, 1e-9)
}

func TestRun_Deterministic(t *testing.T) {
	route := straightRoute(8)

	a, err := NewRunner(config.Default()).Run(route)
	assert.NoError(t, err)
	b, err := NewRunner(config.Default()).Run(route)
	assert.NoError(t, err)

	aj, err := json.Marshal(a)
	assert.NoError(t, err)
	bj, err := json.Marshal(b)
	assert.NoError(t, err)
	assert.Equal(t, aj, bj)
}
