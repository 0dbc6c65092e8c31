// Package sim drives one simulation run end to end: it loads a route, walks
// it once in index order feeding the estimator and the dynamics engine in
// lockstep, and assembles the telemetry sequence plus summary statistics into
// a single atomically written artifact.
package sim

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/route-dynamics/internal/config"
	"github.com/ukydev/route-dynamics/internal/dynamics"
	"github.com/ukydev/route-dynamics/internal/estimator"
	"github.com/ukydev/route-dynamics/internal/geo"
	"github.com/ukydev/route-dynamics/internal/models"
	"github.com/ukydev/route-dynamics/internal/planner"
)

// Runner orchestrates a single-threaded batch run. The estimator and the
// dynamics engine are owned exclusively by the runner for the run's duration;
// output is deterministic for fixed input and configuration.
type Runner struct {
	cfg config.Config
}

// NewRunner builds a runner from a validated configuration.
func NewRunner(cfg config.Config) *Runner {
	return &Runner{cfg: cfg}
}

// segment holds the per-index quantities derived from consecutive raw points.
type segment struct {
	distM    float64
	heading  float64
	slopeDeg float64
	speedMs  float64
}

// Run iterates the route once and returns the complete result. The route must
// already be validated; fewer than two points is a fatal input error.
func (r *Runner) Run(route []models.RoutePoint) (*models.RunResult, error) {
	if len(route) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 valid points, got %d", ErrMalformedInput, len(route))
	}
	lim := r.cfg.Driver

	origin := geo.Point{Lat: route[0].Lat, Lon: route[0].Lon}
	meas := make([]geo.XY, len(route))
	for i, p := range route {
		meas[i] = geo.ToLocalPlane(origin, geo.Point{Lat: p.Lat, Lon: p.Lon})
	}

	initDT := lim.DefaultDT
	if dt0 := route[1].Timestamp - route[0].Timestamp; isFinite(dt0) && dt0 > 0 {
		initDT = clamp(dt0, lim.MinDT, lim.MaxDT)
	}

	flt := estimator.New(initDT, r.cfg.Estimator)
	if err := flt.Init([]float64{meas[0].X, meas[0].Y, 0, 0, 0}); err != nil {
		return nil, err
	}

	segs := r.deriveSegments(route, initDT)
	targets := planner.TargetSpeeds(route, r.cfg.Planner)

	policy := r.cfg.BuildPolicy()
	engine, hasEngine := policy.(*dynamics.Engine)
	tracker := dynamics.NewTargetTracker(lim.TargetRampMsPerS * initDT)

	log.WithFields(log.Fields{
		"points": len(route),
		"policy": r.cfg.Policy,
	}).Info("Starting simulation run")

	result := &models.RunResult{
		Route:          route,
		EnhancedResult: make([]models.TelemetryRecord, 0, len(route)),
	}

	var totalDist, timeAccum float64
	vehState := dynamics.VehicleState{CurrentGear: 1, EngineRPM: r.cfg.Vehicle.IdleRPM}

	prevSpeed := segs[1].speedMs
	prevHeading := segs[1].heading
	prevTimestamp := route[0].Timestamp

	for i := range route {
		dt := clamp(route[i].Timestamp-prevTimestamp, lim.MinDT, lim.MaxDT)
		if i == 0 {
			dt = initDT
		}
		prevTimestamp = route[i].Timestamp
		timeAccum += dt

		if i > 0 {
			flt.SetDeltaT(dt)
		}
		if err := flt.Update([]float64{meas[i].X, meas[i].Y}); err != nil {
			return nil, fmt.Errorf("waypoint %d: %w", i+1, err)
		}
		state := flt.State()
		fused := geo.FromLocalPlane(origin, geo.XY{X: state[0], Y: state[1]})

		v := prevSpeed
		hdg := prevHeading
		if i > 0 {
			v = segs[i].speedMs
			hdg = segs[i].heading
		}

		var yawRate, accelLong float64
		if i > 0 {
			yawRate = clamp(geo.NormalizeAngle(hdg-prevHeading)/dt, -lim.MaxYawRate, lim.MaxYawRate)
			accelLong = clamp((v-prevSpeed)/dt, lim.MaxLongDecel, lim.MaxLongAccel)
		}

		flt.Predict(accelLong, yawRate)

		// Drivetrain step against the rate-limited target profile.
		target := tracker.Next(targets[i])
		if hasEngine {
			vehState.GradeRad = segs[max(i, 1)].slopeDeg * geo.Deg2Rad
			vehState.ElevationM = route[i].Elevation
			vehState = engine.Step(vehState, target, dt)
		} else {
			a := policy.Acceleration(vehState.SpeedMs, target, vehState.GradeRad)
			vehState.AccelerationMs2 = a
			vehState.PositionM += vehState.SpeedMs*dt + 0.5*a*dt*dt
			vehState.SpeedMs = math.Max(0, vehState.SpeedMs+a*dt)
		}

		accelLat := v * yawRate
		roll := clamp(accelLat/lim.GravityMs2, -lim.MaxRollRad, lim.MaxRollRad)
		pitch := segs[max(i, 1)].slopeDeg * geo.Deg2Rad

		result.EnhancedResult = append(result.EnhancedResult, models.TelemetryRecord{
			Waypoint:        i + 1,
			Lat:             route[i].Lat,
			Lon:             route[i].Lon,
			Elevation:       route[i].Elevation,
			FusedLat:        fused.Lat,
			FusedLon:        fused.Lon,
			Distance:        segs[i].distM,
			SpeedKmh:        v * 3.6,
			TargetSpeedKmh:  target * 3.6,
			AccelerationMs2: accelLong,
			HeadingDeg:      hdg * geo.Rad2Deg,
			SlopeDeg:        segs[i].slopeDeg,
			TimeSec:         timeAccum,
			IMU: models.IMUReading{
				AccelX: accelLong,
				AccelY: accelLat,
				AccelZ: lim.GravityMs2,
				GyroZ:  yawRate,
				MagX:   lim.MagFieldUT * math.Cos(hdg+lim.MagDeclinationRad),
				MagY:   lim.MagFieldUT * math.Sin(hdg+lim.MagDeclinationRad),
			},
			VehicleState: models.Attitude{
				VelocityMs: v,
				HeadingRad: hdg,
				PitchRad:   pitch,
				RollRad:    roll,
			},
			Engine: models.EngineTelemetry{
				RPM:             vehState.EngineRPM,
				Gear:            vehState.CurrentGear,
				ThrottlePercent: vehState.ThrottlePercent,
				BrakePercent:    vehState.BrakePercent,
			},
		})

		totalDist += segs[i].distM
		prevSpeed = v
		prevHeading = hdg
	}

	result.Statistics = models.Statistics{
		TotalDistanceM: totalDist,
		NumPoints:      len(route),
		DurationS:      route[len(route)-1].Timestamp - route[0].Timestamp,
	}

	log.WithFields(log.Fields{
		"points":           result.Statistics.NumPoints,
		"total_distance_m": result.Statistics.TotalDistanceM,
		"duration_s":       result.Statistics.DurationS,
	}).Info("Simulation run finished")

	return result, nil
}

// deriveSegments precomputes distance, heading, slope and raw speed for each
// consecutive pair of route points. Index 0 is the zero segment.
func (r *Runner) deriveSegments(route []models.RoutePoint, initDT float64) []segment {
	lim := r.cfg.Driver
	segs := make([]segment, len(route))
	for i := 1; i < len(route); i++ {
		a := geo.Point{Lat: route[i-1].Lat, Lon: route[i-1].Lon}
		b := geo.Point{Lat: route[i].Lat, Lon: route[i].Lon}

		d := geo.Distance(a, b)
		dt := route[i].Timestamp - route[i-1].Timestamp
		if !isFinite(dt) {
			dt = initDT
		} else {
			dt = clamp(dt, lim.MinDT, lim.MaxDT)
		}

		segs[i] = segment{
			distM:    d,
			heading:  geo.Bearing(a, b),
			slopeDeg: geo.SlopeDeg(route[i].Elevation-route[i-1].Elevation, math.Max(d, 1e-3)),
			speedMs:  d / math.Max(dt, 1e-6),
		}
	}
	return segs
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
