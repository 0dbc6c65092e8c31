// Package dynamics models the longitudinal behaviour of a road vehicle: a
// closed-loop speed controller saturating into traction and brake limits, a
// piecewise engine torque curve with discrete gear selection, and the
// resistances acting along the direction of travel. Everything here is pure:
// a given state, target and configuration always produce the same output.
package dynamics

import "math"

// Command is the drivetrain response to one control step.
type Command struct {
	AccelerationMs2 float64
	Gear            int
	ThrottlePercent float64
	BrakePercent    float64
}

// Engine is the full drivetrain model. It implements Policy.
type Engine struct {
	params VehicleParams
	tuning Tuning
}

// NewEngine builds a drivetrain model from vehicle parameters and control
// tuning.
func NewEngine(params VehicleParams, tuning Tuning) *Engine {
	return &Engine{params: params, tuning: tuning}
}

// Params returns the vehicle configuration the engine was built with.
func (e *Engine) Params() VehicleParams { return e.params }

// DragForce returns aerodynamic drag at the given speed: ½ρ·Cd·A·v².
func (e *Engine) DragForce(speedMs float64) float64 {
	return 0.5 * e.params.AirDensity * e.params.DragCoefficient *
		e.params.FrontalAreaM2 * speedMs * speedMs
}

// RollingForce returns rolling resistance with its mild speed dependence:
// Cr·m·g·(1 + v/100).
func (e *Engine) RollingForce(speedMs float64) float64 {
	return e.params.RollingResistance * e.params.MassKg * e.params.GravityMs2 *
		(1.0 + speedMs/100.0)
}

// GradeForce returns the gravity component along the road: m·g·sin(grade).
func (e *Engine) GradeForce(gradeRad float64) float64 {
	return e.params.MassKg * e.params.GravityMs2 * math.Sin(gradeRad)
}

// TotalResistance sums drag, rolling and grade resistance.
func (e *Engine) TotalResistance(speedMs, gradeRad float64) float64 {
	return e.DragForce(speedMs) + e.RollingForce(speedMs) + e.GradeForce(gradeRad)
}

// EngineRPM converts road speed and gear into crankshaft speed.
func (e *Engine) EngineRPM(speedMs float64, gear int) float64 {
	if gear < 1 || gear > GearCount {
		gear = 1
	}
	wheelRPM := (speedMs / e.params.WheelRadiusM) * 60.0 / (2.0 * math.Pi)
	return wheelRPM * e.params.GearRatios[gear-1] * e.params.FinalDriveRatio
}

// SelectGear picks the lowest gear that keeps the engine inside its efficient
// band at the current speed while leaving rev headroom at the target speed.
// Gear 1 is the safe default when nothing qualifies.
func (e *Engine) SelectGear(speedMs, targetSpeedMs float64) int {
	for gear := 1; gear <= GearCount; gear++ {
		rpm := e.EngineRPM(speedMs, gear)
		if rpm >= e.params.IdleRPM && rpm <= e.params.MaxRPM*0.85 {
			if e.EngineRPM(targetSpeedMs, gear) <= e.params.MaxRPM*0.9 {
				return gear
			}
		}
	}
	return 1
}

// ShouldUpshift reports whether the engine is revving past the efficient band.
func (e *Engine) ShouldUpshift(rpm, speedMs float64) bool {
	return rpm > e.params.OptimalRPM*1.3 && speedMs > 5.0
}

// ShouldDownshift reports whether the engine is lugging below the band.
func (e *Engine) ShouldDownshift(rpm, speedMs float64) bool {
	return rpm < e.params.IdleRPM*1.5 && speedMs > 2.0
}

// engineTorque evaluates the piecewise RPM-dependent torque curve, scaled by
// throttle. Segments: low ratio below idle, rising ramp to the optimal RPM,
// plateau to 0.8·max, then a declining ramp; ratio clamped to [0.2, 1.0].
func (e *Engine) engineTorque(rpm, throttlePercent float64) float64 {
	p := e.params
	var ratio float64
	switch {
	case rpm < p.IdleRPM:
		ratio = 0.3
	case rpm < p.OptimalRPM:
		ratio = 0.6 + 0.4*((rpm-p.IdleRPM)/(p.OptimalRPM-p.IdleRPM))
	case rpm < p.MaxRPM*0.8:
		ratio = 1.0
	default:
		ratio = 1.0 - 0.3*((rpm-p.MaxRPM*0.8)/(p.MaxRPM*0.2))
	}
	ratio = math.Max(0.2, math.Min(1.0, ratio))
	return p.MaxTorqueNm * ratio * (throttlePercent / 100.0)
}

// engineForce converts crankshaft torque into tractive force at the wheels.
func (e *Engine) engineForce(speedMs, throttlePercent float64, gear int) float64 {
	rpm := e.EngineRPM(speedMs, gear)
	torque := e.engineTorque(rpm, throttlePercent)
	totalRatio := e.params.GearRatios[gear-1] * e.params.FinalDriveRatio
	return (torque * totalRatio) / e.params.WheelRadiusM
}

// brakeForce is linear in pedal percentage up to the configured maximum.
func (e *Engine) brakeForce(brakePercent float64) float64 {
	return e.params.MaxBrakeForceN * (brakePercent / 100.0)
}

// Command runs one control step: speed error through the proportional law,
// then either the accelerate branch (gear selection, throttle map, torque
// curve, traction cap), the brake branch (brake map, ABS floor), or the
// constant-speed branch where net force exactly balances the resistances.
func (e *Engine) Command(currentSpeedMs, targetSpeedMs, gradeRad float64) Command {
	t := e.tuning
	if currentSpeedMs < 0 {
		currentSpeedMs = 0
	}
	if targetSpeedMs < 0 {
		targetSpeedMs = 0
	}

	speedError := targetSpeedMs - currentSpeedMs
	totalResistance := e.TotalResistance(currentSpeedMs, gradeRad)

	desired := t.Kp * speedError
	desired = math.Max(t.MaxDecelMs2, math.Min(t.MaxAccelMs2, desired))

	cmd := Command{Gear: e.SelectGear(currentSpeedMs, targetSpeedMs)}
	var netForce float64

	switch {
	case speedError > t.Deadband:
		throttle := math.Max(0, math.Min(100, desired*t.ThrottleScale+t.ThrottleOffset))
		if currentSpeedMs < t.LowSpeedThresholdMs {
			// traction-limited launch
			throttle = math.Min(throttle, t.LowSpeedThrottleCap)
		}
		engineForce := e.engineForce(currentSpeedMs, throttle, cmd.Gear)
		netForce = engineForce - totalResistance

		maxAvailable := engineForce / e.params.MassKg
		if maxAvailable > t.TractionLimitMs2 {
			maxAvailable = t.TractionLimitMs2
		}
		netForce = math.Min(netForce, e.params.MassKg*maxAvailable)
		cmd.ThrottlePercent = throttle

	case speedError < -t.Deadband:
		brake := math.Max(0, math.Min(100, -desired*t.BrakeScale))
		netForce = -(e.brakeForce(brake) + totalResistance)
		netForce = math.Max(netForce, -e.params.MassKg*t.MaxBrakeDecelMs2)
		cmd.BrakePercent = brake

	default:
		// Hold speed: engine force cancels the resistances exactly.
		netForce = 0
	}

	accel := netForce / e.params.MassKg
	cmd.AccelerationMs2 = math.Max(t.MaxDecelMs2, math.Min(t.MaxAccelMs2, accel))
	return cmd
}

// Acceleration implements Policy using the full drivetrain model.
func (e *Engine) Acceleration(currentSpeedMs, targetSpeedMs, gradeRad float64) float64 {
	return e.Command(currentSpeedMs, targetSpeedMs, gradeRad).AccelerationMs2
}

// Step integrates the vehicle state forward by dt toward the target speed.
// Speed is floored at zero; position advances with the speed held over the
// step plus the acceleration term.
func (e *Engine) Step(state VehicleState, targetSpeedMs, dt float64) VehicleState {
	cmd := e.Command(state.SpeedMs, targetSpeedMs, state.GradeRad)

	next := state
	next.AccelerationMs2 = cmd.AccelerationMs2
	next.SpeedMs = math.Max(0, state.SpeedMs+cmd.AccelerationMs2*dt)
	next.PositionM = state.PositionM + state.SpeedMs*dt + 0.5*cmd.AccelerationMs2*dt*dt

	next.CurrentGear = e.shiftGear(state.CurrentGear, next.SpeedMs, targetSpeedMs)
	next.EngineRPM = e.EngineRPM(next.SpeedMs, next.CurrentGear)
	next.ThrottlePercent = cmd.ThrottlePercent
	next.BrakePercent = cmd.BrakePercent
	return next
}

// shiftGear moves at most one gear per step toward the gear SelectGear wants,
// gated by the shift hints so the box neither hunts between adjacent gears
// nor skips ratios.
func (e *Engine) shiftGear(current int, speedMs, targetSpeedMs float64) int {
	if current < 1 || current > GearCount {
		current = 1
	}
	want := e.SelectGear(speedMs, targetSpeedMs)
	rpm := e.EngineRPM(speedMs, current)
	switch {
	case want > current && e.ShouldUpshift(rpm, speedMs):
		return current + 1
	case want < current && e.ShouldDownshift(rpm, speedMs):
		return current - 1
	}
	return current
}
