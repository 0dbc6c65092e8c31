package dynamics

import "math"

// Policy is the acceleration capability the driver depends on: given the
// current speed, a target speed and the road grade, produce one bounded
// longitudinal acceleration. The full Engine and ProportionalPolicy both
// satisfy it; configuration decides which one a run uses.
type Policy interface {
	Acceleration(currentSpeedMs, targetSpeedMs, gradeRad float64) float64
}

// ProportionalPolicy is the simple controller variant: a piecewise
// proportional law on speed error with no drivetrain model. Grade is ignored.
type ProportionalPolicy struct {
	Deadband    float64
	MaxAccelMs2 float64
	MaxDecelMs2 float64
}

// NewProportionalPolicy returns the simple policy with the stock bounds.
func NewProportionalPolicy() *ProportionalPolicy {
	t := DefaultTuning()
	return &ProportionalPolicy{
		Deadband:    t.Deadband,
		MaxAccelMs2: t.MaxAccelMs2,
		MaxDecelMs2: t.MaxDecelMs2,
	}
}

// Acceleration implements Policy. Large errors saturate at 2.5 m/s², small
// ones decay proportionally, and errors inside the deadband hold speed.
func (p *ProportionalPolicy) Acceleration(currentSpeedMs, targetSpeedMs, _ float64) float64 {
	err := targetSpeedMs - currentSpeedMs
	if math.Abs(err) <= p.Deadband {
		return 0
	}
	var accel float64
	if math.Abs(err) > 1.0 {
		accel = math.Copysign(math.Min(2.5, math.Abs(err)), err)
	} else {
		accel = 0.5 * err
	}
	return math.Max(p.MaxDecelMs2, math.Min(p.MaxAccelMs2, accel))
}

// TargetTracker rate-limits a target-speed profile so step discontinuities in
// the profile cannot demand unrealistic instantaneous accelerations. The first
// value seeds the tracker.
type TargetTracker struct {
	maxDeltaMs float64 // per step
	current    float64
	seeded     bool
}

// NewTargetTracker builds a tracker allowing at most maxDeltaMs of target
// change per step. A non-positive limit disables rate limiting.
func NewTargetTracker(maxDeltaMs float64) *TargetTracker {
	return &TargetTracker{maxDeltaMs: maxDeltaMs}
}

// Next ramps the tracked target toward raw and returns it, floored at zero.
func (t *TargetTracker) Next(raw float64) float64 {
	if !t.seeded || t.maxDeltaMs <= 0 {
		t.current = raw
		t.seeded = true
	} else {
		delta := raw - t.current
		if delta > t.maxDeltaMs {
			delta = t.maxDeltaMs
		} else if delta < -t.maxDeltaMs {
			delta = -t.maxDeltaMs
		}
		t.current += delta
	}
	if t.current < 0 {
		t.current = 0
	}
	return t.current
}
