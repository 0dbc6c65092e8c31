// Package estimator implements the recursive position/velocity/heading filter
// that fuses planar position measurements with synthesized inertial inputs.
//
// The state is [x, y, vx, vy, yaw] in a local planar frame. Prediction rotates
// the body-frame longitudinal acceleration into the world frame by the current
// yaw and advances the state with constant-acceleration kinematics; covariance
// propagates through the linear transition matrix only (the rotation is not
// linearized into the Jacobian). The correction step is a standard linear
// Kalman update against position-only measurements.
package estimator

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ukydev/route-dynamics/internal/geo"
)

const (
	stateDim = 5
	measDim  = 2
)

// ErrDimensionMismatch signals a state or measurement vector of unexpected
// size. It indicates a caller defect, not bad input data.
var ErrDimensionMismatch = errors.New("estimator: vector dimension mismatch")

// Config collects the filter's noise tuning and timestep bounds. Noise values
// are variances on the diagonal of Q and R.
type Config struct {
	PositionNoise    float64 `yaml:"position_noise"`
	VelocityNoise    float64 `yaml:"velocity_noise"`
	YawNoise         float64 `yaml:"yaw_noise"`
	MeasurementNoise float64 `yaml:"measurement_noise"`
	InitialVariance  float64 `yaml:"initial_variance"`
	MinDT            float64 `yaml:"min_dt"`
	MaxDT            float64 `yaml:"max_dt"`
}

// DefaultConfig returns the tuning used for road-vehicle GPS fusion: tiny
// position process noise, moderate velocity and yaw noise, and a measurement
// variance of 3 m² (≈1.7 m standard deviation).
func DefaultConfig() Config {
	return Config{
		PositionNoise:    1e-3,
		VelocityNoise:    5e-2,
		YawNoise:         1e-2,
		MeasurementNoise: 3.0,
		InitialVariance:  10.0,
		MinDT:            0.05,
		MaxDT:            2.0,
	}
}

// Filter is the 5-state estimator. Not safe for concurrent use; the driver
// owns one filter per run.
type Filter struct {
	cfg Config
	dt  float64

	x *mat.VecDense // state
	p *mat.Dense    // covariance
	f *mat.Dense    // transition
	h *mat.Dense    // measurement projection
	q *mat.Dense    // process noise
	r *mat.Dense    // measurement noise
}

// New builds a filter with the given initial timestep. The timestep is
// clamped into the configured bounds.
func New(dt float64, cfg Config) *Filter {
	flt := &Filter{
		cfg: cfg,
		x:   mat.NewVecDense(stateDim, nil),
		p:   identityScaled(stateDim, cfg.InitialVariance),
		f:   identityScaled(stateDim, 1),
		h:   mat.NewDense(measDim, stateDim, nil),
		q:   mat.NewDense(stateDim, stateDim, nil),
		r:   mat.NewDense(measDim, measDim, nil),
	}

	flt.h.Set(0, 0, 1)
	flt.h.Set(1, 1, 1)

	flt.q.Set(0, 0, cfg.PositionNoise)
	flt.q.Set(1, 1, cfg.PositionNoise)
	flt.q.Set(2, 2, cfg.VelocityNoise)
	flt.q.Set(3, 3, cfg.VelocityNoise)
	flt.q.Set(4, 4, cfg.YawNoise)

	flt.r.Set(0, 0, cfg.MeasurementNoise)
	flt.r.Set(1, 1, cfg.MeasurementNoise)

	flt.SetDeltaT(dt)
	return flt
}

// Init resets the filter to the given starting state and restores the high
// initial uncertainty. x0 must be [x, y, vx, vy, yaw].
func (flt *Filter) Init(x0 []float64) error {
	if len(x0) != stateDim {
		return fmt.Errorf("%w: want %d-element state, got %d", ErrDimensionMismatch, stateDim, len(x0))
	}
	for i, v := range x0 {
		flt.x.SetVec(i, v)
	}
	flt.p = identityScaled(stateDim, flt.cfg.InitialVariance)
	return nil
}

// SetDeltaT updates the timestep used by Predict, clamped into
// [MinDT, MaxDT]. A non-finite or non-positive value degrades to MinDT.
func (flt *Filter) SetDeltaT(dt float64) {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt <= 0 {
		dt = flt.cfg.MinDT
	}
	flt.dt = math.Min(math.Max(dt, flt.cfg.MinDT), flt.cfg.MaxDT)
	flt.refreshTransition()
}

// DeltaT returns the timestep currently in effect.
func (flt *Filter) DeltaT() float64 { return flt.dt }

func (flt *Filter) refreshTransition() {
	for i := 0; i < stateDim; i++ {
		for j := 0; j < stateDim; j++ {
			switch {
			case i == j:
				flt.f.Set(i, j, 1)
			default:
				flt.f.Set(i, j, 0)
			}
		}
	}
	flt.f.Set(0, 2, flt.dt)
	flt.f.Set(1, 3, flt.dt)
}

// Predict advances the state using a body-frame longitudinal acceleration and
// a yaw rate. Yaw integrates first; the acceleration is rotated by the
// pre-update yaw before the constant-acceleration kinematic step.
func (flt *Filter) Predict(axBody, yawRate float64) {
	dt := flt.dt
	x := flt.x.AtVec(0)
	y := flt.x.AtVec(1)
	vx := flt.x.AtVec(2)
	vy := flt.x.AtVec(3)
	yaw := flt.x.AtVec(4)

	yawNew := geo.NormalizeAngle(yaw + yawRate*dt)
	axW := axBody * math.Cos(yaw)
	ayW := axBody * math.Sin(yaw)

	flt.x.SetVec(0, x+vx*dt+0.5*axW*dt*dt)
	flt.x.SetVec(1, y+vy*dt+0.5*ayW*dt*dt)
	flt.x.SetVec(2, vx+axW*dt)
	flt.x.SetVec(3, vy+ayW*dt)
	flt.x.SetVec(4, yawNew)

	// P = F P Fᵀ + Q
	var fp, fpft mat.Dense
	fp.Mul(flt.f, flt.p)
	fpft.Mul(&fp, flt.f.T())
	fpft.Add(&fpft, flt.q)
	flt.p.Copy(&fpft)
}

// Update corrects the state with a position measurement [x, y]. The state is
// left untouched when the measurement has the wrong dimension. A singular
// innovation covariance is a fatal configuration error.
func (flt *Filter) Update(z []float64) error {
	if len(z) != measDim {
		return fmt.Errorf("%w: want %d-element measurement, got %d", ErrDimensionMismatch, measDim, len(z))
	}

	zv := mat.NewVecDense(measDim, []float64{z[0], z[1]})

	// Innovation y = z - H x
	var hx, innov mat.VecDense
	hx.MulVec(flt.h, flt.x)
	innov.SubVec(zv, &hx)

	// S = H P Hᵀ + R
	var hp, s mat.Dense
	hp.Mul(flt.h, flt.p)
	s.Mul(&hp, flt.h.T())
	s.Add(&s, flt.r)

	var sInv mat.Dense
	if err := sInv.Inverse(&s); err != nil {
		return fmt.Errorf("estimator: innovation covariance not invertible: %w", err)
	}

	// K = P Hᵀ S⁻¹
	var pht, gain mat.Dense
	pht.Mul(flt.p, flt.h.T())
	gain.Mul(&pht, &sInv)

	var corr mat.VecDense
	corr.MulVec(&gain, &innov)
	flt.x.AddVec(flt.x, &corr)

	// P = (I - K H) P
	var kh mat.Dense
	kh.Mul(&gain, flt.h)
	ikh := identityScaled(stateDim, 1)
	ikh.Sub(ikh, &kh)
	var newP mat.Dense
	newP.Mul(ikh, flt.p)
	flt.p.Copy(&newP)

	return nil
}

// State returns a copy of the current state vector [x, y, vx, vy, yaw].
func (flt *Filter) State() []float64 {
	out := make([]float64, stateDim)
	for i := range out {
		out[i] = flt.x.AtVec(i)
	}
	return out
}

// PositionVariance returns the covariance trace over the position components,
// a convergence proxy used in tests and diagnostics.
func (flt *Filter) PositionVariance() float64 {
	return flt.p.At(0, 0) + flt.p.At(1, 1)
}

func identityScaled(n int, scale float64) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, scale)
	}
	return m
}
