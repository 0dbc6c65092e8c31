package estimator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInit_DimensionCheck(t *testing.T) {
	flt := New(0.1, DefaultConfig())
	assert.ErrorIs(t, flt.Init([]float64{1, 2, 3}), ErrDimensionMismatch)
	assert.NoError(t, flt.Init([]float64{10, 20, 0, 0, 0}))

	st := flt.State()
	assert.Equal(t, 10.0, st[0])
	assert.Equal(t, 20.0, st[1])
	assert.Equal(t, 0.0, st[2])
	assert.Equal(t, 0.0, st[4])
}

func TestUpdate_DimensionMismatchDoesNotMutate(t *testing.T) {
	flt := New(0.1, DefaultConfig())
	assert.NoError(t, flt.Init([]float64{5, 5, 1, 1, 0.2}))

	before := flt.State()
	err := flt.Update([]float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, before, flt.State())
}

func TestUpdate_CovarianceMonotonicity(t *testing.T) {
	flt := New(0.1, DefaultConfig())
	assert.NoError(t, flt.Init([]float64{0, 0, 0, 0, 0}))

	prev := flt.PositionVariance()
	for i := 0; i < 20; i++ {
		assert.NoError(t, flt.Update([]float64{1.0, 1.0}))
		cur := flt.PositionVariance()
		assert.Less(t, cur, prev, "update %d should shrink position covariance", i)
		prev = cur
	}
}

func TestUpdate_ConvergesToRepeatedMeasurement(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PositionNoise = 0
	cfg.VelocityNoise = 0
	cfg.YawNoise = 0

	flt := New(0.1, cfg)
	assert.NoError(t, flt.Init([]float64{0, 0, 0, 0, 0}))

	for i := 0; i < 50; i++ {
		assert.NoError(t, flt.Update([]float64{12.0, -7.0}))
	}
	// Update-only convergence is harmonic in the update count: after n
	// corrections the residual is z·R/(R + n·P0), about 0.07 here.
	st := flt.State()
	assert.InDelta(t, 12.0, st[0], 0.1)
	assert.InDelta(t, -7.0, st[1], 0.1)
}

func TestPredict_StraightLineKinematics(t *testing.T) {
	flt := New(1.0, DefaultConfig())
	assert.NoError(t, flt.Init([]float64{0, 0, 0, 0, 0}))

	// One second at 2 m/s² heading due +x: x = ½at², vx = at.
	flt.Predict(2.0, 0.0)
	st := flt.State()
	assert.InDelta(t, 1.0, st[0], 1e-9)
	assert.InDelta(t, 0.0, st[1], 1e-9)
	assert.InDelta(t, 2.0, st[2], 1e-9)
	assert.InDelta(t, 0.0, st[3], 1e-9)
}

func TestPredict_RotatesAccelerationByPreUpdateYaw(t *testing.T) {
	flt := New(1.0, DefaultConfig())
	assert.NoError(t, flt.Init([]float64{0, 0, 0, 0, math.Pi / 2}))

	// Yaw is +90°, so body-forward acceleration maps onto world +y even
	// though the yaw rate spins the heading during the same step.
	flt.Predict(2.0, 1.0)
	st := flt.State()
	assert.InDelta(t, 0.0, st[0], 1e-9)
	assert.InDelta(t, 1.0, st[1], 1e-9)
	assert.InDelta(t, 0.0, st[2], 1e-9)
	assert.InDelta(t, 2.0, st[3], 1e-9)
	assert.InDelta(t, math.Pi/2+1.0, st[4], 1e-9)
}

func TestPredict_YawStaysNormalized(t *testing.T) {
	flt := New(2.0, DefaultConfig())
	assert.NoError(t, flt.Init([]float64{0, 0, 0, 0, 3.0}))

	flt.Predict(0, 0.5) // 3.0 + 1.0 wraps past pi
	st := flt.State()
	assert.LessOrEqual(t, st[4], math.Pi)
	assert.Greater(t, st[4], -math.Pi)
}

func TestSetDeltaT_Clamping(t *testing.T) {
	flt := New(0.1, DefaultConfig())

	flt.SetDeltaT(10.0)
	assert.Equal(t, 2.0, flt.DeltaT())

	flt.SetDeltaT(0.001)
	assert.Equal(t, 0.05, flt.DeltaT())

	flt.SetDeltaT(math.NaN())
	assert.Equal(t, 0.05, flt.DeltaT())

	flt.SetDeltaT(-1.0)
	assert.Equal(t, 0.05, flt.DeltaT())

	flt.SetDeltaT(0.5)
	assert.Equal(t, 0.5, flt.DeltaT())
}

func TestPredictUpdate_TracksMovingTarget(t *testing.T) {
	flt := New(1.0, DefaultConfig())
	assert.NoError(t, flt.Init([]float64{0, 0, 0, 0, 0}))

	// Target moves +10 m/s along x; feed matching measurements.
	for i := 1; i <= 10; i++ {
		flt.Predict(0, 0)
		assert.NoError(t, flt.Update([]float64{float64(i) * 10.0, 0}))
	}
	st := flt.State()
	assert.InDelta(t, 100.0, st[0], 5.0)
	assert.InDelta(t, 10.0, st[2], 3.0)
}
