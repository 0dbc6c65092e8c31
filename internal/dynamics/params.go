package dynamics

// GearCount is fixed: the drivetrain model is a 6-speed box.
const GearCount = 6

// VehicleParams is the immutable physical configuration of the simulated
// vehicle. Defaults approximate a compact petrol car.
type VehicleParams struct {
	MassKg            float64 `yaml:"mass_kg"`
	FrontalAreaM2     float64 `yaml:"frontal_area_m2"`
	DragCoefficient   float64 `yaml:"drag_coefficient"`
	RollingResistance float64 `yaml:"rolling_resistance"`

	MaxTorqueNm float64 `yaml:"max_torque_nm"`
	IdleRPM     float64 `yaml:"idle_rpm"`
	MaxRPM      float64 `yaml:"max_rpm"`
	OptimalRPM  float64 `yaml:"optimal_rpm"`

	MaxBrakeForceN float64 `yaml:"max_brake_force_n"`

	GravityMs2 float64 `yaml:"gravity_ms2"`
	AirDensity float64 `yaml:"air_density"`

	GearRatios      [GearCount]float64 `yaml:"gear_ratios"`
	FinalDriveRatio float64            `yaml:"final_drive_ratio"`
	WheelRadiusM    float64            `yaml:"wheel_radius_m"`
}

// DefaultParams returns the stock vehicle configuration.
func DefaultParams() VehicleParams {
	return VehicleParams{
		MassKg:            1400.0,
		FrontalAreaM2:     2.1,
		DragCoefficient:   0.28,
		RollingResistance: 0.012,
		MaxTorqueNm:       220.0,
		IdleRPM:           800.0,
		MaxRPM:            6500.0,
		OptimalRPM:        4000.0,
		MaxBrakeForceN:    9000.0,
		GravityMs2:        9.81,
		AirDensity:        1.225,
		GearRatios:        [GearCount]float64{3.54, 2.06, 1.36, 1.03, 0.84, 0.70},
		FinalDriveRatio:   4.35,
		WheelRadiusM:      0.32,
	}
}

// Tuning holds the control-law constants: gains, deadband, saturation and
// traction bounds, and the affine pedal maps. These are empirically tuned and
// deliberately configuration, not hard invariants.
type Tuning struct {
	Kp       float64 `yaml:"kp"`       // proportional gain on speed error, 1/s
	Deadband float64 `yaml:"deadband"` // m/s; inside it the vehicle holds speed

	MaxAccelMs2 float64 `yaml:"max_accel_ms2"` // global acceleration ceiling
	MaxDecelMs2 float64 `yaml:"max_decel_ms2"` // global deceleration floor (negative)

	TractionLimitMs2 float64 `yaml:"traction_limit_ms2"` // drive-wheel grip ceiling
	MaxBrakeDecelMs2 float64 `yaml:"max_brake_decel_ms2"` // ABS floor, positive magnitude

	ThrottleScale       float64 `yaml:"throttle_scale"`  // percent per m/s² desired
	ThrottleOffset      float64 `yaml:"throttle_offset"` // percent
	LowSpeedThrottleCap float64 `yaml:"low_speed_throttle_cap"`
	LowSpeedThresholdMs float64 `yaml:"low_speed_threshold_ms"`
	BrakeScale          float64 `yaml:"brake_scale"` // percent per m/s² desired
}

// DefaultTuning returns the stock control-law constants.
func DefaultTuning() Tuning {
	return Tuning{
		Kp:                  0.25,
		Deadband:            0.1,
		MaxAccelMs2:         4.0,
		MaxDecelMs2:         -6.0,
		TractionLimitMs2:    4.0,
		MaxBrakeDecelMs2:    8.0,
		ThrottleScale:       20.0,
		ThrottleOffset:      8.0,
		LowSpeedThrottleCap: 35.0,
		LowSpeedThresholdMs: 3.0,
		BrakeScale:          8.0,
	}
}

// VehicleState is the mutable drivetrain state, advanced once per simulation
// step. Owned by the driver across an iteration.
type VehicleState struct {
	SpeedMs         float64
	AccelerationMs2 float64
	PositionM       float64
	GradeRad        float64
	ElevationM      float64
	EngineRPM       float64
	CurrentGear     int // 1..GearCount
	ThrottlePercent float64
	BrakePercent    float64
}
