// Package config collects every tunable of a simulation run into one explicit
// value, so independent runs can carry independent configurations. Values load
// from an optional YAML file on top of the built-in defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ukydev/route-dynamics/internal/dynamics"
	"github.com/ukydev/route-dynamics/internal/estimator"
	"github.com/ukydev/route-dynamics/internal/planner"
)

// Policy selection for the acceleration capability.
const (
	PolicyEngine       = "engine"       // full gear/torque-curve model
	PolicyProportional = "proportional" // simple controller
)

// DriverLimits bounds the kinematics the driver derives from raw samples.
type DriverLimits struct {
	MaxYawRate   float64 `yaml:"max_yawrate"`    // rad/s
	MaxLongAccel float64 `yaml:"max_long_accel"` // m/s²
	MaxLongDecel float64 `yaml:"max_long_decel"` // m/s², negative
	MinDT        float64 `yaml:"min_dt"`         // s
	MaxDT        float64 `yaml:"max_dt"`         // s
	DefaultDT    float64 `yaml:"default_dt"`     // s, seed for the first step

	MagFieldUT        float64 `yaml:"mag_field_ut"`       // horizontal magnetic field, µT
	MagDeclinationRad float64 `yaml:"mag_declination"`    // rad
	GravityMs2        float64 `yaml:"gravity_ms2"`        // for the synthesized IMU z-axis
	MaxRollRad        float64 `yaml:"max_roll_rad"`       // coarse attitude clamp
	TargetRampMsPerS  float64 `yaml:"target_ramp_ms_per_s"` // 0 disables rate limiting
}

// Config is the complete configuration of one run.
type Config struct {
	Estimator estimator.Config       `yaml:"estimator"`
	Driver    DriverLimits           `yaml:"driver"`
	Vehicle   dynamics.VehicleParams `yaml:"vehicle"`
	Tuning    dynamics.Tuning        `yaml:"tuning"`
	Planner   planner.Config         `yaml:"planner"`
	Policy    string                 `yaml:"policy"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Estimator: estimator.DefaultConfig(),
		Driver: DriverLimits{
			MaxYawRate:        0.6,
			MaxLongAccel:      2.0,
			MaxLongDecel:      -3.0,
			MinDT:             0.05,
			MaxDT:             2.0,
			DefaultDT:         0.1,
			MagFieldUT:        60.0,
			MagDeclinationRad: 0.0,
			GravityMs2:        9.80665,
			MaxRollRad:        0.25,
			TargetRampMsPerS:  1.5,
		},
		Vehicle: dynamics.DefaultParams(),
		Tuning:  dynamics.DefaultTuning(),
		Planner: planner.DefaultConfig(),
		Policy:  PolicyEngine,
	}
}

// Load reads a YAML config file over the defaults. Unset fields keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the numeric core cannot run with.
func (c Config) Validate() error {
	if c.Policy != PolicyEngine && c.Policy != PolicyProportional {
		return fmt.Errorf("config: unknown policy %q", c.Policy)
	}
	if c.Driver.MinDT <= 0 || c.Driver.MaxDT < c.Driver.MinDT {
		return fmt.Errorf("config: invalid dt bounds [%v, %v]", c.Driver.MinDT, c.Driver.MaxDT)
	}
	if c.Vehicle.MassKg <= 0 {
		return fmt.Errorf("config: vehicle mass must be positive, got %v", c.Vehicle.MassKg)
	}
	if c.Vehicle.WheelRadiusM <= 0 {
		return fmt.Errorf("config: wheel radius must be positive, got %v", c.Vehicle.WheelRadiusM)
	}
	return nil
}

// BuildPolicy constructs the configured acceleration policy.
func (c Config) BuildPolicy() dynamics.Policy {
	if c.Policy == PolicyProportional {
		return dynamics.NewProportionalPolicy()
	}
	return dynamics.NewEngine(c.Vehicle, c.Tuning)
}
