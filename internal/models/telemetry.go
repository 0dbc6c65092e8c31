package models

// IMUReading is a synthesized inertial-measurement triple in the vehicle frame
// (x forward, y left, z up). Accelerations in m/s², rates in rad/s, magnetic
// field in microtesla.
type IMUReading struct {
	AccelX float64 `json:"accel_x"`
	AccelY float64 `json:"accel_y"`
	AccelZ float64 `json:"accel_z"`
	GyroX  float64 `json:"gyro_x"`
	GyroY  float64 `json:"gyro_y"`
	GyroZ  float64 `json:"gyro_z"`
	MagX   float64 `json:"mag_x"`
	MagY   float64 `json:"mag_y"`
	MagZ   float64 `json:"mag_z"`
}

// Attitude is the coarse vehicle pose attached to a telemetry record.
type Attitude struct {
	VelocityMs float64 `json:"velocity_ms"`
	HeadingRad float64 `json:"heading_rad"`
	PitchRad   float64 `json:"pitch_rad"`
	RollRad    float64 `json:"roll_rad"`
}

// EngineTelemetry carries drivetrain state for one waypoint.
type EngineTelemetry struct {
	RPM             float64 `json:"rpm"`
	Gear            int     `json:"gear"`
	ThrottlePercent float64 `json:"throttle_percent"`
	BrakePercent    float64 `json:"brake_percent"`
}

// TelemetryRecord is one output row per route point: the raw and fused
// position plus the kinematics derived for that step. Never mutated after
// emission.
type TelemetryRecord struct {
	Waypoint        int             `json:"waypoint"`
	Lat             float64         `json:"lat"`
	Lon             float64         `json:"lon"`
	Elevation       float64         `json:"elevation"`
	FusedLat        float64         `json:"fused_lat"`
	FusedLon        float64         `json:"fused_lon"`
	Distance        float64         `json:"distance"` // metres from previous point
	SpeedKmh        float64         `json:"speed_kmh"`
	TargetSpeedKmh  float64         `json:"target_speed_kmh"`
	AccelerationMs2 float64         `json:"acceleration_ms2"`
	HeadingDeg      float64         `json:"heading_deg"`
	SlopeDeg        float64         `json:"slope_deg"`
	TimeSec         float64         `json:"time_sec"`
	IMU             IMUReading      `json:"imu"`
	VehicleState    Attitude        `json:"vehicle_state"`
	Engine          EngineTelemetry `json:"engine"`
}

// Statistics summarises a completed run.
type Statistics struct {
	TotalDistanceM float64 `json:"total_distance_m"`
	NumPoints      int     `json:"num_points"`
	DurationS      float64 `json:"duration_s"`
}

// RunResult is the single output artifact of a simulation run.
type RunResult struct {
	Route          []RoutePoint      `json:"route"`
	EnhancedResult []TelemetryRecord `json:"enhanced_result"`
	Statistics     Statistics        `json:"statistics"`
}
