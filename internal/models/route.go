package models

import "math"

// RoutePoint is one geodetic sample of the input route. Points are immutable
// once parsed; samples with non-finite coordinates are dropped at ingestion.
type RoutePoint struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Elevation float64 `json:"elevation"`
	Timestamp float64 `json:"timestamp"` // seconds, monotonic or epoch
}

// Valid reports whether the sample carries usable coordinates.
func (p RoutePoint) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsInf(p.Lat, 0) &&
		!math.IsNaN(p.Lon) && !math.IsInf(p.Lon, 0)
}
