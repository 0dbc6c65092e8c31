package sim

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/ukydev/route-dynamics/internal/models"
)

// ErrMalformedInput marks route input the simulator cannot run on: unparsable
// JSON, an unexpected shape, or fewer than two valid points.
var ErrMalformedInput = errors.New("sim: malformed route input")

// rawPoint mirrors one input record. Lat/lon are pointers so records missing
// either coordinate can be told apart from records at (0, 0).
type rawPoint struct {
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Elevation float64  `json:"elevation"`
	Timestamp float64  `json:"timestamp"`
}

// ParseRoute accepts either a top-level JSON array of points or an object with
// a "route" field holding one. Records with missing or non-finite coordinates
// are discarded; at least two valid points must remain.
func ParseRoute(data []byte) ([]models.RoutePoint, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedInput)
	}

	var raw []rawPoint
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
	case '{':
		var wrapper struct {
			Route []rawPoint `json:"route"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		if wrapper.Route == nil {
			return nil, fmt.Errorf("%w: object input requires a route field", ErrMalformedInput)
		}
		raw = wrapper.Route
	default:
		return nil, fmt.Errorf("%w: expected array or object input", ErrMalformedInput)
	}

	points := make([]models.RoutePoint, 0, len(raw))
	for _, r := range raw {
		if r.Lat == nil || r.Lon == nil {
			continue
		}
		p := models.RoutePoint{
			Lat:       *r.Lat,
			Lon:       *r.Lon,
			Elevation: r.Elevation,
			Timestamp: r.Timestamp,
		}
		if !p.Valid() {
			continue
		}
		points = append(points, p)
	}

	if len(points) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 valid points, got %d", ErrMalformedInput, len(points))
	}
	return points, nil
}

// LoadRoute reads and parses a route file.
func LoadRoute(path string) ([]models.RoutePoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read route: %w", err)
	}
	return ParseRoute(data)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
