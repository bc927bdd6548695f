// Package grid loads the static analysis grid the pipeline scores stations
// against. The grid is reference data: read once at startup, shared read-only
// by every worker afterwards. A missing, malformed, or empty grid aborts the
// run: every station would otherwise silently get an empty neighbor set.
package grid

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/station-grid-etl/internal/domain"
)

// Load reads a grid JSON file: an array of {id, lat, lon} objects.
func Load(path string) ([]domain.GridPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grid file: %w", err)
	}
	defer f.Close()

	points, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("grid file %s: %w", path, err)
	}
	return points, nil
}

// Parse decodes and validates grid points from r.
func Parse(r io.Reader) ([]domain.GridPoint, error) {
	var points []domain.GridPoint
	if err := json.NewDecoder(r).Decode(&points); err != nil {
		return nil, fmt.Errorf("decode grid: %w", err)
	}
	if len(points) == 0 {
		return nil, errors.New("grid is empty")
	}
	for i, p := range points {
		if p.ID == "" {
			return nil, fmt.Errorf("grid point %d has no id", i)
		}
		if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
			return nil, fmt.Errorf("grid point %s has out-of-range coordinates (%v, %v)", p.ID, p.Lat, p.Lon)
		}
	}
	return points, nil
}
