package domain

import "math"

// Defaults for neighbor assignment. Tests and config may override both.
const (
	DefaultCutoffMiles       = 30.0
	DefaultDistancePrecision = 1
)

// AssignNeighbors scores a station against every grid point and keeps those
// strictly closer than cutoffMiles, with distances rounded half away from
// zero to precision decimal places. The cutoff applies to the raw distance,
// before rounding, so a point just inside the cutoff may be stored with a
// distance equal to it (raw 29.96 mi is kept and stored as 30.0). The
// returned assignment has no ProcessedAt; callers stamp it when they emit
// the result.
//
// Pure function of its arguments, so safe to call concurrently for different
// stations over a shared grid slice.
func AssignNeighbors(st Station, grid []GridPoint, cutoffMiles float64, precision int) NeighborAssignment {
	neighbors := make(map[string]float64)
	for _, gp := range grid {
		d := GreatCircleDistance(st.Lat, st.Lon, gp.Lat, gp.Lon)
		if d < cutoffMiles {
			neighbors[gp.ID] = roundTo(d, precision)
		}
	}
	return NeighborAssignment{StationID: st.ID, Neighbors: neighbors}
}

// roundTo rounds half away from zero to the given number of decimal places.
func roundTo(v float64, precision int) float64 {
	pow := math.Pow10(precision)
	return math.Round(v*pow) / pow
}
