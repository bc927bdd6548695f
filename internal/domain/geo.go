package domain

import "math"

// earthRadiusMiles is the mean Earth radius used for all distance math.
const earthRadiusMiles = 3959.0

// GreatCircleDistance returns the haversine great-circle distance in miles
// between two points given in decimal degrees. The asin argument is clamped
// to 1 so antipodal pairs cannot drift out of the domain through rounding.
func GreatCircleDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	s := math.Sqrt(a)
	if s > 1 {
		s = 1
	}
	return 2 * earthRadiusMiles * math.Asin(s)
}

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
