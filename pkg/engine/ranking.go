package engine

import (
	"cmp"
	"math"
	"slices"

	"tripsettle/pkg/models"
)

const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance between a and b in kilometres.
func Haversine(a, b models.Coordinate) float64 {
	lat1 := degreesToRadians(a.Lat)
	lng1 := degreesToRadians(a.Lng)
	lat2 := degreesToRadians(b.Lat)
	lng2 := degreesToRadians(b.Lng)

	dlat := lat2 - lat1
	dlng := lng2 - lng1
	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlng/2)*math.Sin(dlng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

func degreesToRadians(d float64) float64 {
	return d * math.Pi / 180
}

// Rank orders candidates by distance from target, nearest first. Drivers
// without a known last unloading point go last in their input order. A nil
// target returns the candidates unchanged. The input slice is not modified.
func Rank(target *models.Coordinate, candidates []models.DriverCandidate) []models.DriverCandidate {
	out := slices.Clone(candidates)
	if target == nil {
		return out
	}

	for i := range out {
		out[i].DistanceKm = nil
		if out[i].LastUnloading != nil {
			d := Haversine(*target, *out[i].LastUnloading)
			out[i].DistanceKm = &d
		}
	}

	slices.SortStableFunc(out, func(a, b models.DriverCandidate) int {
		switch {
		case a.DistanceKm == nil && b.DistanceKm == nil:
			return 0
		case a.DistanceKm == nil:
			return 1
		case b.DistanceKm == nil:
			return -1
		}
		return cmp.Compare(*a.DistanceKm, *b.DistanceKm)
	})

	return out
}
