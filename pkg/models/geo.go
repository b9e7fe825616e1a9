package models

// Coordinate is a WGS84 point as returned by the geocoder.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
