package models

import "time"

type Driver struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	CarrierID *int64    `json:"carrier_id"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// DriverCandidate is a driver considered for the next assignment together
// with where they last unloaded. LastUnloading is nil for drivers without a
// completed trip.
type DriverCandidate struct {
	DriverID      int64       `json:"driver_id"`
	FullName      string      `json:"full_name"`
	LastUnloading *Coordinate `json:"last_unloading"`
	DistanceKm    *float64    `json:"distance_km"`
}
