package models

import "time"

type TripStatus string

const (
	TripPending            TripStatus = "pending"
	TripCompletedL1        TripStatus = "completed_L1"
	TripCompletedL2        TripStatus = "completed_L2"
	TripCompletedL1L2      TripStatus = "completed_L1L2"
	TripCompletedWithIssue TripStatus = "completed_withIssue"
	TripCancelled          TripStatus = "cancelled"
)

var TripStatuses = []TripStatus{
	TripPending,
	TripCompletedL1,
	TripCompletedL2,
	TripCompletedL1L2,
	TripCompletedWithIssue,
	TripCancelled,
}

func (s TripStatus) Valid() bool {
	for _, v := range TripStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Completed reports whether s counts as a finished delivery. Cancelled does not.
func (s TripStatus) Completed() bool {
	switch s {
	case TripCompletedL1, TripCompletedL2, TripCompletedL1L2, TripCompletedWithIssue:
		return true
	}
	return false
}

// RequiresParticularity reports whether s needs a free-text explanation.
func (s TripStatus) RequiresParticularity() bool {
	return s == TripCancelled || s == TripCompletedWithIssue
}

type Line string

const (
	LineL1   Line = "L1"
	LineL2   Line = "L2"
	LineL1L2 Line = "L1/L2"
)

// Trip is the first-stage record kept by dispatch. Client and product are
// written as free text on the loading sheet and only resolved to catalog
// entries when the trip is promoted to a settlement.
type Trip struct {
	ID                  int64       `json:"id"`
	Date                time.Time   `json:"date"`
	ClientName          string      `json:"client_name"`
	ProductName         string      `json:"product_name"`
	CarrierID           *int64      `json:"carrier_id"`
	DriverID            *int64      `json:"driver_id"`
	VehicleID           *int64      `json:"vehicle_id"`
	OriginID            *int64      `json:"origin_id"`
	DestinationID       *int64      `json:"destination_id"`
	LoadingAddress      string      `json:"loading_address"`
	UnloadingAddress    string      `json:"unloading_address"`
	Status              TripStatus  `json:"status"`
	Line                Line        `json:"line,omitempty"`
	Particularity       string      `json:"particularity,omitempty"`
	UnloadingCoordinate *Coordinate `json:"unloading_coordinate"`
	CompletedAt         *time.Time  `json:"completed_at"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}
