package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TonsSource string

const (
	TonsDerived TonsSource = "derived"
	TonsManual  TonsSource = "manual"
)

// Tons is tagged with where the value came from so recomputation can leave
// operator overrides alone.
type Tons struct {
	Source TonsSource          `json:"source"`
	Value  decimal.NullDecimal `json:"value"`
}

// WeightReading holds raw scale readings in kilograms and the values derived
// from them.
type WeightReading struct {
	TareOrigin       decimal.NullDecimal `json:"tare_origin"`
	GrossOrigin      decimal.NullDecimal `json:"gross_origin"`
	TareDestination  decimal.NullDecimal `json:"tare_destination"`
	GrossDestination decimal.NullDecimal `json:"gross_destination"`

	NetOrigin        decimal.NullDecimal `json:"net_origin"`
	NetDestination   decimal.NullDecimal `json:"net_destination"`
	WeightDifference decimal.NullDecimal `json:"weight_difference"`
	Tons             Tons                `json:"tons"`
}

type RateBasis string

const (
	PerTon  RateBasis = "per_ton"
	PerTrip RateBasis = "per_trip"
)

// Rate is a quoted price. An empty Basis means per ton.
type Rate struct {
	Value decimal.NullDecimal `json:"value"`
	Basis RateBasis           `json:"basis,omitempty"`
}

type Amounts struct {
	TripAmount       decimal.NullDecimal `json:"trip_amount"`
	ThirdPartyAmount decimal.NullDecimal `json:"third_party_amount"`
}

type ClientPaymentStatus string

const (
	ClientPaymentPending ClientPaymentStatus = "PENDING"
	ClientPaymentPaid    ClientPaymentStatus = "PAID"
)

type CarrierPaymentStatus string

const (
	CarrierPaymentUnpaid CarrierPaymentStatus = "UNPAID"
	CarrierPaymentPaid   CarrierPaymentStatus = "PAID"
)

// Settlement is the second-stage billing record promoted from a completed
// trip. A settlement with ID 0 is a draft that has not been stored yet.
type Settlement struct {
	ID            int64     `json:"id"`
	SourceTripID  int64     `json:"source_trip_id"`
	Date          time.Time `json:"date"`
	ClientID      *int64    `json:"client_id"`
	ProductID     *int64    `json:"product_id"`
	OriginID      *int64    `json:"origin_id"`
	DestinationID *int64    `json:"destination_id"`
	CarrierID     *int64    `json:"carrier_id"`
	DriverID      *int64    `json:"driver_id"`
	VehicleID     *int64    `json:"vehicle_id"`

	Weights WeightReading `json:"weights"`

	TariffRuleID   *int64  `json:"tariff_rule_id"`
	TariffRate     Rate    `json:"tariff_rate"`
	ThirdPartyRate Rate    `json:"third_party_rate"`
	Amounts        Amounts `json:"amounts"`
	TariffValidity string  `json:"tariff_validity,omitempty"`

	// TariffPending stays set until the resolver has run once against a
	// complete scope.
	TariffPending bool `json:"tariff_pending"`

	ClientPaymentStatus  ClientPaymentStatus  `json:"client_payment_status"`
	CarrierPaymentStatus CarrierPaymentStatus `json:"carrier_payment_status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
