package api

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tripsettle/pkg/engine"
	"tripsettle/pkg/models"
)

const dateLayout = "2006-01-02"

type createTripRequest struct {
	Date             string            `json:"date" binding:"required"`
	ClientName       string            `json:"client_name"`
	ProductName      string            `json:"product_name"`
	CarrierID        *int64            `json:"carrier_id"`
	DriverID         *int64            `json:"driver_id"`
	VehicleID        *int64            `json:"vehicle_id"`
	OriginID         *int64            `json:"origin_id"`
	DestinationID    *int64            `json:"destination_id"`
	LoadingAddress   string            `json:"loading_address"`
	UnloadingAddress string            `json:"unloading_address"`
	Status           models.TripStatus `json:"status" binding:"omitempty,trip_status"`
	Particularity    string            `json:"particularity"`
}

type changeStatusRequest struct {
	Status        models.TripStatus `json:"status" binding:"required,trip_status"`
	Particularity *string           `json:"particularity"`
}

type rateRequest struct {
	Value string           `json:"value"`
	Basis models.RateBasis `json:"basis" binding:"omitempty,oneof=per_ton per_trip"`
}

// Numbers travel as strings; an empty string blanks the field.
type settlementPatchRequest struct {
	Date          *string `json:"date"`
	ClientID      *int64  `json:"client_id"`
	ProductID     *int64  `json:"product_id"`
	OriginID      *int64  `json:"origin_id"`
	DestinationID *int64  `json:"destination_id"`
	CarrierID     *int64  `json:"carrier_id"`
	DriverID      *int64  `json:"driver_id"`
	VehicleID     *int64  `json:"vehicle_id"`

	TareOrigin       *string `json:"tare_origin"`
	GrossOrigin      *string `json:"gross_origin"`
	TareDestination  *string `json:"tare_destination"`
	GrossDestination *string `json:"gross_destination"`

	Tons              *string `json:"tons"`
	ClearTonsOverride bool    `json:"clear_tons_override"`

	TariffRate     *rateRequest `json:"tariff_rate"`
	ThirdPartyRate *rateRequest `json:"third_party_rate"`
	Requote        bool         `json:"requote"`

	ClientPaymentStatus  *models.ClientPaymentStatus  `json:"client_payment_status" binding:"omitempty,oneof=PENDING PAID"`
	CarrierPaymentStatus *models.CarrierPaymentStatus `json:"carrier_payment_status" binding:"omitempty,oneof=UNPAID PAID"`
}

type tariffRequest struct {
	Name                  string  `json:"name"`
	Client                string  `json:"client"`
	Product               string  `json:"product"`
	Origin                string  `json:"origin"`
	Destination           string  `json:"destination"`
	Carrier               string  `json:"carrier"`
	RatePerTon            *string `json:"rate_per_ton"`
	RatePerTrip           *string `json:"rate_per_trip"`
	ThirdPartyRatePerTon  *string `json:"third_party_rate_per_ton"`
	ThirdPartyRatePerTrip *string `json:"third_party_rate_per_trip"`
	ValidFrom             *string `json:"valid_from"`
	ValidUntil            *string `json:"valid_until"`
	Active                *bool   `json:"active"`
}

type resolveRequest struct {
	Client        string  `json:"client" binding:"required"`
	Product       string  `json:"product" binding:"required"`
	Origin        string  `json:"origin" binding:"required"`
	Destination   string  `json:"destination" binding:"required"`
	Carrier       string  `json:"carrier" binding:"required"`
	TonsDelivered *string `json:"tons_delivered"`
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

type createDriverRequest struct {
	FullName  string `json:"full_name" binding:"required"`
	Phone     string `json:"phone"`
	CarrierID *int64 `json:"carrier_id"`
}

type createCatalogRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
}

func parseDate(field, s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, engine.NewValidationError(field, "must be a date in YYYY-MM-DD format")
	}
	return d, nil
}

func parseOptionalDate(field string, s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	d, err := parseDate(field, *s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseNumber(field, s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, engine.NewValidationError(field, "must be a number")
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

// parsePatchNumber keeps nil as "not edited".
func parsePatchNumber(field string, s *string) (*decimal.NullDecimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := parseNumber(field, *s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseOptionalNumber(field string, s *string) (decimal.NullDecimal, error) {
	if s == nil {
		return decimal.NullDecimal{}, nil
	}
	return parseNumber(field, *s)
}

func (r *rateRequest) toRate(field string) (*models.Rate, error) {
	if r == nil {
		return nil, nil
	}
	v, err := parseNumber(field, r.Value)
	if err != nil {
		return nil, err
	}
	basis := r.Basis
	if basis == "" {
		basis = models.PerTon
	}
	return &models.Rate{Value: v, Basis: basis}, nil
}

func (r tariffRequest) toRule() (*models.TariffRule, error) {
	rule := &models.TariffRule{
		Name:        r.Name,
		Client:      r.Client,
		Product:     r.Product,
		Origin:      r.Origin,
		Destination: r.Destination,
		Carrier:     r.Carrier,
		Active:      r.Active == nil || *r.Active,
	}

	var err error
	if rule.RatePerTon, err = parseOptionalNumber("rate_per_ton", r.RatePerTon); err != nil {
		return nil, err
	}
	if rule.RatePerTrip, err = parseOptionalNumber("rate_per_trip", r.RatePerTrip); err != nil {
		return nil, err
	}
	if rule.ThirdPartyRatePerTon, err = parseOptionalNumber("third_party_rate_per_ton", r.ThirdPartyRatePerTon); err != nil {
		return nil, err
	}
	if rule.ThirdPartyRatePerTrip, err = parseOptionalNumber("third_party_rate_per_trip", r.ThirdPartyRatePerTrip); err != nil {
		return nil, err
	}
	if rule.ValidFrom, err = parseOptionalDate("valid_from", r.ValidFrom); err != nil {
		return nil, err
	}
	if rule.ValidUntil, err = parseOptionalDate("valid_until", r.ValidUntil); err != nil {
		return nil, err
	}
	return rule, nil
}
