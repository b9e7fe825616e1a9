package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScopeAll is the wildcard scope value: the rule matches any value of that field.
const ScopeAll = "ALL"

const (
	ScopeClient      = "client"
	ScopeProduct     = "product"
	ScopeOrigin      = "origin"
	ScopeDestination = "destination"
	ScopeCarrier     = "carrier"
)

// TariffRule prices trips matching its five scope fields. Scope values are
// catalog ids rendered as strings, or ScopeAll.
type TariffRule struct {
	ID                    int64               `json:"id"`
	Name                  string              `json:"name"`
	Client                string              `json:"client"`
	Product               string              `json:"product"`
	Origin                string              `json:"origin"`
	Destination           string              `json:"destination"`
	Carrier               string              `json:"carrier"`
	RatePerTon            decimal.NullDecimal `json:"rate_per_ton"`
	RatePerTrip           decimal.NullDecimal `json:"rate_per_trip"`
	ThirdPartyRatePerTon  decimal.NullDecimal `json:"third_party_rate_per_ton"`
	ThirdPartyRatePerTrip decimal.NullDecimal `json:"third_party_rate_per_trip"`
	ValidFrom             *time.Time          `json:"valid_from"`
	ValidUntil            *time.Time          `json:"valid_until"`
	Active                bool                `json:"active"`
	CreatedAt             time.Time           `json:"created_at"`
	UpdatedAt             time.Time           `json:"updated_at"`
}

// Scope returns the scope values in the fixed order client, product,
// origin, destination, carrier.
func (r TariffRule) Scope() [5]string {
	return [5]string{r.Client, r.Product, r.Origin, r.Destination, r.Carrier}
}

// TripContext is the query run against the tariff catalog. Every scope field
// must be concrete.
type TripContext struct {
	Client        string              `json:"client"`
	Product       string              `json:"product"`
	Origin        string              `json:"origin"`
	Destination   string              `json:"destination"`
	Carrier       string              `json:"carrier"`
	TonsDelivered decimal.NullDecimal `json:"tons_delivered"`
}

func (c TripContext) Scope() [5]string {
	return [5]string{c.Client, c.Product, c.Origin, c.Destination, c.Carrier}
}

var ScopeFields = [5]string{ScopeClient, ScopeProduct, ScopeOrigin, ScopeDestination, ScopeCarrier}
