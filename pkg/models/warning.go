package models

type WarningCode string

const (
	WarningGeocodeNotFound WarningCode = "geocode_not_found"
	WarningTariffNotFound  WarningCode = "tariff_not_found"
	WarningTariffExpiring  WarningCode = "tariff_expiring"
	WarningTariffExpired   WarningCode = "tariff_expired"
)

// Warning is a non-fatal outcome surfaced to the operator; the operation
// it belongs to has still been applied.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}
