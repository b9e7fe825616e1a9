package models

import "time"

type CatalogKind string

const (
	CatalogClients   CatalogKind = "clients"
	CatalogProducts  CatalogKind = "products"
	CatalogLocations CatalogKind = "locations"
	CatalogCarriers  CatalogKind = "carriers"
)

func (k CatalogKind) Valid() bool {
	switch k {
	case CatalogClients, CatalogProducts, CatalogLocations, CatalogCarriers:
		return true
	}
	return false
}

// CatalogEntry is a client, product, location or carrier. Address is only
// filled for locations.
type CatalogEntry struct {
	ID        int64       `json:"id"`
	Kind      CatalogKind `json:"kind"`
	Name      string      `json:"name"`
	Address   string      `json:"address,omitempty"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"created_at"`
}
