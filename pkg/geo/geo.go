package geo

import (
	"context"
	"strings"

	"tripsettle/pkg/models"
)

// Lookup resolves a free-text address to a coordinate. A nil coordinate with
// a nil error means the address is unknown.
type Lookup interface {
	Lookup(ctx context.Context, address string) (*models.Coordinate, error)
}

// Normalize collapses whitespace and case so equivalent addresses share a
// cache entry.
func Normalize(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}
