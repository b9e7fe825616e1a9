package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tripsettle/pkg/logger"
	"tripsettle/pkg/models"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// ORSGeocoder calls the OpenRouteService search endpoint. Each lookup is a
// single attempt bounded by the client timeout.
type ORSGeocoder struct {
	baseURL string
	apiKey  string
	country string
	client  *http.Client
	log     logger.ILogger
}

func NewORSGeocoder(baseURL, apiKey, country string, timeout time.Duration, log logger.ILogger) *ORSGeocoder {
	return &ORSGeocoder{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		country: country,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (g *ORSGeocoder) Lookup(ctx context.Context, address string) (*models.Coordinate, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/geocode/search", nil)
	if err != nil {
		return nil, fmt.Errorf("create geocode request: %w", err)
	}
	req.Header.Set("Authorization", g.apiKey)
	req.Header.Set("Accept", "application/json")

	q := req.URL.Query()
	q.Set("text", address)
	q.Set("size", "1")
	if g.country != "" {
		q.Set("boundary.country", g.country)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("geocode: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		g.log.Debug("geocode: no results", logger.String("address", address))
		return nil, nil
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return nil, fmt.Errorf("geocode: invalid coordinate format for %q", address)
	}

	// GeoJSON order is lng, lat.
	return &models.Coordinate{Lng: coords[0], Lat: coords[1]}, nil
}
