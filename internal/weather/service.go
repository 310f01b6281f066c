package weather

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/skycastlabs/skycast-api/internal/domain"
)

// Service is the stateless gateway between the API layer and the
// upstream provider. It holds no state and caches nothing.
type Service struct {
	client *Client
}

// NewService creates a new weather service.
func NewService(client *Client) *Service {
	return &Service{client: client}
}

// ByCoordinates returns current conditions for a coordinate pair. Both
// coordinates must be present; no upstream call is made otherwise.
func (s *Service) ByCoordinates(ctx context.Context, lat, lon string) (json.RawMessage, error) {
	if lat == "" || lon == "" {
		return nil, domain.ErrMissingCoordinates
	}
	return s.client.Current(ctx, lat, lon)
}

// ByCity resolves a city name through upstream geocoding, taking the
// first match, then fetches current conditions for those coordinates.
func (s *Service) ByCity(ctx context.Context, city string) (json.RawMessage, error) {
	if city == "" {
		return nil, domain.ErrMissingCity
	}

	matches, err := s.client.Geocode(ctx, city)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, domain.ErrCityNotFound
	}

	// Coordinates are known-valid here, no re-validation.
	lat := strconv.FormatFloat(matches[0].Lat, 'f', -1, 64)
	lon := strconv.FormatFloat(matches[0].Lon, 'f', -1, 64)
	return s.client.Current(ctx, lat, lon)
}

// Forecast returns the 5-day/3-hour forecast for a coordinate pair.
func (s *Service) Forecast(ctx context.Context, lat, lon string) (json.RawMessage, error) {
	if lat == "" || lon == "" {
		return nil, domain.ErrMissingCoordinates
	}
	return s.client.Forecast(ctx, lat, lon)
}
