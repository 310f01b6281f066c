package weather

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"
	"github.com/skycastlabs/skycast-api/internal/config"
	"github.com/skycastlabs/skycast-api/internal/domain"
)

const (
	currentPath  = "/data/2.5/weather"
	forecastPath = "/data/2.5/forecast"
	geocodePath  = "/geo/1.0/direct"

	genericWeatherError  = "Error fetching weather data"
	genericForecastError = "Error fetching forecast data"
)

// Client calls the OpenWeatherMap API. Conditions are always requested
// in metric units; unit conversion is a presentation concern.
type Client struct {
	apiKey  string
	baseURL string
	geoURL  string
	client  *http.Client
}

// NewClient creates a new upstream weather client.
func NewClient(cfg config.WeatherConfig) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		geoURL:  cfg.GeoBaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// GeoMatch is one geocoding result for a city name.
type GeoMatch struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
}

// Current fetches current conditions for the given coordinates. The
// upstream body is passed through untouched.
func (c *Client) Current(ctx context.Context, lat, lon string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("lat", lat)
	q.Set("lon", lon)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	return c.get(ctx, c.baseURL+currentPath+"?"+q.Encode(), genericWeatherError)
}

// Forecast fetches the 5-day/3-hour forecast for the given coordinates.
func (c *Client) Forecast(ctx context.Context, lat, lon string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("lat", lat)
	q.Set("lon", lon)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	return c.get(ctx, c.baseURL+forecastPath+"?"+q.Encode(), genericForecastError)
}

// Geocode resolves a city name to coordinates. At most one match is
// requested from upstream.
func (c *Client) Geocode(ctx context.Context, city string) ([]GeoMatch, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("limit", "1")
	q.Set("appid", c.apiKey)

	body, err := c.get(ctx, c.geoURL+geocodePath+"?"+q.Encode(), genericWeatherError)
	if err != nil {
		return nil, err
	}

	var matches []GeoMatch
	if err := json.Unmarshal(body, &matches); err != nil {
		log.Error().Err(err).Msg("failed to decode geocoding response")
		return nil, &domain.UpstreamError{Status: http.StatusInternalServerError, Message: genericWeatherError}
	}
	return matches, nil
}

// get performs one upstream call. Non-2xx responses surface the
// upstream status and its message field; transport failures and
// unreadable bodies default to 500 with the fallback message.
func (c *Client) get(ctx context.Context, rawURL, fallback string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &domain.UpstreamError{Status: http.StatusInternalServerError, Message: fallback}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("upstream weather request failed")
		return nil, &domain.UpstreamError{Status: http.StatusInternalServerError, Message: fallback}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := fallback
		var errBody struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil && errBody.Message != "" {
			message = errBody.Message
		}
		return nil, &domain.UpstreamError{Status: resp.StatusCode, Message: message}
	}

	var body json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Error().Err(err).Msg("failed to decode upstream weather response")
		return nil, &domain.UpstreamError{Status: http.StatusInternalServerError, Message: fallback}
	}
	return body, nil
}
