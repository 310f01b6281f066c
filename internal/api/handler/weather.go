package handler

import (
	"net/http"

	"github.com/skycastlabs/skycast-api/internal/api/response"
	"github.com/skycastlabs/skycast-api/internal/weather"
)

// WeatherHandler handles weather proxy endpoints.
type WeatherHandler struct {
	weather *weather.Service
}

// NewWeatherHandler creates a new weather handler.
func NewWeatherHandler(svc *weather.Service) *WeatherHandler {
	return &WeatherHandler{weather: svc}
}

// Coordinates handles GET /api/weather/coordinates?lat&lon.
func (h *WeatherHandler) Coordinates(w http.ResponseWriter, r *http.Request) {
	body, err := h.weather.ByCoordinates(r.Context(), r.URL.Query().Get("lat"), r.URL.Query().Get("lon"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, body)
}

// City handles GET /api/weather/city?city.
func (h *WeatherHandler) City(w http.ResponseWriter, r *http.Request) {
	body, err := h.weather.ByCity(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, body)
}

// Forecast handles GET /api/weather/forecast?lat&lon.
func (h *WeatherHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	body, err := h.weather.Forecast(r.Context(), r.URL.Query().Get("lat"), r.URL.Query().Get("lon"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, body)
}
