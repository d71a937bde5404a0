package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/restaurant-booking/internal/weather"
)

// WeatherHandler exposes the forecast passthrough and snapshot endpoints.
type WeatherHandler struct {
	Client    weather.Fetcher
	Processor *weather.Processor
	Log       logrus.FieldLogger
}

func NewWeatherHandler(c weather.Fetcher, p *weather.Processor, log logrus.FieldLogger) *WeatherHandler {
	return &WeatherHandler{Client: c, Processor: p, Log: log}
}

var fetchFailed = echo.Map{"error": "Failed to fetch weather data"}

// Forecast returns the upstream forecast unchanged.
func (h *WeatherHandler) Forecast(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	body, err := h.Client.Forecast(ctx)
	if err != nil {
		h.Log.WithError(err).Warn("weather fetch failed")
		return c.JSON(http.StatusInternalServerError, fetchFailed)
	}
	return c.JSONBlob(http.StatusOK, body)
}

// Snapshot stores the current forecast and returns the stored document.
func (h *WeatherHandler) Snapshot(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, forecast, err := h.Processor.Snapshot(ctx)
	if err != nil {
		h.Log.WithError(err).Warn("weather snapshot failed")
		return c.JSON(http.StatusInternalServerError, fetchFailed)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "forecast": forecast})
}
