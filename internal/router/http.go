package router

import (
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/restaurant-booking/internal/config"
	"github.com/iliyamo/restaurant-booking/internal/handler"
	"github.com/iliyamo/restaurant-booking/internal/middleware"
)

// maxBodyBytes caps inbound request bodies.
const maxBodyBytes = 1 << 20

// Deps are the pieces RegisterRoutes mounts on echo.  Weather and Redis are
// optional.
type Deps struct {
	Router    *Router
	Weather   *handler.WeatherHandler
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Log       logrus.FieldLogger
}

// RegisterRoutes mounts the health probe, the weather endpoints and a
// catch-all that hands every other request to the booking Router.  Snapshot
// writes pass the same bearer gate as the booking routes.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log)
	if d.Weather != nil {
		e.GET("/weather", d.Weather.Forecast, limit, middleware.NewRedisCache(d.Cache, d.Redis, d.Log))
		e.POST("/weather/snapshots", d.Weather.Snapshot, limit, middleware.RequireBearer())
	}
	e.Any("/*", d.Router.ServeEcho, limit)
}

// ServeEcho adapts an HTTP request to Handle and writes the envelope back.
func (r *Router) ServeEcho(c echo.Context) error {
	req, err := RequestFromHTTP(c.Request())
	if err != nil {
		return writeEnvelope(c, handler.Message(http.StatusBadRequest, err.Error()))
	}
	return writeEnvelope(c, r.Handle(c.Request().Context(), req))
}

// RequestFromHTTP builds a handler.Request.  An empty body becomes nil.
func RequestFromHTTP(hr *http.Request) (handler.Request, error) {
	req := handler.Request{
		Path:       hr.URL.Path,
		HTTPMethod: hr.Method,
		Headers:    middleware.FlattenHeaders(hr.Header),
	}
	if hr.Body == nil {
		return req, nil
	}
	b, err := io.ReadAll(io.LimitReader(hr.Body, maxBodyBytes+1))
	if err != nil {
		return req, fmt.Errorf("read body: %w", err)
	}
	if len(b) > maxBodyBytes {
		return req, fmt.Errorf("request body exceeds %d bytes", maxBodyBytes)
	}
	if len(b) > 0 {
		s := string(b)
		req.Body = &s
	}
	return req, nil
}

func writeEnvelope(c echo.Context, resp handler.Response) error {
	h := c.Response().Header()
	for k, v := range resp.Headers {
		h.Set(k, v)
	}
	c.Response().WriteHeader(resp.StatusCode)
	if resp.Body == nil {
		return nil
	}
	_, err := io.WriteString(c.Response(), *resp.Body)
	return err
}
