package middleware

// identity.go derives a caller identifier for middleware that needs one
// before the router has run, such as the rate limiter.

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// userID returns the "user_id" a verifying layer stored on the context, or
// "anon".  Bearer claims are only decoded at the gate, so a subject taken
// from them is caller-controlled and never used as an identity here.
func userID(c echo.Context) string {
	if v, ok := c.Get("user_id").(string); ok && v != "" {
		return v
	}
	return "anon"
}

// routePattern collapses numeric path segments so /tables/1 and /tables/2
// share the pattern /tables/{id}.
func routePattern(path string) string {
	segs := strings.Split(path, "/")
	for i, s := range segs {
		if s != "" && strings.Trim(s, "0123456789") == "" {
			segs[i] = "{id}"
		}
	}
	return strings.Join(segs, "/")
}
