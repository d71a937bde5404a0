// Package router dispatches booking API requests.  Router is the only place
// where handler errors become response envelopes.
package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/restaurant-booking/internal/handler"
	"github.com/iliyamo/restaurant-booking/internal/middleware"
	"github.com/iliyamo/restaurant-booking/internal/repository"
)

// DefaultTimeout bounds one request, store and identity calls included.
const DefaultTimeout = 5 * time.Second

var tableByID = regexp.MustCompile(`^/tables/\d+$`)

// Handlers are the operations the router dispatches to.
type Handlers struct {
	Auth         *handler.AuthHandler
	Tables       *handler.TableHandler
	Reservations *handler.ReservationHandler
}

// Router maps (path, method) pairs to handlers.  Signup and signin are
// public; every other route requires a bearer token, checked before the
// route is resolved.
type Router struct {
	h       Handlers
	log     logrus.FieldLogger
	Timeout time.Duration
}

// New returns a Router with DefaultTimeout.
func New(h Handlers, log logrus.FieldLogger) *Router {
	return &Router{h: h, log: log, Timeout: DefaultTimeout}
}

func (r *Router) public(path, method string) handler.Func {
	if method != http.MethodPost {
		return nil
	}
	switch path {
	case "/signup":
		return r.h.Auth.Signup
	case "/signin":
		return r.h.Auth.Signin
	}
	return nil
}

func (r *Router) protected(path, method string) handler.Func {
	switch {
	case path == "/tables" && method == http.MethodGet:
		return r.h.Tables.List
	case path == "/tables" && method == http.MethodPost:
		return r.h.Tables.Create
	case tableByID.MatchString(path) && method == http.MethodGet:
		return r.h.Tables.Get
	case path == "/reservations" && method == http.MethodPost:
		return r.h.Reservations.Create
	case path == "/reservations" && method == http.MethodGet:
		return r.h.Reservations.List
	}
	return nil
}

// Handle serves one request.  It always returns an envelope: handler
// errors and panics are converted here.
func (r *Router) Handle(ctx context.Context, req handler.Request) (resp handler.Response) {
	start := time.Now()
	method := strings.ToUpper(req.HTTPMethod)
	log := r.log.WithFields(logrus.Fields{"path": req.Path, "method": method})

	defer func() {
		if p := recover(); p != nil {
			log.WithField("panic", p).Error("handler panicked")
			resp = handler.Message(http.StatusBadRequest, panicMessage(p))
		}
		log.WithFields(logrus.Fields{
			"status":     resp.StatusCode,
			"latency_ms": time.Since(start).Milliseconds(),
		}).Info("handled")
	}()

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	if f := r.public(req.Path, method); f != nil {
		return r.run(ctx, log, f, req)
	}

	claim, err := middleware.Authorize(req.Headers)
	if err != nil {
		log.WithError(err).Info("request rejected by gate")
		return handler.Message(http.StatusUnauthorized, err.Error())
	}
	ctx = handler.WithClaim(ctx, claim)
	log = log.WithField("sub", claim.Subject)

	f := r.protected(req.Path, method)
	if f == nil {
		return handler.Message(http.StatusNotFound, "Endpoint not found")
	}
	return r.run(ctx, log, f, req)
}

func (r *Router) run(ctx context.Context, log logrus.FieldLogger, f handler.Func, req handler.Request) handler.Response {
	resp, err := f(ctx, req)
	if err != nil {
		status := StatusFor(err)
		log.WithError(err).WithField("status", status).Warn("handler failed")
		return handler.Message(status, err.Error())
	}
	return resp
}

// StatusFor maps a handler error to its HTTP status.  Anything that is not
// a known lookup miss or auth failure is a bad request.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, middleware.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}

func panicMessage(p any) string {
	if err, ok := p.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(p)
}
