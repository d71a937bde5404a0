// Package handler implements the booking API operations.  Handlers take a
// transport-neutral Request and return a Response envelope or an error; the
// router turns errors into envelopes, so handlers never build failure
// responses themselves.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iliyamo/restaurant-booking/internal/middleware"
	"github.com/iliyamo/restaurant-booking/internal/repository"
)

// Request is an HTTP-shaped inbound request.  Body is nil when the request
// carried none.
type Request struct {
	Path       string            `json:"path"`
	HTTPMethod string            `json:"httpMethod"`
	Headers    map[string]string `json:"headers"`
	Body       *string           `json:"body"`
}

// Response is the envelope every route returns.  Body holds JSON text, or
// nil for an empty body.
type Response struct {
	StatusCode      int               `json:"statusCode"`
	Headers         map[string]string `json:"headers"`
	Body            *string           `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`
}

// Func is the signature shared by every booking API handler.
type Func func(ctx context.Context, req Request) (Response, error)

// DefaultHeaders returns the headers sent on every response.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Headers": "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "*",
		"Accept-Version":               "*",
	}
}

// JSON returns an envelope whose body is v encoded as JSON.  A nil v yields
// an envelope without a body.
func JSON(status int, v any) (Response, error) {
	resp := Response{StatusCode: status, Headers: DefaultHeaders()}
	if v == nil {
		return resp, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return Response{}, fmt.Errorf("encode response: %w", err)
	}
	s := string(b)
	resp.Body = &s
	return resp, nil
}

// Message returns a {"message": msg} envelope.  It cannot fail.
func Message(status int, msg string) Response {
	b, _ := json.Marshal(map[string]string{"message": msg})
	s := string(b)
	return Response{StatusCode: status, Headers: DefaultHeaders(), Body: &s}
}

// decodeBody unmarshals the request body into dst.  A missing or malformed
// body is invalid input.
func decodeBody(req Request, dst any) error {
	if req.Body == nil || strings.TrimSpace(*req.Body) == "" {
		return fmt.Errorf("%w: request body is required", repository.ErrInvalidInput)
	}
	if err := json.Unmarshal([]byte(*req.Body), dst); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrInvalidInput, err)
	}
	return nil
}

type claimKey struct{}

// WithClaim attaches the caller's decoded token to ctx.
func WithClaim(ctx context.Context, c middleware.Claim) context.Context {
	return context.WithValue(ctx, claimKey{}, c)
}

// ClaimFrom returns the claim attached by WithClaim.
func ClaimFrom(ctx context.Context) (middleware.Claim, bool) {
	c, ok := ctx.Value(claimKey{}).(middleware.Claim)
	return c, ok
}

func subjectOf(ctx context.Context) string {
	c, _ := ClaimFrom(ctx)
	return c.Subject
}
