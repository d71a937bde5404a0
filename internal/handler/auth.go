package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/restaurant-booking/internal/identity"
	"github.com/iliyamo/restaurant-booking/internal/repository"
)

// AuthHandler bundles dependencies for the signup and signin endpoints.
type AuthHandler struct {
	Users identity.Provider
	Log   logrus.FieldLogger
}

func NewAuthHandler(p identity.Provider, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Users: p, Log: log}
}

// ----- DTOs -----

type signupReq struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
}

type signinReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type signinResp struct {
	IDToken string `json:"idToken"`
}

var validate = validator.New()

func validateReq(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrInvalidInput, err)
	}
	return nil
}

// Signup creates the user with the supplied password as a temporary one
// and immediately makes it permanent.  The response has no body.
func (h *AuthHandler) Signup(ctx context.Context, req Request) (Response, error) {
	var body signupReq
	if err := decodeBody(req, &body); err != nil {
		return Response{}, err
	}
	if err := validateReq(body); err != nil {
		return Response{}, err
	}

	u, err := h.Users.CreateUser(ctx, body.Email, body.Password, body.FirstName, body.LastName)
	if err != nil {
		return Response{}, fmt.Errorf("sign-up: %w: %w", repository.ErrUpstream, err)
	}
	if err := h.Users.SetPermanentPassword(ctx, u.Email, body.Password); err != nil {
		return Response{}, fmt.Errorf("sign-up: %w: %w", repository.ErrUpstream, err)
	}
	h.Log.WithField("sub", u.Subject).Info("user signed up")
	return JSON(http.StatusOK, nil)
}

// Signin authenticates with email and password.  When the provider returns
// no result the response is 200 without a body.
func (h *AuthHandler) Signin(ctx context.Context, req Request) (Response, error) {
	var body signinReq
	if err := decodeBody(req, &body); err != nil {
		return Response{}, err
	}
	if err := validateReq(body); err != nil {
		return Response{}, err
	}

	res, err := h.Users.InitiateAuth(ctx, body.Email, body.Password)
	if err != nil {
		return Response{}, fmt.Errorf("sign-in: %w: %w", repository.ErrUpstream, err)
	}
	if res == nil {
		return JSON(http.StatusOK, nil)
	}
	return JSON(http.StatusOK, signinResp{IDToken: res.IDToken})
}
