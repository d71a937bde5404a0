// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// router to distinguish between different failure scenarios without
// inspecting messages. For example, ErrUnknownTable signals that a
// reservation references a table number nobody created, while
// ErrConflictingReservation signals that the requested slot overlaps an
// existing booking for the same table and date.
package repository

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput is returned when a request misses required fields or
// carries malformed ones. Handlers should translate this into a 400.
var ErrInvalidInput = errors.New("invalid input")

// ErrNotFound is returned when a point lookup finds nothing. Handlers
// should translate this into a 404.
var ErrNotFound = errors.New("not found")

// ErrUnknownTable is returned when a reservation names a table number that
// no table carries.
var ErrUnknownTable = errors.New("unknown table")

// ErrConflictingReservation is returned when the requested slot overlaps an
// existing reservation for the same table and date.
var ErrConflictingReservation = errors.New("conflicting reservation")

// ErrUpstream wraps failures of the item store or identity provider.
var ErrUpstream = errors.New("upstream failure")

// validate is shared by every request type in this package; validator
// caches struct metadata so one instance is enough.  Field names in errors
// use the json tag so messages match what clients sent.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the struct tags of v and folds failures into
// ErrInvalidInput, naming the first offending field.
func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed %q", ErrInvalidInput, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// upstream wraps a store error so callers can match ErrUpstream while the
// original cause stays inspectable.
func upstream(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
}
