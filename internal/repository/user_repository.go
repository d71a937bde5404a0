package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/restaurant-booking/internal/attribute"
	"github.com/iliyamo/restaurant-booking/internal/model"
	"github.com/iliyamo/restaurant-booking/internal/store"
)

// UserRepo persists identity provider accounts in the item store, keyed by
// normalised email.  The store table must use "email" as its partition key.
type UserRepo struct {
	store store.ItemStore
	table string
}

func NewUserRepo(s store.ItemStore, table string) *UserRepo { return &UserRepo{store: s, table: table} }

var ErrUserExists = errors.New("user already exists")

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Create inserts u unless an account with the same email exists.
func (r *UserRepo) Create(ctx context.Context, u model.User) error {
	u.Email = NormalizeEmail(u.Email)
	if _, err := r.GetByEmail(ctx, u.Email); err == nil {
		return ErrUserExists
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return r.Save(ctx, u)
}

// Save writes u, replacing any stored version.
func (r *UserRepo) Save(ctx context.Context, u model.User) error {
	u.Email = NormalizeEmail(u.Email)
	if err := r.store.PutItem(ctx, r.table, userToItem(u)); err != nil {
		return upstream("put user", err)
	}
	return nil
}

// GetByEmail fetches a user by normalised email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = NormalizeEmail(email)
	item, err := r.store.GetItem(ctx, r.table, attribute.Item{"email": attribute.String(email)})
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return model.User{}, fmt.Errorf("user %s: %w", email, ErrNotFound)
		}
		return model.User{}, upstream("get user", err)
	}
	return userFromItem(item)
}

func userToItem(u model.User) attribute.Item {
	return attribute.Item{
		"email":        attribute.String(u.Email),
		"sub":          attribute.String(u.Subject),
		"givenName":    attribute.String(u.GivenName),
		"familyName":   attribute.String(u.FamilyName),
		"passwordHash": attribute.String(u.PasswordHash),
		"status":       attribute.String(u.Status),
		"createdAt":    attribute.String(u.CreatedAt.UTC().Format(time.RFC3339)),
	}
}

func userFromItem(item attribute.Item) (model.User, error) {
	var (
		u   model.User
		err error
	)
	fields := []struct {
		key string
		dst *string
	}{
		{"email", &u.Email},
		{"sub", &u.Subject},
		{"givenName", &u.GivenName},
		{"familyName", &u.FamilyName},
		{"passwordHash", &u.PasswordHash},
		{"status", &u.Status},
	}
	for _, f := range fields {
		if *f.dst, err = item.GetString(f.key); err != nil {
			return u, fmt.Errorf("decode user: %w", err)
		}
	}
	created, err := item.GetString("createdAt")
	if err != nil {
		return u, fmt.Errorf("decode user: %w", err)
	}
	if u.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
		return u, fmt.Errorf("decode user: %w", err)
	}
	return u, nil
}
