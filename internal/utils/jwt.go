package utils // package utils provides helper functions for token creation, hashing and logging

import (
	"crypto/rand"  // secure random number generation
	"encoding/hex" // hex encoding for generated secrets
	"time"         // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// IDToken represents a signed JWT identity token along with its expiry.
// Clients present it as "Authorization: Bearer <token>" on protected routes.
type IDToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// IDTokenSubject carries the user attributes embedded into an identity token.
type IDTokenSubject struct {
	Subject    string
	Email      string
	GivenName  string
	FamilyName string
}

// NewIDToken builds and signs an HS256 identity token.  The claim names
// follow the OpenID Connect id token: sub, email, given_name, family_name,
// plus token_use "id", the issuer and audience, exp, iat and auth_time.
func NewIDToken(secret, issuer, audience string, s IDTokenSubject, ttlMin int) (IDToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":         s.Subject,
		"email":       s.Email,
		"given_name":  s.GivenName,
		"family_name": s.FamilyName,
		"token_use":   "id",
		"exp":         exp.Unix(),
		"iat":         now.Unix(),
		"auth_time":   now.Unix(),
	}
	if issuer != "" {
		claims["iss"] = issuer
	}
	if audience != "" {
		claims["aud"] = audience
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return IDToken{}, err
	}
	return IDToken{Token: signed, Exp: exp}, nil
}

// RandomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func RandomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
