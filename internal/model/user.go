package model

import "time"

// User status values follow the identity provider's account lifecycle: an
// account created with a temporary password must have a permanent one set
// before it can sign in.
const (
	UserStatusForceChangePassword = "FORCE_CHANGE_PASSWORD"
	UserStatusConfirmed           = "CONFIRMED"
)

// User is an account held by the local identity provider.
//
// Fields:
//  Email        – login name and storage key, lower-cased.
//  Subject      – stable UUID placed in the "sub" claim of issued tokens.
//  GivenName    – first name.
//  FamilyName   – last name.
//  PasswordHash – bcrypt hash of the current password.
//  Status       – FORCE_CHANGE_PASSWORD or CONFIRMED.
//  CreatedAt    – creation timestamp (UTC).
type User struct {
	Email        string    // users.email (S)
	Subject      string    // users.sub (S)
	GivenName    string    // users.givenName (S)
	FamilyName   string    // users.familyName (S)
	PasswordHash string    // users.passwordHash (S)
	Status       string    // users.status (S)
	CreatedAt    time.Time // users.createdAt (S, RFC3339)
}
