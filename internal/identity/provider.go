// Package identity implements the user pool the booking API signs users up
// against and authenticates them with.  The Provider interface mirrors a
// managed identity service: an administrator creates a user with a
// temporary password, the password is then made permanent, and password
// authentication returns an identity token.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-booking/internal/model"
	"github.com/iliyamo/restaurant-booking/internal/repository"
	"github.com/iliyamo/restaurant-booking/internal/utils"
)

// ErrNotAuthorized is returned by InitiateAuth when the email is unknown or
// the password does not match.
var ErrNotAuthorized = errors.New("incorrect username or password")

// ErrUsernameExists is returned by CreateUser for an email already in the pool.
var ErrUsernameExists = errors.New("user account already exists")

// AuthResult is the outcome of a successful password authentication.
type AuthResult struct {
	IDToken string
	Expires time.Time
}

// Provider is the identity provider seen by the signup and signin handlers.
type Provider interface {
	CreateUser(ctx context.Context, email, tempPassword, givenName, familyName string) (model.User, error)
	SetPermanentPassword(ctx context.Context, email, password string) error
	// InitiateAuth returns a nil result without error when the user still
	// has to change a temporary password.
	InitiateAuth(ctx context.Context, email, password string) (*AuthResult, error)
}

// Options configures a LocalProvider.
type Options struct {
	PoolID      string // identity pool id, used as the token issuer
	ClientID    string // app client id, used as the token audience
	TokenSecret string // HS256 signing secret for identity tokens
	TokenTTLMin int
	BcryptCost  int
}

// LocalProvider is a Provider backed by the item store.  Passwords are
// bcrypt hashed and identity tokens are HS256 JWTs.
type LocalProvider struct {
	users *repository.UserRepo
	opts  Options
	now   func() time.Time
}

// NewLocalProvider returns a LocalProvider storing accounts in users.
func NewLocalProvider(users *repository.UserRepo, opts Options) *LocalProvider {
	if opts.TokenTTLMin <= 0 {
		opts.TokenTTLMin = 60
	}
	return &LocalProvider{users: users, opts: opts, now: time.Now}
}

// CreateUser adds a user in FORCE_CHANGE_PASSWORD state.
func (p *LocalProvider) CreateUser(ctx context.Context, email, tempPassword, givenName, familyName string) (model.User, error) {
	hash, err := utils.HashPassword(tempPassword, p.opts.BcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := model.User{
		Email:        repository.NormalizeEmail(email),
		Subject:      uuid.NewString(),
		GivenName:    givenName,
		FamilyName:   familyName,
		PasswordHash: hash,
		Status:       model.UserStatusForceChangePassword,
		CreatedAt:    p.now().UTC().Truncate(time.Second),
	}
	if err := p.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return model.User{}, ErrUsernameExists
		}
		return model.User{}, err
	}
	return u, nil
}

// SetPermanentPassword replaces the password and confirms the user.
func (p *LocalProvider) SetPermanentPassword(ctx context.Context, email, password string) error {
	u, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	hash, err := utils.HashPassword(password, p.opts.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash
	u.Status = model.UserStatusConfirmed
	return p.users.Save(ctx, u)
}

// InitiateAuth checks the password and issues an identity token.
func (p *LocalProvider) InitiateAuth(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotAuthorized
		}
		return nil, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, ErrNotAuthorized
	}
	if u.Status == model.UserStatusForceChangePassword {
		return nil, nil
	}
	tok, err := utils.NewIDToken(p.opts.TokenSecret, p.opts.PoolID, p.opts.ClientID, utils.IDTokenSubject{
		Subject:    u.Subject,
		Email:      u.Email,
		GivenName:  u.GivenName,
		FamilyName: u.FamilyName,
	}, p.opts.TokenTTLMin)
	if err != nil {
		return nil, fmt.Errorf("issue id token: %w", err)
	}
	return &AuthResult{IDToken: tok.Token, Expires: tok.Exp}, nil
}
