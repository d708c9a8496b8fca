package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service orchestrates credential checks, token issuance and the per-request
// role guard over an injected Store. It holds no mutable state of its own;
// every request is handled independently.
type Service struct {
	store  Store
	issuer *Issuer
}

// NewService constructs a Service.
func NewService(store Store, issuer *Issuer) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: store is required")
	}
	if issuer == nil {
		return nil, errors.New("auth: issuer is required")
	}
	return &Service{store: store, issuer: issuer}, nil
}

// Token is the login result handed to the transport layer.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Login exchanges username/password for a bearer token carrying the
// caller-requested scopes. Scopes are client-declared and frozen into the
// token; roles stay in the store and are checked per operation. Unknown
// usernames and wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, username, password string, scopes []string) (Token, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	if username == "" || password == "" {
		return Token{}, ErrInvalidCredentials
	}
	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Burn a hash comparison so the miss costs the same as a
			// mismatch.
			_ = VerifyPassword(decoyHash, password)
			return Token{}, ErrInvalidCredentials
		}
		return Token{}, err
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return Token{}, ErrInvalidCredentials
		}
		return Token{}, err
	}
	signed, exp, err := s.issuer.Issue(user.UUID, scopes, 0)
	if err != nil {
		return Token{}, err
	}
	return Token{AccessToken: signed, TokenType: "bearer", ExpiresAt: exp}, nil
}

// Register creates a credential with a fresh identity and grants the
// bootstrap "user" role.
func (s *Service) Register(ctx context.Context, username, password, firstName, lastName string) (*User, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &User{
		UUID:         uuid.New(),
		Username:     username,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	if err := s.store.GrantRole(ctx, user.UUID, RoleUser); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate resolves a bearer token into a live principal. The subject is
// re-read from the store, so an account deleted after issuance fails exactly
// like bad credentials.
func (s *Service) Authenticate(ctx context.Context, token string) (Principal, error) {
	subject, claims, err := s.issuer.Verify(token)
	if err != nil {
		return Principal{}, err
	}
	user, err := s.store.FindByUUID(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Principal{}, ErrInvalidCredentials
		}
		return Principal{}, err
	}
	return Principal{User: user, Scopes: claims.Scopes}, nil
}

// Authorize re-fetches the subject's current roles and intersects them with
// the operation's allowed list. Roles are never read from the token, so a
// grant or revoke takes effect on the very next request. An empty allowed
// list only requires the subject to exist.
func (s *Service) Authorize(ctx context.Context, subject uuid.UUID, allowed ...string) ([]string, error) {
	roles, err := s.store.Roles(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	if len(allowed) == 0 {
		return roles, nil
	}
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[strings.TrimSpace(strings.ToLower(role))] = struct{}{}
	}
	for _, role := range roles {
		if _, ok := allowedSet[strings.TrimSpace(strings.ToLower(role))]; ok {
			return roles, nil
		}
	}
	return nil, ErrForbidden
}

// FindUser resolves a subject by identity.
func (s *Service) FindUser(ctx context.Context, subject uuid.UUID) (*User, error) {
	return s.store.FindByUUID(ctx, subject)
}

// ListUsers returns all accounts, ordered by username.
func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.store.ListUsers(ctx)
}

// DeleteUser removes the account. Outstanding tokens for the subject fail
// authentication as soon as the row is gone.
func (s *Service) DeleteUser(ctx context.Context, subject uuid.UUID) error {
	return s.store.DeleteUser(ctx, subject)
}

// ChangePassword verifies the current password before storing a new hash.
func (s *Service) ChangePassword(ctx context.Context, subject uuid.UUID, current, next string) error {
	user, err := s.store.FindByUUID(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if err := VerifyPassword(user.PasswordHash, current); err != nil {
		return err
	}
	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	return s.store.SetPassword(ctx, subject, hash)
}

// GrantRole assigns a built-in role to the subject.
func (s *Service) GrantRole(ctx context.Context, subject uuid.UUID, role string) error {
	role, err := normalizeRole(role)
	if err != nil {
		return err
	}
	return s.store.GrantRole(ctx, subject, role)
}

// RevokeRole removes a role assignment. The next request with any
// still-valid token sees the reduced role set.
func (s *Service) RevokeRole(ctx context.Context, subject uuid.UUID, role string) error {
	role, err := normalizeRole(role)
	if err != nil {
		return err
	}
	return s.store.RevokeRole(ctx, subject, role)
}

// EnsureBuiltins makes sure the role reference rows exist.
func (s *Service) EnsureBuiltins(ctx context.Context) error {
	return s.store.EnsureRoles(ctx, BuiltinRoles)
}

func normalizeRole(role string) (string, error) {
	role = strings.TrimSpace(strings.ToLower(role))
	for _, known := range BuiltinRoles {
		if role == known {
			return role, nil
		}
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
}
