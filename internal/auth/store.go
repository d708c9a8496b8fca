package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Built-in role names. Roles are reference data created at bootstrap and
// never deleted while referenced.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// BuiltinRoles is seeded by migrations and EnsureRoles.
var BuiltinRoles = []string{RoleUser, RoleAdmin}

// User is a stored account. ID is the store's internal row key and never
// leaves the storage layer; UUID is the externally trusted identity that
// tokens bind to.
type User struct {
	ID           int64     `json:"-"`
	UUID         uuid.UUID `json:"uuid"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store describes the credential persistence the auth core depends on. It is
// injected into Service so tests can substitute an in-memory implementation.
type Store interface {
	CreateUser(ctx context.Context, u *User) error
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByUUID(ctx context.Context, id uuid.UUID) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// Roles returns the subject's current role names. The guard calls this
	// on every request; implementations must read current state, not a
	// token-issuance snapshot.
	Roles(ctx context.Context, id uuid.UUID) ([]string, error)
	GrantRole(ctx context.Context, id uuid.UUID, role string) error
	RevokeRole(ctx context.Context, id uuid.UUID, role string) error
	EnsureRoles(ctx context.Context, roles []string) error
}
