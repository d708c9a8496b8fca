package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"ironlog.app/internal/auth"
)

var _ auth.Store = (*Store)(nil)

func (s *Store) CreateUser(ctx context.Context, u *auth.User) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	row := s.db.QueryRowContext(ctx, `
		insert into users (uuid, username, password_hash, first_name, last_name)
		values ($1, lower($2), $3, $4, $5)
		returning id, created_at, updated_at
	`, u.UUID, u.Username, u.PasswordHash, u.FirstName, u.LastName)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return auth.ErrConflict
		}
		return err
	}
	u.Username = strings.ToLower(u.Username)
	return nil
}

func (s *Store) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	return s.scanUser(s.db.QueryRowContext(ctx, `
		select id, uuid, username, password_hash, first_name, last_name, created_at, updated_at
		from users
		where username = lower($1)
	`, username))
}

func (s *Store) FindByUUID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	return s.scanUser(s.db.QueryRowContext(ctx, `
		select id, uuid, username, password_hash, first_name, last_name, created_at, updated_at
		from users
		where uuid = $1
	`, id))
}

func (s *Store) ListUsers(ctx context.Context) ([]*auth.User, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, uuid, username, password_hash, first_name, last_name, created_at, updated_at
		from users
		order by username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*auth.User
	for rows.Next() {
		var u auth.User
		if err := rows.Scan(&u.ID, &u.UUID, &u.Username, &u.PasswordHash, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `delete from users where uuid = $1`, id)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return auth.ErrNotFound
	}
	return nil
}

func (s *Store) SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `
		update users set password_hash = $2, updated_at = now()
		where uuid = $1
	`, id, passwordHash)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return auth.ErrNotFound
	}
	return nil
}

// Roles reads the subject's current role names. No caching here: the
// permission guard depends on this reflecting grants and revocations
// made after the token was issued.
func (s *Store) Roles(ctx context.Context, id uuid.UUID) ([]string, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	userID, err := s.userRowID(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		select r.name
		from user_roles ur
		join roles r on r.id = ur.role_id
		where ur.user_id = $1
		order by r.name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		roles = append(roles, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}

func (s *Store) GrantRole(ctx context.Context, id uuid.UUID, role string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	userID, err := s.userRowID(ctx, id)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		insert into user_roles (user_id, role_id)
		select $1, r.id from roles r where r.name = $2
		on conflict do nothing
	`, userID, role)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		// Either the role name does not exist or the grant is already
		// in place; distinguish the two.
		var exists int
		err := s.db.QueryRowContext(ctx, `select 1 from roles where name = $1`, role).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: role %s", auth.ErrNotFound, role)
		}
		return err
	}
	return nil
}

func (s *Store) RevokeRole(ctx context.Context, id uuid.UUID, role string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	userID, err := s.userRowID(ctx, id)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		delete from user_roles
		where user_id = $1
		  and role_id = (select id from roles where name = $2)
	`, userID, role)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return auth.ErrNotFound
	}
	return nil
}

func (s *Store) EnsureRoles(ctx context.Context, roles []string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	for _, role := range roles {
		if _, err := s.db.ExecContext(ctx, `
			insert into roles (name) values ($1)
			on conflict (name) do nothing
		`, role); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) scanUser(row *sql.Row) (*auth.User, error) {
	var u auth.User
	err := row.Scan(&u.ID, &u.UUID, &u.Username, &u.PasswordHash, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) userRowID(ctx context.Context, id uuid.UUID) (int64, error) {
	var rowID int64
	err := s.db.QueryRowContext(ctx, `select id from users where uuid = $1`, id).Scan(&rowID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, auth.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return rowID, nil
}
