package pg

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"ironlog.app/internal/auth"
	"ironlog.app/internal/gym"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewWithDB(db), mock
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("insert into users").
		WithArgs(sqlmock.AnyArg(), "alice", sqlmock.AnyArg(), "Alice", "Smith").
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	err := store.CreateUser(context.Background(), &auth.User{
		UUID:         uuid.New(),
		Username:     "alice",
		PasswordHash: "$2a$10$hash",
		FirstName:    "Alice",
		LastName:     "Smith",
	})
	if !errors.Is(err, auth.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindByUsernameNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select id, uuid, username, password_hash").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	if _, err := store.FindByUsername(context.Background(), "ghost"); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindByUUIDScansUser(t *testing.T) {
	store, mock := newMockStore(t)

	id := uuid.New()
	now := time.Now().UTC()
	mock.ExpectQuery("select id, uuid, username, password_hash").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "uuid", "username", "password_hash", "first_name", "last_name", "created_at", "updated_at",
		}).AddRow(int64(7), id, "alice", "$2a$10$hash", "Alice", "Smith", now, now))

	u, err := store.FindByUUID(context.Background(), id)
	if err != nil {
		t.Fatalf("FindByUUID: %v", err)
	}
	if u.ID != 7 || u.UUID != id || u.Username != "alice" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRolesReadsCurrentAssignments(t *testing.T) {
	store, mock := newMockStore(t)

	id := uuid.New()
	mock.ExpectQuery("select id from users where uuid").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectQuery(`select r\.name`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("admin").AddRow("user"))

	roles, err := store.Roles(context.Background(), id)
	if err != nil {
		t.Fatalf("Roles: %v", err)
	}
	if len(roles) != 2 || roles[0] != "admin" || roles[1] != "user" {
		t.Fatalf("unexpected roles: %v", roles)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRolesUnknownSubject(t *testing.T) {
	store, mock := newMockStore(t)

	id := uuid.New()
	mock.ExpectQuery("select id from users where uuid").
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	if _, err := store.Roles(context.Background(), id); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGrantRoleUnknownName(t *testing.T) {
	store, mock := newMockStore(t)

	id := uuid.New()
	mock.ExpectQuery("select id from users where uuid").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectExec("insert into user_roles").
		WithArgs(int64(3), "superuser").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("select 1 from roles where name").
		WithArgs("superuser").
		WillReturnError(sql.ErrNoRows)

	if err := store.GrantRole(context.Background(), id, "superuser"); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRevokeRoleMissingAssignment(t *testing.T) {
	store, mock := newMockStore(t)

	id := uuid.New()
	mock.ExpectQuery("select id from users where uuid").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectExec("delete from user_roles").
		WithArgs(int64(3), "admin").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.RevokeRole(context.Background(), id, "admin"); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateExerciseEncodesMuscles(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery("insert into exercises").
		WithArgs(sqlmock.AnyArg(), "Bench Press", "Flat barbell press", "Barbell", "Chest", []byte(`["Chest","Triceps"]`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(1), now, now))

	e := &gym.Exercise{
		UUID:            uuid.New(),
		Name:            "Bench Press",
		Description:     "Flat barbell press",
		Equipment:       "Barbell",
		MajorMuscle:     "Chest",
		SpecificMuscles: []string{"Chest", "Triceps"},
	}
	if err := store.CreateExercise(context.Background(), e); err != nil {
		t.Fatalf("CreateExercise: %v", err)
	}
	if e.ID != 1 {
		t.Fatalf("row id not captured: %d", e.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateWorkoutExerciseGoneMidFlight(t *testing.T) {
	store, mock := newMockStore(t)

	owner := uuid.New()
	exercise := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("select id from users").
		WithArgs(owner).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectQuery("insert into workouts").
		WithArgs(sqlmock.AnyArg(), int64(7), "Push Day", "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(3), now, now))
	// The insert-via-select matches no exercise row, so the slot would be
	// silently dropped unless the store treats zero rows as a failure.
	mock.ExpectExec("insert into workout_exercises").
		WithArgs(int64(3), exercise, 1, 3, 10).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.CreateWorkout(context.Background(), &gym.Workout{
		UUID:      uuid.New(),
		OwnerUUID: owner,
		Name:      "Push Day",
		Exercises: []gym.WorkoutExercise{
			{ExerciseUUID: exercise, Position: 1, Sets: 3, Reps: 10},
		},
	})
	if !errors.Is(err, gym.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteExerciseStillReferenced(t *testing.T) {
	store, mock := newMockStore(t)

	id := uuid.New()
	mock.ExpectExec("delete from exercises").
		WithArgs(id).
		WillReturnError(&pgconn.PgError{Code: pgErrForeignKeyViolation})

	if err := store.DeleteExercise(context.Background(), id); !errors.Is(err, gym.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
