package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"ironlog.app/internal/gym"
)

var _ gym.Store = (*Store)(nil)

func (s *Store) CreateExercise(ctx context.Context, e *gym.Exercise) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	muscles := []byte("[]")
	if len(e.SpecificMuscles) > 0 {
		bytes, err := json.Marshal(e.SpecificMuscles)
		if err != nil {
			return fmt.Errorf("marshal specific_muscles: %w", err)
		}
		muscles = bytes
	}
	row := s.db.QueryRowContext(ctx, `
		insert into exercises (uuid, name, description, equipment, major_muscle, specific_muscles)
		values ($1, $2, $3, $4, $5, $6)
		returning id, created_at, updated_at
	`, e.UUID, e.Name, e.Description, e.Equipment, e.MajorMuscle, muscles)
	if err := row.Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return gym.ErrConflict
		}
		return err
	}
	return nil
}

func (s *Store) ListExercises(ctx context.Context) ([]*gym.Exercise, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, uuid, name, description, equipment, major_muscle, specific_muscles, created_at, updated_at
		from exercises
		order by name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*gym.Exercise
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) FindExercise(ctx context.Context, id uuid.UUID) (*gym.Exercise, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	row := s.db.QueryRowContext(ctx, `
		select id, uuid, name, description, equipment, major_muscle, specific_muscles, created_at, updated_at
		from exercises
		where uuid = $1
	`, id)
	e, err := scanExercise(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gym.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Store) DeleteExercise(ctx context.Context, id uuid.UUID) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `delete from exercises where uuid = $1`, id)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return gym.ErrConflict
		}
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return gym.ErrNotFound
	}
	return nil
}

func (s *Store) CreateWorkout(ctx context.Context, w *gym.Workout) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var ownerID int64
	if err := tx.QueryRowContext(ctx, `select id from users where uuid = $1`, w.OwnerUUID).Scan(&ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return gym.ErrNotFound
		}
		return err
	}

	row := tx.QueryRowContext(ctx, `
		insert into workouts (uuid, owner_id, name, description)
		values ($1, $2, $3, $4)
		returning id, created_at, updated_at
	`, w.UUID, ownerID, w.Name, w.Description)
	if err := row.Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return gym.ErrConflict
		}
		return err
	}

	for _, we := range w.Exercises {
		res, err := tx.ExecContext(ctx, `
			insert into workout_exercises (workout_id, exercise_id, position, sets, reps)
			select $1, e.id, $3, $4, $5 from exercises e where e.uuid = $2
		`, w.ID, we.ExerciseUUID, we.Position, we.Sets, we.Reps)
		if err != nil {
			if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
				return gym.ErrNotFound
			}
			return err
		}
		// The select matches no row when the exercise was deleted after
		// the caller's existence check; that must fail the workout, not
		// drop the slot.
		aff, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if aff == 0 {
			return gym.ErrNotFound
		}
	}
	return tx.Commit()
}

func (s *Store) ListWorkouts(ctx context.Context, owner uuid.UUID) ([]*gym.Workout, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select w.id, w.uuid, u.uuid, w.name, w.description, w.created_at, w.updated_at
		from workouts w
		join users u on u.id = w.owner_id
		where u.uuid = $1
		order by w.created_at desc
	`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*gym.Workout
	for rows.Next() {
		var w gym.Workout
		if err := rows.Scan(&w.ID, &w.UUID, &w.OwnerUUID, &w.Name, &w.Description, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, w := range result {
		if err := s.loadWorkoutExercises(ctx, w); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *Store) FindWorkout(ctx context.Context, id uuid.UUID) (*gym.Workout, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	var w gym.Workout
	err := s.db.QueryRowContext(ctx, `
		select w.id, w.uuid, u.uuid, w.name, w.description, w.created_at, w.updated_at
		from workouts w
		join users u on u.id = w.owner_id
		where w.uuid = $1
	`, id).Scan(&w.ID, &w.UUID, &w.OwnerUUID, &w.Name, &w.Description, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gym.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadWorkoutExercises(ctx, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *Store) DeleteWorkout(ctx context.Context, id uuid.UUID) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `delete from workouts where uuid = $1`, id)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return gym.ErrNotFound
	}
	return nil
}

func (s *Store) CreateLog(ctx context.Context, l *gym.ExerciseLog) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	row := s.db.QueryRowContext(ctx, `
		insert into exercise_logs (uuid, owner_id, exercise_id, reps, weight, completed_at)
		select $1, u.id, e.id, $4, $5, $6
		from users u, exercises e
		where u.uuid = $2 and e.uuid = $3
		returning id, created_at
	`, l.UUID, l.OwnerUUID, l.ExerciseUUID, l.Reps, l.Weight, l.CompletedAt)
	if err := row.Scan(&l.ID, &l.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return gym.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Store) ListLogs(ctx context.Context, owner uuid.UUID) ([]*gym.ExerciseLog, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select l.id, l.uuid, u.uuid, e.uuid, l.reps, l.weight, l.completed_at, l.created_at
		from exercise_logs l
		join users u on u.id = l.owner_id
		join exercises e on e.id = l.exercise_id
		where u.uuid = $1
		order by l.completed_at desc
	`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*gym.ExerciseLog
	for rows.Next() {
		var l gym.ExerciseLog
		if err := rows.Scan(&l.ID, &l.UUID, &l.OwnerUUID, &l.ExerciseUUID, &l.Reps, &l.Weight, &l.CompletedAt, &l.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) loadWorkoutExercises(ctx context.Context, w *gym.Workout) error {
	rows, err := s.db.QueryContext(ctx, `
		select e.uuid, we.position, we.sets, we.reps
		from workout_exercises we
		join exercises e on e.id = we.exercise_id
		where we.workout_id = $1
		order by we.position
	`, w.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	w.Exercises = nil
	for rows.Next() {
		var we gym.WorkoutExercise
		if err := rows.Scan(&we.ExerciseUUID, &we.Position, &we.Sets, &we.Reps); err != nil {
			return err
		}
		w.Exercises = append(w.Exercises, we)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExercise(row rowScanner) (*gym.Exercise, error) {
	var (
		e       gym.Exercise
		muscles []byte
	)
	if err := row.Scan(&e.ID, &e.UUID, &e.Name, &e.Description, &e.Equipment, &e.MajorMuscle, &muscles, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if len(muscles) > 0 {
		if err := json.Unmarshal(muscles, &e.SpecificMuscles); err != nil {
			return nil, fmt.Errorf("decode specific_muscles: %w", err)
		}
	}
	return &e, nil
}
