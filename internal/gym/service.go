package gym

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service validates workout-domain input before it reaches the store. It
// carries no authorization logic: callers arrive already authenticated and
// role-checked.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService constructs a Service.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("gym: store is required")
	}
	return &Service{store: store, now: time.Now}, nil
}

// CreateExercise adds a catalog entry after validating it against the
// muscle and equipment taxonomies.
func (s *Service) CreateExercise(ctx context.Context, e *Exercise) (*Exercise, error) {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return nil, fmt.Errorf("%w: exercise name is required", ErrInvalidInput)
	}
	e.Description = strings.TrimSpace(e.Description)
	if !contains(EquipmentTypes, e.Equipment) {
		return nil, fmt.Errorf("%w: unknown equipment %q", ErrInvalidInput, e.Equipment)
	}
	if !contains(MuscleGroups, e.MajorMuscle) {
		return nil, fmt.Errorf("%w: unknown muscle group %q", ErrInvalidInput, e.MajorMuscle)
	}
	for _, m := range e.SpecificMuscles {
		if !contains(MuscleGroups, m) {
			return nil, fmt.Errorf("%w: unknown muscle group %q", ErrInvalidInput, m)
		}
	}
	if e.UUID == uuid.Nil {
		e.UUID = uuid.New()
	}
	if err := s.store.CreateExercise(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// ListExercises returns the shared exercise catalog.
func (s *Service) ListExercises(ctx context.Context) ([]*Exercise, error) {
	return s.store.ListExercises(ctx)
}

// FindExercise looks up a catalog entry by its public identifier.
func (s *Service) FindExercise(ctx context.Context, id uuid.UUID) (*Exercise, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: exercise uuid is required", ErrInvalidInput)
	}
	return s.store.FindExercise(ctx, id)
}

// DeleteExercise removes a catalog entry.
func (s *Service) DeleteExercise(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: exercise uuid is required", ErrInvalidInput)
	}
	return s.store.DeleteExercise(ctx, id)
}

// CreateWorkout stores a workout owned by the given identity. Every
// referenced exercise must exist.
func (s *Service) CreateWorkout(ctx context.Context, owner uuid.UUID, w *Workout) (*Workout, error) {
	if owner == uuid.Nil {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	w.Name = strings.TrimSpace(w.Name)
	if w.Name == "" {
		return nil, fmt.Errorf("%w: workout name is required", ErrInvalidInput)
	}
	w.Description = strings.TrimSpace(w.Description)
	for i := range w.Exercises {
		slot := &w.Exercises[i]
		if slot.ExerciseUUID == uuid.Nil {
			return nil, fmt.Errorf("%w: exercise uuid is required", ErrInvalidInput)
		}
		if _, err := s.store.FindExercise(ctx, slot.ExerciseUUID); err != nil {
			return nil, err
		}
		if slot.Position == 0 {
			slot.Position = i + 1
		}
	}
	w.OwnerUUID = owner
	if w.UUID == uuid.Nil {
		w.UUID = uuid.New()
	}
	if err := s.store.CreateWorkout(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// ListWorkouts returns workouts owned by the identity.
func (s *Service) ListWorkouts(ctx context.Context, owner uuid.UUID) ([]*Workout, error) {
	if owner == uuid.Nil {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	return s.store.ListWorkouts(ctx, owner)
}

// FindWorkout fetches a workout the identity owns. Non-owners get
// ErrNotFound rather than a hint the workout exists.
func (s *Service) FindWorkout(ctx context.Context, owner, id uuid.UUID) (*Workout, error) {
	w, err := s.store.FindWorkout(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.OwnerUUID != owner {
		return nil, ErrNotFound
	}
	return w, nil
}

// DeleteWorkout removes a workout the identity owns.
func (s *Service) DeleteWorkout(ctx context.Context, owner, id uuid.UUID) error {
	if _, err := s.FindWorkout(ctx, owner, id); err != nil {
		return err
	}
	return s.store.DeleteWorkout(ctx, id)
}

// CreateLog records a completed set against the catalog.
func (s *Service) CreateLog(ctx context.Context, owner uuid.UUID, l *ExerciseLog) (*ExerciseLog, error) {
	if owner == uuid.Nil {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	if l.ExerciseUUID == uuid.Nil {
		return nil, fmt.Errorf("%w: exercise uuid is required", ErrInvalidInput)
	}
	if l.Reps <= 0 {
		return nil, fmt.Errorf("%w: reps must be positive", ErrInvalidInput)
	}
	if l.Weight < 0 {
		return nil, fmt.Errorf("%w: weight cannot be negative", ErrInvalidInput)
	}
	if _, err := s.store.FindExercise(ctx, l.ExerciseUUID); err != nil {
		return nil, err
	}
	if l.CompletedAt.IsZero() {
		l.CompletedAt = s.now().UTC()
	}
	l.OwnerUUID = owner
	if l.UUID == uuid.Nil {
		l.UUID = uuid.New()
	}
	if err := s.store.CreateLog(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// ListLogs returns the identity's exercise history.
func (s *Service) ListLogs(ctx context.Context, owner uuid.UUID) ([]*ExerciseLog, error) {
	if owner == uuid.Nil {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	return s.store.ListLogs(ctx, owner)
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}
