package gym

import (
	"context"

	"github.com/google/uuid"
)

// Store persists the workout domain. Implementations live in
// internal/store; the HTTP layer never touches them directly.
type Store interface {
	CreateExercise(ctx context.Context, e *Exercise) error
	ListExercises(ctx context.Context) ([]*Exercise, error)
	FindExercise(ctx context.Context, id uuid.UUID) (*Exercise, error)
	DeleteExercise(ctx context.Context, id uuid.UUID) error

	CreateWorkout(ctx context.Context, w *Workout) error
	ListWorkouts(ctx context.Context, owner uuid.UUID) ([]*Workout, error)
	FindWorkout(ctx context.Context, id uuid.UUID) (*Workout, error)
	DeleteWorkout(ctx context.Context, id uuid.UUID) error

	CreateLog(ctx context.Context, l *ExerciseLog) error
	ListLogs(ctx context.Context, owner uuid.UUID) ([]*ExerciseLog, error)
}
