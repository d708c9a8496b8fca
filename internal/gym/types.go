package gym

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("gym: invalid input")
	ErrNotFound     = errors.New("gym: not found")
	ErrConflict     = errors.New("gym: already exists")
)

// MuscleGroups is the fixed taxonomy exercises reference. Seeded once at
// bootstrap, mirrored here for input validation without a store read.
var MuscleGroups = []string{
	"Chest", "Back", "Shoulders", "Biceps", "Triceps",
	"Legs", "Quadriceps", "Hamstrings", "Calves", "Glutes",
	"Abdominals", "Forearms", "Obliques", "Lats",
}

// EquipmentTypes is the fixed equipment taxonomy.
var EquipmentTypes = []string{
	"Barbell", "Dumbbell", "Kettlebell", "Machine",
	"Cable", "Resistance Band", "Bodyweight",
}

// Exercise is catalog reference data shared by all users.
type Exercise struct {
	ID              int64     `json:"-"`
	UUID            uuid.UUID `json:"uuid"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Equipment       string    `json:"equipment"`
	MajorMuscle     string    `json:"major_muscle"`
	SpecificMuscles []string  `json:"specific_muscles,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// WorkoutExercise is one ordered slot in a workout.
type WorkoutExercise struct {
	ExerciseUUID uuid.UUID `json:"exercise_uuid"`
	Position     int       `json:"position"`
	Sets         int       `json:"sets"`
	Reps         int       `json:"reps"`
}

// Workout is a user-owned exercise sequence.
type Workout struct {
	ID          int64             `json:"-"`
	UUID        uuid.UUID         `json:"uuid"`
	OwnerUUID   uuid.UUID         `json:"owner_uuid"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Exercises   []WorkoutExercise `json:"exercises,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ExerciseLog records one completed set.
type ExerciseLog struct {
	ID           int64     `json:"-"`
	UUID         uuid.UUID `json:"uuid"`
	OwnerUUID    uuid.UUID `json:"owner_uuid"`
	ExerciseUUID uuid.UUID `json:"exercise_uuid"`
	Reps         int       `json:"reps"`
	Weight       float64   `json:"weight"`
	CompletedAt  time.Time `json:"completed_at"`
	CreatedAt    time.Time `json:"created_at"`
}
