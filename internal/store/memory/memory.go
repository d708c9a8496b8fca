// Package memory provides a mutex-guarded in-process store used by tests
// and by the server when no PostgreSQL DSN is configured.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ironlog.app/internal/auth"
	"ironlog.app/internal/gym"
)

// Store implements auth.Store and gym.Store over plain maps. Internal
// numeric ids are assigned from per-table counters, mimicking the serial
// row keys of the SQL store.
type Store struct {
	mu sync.RWMutex

	users      map[uuid.UUID]*auth.User
	byUsername map[string]uuid.UUID
	roles      map[string]struct{}
	userRoles  map[uuid.UUID]map[string]struct{}

	exercises map[uuid.UUID]*gym.Exercise
	workouts  map[uuid.UUID]*gym.Workout
	logs      map[uuid.UUID]*gym.ExerciseLog

	nextUserID     int64
	nextExerciseID int64
	nextWorkoutID  int64
	nextLogID      int64
}

var (
	_ auth.Store = (*Store)(nil)
	_ gym.Store  = (*Store)(nil)
)

// New returns an empty store.
func New() *Store {
	return &Store{
		users:      make(map[uuid.UUID]*auth.User),
		byUsername: make(map[string]uuid.UUID),
		roles:      make(map[string]struct{}),
		userRoles:  make(map[uuid.UUID]map[string]struct{}),
		exercises:  make(map[uuid.UUID]*gym.Exercise),
		workouts:   make(map[uuid.UUID]*gym.Workout),
		logs:       make(map[uuid.UUID]*gym.ExerciseLog),
	}
}

// --- auth.Store -----------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(u.Username)
	if _, exists := s.byUsername[key]; exists {
		return auth.ErrConflict
	}
	s.nextUserID++
	now := time.Now().UTC()
	clone := *u
	clone.ID = s.nextUserID
	clone.CreatedAt = now
	clone.UpdatedAt = now
	s.users[clone.UUID] = &clone
	s.byUsername[key] = clone.UUID
	*u = clone
	return nil
}

func (s *Store) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUsername[strings.ToLower(username)]
	if !ok {
		return nil, auth.ErrNotFound
	}
	clone := *s.users[id]
	return &clone, nil
}

func (s *Store) FindByUUID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*auth.User, 0, len(s.users))
	for _, u := range s.users {
		clone := *u
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return auth.ErrNotFound
	}
	delete(s.byUsername, strings.ToLower(u.Username))
	delete(s.users, id)
	delete(s.userRoles, id)
	return nil
}

func (s *Store) SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return auth.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) Roles(ctx context.Context, id uuid.UUID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.users[id]; !ok {
		return nil, auth.ErrNotFound
	}
	assigned := s.userRoles[id]
	out := make([]string, 0, len(assigned))
	for role := range assigned {
		out = append(out, role)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) GrantRole(ctx context.Context, id uuid.UUID, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return auth.ErrNotFound
	}
	if _, ok := s.roles[role]; !ok {
		// Roles are reference data; auto-create to match seed behavior.
		s.roles[role] = struct{}{}
	}
	if s.userRoles[id] == nil {
		s.userRoles[id] = make(map[string]struct{})
	}
	s.userRoles[id][role] = struct{}{}
	return nil
}

func (s *Store) RevokeRole(ctx context.Context, id uuid.UUID, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return auth.ErrNotFound
	}
	delete(s.userRoles[id], role)
	return nil
}

func (s *Store) EnsureRoles(ctx context.Context, roles []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, role := range roles {
		s.roles[role] = struct{}{}
	}
	return nil
}

// --- gym.Store ------------------------------------------------------------

func (s *Store) CreateExercise(ctx context.Context, e *gym.Exercise) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.exercises {
		if strings.EqualFold(existing.Name, e.Name) {
			return gym.ErrConflict
		}
	}
	s.nextExerciseID++
	now := time.Now().UTC()
	clone := *e
	clone.ID = s.nextExerciseID
	clone.CreatedAt = now
	clone.UpdatedAt = now
	s.exercises[clone.UUID] = &clone
	*e = clone
	return nil
}

func (s *Store) ListExercises(ctx context.Context) ([]*gym.Exercise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*gym.Exercise, 0, len(s.exercises))
	for _, e := range s.exercises {
		clone := *e
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) FindExercise(ctx context.Context, id uuid.UUID) (*gym.Exercise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.exercises[id]
	if !ok {
		return nil, gym.ErrNotFound
	}
	clone := *e
	return &clone, nil
}

func (s *Store) DeleteExercise(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.exercises[id]; !ok {
		return gym.ErrNotFound
	}
	delete(s.exercises, id)
	return nil
}

func (s *Store) CreateWorkout(ctx context.Context, w *gym.Workout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextWorkoutID++
	now := time.Now().UTC()
	clone := *w
	clone.Exercises = append([]gym.WorkoutExercise(nil), w.Exercises...)
	clone.ID = s.nextWorkoutID
	clone.CreatedAt = now
	clone.UpdatedAt = now
	s.workouts[clone.UUID] = &clone
	*w = clone
	return nil
}

func (s *Store) ListWorkouts(ctx context.Context, owner uuid.UUID) ([]*gym.Workout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*gym.Workout
	for _, w := range s.workouts {
		if w.OwnerUUID != owner {
			continue
		}
		clone := *w
		clone.Exercises = append([]gym.WorkoutExercise(nil), w.Exercises...)
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) FindWorkout(ctx context.Context, id uuid.UUID) (*gym.Workout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.workouts[id]
	if !ok {
		return nil, gym.ErrNotFound
	}
	clone := *w
	clone.Exercises = append([]gym.WorkoutExercise(nil), w.Exercises...)
	return &clone, nil
}

func (s *Store) DeleteWorkout(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workouts[id]; !ok {
		return gym.ErrNotFound
	}
	delete(s.workouts, id)
	return nil
}

func (s *Store) CreateLog(ctx context.Context, l *gym.ExerciseLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextLogID++
	clone := *l
	clone.ID = s.nextLogID
	clone.CreatedAt = time.Now().UTC()
	s.logs[clone.UUID] = &clone
	*l = clone
	return nil
}

func (s *Store) ListLogs(ctx context.Context, owner uuid.UUID) ([]*gym.ExerciseLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*gym.ExerciseLog
	for _, l := range s.logs {
		if l.OwnerUUID != owner {
			continue
		}
		clone := *l
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
