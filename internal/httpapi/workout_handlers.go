package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"ironlog.app/internal/audit"
	"ironlog.app/internal/auth"
	"ironlog.app/internal/gym"
)

type workoutExerciseRequest struct {
	ExerciseUUID uuid.UUID `json:"exercise_uuid"`
	Sets         int       `json:"sets"`
	Reps         int       `json:"reps"`
}

type createWorkoutRequest struct {
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Exercises   []workoutExerciseRequest `json:"exercises"`
}

type createLogRequest struct {
	ExerciseUUID uuid.UUID  `json:"exercise_uuid"`
	Reps         int        `json:"reps"`
	Weight       float64    `json:"weight"`
	CompletedAt  *time.Time `json:"completed_at"`
}

func (a *API) handleWorkoutsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		principal, ok := a.requireRole(w, r, auth.RoleUser, auth.RoleAdmin)
		if !ok {
			return
		}
		items, err := a.gym.ListWorkouts(r.Context(), principal.User.UUID)
		if err != nil {
			handleGymError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})

	case http.MethodPost:
		principal, ok := a.requireRole(w, r, auth.RoleUser, auth.RoleAdmin)
		if !ok {
			return
		}
		var req createWorkoutRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		workout := &gym.Workout{
			Name:        strings.TrimSpace(req.Name),
			Description: strings.TrimSpace(req.Description),
		}
		for _, we := range req.Exercises {
			workout.Exercises = append(workout.Exercises, gym.WorkoutExercise{
				ExerciseUUID: we.ExerciseUUID,
				Sets:         we.Sets,
				Reps:         we.Reps,
			})
		}
		workout, err := a.gym.CreateWorkout(r.Context(), principal.User.UUID, workout)
		if err != nil {
			handleGymError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "gym.workout.created", map[string]any{
			"workout": workout.UUID.String(),
			"name":    workout.Name,
		})
		w.Header().Set("Location", "/v1/workouts/"+workout.UUID.String())
		writeJSON(w, http.StatusCreated, workout)

	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleWorkoutResource(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/workouts/"), "/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	id, err := uuid.Parse(path)
	if err != nil {
		writeError(w, r, http.StatusNotFound, "workout not found")
		return
	}

	principal, ok := a.requireRole(w, r, auth.RoleUser, auth.RoleAdmin)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		workout, err := a.gym.FindWorkout(r.Context(), principal.User.UUID, id)
		if err != nil {
			handleGymError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, workout)

	case http.MethodDelete:
		if err := a.gym.DeleteWorkout(r.Context(), principal.User.UUID, id); err != nil {
			handleGymError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "gym.workout.deleted", map[string]any{
			"workout": id.String(),
		})
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodDelete)
	}
}

func (a *API) handleLogs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		principal, ok := a.requireRole(w, r, auth.RoleUser, auth.RoleAdmin)
		if !ok {
			return
		}
		items, err := a.gym.ListLogs(r.Context(), principal.User.UUID)
		if err != nil {
			handleGymError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})

	case http.MethodPost:
		principal, ok := a.requireRole(w, r, auth.RoleUser, auth.RoleAdmin)
		if !ok {
			return
		}
		var req createLogRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		entry := &gym.ExerciseLog{
			ExerciseUUID: req.ExerciseUUID,
			Reps:         req.Reps,
			Weight:       req.Weight,
		}
		if req.CompletedAt != nil {
			entry.CompletedAt = req.CompletedAt.UTC()
		}
		entry, err := a.gym.CreateLog(r.Context(), principal.User.UUID, entry)
		if err != nil {
			handleGymError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, entry)

	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}
