package httpapi

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"ironlog.app/internal/audit"
	"ironlog.app/internal/auth"
	"ironlog.app/internal/gym"
)

type createExerciseRequest struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Equipment       string   `json:"equipment"`
	MajorMuscle     string   `json:"major_muscle"`
	SpecificMuscles []string `json:"specific_muscles"`
}

func (a *API) handleExercisesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := a.requireRole(w, r, auth.RoleUser, auth.RoleAdmin); !ok {
			return
		}
		items, err := a.gym.ListExercises(r.Context())
		if err != nil {
			handleGymError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})

	case http.MethodPost:
		// The catalog is shared reference data; only admins extend it.
		if _, ok := a.requireRole(w, r, auth.RoleAdmin); !ok {
			return
		}
		var req createExerciseRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		exercise, err := a.gym.CreateExercise(r.Context(), &gym.Exercise{
			Name:            strings.TrimSpace(req.Name),
			Description:     strings.TrimSpace(req.Description),
			Equipment:       req.Equipment,
			MajorMuscle:     req.MajorMuscle,
			SpecificMuscles: req.SpecificMuscles,
		})
		if err != nil {
			handleGymError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "gym.exercise.created", map[string]any{
			"exercise": exercise.UUID.String(),
			"name":     exercise.Name,
		})
		w.Header().Set("Location", "/v1/exercises/"+exercise.UUID.String())
		writeJSON(w, http.StatusCreated, exercise)

	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleExerciseResource(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/exercises/"), "/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	id, err := uuid.Parse(path)
	if err != nil {
		writeError(w, r, http.StatusNotFound, "exercise not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		if _, ok := a.requireRole(w, r, auth.RoleUser, auth.RoleAdmin); !ok {
			return
		}
		exercise, err := a.gym.FindExercise(r.Context(), id)
		if err != nil {
			handleGymError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, exercise)

	case http.MethodDelete:
		if _, ok := a.requireRole(w, r, auth.RoleAdmin); !ok {
			return
		}
		if err := a.gym.DeleteExercise(r.Context(), id); err != nil {
			handleGymError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "gym.exercise.deleted", map[string]any{
			"exercise": id.String(),
		})
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodDelete)
	}
}
