package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkshb/ha-av-scenes/internal/activity"
)

// activityName extracts and bounds-checks the activity name URL parameter.
func activityName(r *http.Request) (string, bool) {
	name := chi.URLParam(r, "name")
	if name == "" || len(name) > maxURLParamLen {
		return "", false
	}
	return name, true
}

// handleListActivities returns all activities configured for a room.
func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	id, ok := roomID(r)
	if !ok {
		writeBadRequest(w, "invalid room ID")
		return
	}

	activities, err := s.registry.ListActivities(r.Context(), id)
	if err != nil {
		if errors.Is(err, activity.ErrRoomNotFound) {
			writeNotFound(w, "room not found")
			return
		}
		writeInternalError(w, "failed to list activities")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"activities": activities, "count": len(activities)})
}

// handleGetActivity returns a single activity by room ID and name.
func (s *Server) handleGetActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := roomID(r)
	if !ok {
		writeBadRequest(w, "invalid room ID")
		return
	}
	name, ok := activityName(r)
	if !ok {
		writeBadRequest(w, "invalid activity name")
		return
	}

	a, err := s.registry.GetActivity(r.Context(), id, name)
	if err != nil {
		if errors.Is(err, activity.ErrRoomNotFound) || errors.Is(err, activity.ErrActivityNotFound) {
			writeNotFound(w, "activity not found")
			return
		}
		writeInternalError(w, "failed to get activity")
		return
	}

	writeJSON(w, http.StatusOK, a)
}

// handleCreateActivity creates a new activity in a room.
func (s *Server) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := roomID(r)
	if !ok {
		writeBadRequest(w, "invalid room ID")
		return
	}

	var a activity.Activity
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	a.RoomID = id // the URL is authoritative

	if err := s.registry.CreateActivity(r.Context(), &a); err != nil {
		switch {
		case isActivityValidationError(err):
			writeBadRequest(w, err.Error())
		case errors.Is(err, activity.ErrRoomNotFound):
			writeNotFound(w, "room not found")
		case errors.Is(err, activity.ErrActivityExists):
			writeConflict(w, err.Error())
		default:
			writeInternalError(w, "failed to create activity")
		}
		return
	}

	writeJSON(w, http.StatusCreated, a)
}

// handleUpdateActivity replaces the device targets and ordering of an activity.
func (s *Server) handleUpdateActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := roomID(r)
	if !ok {
		writeBadRequest(w, "invalid room ID")
		return
	}
	name, ok := activityName(r)
	if !ok {
		writeBadRequest(w, "invalid activity name")
		return
	}

	existing, err := s.registry.GetActivity(r.Context(), id, name)
	if err != nil {
		if errors.Is(err, activity.ErrRoomNotFound) || errors.Is(err, activity.ErrActivityNotFound) {
			writeNotFound(w, "activity not found")
			return
		}
		writeInternalError(w, "failed to get activity")
		return
	}

	// Decode partial update onto the existing activity
	if err := json.NewDecoder(r.Body).Decode(existing); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	existing.RoomID = id // identity cannot be changed
	existing.Name = name

	if err := s.registry.UpdateActivity(r.Context(), existing); err != nil {
		switch {
		case isActivityValidationError(err):
			writeBadRequest(w, err.Error())
		case errors.Is(err, activity.ErrActivityNotFound):
			writeNotFound(w, "activity not found")
		default:
			writeInternalError(w, "failed to update activity")
		}
		return
	}

	writeJSON(w, http.StatusOK, existing)
}

// handleDeleteActivity removes an activity by room ID and name.
func (s *Server) handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := roomID(r)
	if !ok {
		writeBadRequest(w, "invalid room ID")
		return
	}
	name, ok := activityName(r)
	if !ok {
		writeBadRequest(w, "invalid activity name")
		return
	}

	if err := s.registry.DeleteActivity(r.Context(), id, name); err != nil {
		if errors.Is(err, activity.ErrActivityNotFound) {
			writeNotFound(w, "activity not found")
			return
		}
		writeInternalError(w, "failed to delete activity")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// startRequest is the request body for POST /rooms/{id}/start.
type startRequest struct {
	Activity string `json:"activity"`
}

// handleStartActivity begins a transition to the named activity.
//
// The transition runs asynchronously because power-on delays can hold the
// room lock for tens of seconds; the response is 202 Accepted and lifecycle
// updates arrive via WebSocket.
func (s *Server) handleStartActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := roomID(r)
	if !ok {
		writeBadRequest(w, "invalid room ID")
		return
	}

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Activity == "" || len(req.Activity) > maxURLParamLen {
		writeBadRequest(w, "activity is required")
		return
	}

	// Validate up front so the caller gets a synchronous 404 for unknown
	// rooms or activities instead of a silent failure.
	if _, err := s.registry.GetActivity(r.Context(), id, req.Activity); err != nil {
		if errors.Is(err, activity.ErrRoomNotFound) {
			writeNotFound(w, "room not found")
			return
		}
		if errors.Is(err, activity.ErrActivityNotFound) {
			writeNotFound(w, "activity not found")
			return
		}
		writeInternalError(w, "failed to get activity")
		return
	}

	// The request context ends with the response; the transition outlives it.
	go func() {
		if err := s.engine.StartActivity(context.Background(), id, req.Activity); err != nil {
			s.logger.Warn("activity start failed",
				"room_id", id,
				"activity", req.Activity,
				"error", err,
			)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]any{
		"room_id":  id,
		"activity": req.Activity,
		"status":   "accepted",
		"message":  "transition started, state updates will follow via WebSocket",
	})
}

// handleStopActivity begins powering off the room's active devices.
// Like start, the transition runs asynchronously and the response is 202.
func (s *Server) handleStopActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := roomID(r)
	if !ok {
		writeBadRequest(w, "invalid room ID")
		return
	}

	if _, err := s.registry.GetRoom(r.Context(), id); err != nil {
		if errors.Is(err, activity.ErrRoomNotFound) {
			writeNotFound(w, "room not found")
			return
		}
		writeInternalError(w, "failed to get room")
		return
	}

	go func() {
		if err := s.engine.StopActivity(context.Background(), id); err != nil {
			s.logger.Warn("activity stop failed", "room_id", id, "error", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]any{
		"room_id": id,
		"status":  "accepted",
	})
}

// isActivityValidationError reports whether err is one of the activity
// validation errors that map to a 400 response.
func isActivityValidationError(err error) bool {
	return errors.Is(err, activity.ErrInvalidActivity) ||
		errors.Is(err, activity.ErrInvalidTarget) ||
		errors.Is(err, activity.ErrUnknownCategory) ||
		errors.Is(err, activity.ErrNoDevices)
}
