package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mkshb/ha-av-scenes/internal/activity"
)

// maxURLParamLen limits URL and query parameter length to prevent DoS via
// oversized values.
const maxURLParamLen = 100

// roomID extracts and bounds-checks the room ID URL parameter.
func roomID(r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if id == "" || len(id) > maxURLParamLen {
		return "", false
	}
	return id, true
}

// handleListRooms returns all configured rooms.
func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.registry.ListRooms(r.Context())
	if err != nil {
		writeInternalError(w, "failed to list rooms")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms, "count": len(rooms)})
}

// handleGetRoom returns a single room by ID.
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := roomID(r)
	if !ok {
		writeBadRequest(w, "invalid room ID")
		return
	}

	room, err := s.registry.GetRoom(r.Context(), id)
	if err != nil {
		if errors.Is(err, activity.ErrRoomNotFound) {
			writeNotFound(w, "room not found")
			return
		}
		writeInternalError(w, "failed to get room")
		return
	}

	writeJSON(w, http.StatusOK, room)
}

// handleCreateRoom creates a new room.
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var room activity.Room
	if err := json.NewDecoder(r.Body).Decode(&room); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.registry.CreateRoom(r.Context(), &room); err != nil {
		switch {
		case errors.Is(err, activity.ErrInvalidRoom):
			writeBadRequest(w, err.Error())
		case errors.Is(err, activity.ErrRoomExists):
			writeConflict(w, err.Error())
		default:
			writeInternalError(w, "failed to create room")
		}
		return
	}

	writeJSON(w, http.StatusCreated, room)
}

// handleUpdateRoom partially updates a room.
func (s *Server) handleUpdateRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := roomID(r)
	if !ok {
		writeBadRequest(w, "invalid room ID")
		return
	}

	existing, err := s.registry.GetRoom(r.Context(), id)
	if err != nil {
		if errors.Is(err, activity.ErrRoomNotFound) {
			writeNotFound(w, "room not found")
			return
		}
		writeInternalError(w, "failed to get room")
		return
	}

	// Decode partial update onto the existing room
	if err := json.NewDecoder(r.Body).Decode(existing); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	existing.ID = id // ID cannot be changed

	if err := s.registry.UpdateRoom(r.Context(), existing); err != nil {
		switch {
		case errors.Is(err, activity.ErrInvalidRoom):
			writeBadRequest(w, err.Error())
		case errors.Is(err, activity.ErrRoomNotFound):
			writeNotFound(w, "room not found")
		default:
			writeInternalError(w, "failed to update room")
		}
		return
	}

	writeJSON(w, http.StatusOK, existing)
}

// handleDeleteRoom removes a room and all of its activities.
func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := roomID(r)
	if !ok {
		writeBadRequest(w, "invalid room ID")
		return
	}

	if err := s.registry.DeleteRoom(r.Context(), id); err != nil {
		if errors.Is(err, activity.ErrRoomNotFound) {
			writeNotFound(w, "room not found")
			return
		}
		writeInternalError(w, "failed to delete room")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// roomStatusResponse is a room's lifecycle state plus the activities it
// could switch to, so clients can render controls from one request.
type roomStatusResponse struct {
	activity.RoomStatus
	AvailableActivities []string `json:"available_activities"`
}

// handleRoomStatus returns the lifecycle state of a single room.
func (s *Server) handleRoomStatus(w http.ResponseWriter, r *http.Request) {
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
		writeInternalError(w, "failed to get room")
		return
	}

	names := make([]string, 0, len(activities))
	for _, a := range activities {
		names = append(names, a.Name)
	}

	writeJSON(w, http.StatusOK, roomStatusResponse{
		RoomStatus:          s.engine.Status(id),
		AvailableActivities: names,
	})
}

// handleStatusAll returns the lifecycle state of every configured room.
// Rooms that have seen no transition since startup report idle.
func (s *Server) handleStatusAll(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.registry.ListRooms(r.Context())
	if err != nil {
		writeInternalError(w, "failed to list rooms")
		return
	}

	statuses := make([]activity.RoomStatus, 0, len(rooms))
	for _, room := range rooms {
		statuses = append(statuses, s.engine.Status(room.ID))
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": statuses, "count": len(statuses)})
}

// handleListTransitions returns recent transition history for a room.
//
// Query parameters:
//   - limit: maximum number of entries to return
func (s *Server) handleListTransitions(w http.ResponseWriter, r *http.Request) {
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

	if s.repo == nil {
		writeJSON(w, http.StatusOK, map[string]any{"transitions": []activity.Transition{}, "count": 0})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	transitions, err := s.repo.ListTransitions(r.Context(), id, limit)
	if err != nil {
		writeInternalError(w, "failed to list transitions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"transitions": transitions, "count": len(transitions)})
}
