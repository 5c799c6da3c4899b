package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for room/activity persistence and the
// transition log. This abstraction allows different implementations
// (SQLite, mock, etc.) and enables unit testing without database
// dependencies.
type Repository interface {
	// Room CRUD
	GetRoom(ctx context.Context, id string) (*Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	CreateRoom(ctx context.Context, room *Room) error
	UpdateRoom(ctx context.Context, room *Room) error
	DeleteRoom(ctx context.Context, id string) error

	// Activity CRUD
	GetActivity(ctx context.Context, roomID, name string) (*Activity, error)
	ListActivities(ctx context.Context, roomID string) ([]Activity, error)
	CreateActivity(ctx context.Context, a *Activity) error
	UpdateActivity(ctx context.Context, a *Activity) error
	DeleteActivity(ctx context.Context, roomID, name string) error

	// Transition log
	RecordTransition(ctx context.Context, transition *Transition) error
	ListTransitions(ctx context.Context, roomID string, limit int) ([]Transition, error)
}

// activityColumns is the SELECT column list for activity queries.
const activityColumns = `room_id, name, device_states, device_order, created_at, updated_at`

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetRoom retrieves a room by its identifier.
func (r *SQLiteRepository) GetRoom(ctx context.Context, id string) (*Room, error) {
	query := `SELECT id, name, sort_order, created_at, updated_at FROM rooms WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	room, err := scanRoomRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("querying room: %w", err)
	}
	return room, nil
}

// ListRooms retrieves all rooms ordered by sort_order then name.
func (r *SQLiteRepository) ListRooms(ctx context.Context) ([]Room, error) {
	query := `SELECT id, name, sort_order, created_at, updated_at FROM rooms ORDER BY sort_order, name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying rooms: %w", err)
	}
	defer rows.Close()

	var rooms []Room
	for rows.Next() {
		room, scanErr := scanRoomRow(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scanning room: %w", scanErr)
		}
		rooms = append(rooms, *room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rooms: %w", err)
	}
	return rooms, nil
}

// CreateRoom inserts a new room.
func (r *SQLiteRepository) CreateRoom(ctx context.Context, room *Room) error {
	now := time.Now().UTC()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	room.UpdatedAt = now

	query := `INSERT INTO rooms (id, name, sort_order, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		room.ID,
		room.Name,
		room.SortOrder,
		room.CreatedAt.Format(time.RFC3339),
		room.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrRoomExists
		}
		return fmt.Errorf("inserting room: %w", err)
	}
	return nil
}

// UpdateRoom modifies an existing room.
func (r *SQLiteRepository) UpdateRoom(ctx context.Context, room *Room) error {
	room.UpdatedAt = time.Now().UTC()

	query := `UPDATE rooms SET name = ?, sort_order = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		room.Name,
		room.SortOrder,
		room.UpdatedAt.Format(time.RFC3339),
		room.ID,
	)
	if err != nil {
		return fmt.Errorf("updating room: %w", err)
	}
	return checkAffected(result, ErrRoomNotFound)
}

// DeleteRoom removes a room. Activities are removed by the schema's
// ON DELETE CASCADE constraint.
func (r *SQLiteRepository) DeleteRoom(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting room: %w", err)
	}
	return checkAffected(result, ErrRoomNotFound)
}

// GetActivity retrieves an activity by room ID and name.
func (r *SQLiteRepository) GetActivity(ctx context.Context, roomID, name string) (*Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE room_id = ? AND name = ?`

	row := r.db.QueryRowContext(ctx, query, roomID, name)
	a, err := scanActivityRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("querying activity: %w", err)
	}
	return a, nil
}

// ListActivities retrieves all activities in a room ordered by name.
func (r *SQLiteRepository) ListActivities(ctx context.Context, roomID string) ([]Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE room_id = ? ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("querying activities: %w", err)
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		a, scanErr := scanActivityRow(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scanning activity: %w", scanErr)
		}
		activities = append(activities, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activities: %w", err)
	}
	return activities, nil
}

// CreateActivity inserts a new activity.
func (r *SQLiteRepository) CreateActivity(ctx context.Context, a *Activity) error {
	statesJSON, orderJSON, err := marshalDeviceData(a)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	query := `
		INSERT INTO activities (room_id, name, device_states, device_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		a.RoomID,
		a.Name,
		statesJSON,
		orderJSON,
		a.CreatedAt.Format(time.RFC3339),
		a.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrActivityExists
		}
		return fmt.Errorf("inserting activity: %w", err)
	}
	return nil
}

// UpdateActivity modifies an existing activity.
func (r *SQLiteRepository) UpdateActivity(ctx context.Context, a *Activity) error {
	statesJSON, orderJSON, err := marshalDeviceData(a)
	if err != nil {
		return err
	}

	a.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE activities SET device_states = ?, device_order = ?, updated_at = ?
		WHERE room_id = ? AND name = ?`

	result, err := r.db.ExecContext(ctx, query,
		statesJSON,
		orderJSON,
		a.UpdatedAt.Format(time.RFC3339),
		a.RoomID,
		a.Name,
	)
	if err != nil {
		return fmt.Errorf("updating activity: %w", err)
	}
	return checkAffected(result, ErrActivityNotFound)
}

// DeleteActivity removes an activity.
func (r *SQLiteRepository) DeleteActivity(ctx context.Context, roomID, name string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM activities WHERE room_id = ? AND name = ?", roomID, name)
	if err != nil {
		return fmt.Errorf("deleting activity: %w", err)
	}
	return checkAffected(result, ErrActivityNotFound)
}

// RecordTransition inserts a transition log record.
func (r *SQLiteRepository) RecordTransition(ctx context.Context, transition *Transition) error {
	query := `
		INSERT INTO transitions (
			id, room_id, kind, from_activity, to_activity,
			commands_total, commands_failed, started_at, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		transition.ID,
		transition.RoomID,
		string(transition.Kind),
		nullableStr(transition.FromActivity),
		nullableStr(transition.ToActivity),
		transition.CommandsTotal,
		transition.CommandsFailed,
		transition.StartedAt.Format(time.RFC3339),
		transition.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("inserting transition: %w", err)
	}
	return nil
}

// ListTransitions retrieves recent transitions for a room, newest first.
func (r *SQLiteRepository) ListTransitions(ctx context.Context, roomID string, limit int) ([]Transition, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 200 {
		limit = 200
	}

	query := `
		SELECT id, room_id, kind, from_activity, to_activity,
			commands_total, commands_failed, started_at, duration_ms
		FROM transitions
		WHERE room_id = ?
		ORDER BY started_at DESC, id
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying transitions: %w", err)
	}
	defer rows.Close()

	var transitions []Transition
	for rows.Next() {
		var t Transition
		var kind, startedAt string
		var fromActivity, toActivity sql.NullString

		if scanErr := rows.Scan(
			&t.ID,
			&t.RoomID,
			&kind,
			&fromActivity,
			&toActivity,
			&t.CommandsTotal,
			&t.CommandsFailed,
			&startedAt,
			&t.DurationMS,
		); scanErr != nil {
			return nil, fmt.Errorf("scanning transition: %w", scanErr)
		}

		t.Kind = TransitionKind(kind)
		t.FromActivity = fromActivity.String
		t.ToActivity = toActivity.String
		if parsed, parseErr := time.Parse(time.RFC3339, startedAt); parseErr == nil {
			t.StartedAt = parsed
		}
		transitions = append(transitions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transitions: %w", err)
	}
	return transitions, nil
}

// ─── Row Scanning Helpers ───────────────────────────────────────────────────

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoomRow(scanner rowScanner) (*Room, error) {
	var room Room
	var createdAt, updatedAt string

	err := scanner.Scan(
		&room.ID,
		&room.Name,
		&room.SortOrder,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if t, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
		room.CreatedAt = t
	}
	if t, parseErr := time.Parse(time.RFC3339, updatedAt); parseErr == nil {
		room.UpdatedAt = t
	}
	return &room, nil
}

func scanActivityRow(scanner rowScanner) (*Activity, error) {
	var a Activity
	var statesJSON, orderJSON string
	var createdAt, updatedAt string

	err := scanner.Scan(
		&a.RoomID,
		&a.Name,
		&statesJSON,
		&orderJSON,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if statesJSON != "" {
		if jsonErr := json.Unmarshal([]byte(statesJSON), &a.DeviceStates); jsonErr != nil {
			return nil, fmt.Errorf("unmarshalling device states: %w", jsonErr)
		}
	}
	if a.DeviceStates == nil {
		a.DeviceStates = make(map[string]DeviceTarget)
	}
	if orderJSON != "" {
		if jsonErr := json.Unmarshal([]byte(orderJSON), &a.DeviceOrder); jsonErr != nil {
			return nil, fmt.Errorf("unmarshalling device order: %w", jsonErr)
		}
	}

	if t, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
		a.CreatedAt = t
	}
	if t, parseErr := time.Parse(time.RFC3339, updatedAt); parseErr == nil {
		a.UpdatedAt = t
	}
	return &a, nil
}

// ─── SQL Helpers ────────────────────────────────────────────────────────────

func marshalDeviceData(a *Activity) (statesJSON, orderJSON string, err error) {
	states, err := json.Marshal(a.DeviceStates)
	if err != nil {
		return "", "", fmt.Errorf("marshalling device states: %w", err)
	}
	order, err := json.Marshal(a.DeviceOrder)
	if err != nil {
		return "", "", fmt.Errorf("marshalling device order: %w", err)
	}
	return string(states), string(order), nil
}

func checkAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}

func nullableStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "unique constraint")
}
