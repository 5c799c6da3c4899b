package activity

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Logger defines the logging interface used by the Registry and Engine.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry provides room and activity management with caching and thread
// safety. It wraps a Repository and adds an in-memory cache for fast
// lookups, since the engine reads the store on every transition.
//
// The cache is populated on startup via RefreshCache() and kept in sync by
// cache-invalidating CRUD operations. Reads hand out deep copies with a
// reconciled device order, so callers can never corrupt cached data.
//
// All public methods are thread-safe.
type Registry struct {
	repo Repository

	// cache is keyed by room ID; activities nested by name.
	rooms      map[string]*Room
	activities map[string]map[string]*Activity
	cacheMu    sync.RWMutex

	logger Logger
}

// NewRegistry creates a new room/activity registry.
// The repository is used for persistence; the registry adds caching.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:       repo,
		rooms:      make(map[string]*Room),
		activities: make(map[string]map[string]*Activity),
		logger:     noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// RefreshCache reloads all rooms and activities from the repository.
// This should be called on application startup and on a reload request.
func (r *Registry) RefreshCache(ctx context.Context) error {
	rooms, err := r.repo.ListRooms(ctx)
	if err != nil {
		return fmt.Errorf("loading rooms: %w", err)
	}

	activities := make(map[string]map[string]*Activity, len(rooms))
	total := 0
	for i := range rooms {
		list, listErr := r.repo.ListActivities(ctx, rooms[i].ID)
		if listErr != nil {
			return fmt.Errorf("loading activities for room %q: %w", rooms[i].ID, listErr)
		}
		byName := make(map[string]*Activity, len(list))
		for j := range list {
			a := list[j].DeepCopy()
			a.Reconcile()
			byName[a.Name] = a
		}
		activities[rooms[i].ID] = byName
		total += len(list)
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	r.rooms = make(map[string]*Room, len(rooms))
	for i := range rooms {
		room := rooms[i]
		r.rooms[room.ID] = room.DeepCopy()
	}
	r.activities = activities

	r.logger.Info("activity cache refreshed", "rooms", len(rooms), "activities", total)
	return nil
}

// GetRoom retrieves a room by ID.
// The returned room is a deep copy; callers can safely modify it.
func (r *Registry) GetRoom(_ context.Context, roomID string) (*Room, error) {
	r.cacheMu.RLock()
	cached, ok := r.rooms[roomID]
	r.cacheMu.RUnlock()

	if ok {
		return cached.DeepCopy(), nil
	}
	return nil, ErrRoomNotFound
}

// GetActivity retrieves an activity by room ID and name.
// The returned activity is a deep copy with a reconciled device order.
func (r *Registry) GetActivity(_ context.Context, roomID, name string) (*Activity, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	byName, ok := r.activities[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	cached, ok := byName[name]
	if !ok {
		return nil, ErrActivityNotFound
	}

	cpy := cached.DeepCopy()
	cpy.Reconcile()
	return cpy, nil
}

// ListRooms retrieves all rooms sorted by sort_order then name.
func (r *Registry) ListRooms(_ context.Context) ([]Room, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	rooms := make([]Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, *room.DeepCopy())
	}
	sortRooms(rooms)
	return rooms, nil
}

// ListActivities retrieves all activities in a room, sorted by name.
func (r *Registry) ListActivities(_ context.Context, roomID string) ([]Activity, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	byName, ok := r.activities[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}

	activities := make([]Activity, 0, len(byName))
	for _, a := range byName {
		cpy := a.DeepCopy()
		cpy.Reconcile()
		activities = append(activities, *cpy)
	}
	sort.Slice(activities, func(i, j int) bool {
		return activities[i].Name < activities[j].Name
	})
	return activities, nil
}

// sortRooms sorts rooms by sort_order then name, matching the DB query ordering.
func sortRooms(rooms []Room) {
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].SortOrder != rooms[j].SortOrder {
			return rooms[i].SortOrder < rooms[j].SortOrder
		}
		return rooms[i].Name < rooms[j].Name
	})
}

// CreateRoom validates, persists, and caches a new room.
func (r *Registry) CreateRoom(ctx context.Context, room *Room) error {
	if err := ValidateRoom(room); err != nil {
		return err
	}

	if err := r.repo.CreateRoom(ctx, room); err != nil {
		return err
	}

	r.cacheMu.Lock()
	r.rooms[room.ID] = room.DeepCopy()
	if _, ok := r.activities[room.ID]; !ok {
		r.activities[room.ID] = make(map[string]*Activity)
	}
	r.cacheMu.Unlock()

	r.logger.Info("room created", "room_id", room.ID, "name", room.Name)
	return nil
}

// UpdateRoom validates, persists, and updates the cached room.
func (r *Registry) UpdateRoom(ctx context.Context, room *Room) error {
	if err := ValidateRoom(room); err != nil {
		return err
	}

	if err := r.repo.UpdateRoom(ctx, room); err != nil {
		return err
	}

	r.cacheMu.Lock()
	r.rooms[room.ID] = room.DeepCopy()
	r.cacheMu.Unlock()

	r.logger.Info("room updated", "room_id", room.ID, "name", room.Name)
	return nil
}

// DeleteRoom removes a room and all of its activities from persistence
// and cache.
func (r *Registry) DeleteRoom(ctx context.Context, roomID string) error {
	if err := r.repo.DeleteRoom(ctx, roomID); err != nil {
		return err
	}

	r.cacheMu.Lock()
	delete(r.rooms, roomID)
	delete(r.activities, roomID)
	r.cacheMu.Unlock()

	r.logger.Info("room deleted", "room_id", roomID)
	return nil
}

// CreateActivity validates, reconciles, persists, and caches a new activity.
func (r *Registry) CreateActivity(ctx context.Context, a *Activity) error {
	if err := ValidateActivity(a); err != nil {
		return err
	}
	a.Reconcile()

	r.cacheMu.RLock()
	_, roomKnown := r.rooms[a.RoomID]
	r.cacheMu.RUnlock()
	if !roomKnown {
		return ErrRoomNotFound
	}

	if err := r.repo.CreateActivity(ctx, a); err != nil {
		return err
	}

	r.cacheMu.Lock()
	if _, ok := r.activities[a.RoomID]; !ok {
		r.activities[a.RoomID] = make(map[string]*Activity)
	}
	r.activities[a.RoomID][a.Name] = a.DeepCopy()
	r.cacheMu.Unlock()

	r.logger.Info("activity created",
		"room_id", a.RoomID,
		"activity", a.Name,
		"devices", len(a.DeviceStates),
	)
	return nil
}

// UpdateActivity validates, reconciles, persists, and updates the cache.
func (r *Registry) UpdateActivity(ctx context.Context, a *Activity) error {
	if err := ValidateActivity(a); err != nil {
		return err
	}
	a.Reconcile()

	if err := r.repo.UpdateActivity(ctx, a); err != nil {
		return err
	}

	r.cacheMu.Lock()
	if _, ok := r.activities[a.RoomID]; !ok {
		r.activities[a.RoomID] = make(map[string]*Activity)
	}
	r.activities[a.RoomID][a.Name] = a.DeepCopy()
	r.cacheMu.Unlock()

	r.logger.Info("activity updated", "room_id", a.RoomID, "activity", a.Name)
	return nil
}

// DeleteActivity removes an activity from persistence and cache.
func (r *Registry) DeleteActivity(ctx context.Context, roomID, name string) error {
	if err := r.repo.DeleteActivity(ctx, roomID, name); err != nil {
		return err
	}

	r.cacheMu.Lock()
	if byName, ok := r.activities[roomID]; ok {
		delete(byName, name)
	}
	r.cacheMu.Unlock()

	r.logger.Info("activity deleted", "room_id", roomID, "activity", name)
	return nil
}

// RoomCount returns the number of cached rooms.
func (r *Registry) RoomCount() int {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	return len(r.rooms)
}

// GenerateID creates a new UUID for a transition record.
func GenerateID() string {
	return uuid.New().String()
}
