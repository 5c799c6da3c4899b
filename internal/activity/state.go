package activity

import (
	"sort"
	"sync"
)

// StateListener receives room status snapshots on every lifecycle change.
//
// Listeners are invoked synchronously from the engine's transition path and
// must not block; push slow work onto a channel or goroutine.
type StateListener func(status RoomStatus)

// stateTracker owns the per-room runtime state map.
//
// Runtime state is not persisted; every process start begins with all rooms
// idle and no active activity. Mutation happens only under the owning
// room's transition lock in the engine; readers may observe transient
// starting/stopping values, which is intentional.
type stateTracker struct {
	mu    sync.RWMutex
	rooms map[string]RoomStatus

	listenerMu sync.RWMutex
	listeners  []StateListener
}

func newStateTracker() *stateTracker {
	return &stateTracker{
		rooms: make(map[string]RoomStatus),
	}
}

// set records a new lifecycle state and activity name for a room and
// notifies listeners.
func (t *stateTracker) set(roomID string, state LifecycleState, activityName string) {
	status := RoomStatus{
		RoomID:   roomID,
		State:    state,
		Activity: activityName,
	}

	t.mu.Lock()
	t.rooms[roomID] = status
	t.mu.Unlock()

	t.listenerMu.RLock()
	listeners := t.listeners
	t.listenerMu.RUnlock()

	for _, listener := range listeners {
		listener(status)
	}
}

// get returns the current status for a room. Unknown rooms report idle.
func (t *stateTracker) get(roomID string) RoomStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if status, ok := t.rooms[roomID]; ok {
		return status
	}
	return RoomStatus{RoomID: roomID, State: StateIdle}
}

// all returns a snapshot of every tracked room's status, sorted by room ID
// for deterministic output.
func (t *stateTracker) all() []RoomStatus {
	t.mu.RLock()
	statuses := make([]RoomStatus, 0, len(t.rooms))
	for _, status := range t.rooms {
		statuses = append(statuses, status)
	}
	t.mu.RUnlock()

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].RoomID < statuses[j].RoomID
	})
	return statuses
}

// subscribe registers a listener for lifecycle changes.
func (t *stateTracker) subscribe(listener StateListener) {
	t.listenerMu.Lock()
	t.listeners = append(t.listeners, listener)
	t.listenerMu.Unlock()
}
