package activity

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Gateway is the boundary that turns a logical device target into a
// real-world effect. The engine never talks to devices directly; every
// command goes through this interface.
//
// The power-on call carries the category-specific target parameters
// (brightness, colour temperature and transition for lights, position and
// tilt for covers) so the gateway can apply them in a single command.
type Gateway interface {
	PowerOn(ctx context.Context, deviceID string, target DeviceTarget) error
	PowerOff(ctx context.Context, deviceID string) error
	SetVolume(ctx context.Context, deviceID string, level float64) error
	SelectSource(ctx context.Context, deviceID, source string) error
}

// Store is the read interface the engine consumes. Returned values are
// isolated copies with reconciled device order.
type Store interface {
	GetRoom(ctx context.Context, roomID string) (*Room, error)
	GetActivity(ctx context.Context, roomID, name string) (*Activity, error)
}

// TransitionRecorder persists completed transition records. May be nil;
// recording failures are logged and never affect the transition outcome.
type TransitionRecorder interface {
	RecordTransition(ctx context.Context, transition *Transition) error
}

// Engine orchestrates activity transitions per room.
//
// Given a previous activity (or none) and a newly requested one, it
// computes the minimal set of device transitions, sequences them with the
// configured power-on delays, and tracks room lifecycle state. At most one
// transition is in flight per room; a second start or stop for the same
// room queues behind the in-flight one. Different rooms transition
// concurrently with no shared mutable state.
//
// All device commands are best-effort: a failed command is logged and the
// sequence continues, so the room always reaches a well-defined terminal
// state (active or idle).
//
// Thread Safety: all methods are safe for concurrent use.
type Engine struct {
	store    Store
	gateway  Gateway
	recorder TransitionRecorder
	states   *stateTracker
	logger   Logger

	// locks holds one mutex per room, created lazily. Each is held for
	// the full duration of plan + execute.
	locks   map[string]*sync.Mutex
	locksMu sync.Mutex
}

// NewEngine creates an activity engine.
//
// Parameters:
//   - store: Activity store for room and activity lookups
//   - gateway: Device command gateway
//   - recorder: Transition log sink (may be nil to disable recording)
//   - logger: Logger instance (nil for no logging)
func NewEngine(store Store, gateway Gateway, recorder TransitionRecorder, logger Logger) *Engine {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Engine{
		store:    store,
		gateway:  gateway,
		recorder: recorder,
		states:   newStateTracker(),
		locks:    make(map[string]*sync.Mutex),
		logger:   logger,
	}
}

// Subscribe registers a listener for room lifecycle changes. Listeners are
// invoked synchronously on every state transition and must not block.
func (e *Engine) Subscribe(listener StateListener) {
	e.states.subscribe(listener)
}

// Status returns the current lifecycle state and active activity for a
// room. Unknown rooms report idle; existence checks belong to the store.
func (e *Engine) Status(roomID string) RoomStatus {
	return e.states.get(roomID)
}

// StatusAll returns the status of every room that has seen a transition,
// sorted by room ID.
func (e *Engine) StatusAll() []RoomStatus {
	return e.states.all()
}

// StartActivity activates the named activity in a room.
//
// If another activity is already active, the switch is diff-based: devices
// shared by both activities stay powered and receive a settings-only
// update, devices only the old activity used are powered off first, and
// devices only the new activity needs get the full power-on sequence.
// Restarting the already-active activity is a pure settings refresh.
//
// The room's transition lock is held for the whole operation; a concurrent
// start or stop for the same room blocks until this one completes.
//
// Returns:
//   - error: nil on completion (individual command failures do not fail
//     the transition), ErrRoomNotFound or ErrActivityNotFound if the
//     request names unknown configuration (no state is changed)
func (e *Engine) StartActivity(ctx context.Context, roomID, activityName string) error {
	// Validate the request before taking any lock or mutating state.
	if _, err := e.store.GetRoom(ctx, roomID); err != nil {
		e.logger.Warn("start rejected: unknown room", "room_id", roomID)
		return err
	}

	lock := e.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	next, err := e.store.GetActivity(ctx, roomID, activityName)
	if err != nil {
		e.logger.Warn("start rejected: unknown activity",
			"room_id", roomID,
			"activity", activityName,
		)
		return err
	}

	current := e.currentActivity(ctx, roomID)
	currentName := ""
	if current != nil {
		currentName = current.Name
	}

	plan := Plan(current, next)

	e.logger.Info("activity transition planned",
		"room_id", roomID,
		"from", currentName,
		"to", activityName,
		"power_off", len(plan.PowerOff),
		"keep_on", len(plan.KeepOn),
		"power_on", len(plan.PowerOnAndConfigure),
	)

	started := time.Now().UTC()
	var issued, failed int

	// Power off devices the new activity does not use, before any of its
	// own devices are touched.
	for _, deviceID := range plan.PowerOff {
		issued++
		if offErr := e.gateway.PowerOff(ctx, deviceID); offErr != nil {
			failed++
			e.logger.Warn("power off failed",
				"room_id", roomID,
				"device_id", deviceID,
				"error", offErr,
			)
		}
	}

	e.states.set(roomID, StateStarting, activityName)

	keepOn := make(map[string]bool, len(plan.KeepOn))
	for _, deviceID := range plan.KeepOn {
		keepOn[deviceID] = true
	}

	// Strictly sequential: later steps may depend on earlier power-on
	// delays completing, and device order is a user-specified invariant.
	for _, deviceID := range next.DeviceOrder {
		target := next.DeviceStates[deviceID]

		if !keepOn[deviceID] {
			issued++
			if onErr := e.gateway.PowerOn(ctx, deviceID, target); onErr != nil {
				failed++
				e.logger.Warn("power on failed",
					"room_id", roomID,
					"device_id", deviceID,
					"error", onErr,
				)
			}
			e.waitPowerOnDelay(ctx, target)
		}

		settingsIssued, settingsFailed := e.applySettings(ctx, roomID, deviceID, target)
		issued += settingsIssued
		failed += settingsFailed
	}

	e.states.set(roomID, StateActive, activityName)

	e.recordTransition(ctx, &Transition{
		ID:             GenerateID(),
		RoomID:         roomID,
		Kind:           TransitionStart,
		FromActivity:   currentName,
		ToActivity:     activityName,
		CommandsTotal:  issued,
		CommandsFailed: failed,
		StartedAt:      started,
		DurationMS:     int(time.Since(started).Milliseconds()),
	})

	e.logger.Info("activity started",
		"room_id", roomID,
		"activity", activityName,
		"commands", issued,
		"failed", failed,
		"duration_ms", time.Since(started).Milliseconds(),
	)

	return nil
}

// StopActivity deactivates the room's current activity, powering off all
// of its devices. A room with no active activity is a no-op.
func (e *Engine) StopActivity(ctx context.Context, roomID string) error {
	lock := e.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	status := e.states.get(roomID)
	if status.State != StateActive || status.Activity == "" {
		e.logger.Debug("stop ignored: no active activity", "room_id", roomID)
		return nil
	}

	currentName := status.Activity
	current := e.currentActivity(ctx, roomID)

	e.states.set(roomID, StateStopping, currentName)

	started := time.Now().UTC()
	var issued, failed int

	if current != nil {
		for _, deviceID := range current.DeviceOrder {
			issued++
			if offErr := e.gateway.PowerOff(ctx, deviceID); offErr != nil {
				failed++
				e.logger.Warn("power off failed",
					"room_id", roomID,
					"device_id", deviceID,
					"error", offErr,
				)
			}
		}
	}

	e.states.set(roomID, StateIdle, "")

	e.recordTransition(ctx, &Transition{
		ID:             GenerateID(),
		RoomID:         roomID,
		Kind:           TransitionStop,
		FromActivity:   currentName,
		CommandsTotal:  issued,
		CommandsFailed: failed,
		StartedAt:      started,
		DurationMS:     int(time.Since(started).Milliseconds()),
	})

	e.logger.Info("activity stopped",
		"room_id", roomID,
		"activity", currentName,
		"commands", issued,
		"failed", failed,
	)

	return nil
}

// currentActivity loads the room's active activity definition, or nil if
// the room is idle or the definition disappeared from the store.
func (e *Engine) currentActivity(ctx context.Context, roomID string) *Activity {
	status := e.states.get(roomID)
	if status.State != StateActive || status.Activity == "" {
		return nil
	}

	current, err := e.store.GetActivity(ctx, roomID, status.Activity)
	if err != nil {
		if !errors.Is(err, ErrActivityNotFound) {
			e.logger.Warn("loading current activity failed",
				"room_id", roomID,
				"activity", status.Activity,
				"error", err,
			)
		}
		return nil
	}
	return current
}

// applySettings issues the settings-only update for a device.
//
// Only player volume and input source are treated as mutable without a
// power cycle; light and cover parameters ride on the power-on call and
// are never re-issued on keep-on overlap.
func (e *Engine) applySettings(ctx context.Context, roomID, deviceID string, target DeviceTarget) (issued, failed int) {
	player := target.Player
	if player == nil || CategoryOf(deviceID) != CategoryPlayer {
		return 0, 0
	}

	if player.IsVolumeController {
		issued++
		if err := e.gateway.SetVolume(ctx, deviceID, player.VolumeLevel); err != nil {
			failed++
			e.logger.Warn("set volume failed",
				"room_id", roomID,
				"device_id", deviceID,
				"error", err,
			)
		}
	}

	if player.InputSource != "" && player.InputSource != InputSourceNone {
		issued++
		if err := e.gateway.SelectSource(ctx, deviceID, player.InputSource); err != nil {
			failed++
			e.logger.Warn("select source failed",
				"room_id", roomID,
				"device_id", deviceID,
				"source", player.InputSource,
				"error", err,
			)
		}
	}

	return issued, failed
}

// waitPowerOnDelay sleeps for the device's configured power-on delay.
// The wait holds the room's transition lock but no lock shared with other
// rooms. Context cancellation cuts the wait short (process shutdown);
// remaining steps still run best-effort.
func (e *Engine) waitPowerOnDelay(ctx context.Context, target DeviceTarget) {
	if target.PowerOnDelay <= 0 {
		return
	}

	select {
	case <-time.After(time.Duration(target.PowerOnDelay) * time.Second):
	case <-ctx.Done():
	}
}

// recordTransition persists a transition record. Failures are logged and
// never affect the transition outcome.
func (e *Engine) recordTransition(ctx context.Context, transition *Transition) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.RecordTransition(ctx, transition); err != nil {
		e.logger.Error("failed to record transition",
			"room_id", transition.RoomID,
			"kind", transition.Kind,
			"error", err,
		)
	}
}

// roomLock returns the transition mutex for a room, creating it on first use.
func (e *Engine) roomLock(roomID string) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()

	lock, ok := e.locks[roomID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[roomID] = lock
	}
	return lock
}
