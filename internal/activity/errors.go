package activity

import "errors"

// Domain errors for the activity package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, activity.ErrActivityNotFound) {
//	    // handle not found case
//	}
var (
	// ErrRoomNotFound is returned when a room ID does not exist.
	ErrRoomNotFound = errors.New("activity: room not found")

	// ErrRoomExists is returned when creating a room with an ID that already exists.
	ErrRoomExists = errors.New("activity: room already exists")

	// ErrActivityNotFound is returned when an activity name does not exist in a room.
	ErrActivityNotFound = errors.New("activity: not found")

	// ErrActivityExists is returned when creating an activity whose name is
	// already taken within the room.
	ErrActivityExists = errors.New("activity: already exists")

	// ErrInvalidRoom is returned when room validation fails.
	ErrInvalidRoom = errors.New("activity: invalid room")

	// ErrInvalidActivity is returned when activity validation fails.
	ErrInvalidActivity = errors.New("activity: invalid")

	// ErrInvalidTarget is returned when a device target configuration is invalid.
	ErrInvalidTarget = errors.New("activity: invalid device target")

	// ErrUnknownCategory is returned when a device identifier has no
	// recognised category prefix.
	ErrUnknownCategory = errors.New("activity: unknown device category")

	// ErrNoDevices is returned when an activity has no device targets.
	ErrNoDevices = errors.New("activity: no devices")

	// ErrRoomInUse is returned when deleting a room that still has activities.
	ErrRoomInUse = errors.New("activity: room has activities")
)
