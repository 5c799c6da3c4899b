package gateway

import "errors"

// Domain errors for the gateway package.
var (
	// ErrUnknownDevice is returned when a device identifier has no
	// recognised category prefix and cannot be routed.
	ErrUnknownDevice = errors.New("gateway: unknown device")

	// ErrCommandFailed is returned when a command could not be handed to
	// the MQTT broker.
	ErrCommandFailed = errors.New("gateway: command failed")
)
