// Package gateway publishes device commands for AV Scenes Core.
//
// It implements the engine's device command boundary over MQTT: each
// logical call (power on, power off, set volume, select source) becomes a
// JSON command on avscenes/command/{category}/{device_id}, where a
// protocol adapter (Home Assistant bridge, custom firmware, test harness)
// translates it into a real-world effect.
//
// Commands are fire-and-forget: a returned error means the broker did not
// accept the message, never that the device failed. The engine treats
// either case the same way — log and continue.
package gateway
