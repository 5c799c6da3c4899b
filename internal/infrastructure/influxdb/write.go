package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteTransition records a completed activity transition.
//
// This is the primary method for the transition history feature. The write
// is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - roomID: The room the transition ran in
//   - kind: "start" or "stop"
//   - fromActivity: Previous activity name ("" if the room was idle)
//   - toActivity: New activity name ("" for a stop transition)
//   - commandsTotal: Number of device commands issued
//   - commandsFailed: Number of commands that failed
//   - duration: Wall-clock duration of the transition sequence
//
// Example:
//
//	client.WriteTransition("living_room", "start", "music", "movie", 5, 0, 3200*time.Millisecond)
func (c *Client) WriteTransition(roomID, kind, fromActivity, toActivity string, commandsTotal, commandsFailed int, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"activity_transitions",
		map[string]string{
			"room_id": roomID,
			"kind":    kind,
		},
		map[string]interface{}{
			"from_activity":   fromActivity,
			"to_activity":     toActivity,
			"commands_total":  commandsTotal,
			"commands_failed": commandsFailed,
			"duration_ms":     duration.Milliseconds(),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteDeviceCommand records a single device command outcome.
//
// Used for per-device diagnostics; answers "which device keeps failing
// during transitions".
//
// Parameters:
//   - roomID: The room the command ran in
//   - deviceID: Device identifier (e.g., "player.living_room_tv")
//   - command: Command name (e.g., "power_on", "set_volume")
//   - success: Whether the command was accepted by the transport
func (c *Client) WriteDeviceCommand(roomID, deviceID, command string, success bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_commands",
		map[string]string{
			"room_id":   roomID,
			"device_id": deviceID,
			"command":   command,
		},
		map[string]interface{}{
			"success": success,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
