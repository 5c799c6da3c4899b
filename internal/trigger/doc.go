// Package trigger exposes the activity engine over MQTT.
//
// It is the machine-to-machine counterpart of the REST API: service calls
// arrive on avscenes/service/+ and room lifecycle changes leave as
// retained status documents on avscenes/core/room/{room_id}/status plus
// fire-and-forget events on avscenes/core/event.
//
// Start and stop calls are dispatched asynchronously because a transition
// holds the room lock for the duration of its power-on delays; the MQTT
// handler must not block the broker's message pipeline that long.
package trigger
