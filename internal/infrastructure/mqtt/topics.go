package mqtt

import "fmt"

// Topic prefix for all AV Scenes MQTT traffic.
const topicPrefix = "avscenes"

// Service call names accepted on the service topics.
const (
	ServiceStartActivity = "start_activity"
	ServiceStopActivity  = "stop_activity"
	ServiceReload        = "reload"
)

// Topics builds MQTT topic strings for the AV Scenes topic scheme.
//
// Topic structure:
//
//	avscenes/command/{category}/{device_id}   - device commands (power, volume, source)
//	avscenes/core/room/{room_id}/status       - retained room status documents
//	avscenes/core/event                       - lifecycle events (state changes)
//	avscenes/service/{service}                - inbound service calls
//	avscenes/system/status                    - core online/offline status (LWT)
//
// The zero value is ready to use:
//
//	topic := mqtt.Topics{}.DeviceCommand("player", "player.living_room_tv")
type Topics struct{}

// DeviceCommand returns the command topic for a device.
//
// Category is one of "player", "light", "switch", "cover"; deviceID is the
// device identifier as configured in activity definitions.
func (Topics) DeviceCommand(category, deviceID string) string {
	return fmt.Sprintf("%s/command/%s/%s", topicPrefix, category, deviceID)
}

// RoomStatus returns the retained status topic for a room.
func (Topics) RoomStatus(roomID string) string {
	return fmt.Sprintf("%s/core/room/%s/status", topicPrefix, roomID)
}

// CoreEvent returns the topic for lifecycle event broadcasts.
func (Topics) CoreEvent() string {
	return topicPrefix + "/core/event"
}

// Service returns the topic for a named inbound service call.
func (Topics) Service(service string) string {
	return fmt.Sprintf("%s/service/%s", topicPrefix, service)
}

// AllServices returns the wildcard subscription covering all service calls.
func (Topics) AllServices() string {
	return topicPrefix + "/service/+"
}

// SystemStatus returns the topic for core online/offline status.
// This topic carries the Last Will and Testament message.
func (Topics) SystemStatus() string {
	return topicPrefix + "/system/status"
}

// ServiceName extracts the service name from a service topic.
//
// Returns the name and true for topics of the form avscenes/service/{name},
// or "" and false for anything else.
func ServiceName(topic string) (string, bool) {
	prefix := topicPrefix + "/service/"
	if len(topic) <= len(prefix) || topic[:len(prefix)] != prefix {
		return "", false
	}
	name := topic[len(prefix):]
	for i := 0; i < len(name); i++ {
		if name[i] == '/' {
			return "", false
		}
	}
	return name, true
}
