package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mkshb/ha-av-scenes/internal/activity"
	"github.com/mkshb/ha-av-scenes/internal/infrastructure/mqtt"
)

// Publisher is the transport interface the gateway needs. Satisfied by
// *mqtt.Client.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Logger is the logging interface used by the gateway.
type Logger interface {
	Debug(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}

// commandQoS is the QoS level for device commands. At-least-once: a lost
// power-on is worse than a duplicated one for AV equipment.
const commandQoS = 1

// MQTTGateway implements the engine's device command boundary by
// publishing JSON commands to per-device MQTT topics.
//
// Topic: avscenes/command/{category}/{device_id}
//
// Payload:
//
//	{
//	  "id": "<uuid>",
//	  "device_id": "player.living_room_tv",
//	  "command": "power_on",
//	  "parameters": {"source": "HDMI1"}
//	}
//
// The gateway is fire-and-forget from the engine's perspective: an error
// means the command could not be handed to the broker, never that the
// device failed to act on it.
type MQTTGateway struct {
	publisher Publisher
	logger    Logger
}

// New creates an MQTT-backed device command gateway.
func New(publisher Publisher, logger Logger) *MQTTGateway {
	if logger == nil {
		logger = noopLogger{}
	}
	return &MQTTGateway{
		publisher: publisher,
		logger:    logger,
	}
}

// command is the wire format for device commands.
type command struct {
	ID         string         `json:"id"`
	DeviceID   string         `json:"device_id"`
	Command    string         `json:"command"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// PowerOn turns a device on, carrying the category-specific target
// parameters so the device reaches its configured state in one command.
func (g *MQTTGateway) PowerOn(_ context.Context, deviceID string, target activity.DeviceTarget) error {
	return g.publish(deviceID, "power_on", powerOnParameters(target))
}

// PowerOff turns a device off.
func (g *MQTTGateway) PowerOff(_ context.Context, deviceID string) error {
	return g.publish(deviceID, "power_off", nil)
}

// SetVolume sets a player's volume level (0.0-1.0).
func (g *MQTTGateway) SetVolume(_ context.Context, deviceID string, level float64) error {
	return g.publish(deviceID, "set_volume", map[string]any{
		"volume_level": level,
	})
}

// SelectSource switches a player's input source.
func (g *MQTTGateway) SelectSource(_ context.Context, deviceID, source string) error {
	return g.publish(deviceID, "select_source", map[string]any{
		"source": source,
	})
}

func (g *MQTTGateway) publish(deviceID, name string, parameters map[string]any) error {
	category := activity.CategoryOf(deviceID)
	if category == "" {
		return fmt.Errorf("%w: %q", ErrUnknownDevice, deviceID)
	}

	payload, err := json.Marshal(command{
		ID:         activity.GenerateID(),
		DeviceID:   deviceID,
		Command:    name,
		Parameters: parameters,
	})
	if err != nil {
		return fmt.Errorf("marshalling command: %w", err)
	}

	topic := mqtt.Topics{}.DeviceCommand(string(category), deviceID)
	if err := g.publisher.Publish(topic, payload, commandQoS, false); err != nil {
		return fmt.Errorf("%w: publishing to %q: %w", ErrCommandFailed, topic, err)
	}

	g.logger.Debug("device command published",
		"device_id", deviceID,
		"command", name,
		"topic", topic,
	)
	return nil
}

// powerOnParameters extracts the category-specific parameters that ride on
// the power-on command. Player settings (volume, source) are deliberately
// absent: the engine issues them as separate settings-only calls.
func powerOnParameters(target activity.DeviceTarget) map[string]any {
	switch {
	case target.Light != nil:
		params := map[string]any{
			"brightness": target.Light.Brightness,
		}
		if target.Light.ColourTemp != nil {
			params["colour_temp"] = *target.Light.ColourTemp
		}
		if target.Light.TransitionSeconds > 0 {
			params["transition"] = target.Light.TransitionSeconds
		}
		return params
	case target.Cover != nil:
		params := map[string]any{
			"position": target.Cover.Position,
		}
		if target.Cover.TiltPosition != nil {
			params["tilt_position"] = *target.Cover.TiltPosition
		}
		return params
	default:
		return nil
	}
}
