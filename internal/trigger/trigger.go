package trigger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mkshb/ha-av-scenes/internal/activity"
	"github.com/mkshb/ha-av-scenes/internal/infrastructure/mqtt"
)

// Engine is the orchestration interface the trigger service drives.
type Engine interface {
	StartActivity(ctx context.Context, roomID, activityName string) error
	StopActivity(ctx context.Context, roomID string) error
	Subscribe(listener activity.StateListener)
}

// Reloader refreshes the activity configuration cache from persistence.
type Reloader interface {
	RefreshCache(ctx context.Context) error
}

// Broker is the MQTT surface the service needs. Satisfied by *mqtt.Client.
type Broker interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Logger is the logging interface used by the service.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// serviceQoS is the QoS for inbound service calls and outbound status.
const serviceQoS = 1

// Service is the MQTT control surface for AV Scenes Core.
//
// Inbound, it subscribes to avscenes/service/+ and translates service
// calls into engine operations:
//
//	avscenes/service/start_activity  {"room_id": "living_room", "activity": "movie"}
//	avscenes/service/stop_activity   {"room_id": "living_room"}
//	avscenes/service/reload          (empty payload)
//
// Outbound, it mirrors every room lifecycle change as a retained status
// document on avscenes/core/room/{room_id}/status, so any subscriber can
// recover the current state of every room from the broker alone.
type Service struct {
	engine   Engine
	reloader Reloader
	broker   Broker
	logger   Logger
}

// servicePayload is the wire format for start/stop service calls.
type servicePayload struct {
	RoomID   string `json:"room_id"`
	Activity string `json:"activity,omitempty"`
}

// New creates the MQTT trigger service. Call Start to subscribe.
func New(engine Engine, reloader Reloader, broker Broker, logger Logger) *Service {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Service{
		engine:   engine,
		reloader: reloader,
		broker:   broker,
		logger:   logger,
	}
}

// Start subscribes to the service topics and begins mirroring room status
// to retained MQTT topics. The context bounds engine operations triggered
// by incoming messages; cancel it on shutdown.
func (s *Service) Start(ctx context.Context) error {
	s.engine.Subscribe(func(status activity.RoomStatus) {
		s.publishStatus(status)
	})

	topic := mqtt.Topics{}.AllServices()
	if err := s.broker.Subscribe(topic, serviceQoS, func(topic string, payload []byte) error {
		return s.handleService(ctx, topic, payload)
	}); err != nil {
		return fmt.Errorf("subscribing to %q: %w", topic, err)
	}

	s.logger.Info("MQTT service interface started", "topic", topic)
	return nil
}

// handleService dispatches one inbound service call.
//
// Activity transitions can take tens of seconds (power-on delays), so
// start/stop run in their own goroutine; the handler returns immediately
// and the per-room lock in the engine serialises overlapping requests.
func (s *Service) handleService(ctx context.Context, topic string, payload []byte) error {
	name, ok := mqtt.ServiceName(topic)
	if !ok {
		return fmt.Errorf("unexpected service topic %q", topic)
	}

	switch name {
	case mqtt.ServiceStartActivity:
		req, err := parsePayload(payload)
		if err != nil {
			return err
		}
		if req.Activity == "" {
			return fmt.Errorf("start_activity: activity is required")
		}
		go func() {
			if startErr := s.engine.StartActivity(ctx, req.RoomID, req.Activity); startErr != nil {
				s.logger.Warn("start_activity service call failed",
					"room_id", req.RoomID,
					"activity", req.Activity,
					"error", startErr,
				)
			}
		}()
		return nil

	case mqtt.ServiceStopActivity:
		req, err := parsePayload(payload)
		if err != nil {
			return err
		}
		go func() {
			if stopErr := s.engine.StopActivity(ctx, req.RoomID); stopErr != nil {
				s.logger.Warn("stop_activity service call failed",
					"room_id", req.RoomID,
					"error", stopErr,
				)
			}
		}()
		return nil

	case mqtt.ServiceReload:
		if err := s.reloader.RefreshCache(ctx); err != nil {
			return fmt.Errorf("reload: %w", err)
		}
		s.logger.Info("configuration reloaded via MQTT service call")
		return nil

	default:
		return fmt.Errorf("unknown service %q", name)
	}
}

func parsePayload(payload []byte) (servicePayload, error) {
	var req servicePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return servicePayload{}, fmt.Errorf("parsing service payload: %w", err)
	}
	if req.RoomID == "" {
		return servicePayload{}, fmt.Errorf("room_id is required")
	}
	return req, nil
}

// publishStatus mirrors a room status snapshot to its retained topic and
// announces the change on the event topic. Failures are logged; status
// reporting is best-effort and eventually consistent.
func (s *Service) publishStatus(status activity.RoomStatus) {
	payload, err := json.Marshal(status)
	if err != nil {
		s.logger.Error("marshalling room status", "room_id", status.RoomID, "error", err)
		return
	}

	statusTopic := mqtt.Topics{}.RoomStatus(status.RoomID)
	if err := s.broker.Publish(statusTopic, payload, serviceQoS, true); err != nil {
		s.logger.Warn("publishing room status failed",
			"room_id", status.RoomID,
			"error", err,
		)
	}

	event := map[string]any{
		"event":    "activity.state_changed",
		"room_id":  status.RoomID,
		"state":    status.State,
		"activity": status.Activity,
	}
	eventPayload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.broker.Publish(mqtt.Topics{}.CoreEvent(), eventPayload, serviceQoS, false); err != nil {
		s.logger.Debug("publishing lifecycle event failed", "error", err)
	}
}
