package mqtt

import (
	"errors"
	"testing"
)

// =============================================================================
// Topics Tests
// =============================================================================

func TestTopicBuilders(t *testing.T) {
	tests := []struct {
		name     string
		builder  func() string
		expected string
	}{
		{
			name: "DeviceCommandPlayer",
			builder: func() string {
				return Topics{}.DeviceCommand("player", "player.living_room_tv")
			},
			expected: "avscenes/command/player/player.living_room_tv",
		},
		{
			name: "DeviceCommandLight",
			builder: func() string {
				return Topics{}.DeviceCommand("light", "light.living_room_spots")
			},
			expected: "avscenes/command/light/light.living_room_spots",
		},
		{
			name: "RoomStatus",
			builder: func() string {
				return Topics{}.RoomStatus("living_room")
			},
			expected: "avscenes/core/room/living_room/status",
		},
		{
			name: "CoreEvent",
			builder: func() string {
				return Topics{}.CoreEvent()
			},
			expected: "avscenes/core/event",
		},
		{
			name: "ServiceStartActivity",
			builder: func() string {
				return Topics{}.Service(ServiceStartActivity)
			},
			expected: "avscenes/service/start_activity",
		},
		{
			name: "ServiceStopActivity",
			builder: func() string {
				return Topics{}.Service(ServiceStopActivity)
			},
			expected: "avscenes/service/stop_activity",
		},
		{
			name: "ServiceReload",
			builder: func() string {
				return Topics{}.Service(ServiceReload)
			},
			expected: "avscenes/service/reload",
		},
		{
			name: "AllServices",
			builder: func() string {
				return Topics{}.AllServices()
			},
			expected: "avscenes/service/+",
		},
		{
			name: "SystemStatus",
			builder: func() string {
				return Topics{}.SystemStatus()
			},
			expected: "avscenes/system/status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.builder()
			if result != tt.expected {
				t.Errorf("%s() = %q, want %q", tt.name, result, tt.expected)
			}
		})
	}
}

func TestServiceName(t *testing.T) {
	tests := []struct {
		topic    string
		wantName string
		wantOK   bool
	}{
		{"avscenes/service/start_activity", "start_activity", true},
		{"avscenes/service/stop_activity", "stop_activity", true},
		{"avscenes/service/reload", "reload", true},
		{"avscenes/service/", "", false},
		{"avscenes/service", "", false},
		{"avscenes/service/foo/bar", "", false},
		{"avscenes/system/status", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		name, ok := ServiceName(tt.topic)
		if name != tt.wantName || ok != tt.wantOK {
			t.Errorf("ServiceName(%q) = (%q, %v), want (%q, %v)",
				tt.topic, name, ok, tt.wantName, tt.wantOK)
		}
	}
}

// =============================================================================
// Validation Tests (no broker required)
// =============================================================================

func TestIsConnected_InitialState(t *testing.T) {
	client := &Client{}

	if client.IsConnected() {
		t.Error("IsConnected() should be false for uninitialised client")
	}
}

func TestCloseNil(t *testing.T) {
	client := &Client{}
	err := client.Close()
	if err != nil {
		t.Errorf("Close() on nil client error = %v, want nil", err)
	}
}

func TestPublishEmptyTopic(t *testing.T) {
	client := &Client{}

	err := client.Publish("", []byte("test"), 1, false)
	if !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Publish() error = %v, want ErrInvalidTopic", err)
	}
}

func TestPublishInvalidQoS(t *testing.T) {
	client := &Client{}

	err := client.Publish("test/topic", []byte("test"), 3, false)
	if !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Publish() error = %v, want ErrInvalidQoS", err)
	}
}

func TestPublishDisconnected(t *testing.T) {
	client := &Client{}

	err := client.Publish("test/topic", []byte("test"), 1, false)
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Publish() error = %v, want ErrNotConnected", err)
	}
}

func TestPublishOversizedPayload(t *testing.T) {
	client := &Client{}

	payload := make([]byte, maxPayloadSize+1)
	err := client.Publish("test/topic", payload, 1, false)
	if !errors.Is(err, ErrPublishFailed) {
		t.Errorf("Publish() error = %v, want ErrPublishFailed", err)
	}
}

func TestSubscribeEmptyTopic(t *testing.T) {
	client := &Client{}

	err := client.Subscribe("", 1, func(string, []byte) error { return nil })
	if !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Subscribe() error = %v, want ErrInvalidTopic", err)
	}
}

func TestSubscribeInvalidQoS(t *testing.T) {
	client := &Client{}

	err := client.Subscribe("test/topic", 3, func(string, []byte) error { return nil })
	if !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Subscribe() error = %v, want ErrInvalidQoS", err)
	}
}

func TestSubscribeNilHandler(t *testing.T) {
	client := &Client{}

	err := client.Subscribe("test/topic", 1, nil)
	if !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("Subscribe() error = %v, want ErrSubscribeFailed", err)
	}
}

func TestSubscribeDisconnected(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}

	err := client.Subscribe("test/topic", 1, func(string, []byte) error { return nil })
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Subscribe() error = %v, want ErrNotConnected", err)
	}
}

func TestUnsubscribeEmptyTopic(t *testing.T) {
	client := &Client{}

	err := client.Unsubscribe("")
	if !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Unsubscribe() error = %v, want ErrInvalidTopic", err)
	}
}

func TestSubscriptionCount_Empty(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}

	if client.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", client.SubscriptionCount())
	}
}

func TestHasSubscription_NotSubscribed(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}

	if client.HasSubscription("nonexistent/topic") {
		t.Error("HasSubscription() should be false for unsubscribed topic")
	}
}
