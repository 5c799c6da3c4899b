package activity

import (
	"errors"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestValidateRoom(t *testing.T) {
	tests := []struct {
		name    string
		room    *Room
		wantErr error
	}{
		{"Valid", &Room{ID: "living_room", Name: "Living Room"}, nil},
		{"Nil", nil, ErrInvalidRoom},
		{"EmptyID", &Room{ID: "", Name: "Living Room"}, ErrInvalidRoom},
		{"UppercaseID", &Room{ID: "Living_Room", Name: "Living Room"}, ErrInvalidRoom},
		{"HyphenID", &Room{ID: "living-room", Name: "Living Room"}, ErrInvalidRoom},
		{"EmptyName", &Room{ID: "living_room", Name: "   "}, ErrInvalidRoom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRoom(tt.room)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateRoom() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateRoom() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateActivity(t *testing.T) {
	valid := func() *Activity {
		return &Activity{
			RoomID: "living_room",
			Name:   "movie",
			DeviceStates: map[string]DeviceTarget{
				"player.tv": {Player: &PlayerTarget{InputSource: "HDMI1"}},
			},
		}
	}

	t.Run("Valid", func(t *testing.T) {
		if err := ValidateActivity(valid()); err != nil {
			t.Errorf("ValidateActivity() error = %v, want nil", err)
		}
	})

	t.Run("Nil", func(t *testing.T) {
		if err := ValidateActivity(nil); !errors.Is(err, ErrInvalidActivity) {
			t.Errorf("ValidateActivity(nil) error = %v, want ErrInvalidActivity", err)
		}
	})

	t.Run("NoDevices", func(t *testing.T) {
		a := valid()
		a.DeviceStates = map[string]DeviceTarget{}
		if err := ValidateActivity(a); !errors.Is(err, ErrNoDevices) {
			t.Errorf("ValidateActivity() error = %v, want ErrNoDevices", err)
		}
	})

	t.Run("InvalidName", func(t *testing.T) {
		a := valid()
		a.Name = "Movie Night!"
		if err := ValidateActivity(a); !errors.Is(err, ErrInvalidActivity) {
			t.Errorf("ValidateActivity() error = %v, want ErrInvalidActivity", err)
		}
	})
}

func TestValidateTarget(t *testing.T) {
	tests := []struct {
		name     string
		deviceID string
		target   DeviceTarget
		wantErr  error
	}{
		{"PlayerValid", "player.tv", DeviceTarget{Player: &PlayerTarget{IsVolumeController: true, VolumeLevel: 0.5}}, nil},
		{"SwitchNoConfig", "switch.amp", DeviceTarget{}, nil},
		{"LightValid", "light.lamp", DeviceTarget{Light: &LightTarget{Brightness: 51, ColourTemp: intPtr(300)}}, nil},
		{"CoverValid", "cover.blind", DeviceTarget{Cover: &CoverTarget{Position: 80, TiltPosition: intPtr(45)}}, nil},
		{"NoPrefix", "tv", DeviceTarget{}, ErrUnknownCategory},
		{"UnknownPrefix", "fan.ceiling", DeviceTarget{}, ErrUnknownCategory},
		{"NegativeDelay", "player.tv", DeviceTarget{PowerOnDelay: -1}, ErrInvalidTarget},
		{"VolumeOutOfRange", "player.tv", DeviceTarget{Player: &PlayerTarget{IsVolumeController: true, VolumeLevel: 1.5}}, ErrInvalidTarget},
		{"VolumeIgnoredWhenNotController", "player.tv", DeviceTarget{Player: &PlayerTarget{VolumeLevel: 1.5}}, nil},
		{"BrightnessOutOfRange", "light.lamp", DeviceTarget{Light: &LightTarget{Brightness: 300}}, ErrInvalidTarget},
		{"ColourTempTooLow", "light.lamp", DeviceTarget{Light: &LightTarget{Brightness: 100, ColourTemp: intPtr(100)}}, ErrInvalidTarget},
		{"TransitionTooLong", "light.lamp", DeviceTarget{Light: &LightTarget{Brightness: 100, TransitionSeconds: 90}}, ErrInvalidTarget},
		{"PositionOutOfRange", "cover.blind", DeviceTarget{Cover: &CoverTarget{Position: 120}}, ErrInvalidTarget},
		{"TiltOutOfRange", "cover.blind", DeviceTarget{Cover: &CoverTarget{Position: 50, TiltPosition: intPtr(101)}}, ErrInvalidTarget},
		{"CategoryMismatch", "light.lamp", DeviceTarget{Player: &PlayerTarget{}}, ErrInvalidTarget},
		{"SwitchWithExtraConfig", "switch.amp", DeviceTarget{Light: &LightTarget{Brightness: 10}}, ErrInvalidTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTarget(tt.deviceID, tt.target)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateTarget() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateTarget() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		deviceID string
		want     Category
	}{
		{"player.living_room_tv", CategoryPlayer},
		{"light.lamp", CategoryLight},
		{"switch.amp", CategorySwitch},
		{"cover.blind", CategoryCover},
		{"fan.ceiling", ""},
		{"noprefix", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CategoryOf(tt.deviceID); got != tt.want {
			t.Errorf("CategoryOf(%q) = %q, want %q", tt.deviceID, got, tt.want)
		}
	}
}
