package activity

import (
	"encoding/json"
	"strings"
	"time"
)

// Category identifies the device class a target configuration applies to.
// It is derived from the namespace prefix of the device identifier
// (e.g., "player.living_room_tv" → CategoryPlayer) and selects which
// configuration fields are meaningful and which gateway calls apply.
type Category string

const (
	CategoryPlayer Category = "player"
	CategoryLight  Category = "light"
	CategorySwitch Category = "switch"
	CategoryCover  Category = "cover"
)

// AllCategories returns all valid device categories.
func AllCategories() []Category {
	return []Category{
		CategoryPlayer,
		CategoryLight,
		CategorySwitch,
		CategoryCover,
	}
}

// CategoryOf derives the device category from an identifier's namespace
// prefix. Returns "" if the identifier has no recognised prefix.
func CategoryOf(deviceID string) Category {
	prefix, _, found := strings.Cut(deviceID, ".")
	if !found {
		return ""
	}
	switch Category(prefix) {
	case CategoryPlayer, CategoryLight, CategorySwitch, CategoryCover:
		return Category(prefix)
	default:
		return ""
	}
}

// InputSourceNone is the sentinel meaning "no input source configured".
// A player target with this source gets no select-source call.
const InputSourceNone = "none"

// DefaultPowerOnDelay is the wait in seconds after a power-on call before
// settings are applied, used when a target does not specify its own delay.
const DefaultPowerOnDelay = 2

// Room represents a physical space with its own independent activity state.
type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeepCopy creates an independent copy of the Room.
func (r *Room) DeepCopy() *Room {
	if r == nil {
		return nil
	}
	cpy := *r
	return &cpy
}

// Activity is a named, ordered target configuration for a set of devices,
// representing one scene a room can be in. Activity names are unique
// within their room.
//
// DeviceOrder is the execution order when the activity is started. The
// invariant is that DeviceOrder is exactly a permutation of the keys of
// DeviceStates; Reconcile restores it when the two drift apart.
type Activity struct {
	RoomID string `json:"room_id"`
	Name   string `json:"name"`

	// DeviceStates maps device identifiers to their target configuration.
	DeviceStates map[string]DeviceTarget `json:"device_states"`

	// DeviceOrder is the execution-order permutation of DeviceStates' keys.
	DeviceOrder []string `json:"device_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeviceTarget is the per-device, per-activity target configuration.
//
// Exactly one of the category sub-structs may be set, and it must match
// the category implied by the device identifier prefix. Switch devices
// carry no extra fields.
type DeviceTarget struct {
	// PowerOnDelay is the wait in seconds after power-on before settings
	// are applied. Negative values are invalid. Documents that omit the
	// field get DefaultPowerOnDelay on unmarshal; an explicit zero means
	// no wait.
	PowerOnDelay int `json:"power_on_delay"`

	Player *PlayerTarget `json:"player,omitempty"`
	Light  *LightTarget  `json:"light,omitempty"`
	Cover  *CoverTarget  `json:"cover,omitempty"`
}

// UnmarshalJSON fills in DefaultPowerOnDelay when power_on_delay is
// absent from the document. Both the API request bodies and the stored
// activity rows pass through here, so a target never silently loses its
// settle time just because the field was left out.
func (t *DeviceTarget) UnmarshalJSON(data []byte) error {
	type plain DeviceTarget
	aux := struct {
		PowerOnDelay *int `json:"power_on_delay"`
		*plain
	}{plain: (*plain)(t)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if aux.PowerOnDelay != nil {
		t.PowerOnDelay = *aux.PowerOnDelay
	} else {
		t.PowerOnDelay = DefaultPowerOnDelay
	}
	return nil
}

// PlayerTarget holds media player configuration.
type PlayerTarget struct {
	// InputSource to select after power-on. InputSourceNone means unset.
	InputSource string `json:"input_source"`

	// IsVolumeController marks this player as the one whose volume the
	// activity controls. VolumeLevel is only meaningful when true.
	IsVolumeController bool    `json:"is_volume_controller"`
	VolumeLevel        float64 `json:"volume_level"`
}

// LightTarget holds light configuration, applied as power-on parameters.
type LightTarget struct {
	Brightness int `json:"brightness"` // 0-255

	// ColourTemp in mired (153-500), optional.
	ColourTemp *int `json:"colour_temp,omitempty"`

	// TransitionSeconds for the fade (0-60).
	TransitionSeconds int `json:"transition_seconds"`
}

// CoverTarget holds cover configuration, applied as power-on parameters.
type CoverTarget struct {
	Position int `json:"position"` // 0-100

	// TiltPosition (0-100), optional.
	TiltPosition *int `json:"tilt_position,omitempty"`
}

// DeepCopy creates a complete independent copy of the Activity.
// All map and slice fields are cloned so modifications to the copy
// do not affect the original. This is essential for cache isolation.
func (a *Activity) DeepCopy() *Activity {
	if a == nil {
		return nil
	}

	cpy := *a

	if a.DeviceStates != nil {
		cpy.DeviceStates = make(map[string]DeviceTarget, len(a.DeviceStates))
		for id, target := range a.DeviceStates {
			cpy.DeviceStates[id] = target.deepCopy()
		}
	}
	if a.DeviceOrder != nil {
		cpy.DeviceOrder = make([]string, len(a.DeviceOrder))
		copy(cpy.DeviceOrder, a.DeviceOrder)
	}

	return &cpy
}

func (t DeviceTarget) deepCopy() DeviceTarget {
	cpy := t
	if t.Player != nil {
		p := *t.Player
		cpy.Player = &p
	}
	if t.Light != nil {
		l := *t.Light
		if t.Light.ColourTemp != nil {
			ct := *t.Light.ColourTemp
			l.ColourTemp = &ct
		}
		cpy.Light = &l
	}
	if t.Cover != nil {
		c := *t.Cover
		if t.Cover.TiltPosition != nil {
			tp := *t.Cover.TiltPosition
			c.TiltPosition = &tp
		}
		cpy.Cover = &c
	}
	return cpy
}

// LifecycleState is the per-room activity lifecycle state.
type LifecycleState string

const (
	StateIdle     LifecycleState = "idle"
	StateStarting LifecycleState = "starting"
	StateActive   LifecycleState = "active"
	StateStopping LifecycleState = "stopping"
)

// RoomStatus is a snapshot of a room's runtime state.
//
// During "starting" the activity name is the target activity; during
// "stopping" it is the activity being shut down. Readers may observe
// transient values; status reporting is eventually consistent.
type RoomStatus struct {
	RoomID   string         `json:"room_id"`
	State    LifecycleState `json:"state"`
	Activity string         `json:"activity,omitempty"`
}

// TransitionKind distinguishes start and stop transitions in the log.
type TransitionKind string

const (
	TransitionStart TransitionKind = "start"
	TransitionStop  TransitionKind = "stop"
)

// Transition records one completed activity transition for a room.
type Transition struct {
	ID             string         `json:"id"`
	RoomID         string         `json:"room_id"`
	Kind           TransitionKind `json:"kind"`
	FromActivity   string         `json:"from_activity,omitempty"`
	ToActivity     string         `json:"to_activity,omitempty"`
	CommandsTotal  int            `json:"commands_total"`
	CommandsFailed int            `json:"commands_failed"`
	StartedAt      time.Time      `json:"started_at"`
	DurationMS     int            `json:"duration_ms"`
}
