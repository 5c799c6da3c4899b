package activity

import (
	"fmt"
	"regexp"
	"strings"
)

// Validation constants.
const (
	maxNameLength    = 100
	maxIDLength      = 50
	maxDevices       = 50
	maxPowerOnDelay  = 300 // seconds
	maxTransition    = 60  // seconds
	maxBrightness    = 255
	minColourTemp    = 153 // mired
	maxColourTemp    = 500
	maxPosition      = 100
	roomIDPattern    = `^[a-z0-9]+(?:_[a-z0-9]+)*$`
	activityPattern  = `^[a-z0-9]+(?:[_-][a-z0-9]+)*$`
	maxSourceLength  = 100
)

var (
	roomIDRegex   = regexp.MustCompile(roomIDPattern)
	activityRegex = regexp.MustCompile(activityPattern)
)

// ValidateRoom performs validation on a room definition.
func ValidateRoom(room *Room) error {
	if room == nil {
		return ErrInvalidRoom
	}
	if err := ValidateRoomID(room.ID); err != nil {
		return err
	}
	name := strings.TrimSpace(room.Name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidRoom)
	}
	if len(room.Name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidRoom, maxNameLength)
	}
	return nil
}

// ValidateRoomID checks if a room identifier is valid.
// Room IDs are stable keys used in MQTT topics and URLs.
func ValidateRoomID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: id cannot be empty", ErrInvalidRoom)
	}
	if len(id) > maxIDLength {
		return fmt.Errorf("%w: id exceeds %d characters", ErrInvalidRoom, maxIDLength)
	}
	if !roomIDRegex.MatchString(id) {
		return fmt.Errorf("%w: id must be lowercase alphanumeric with underscores", ErrInvalidRoom)
	}
	return nil
}

// ValidateActivity performs comprehensive validation on an activity.
// Returns an error describing the first validation failure found.
func ValidateActivity(a *Activity) error {
	if a == nil {
		return ErrInvalidActivity
	}
	if err := ValidateRoomID(a.RoomID); err != nil {
		return err
	}
	if err := ValidateActivityName(a.Name); err != nil {
		return err
	}

	if len(a.DeviceStates) == 0 {
		return ErrNoDevices
	}
	if len(a.DeviceStates) > maxDevices {
		return fmt.Errorf("%w: exceeds maximum of %d devices", ErrInvalidActivity, maxDevices)
	}

	for deviceID, target := range a.DeviceStates {
		if err := ValidateTarget(deviceID, target); err != nil {
			return fmt.Errorf("device %q: %w", deviceID, err)
		}
	}

	return nil
}

// ValidateActivityName checks if an activity name is valid.
func ValidateActivityName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidActivity)
	}
	if len(name) > maxIDLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidActivity, maxIDLength)
	}
	if !activityRegex.MatchString(name) {
		return fmt.Errorf("%w: name must be lowercase alphanumeric with underscores or hyphens", ErrInvalidActivity)
	}
	return nil
}

// ValidateTarget checks a device target against the category implied by
// the device identifier prefix. The configured sub-struct must match the
// category; mismatches indicate a corrupted or hand-edited definition.
func ValidateTarget(deviceID string, target DeviceTarget) error {
	category := CategoryOf(deviceID)
	if category == "" {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, deviceID)
	}

	if target.PowerOnDelay < 0 || target.PowerOnDelay > maxPowerOnDelay {
		return fmt.Errorf("%w: power_on_delay must be 0-%d seconds", ErrInvalidTarget, maxPowerOnDelay)
	}

	switch category {
	case CategoryPlayer:
		if target.Light != nil || target.Cover != nil {
			return fmt.Errorf("%w: player device carries non-player configuration", ErrInvalidTarget)
		}
		if target.Player != nil {
			return validatePlayerTarget(target.Player)
		}
	case CategoryLight:
		if target.Player != nil || target.Cover != nil {
			return fmt.Errorf("%w: light device carries non-light configuration", ErrInvalidTarget)
		}
		if target.Light != nil {
			return validateLightTarget(target.Light)
		}
	case CategoryCover:
		if target.Player != nil || target.Light != nil {
			return fmt.Errorf("%w: cover device carries non-cover configuration", ErrInvalidTarget)
		}
		if target.Cover != nil {
			return validateCoverTarget(target.Cover)
		}
	case CategorySwitch:
		if target.Player != nil || target.Light != nil || target.Cover != nil {
			return fmt.Errorf("%w: switch device carries extra configuration", ErrInvalidTarget)
		}
	}

	return nil
}

func validatePlayerTarget(p *PlayerTarget) error {
	if len(p.InputSource) > maxSourceLength {
		return fmt.Errorf("%w: input_source exceeds %d characters", ErrInvalidTarget, maxSourceLength)
	}
	if p.IsVolumeController && (p.VolumeLevel < 0.0 || p.VolumeLevel > 1.0) {
		return fmt.Errorf("%w: volume_level must be 0.0-1.0", ErrInvalidTarget)
	}
	return nil
}

func validateLightTarget(l *LightTarget) error {
	if l.Brightness < 0 || l.Brightness > maxBrightness {
		return fmt.Errorf("%w: brightness must be 0-%d", ErrInvalidTarget, maxBrightness)
	}
	if l.ColourTemp != nil && (*l.ColourTemp < minColourTemp || *l.ColourTemp > maxColourTemp) {
		return fmt.Errorf("%w: colour_temp must be %d-%d mired", ErrInvalidTarget, minColourTemp, maxColourTemp)
	}
	if l.TransitionSeconds < 0 || l.TransitionSeconds > maxTransition {
		return fmt.Errorf("%w: transition_seconds must be 0-%d", ErrInvalidTarget, maxTransition)
	}
	return nil
}

func validateCoverTarget(c *CoverTarget) error {
	if c.Position < 0 || c.Position > maxPosition {
		return fmt.Errorf("%w: position must be 0-%d", ErrInvalidTarget, maxPosition)
	}
	if c.TiltPosition != nil && (*c.TiltPosition < 0 || *c.TiltPosition > maxPosition) {
		return fmt.Errorf("%w: tilt_position must be 0-%d", ErrInvalidTarget, maxPosition)
	}
	return nil
}
