// Package control implements the decision unit that turns sensory input into actions.
package control

import "strings"

// SensorTag names one sensory input channel.
type SensorTag uint8

const (
	SensorPositionX SensorTag = iota
	SensorPositionY
	SensorLastMove
	SensorOrientation
	SensorTemperature
)

// AllSensors lists every sensor tag.
var AllSensors = []SensorTag{
	SensorPositionX,
	SensorPositionY,
	SensorLastMove,
	SensorOrientation,
	SensorTemperature,
}

func (t SensorTag) String() string {
	switch t {
	case SensorPositionX:
		return "position_x"
	case SensorPositionY:
		return "position_y"
	case SensorLastMove:
		return "last_move_succeeded"
	case SensorOrientation:
		return "orientation"
	case SensorTemperature:
		return "temperature"
	}
	return "unknown"
}

// ParseSensor parses a sensor tag name. Unknown names return false.
func ParseSensor(s string) (SensorTag, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range AllSensors {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// ActuatorTag names one output channel.
type ActuatorTag uint8

const (
	ActuatorMoveHorizontal ActuatorTag = iota
	ActuatorMoveVertical
	ActuatorRotate
)

// AllActuators lists every actuator tag.
var AllActuators = []ActuatorTag{
	ActuatorMoveHorizontal,
	ActuatorMoveVertical,
	ActuatorRotate,
}

func (t ActuatorTag) String() string {
	switch t {
	case ActuatorMoveHorizontal:
		return "move_horizontal"
	case ActuatorMoveVertical:
		return "move_vertical"
	case ActuatorRotate:
		return "rotate"
	}
	return "unknown"
}

// ParseActuator parses an actuator tag name. Unknown names return false.
func ParseActuator(s string) (ActuatorTag, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range AllActuators {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}
