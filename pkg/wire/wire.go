// Package wire defines the JSON messages exchanged with the simulator
// bridge over the telemetry socket, shared by the in-process client and
// external feeders.
package wire

import (
	"encoding/json"
	"fmt"
)

// Message type strings.
const (
	TypeSimvars = "simvars"
	TypeCommand = "command"
)

// Variable names published by the simulator bridge.
const (
	VarAltitude      = "INDICATED ALTITUDE"
	VarAirspeed      = "AIRSPEED INDICATED"
	VarHeading       = "PLANE HEADING DEGREES MAGNETIC"
	VarVerticalSpeed = "VERTICAL SPEED"
	VarThrottle      = "GENERAL ENG THROTTLE LEVER POSITION:1"
	VarEngineRunning = "ENG COMBUSTION:1"
	VarFuelQuantity  = "FUEL TOTAL QUANTITY"
	VarFuelCapacity  = "FUEL TOTAL CAPACITY"
)

// Simvar is one variable sample. The bridge sends booleans for on/off
// variables; they are normalized to 0/1 on decode.
type Simvar struct {
	Value float64
}

func (s Simvar) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Value float64 `json:"value"`
	}{Value: s.Value})
}

func (s *Simvar) UnmarshalJSON(b []byte) error {
	var raw struct {
		Value any `json:"value"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.Value.(type) {
	case float64:
		s.Value = v
	case bool:
		if v {
			s.Value = 1
		} else {
			s.Value = 0
		}
	case nil:
		s.Value = 0
	default:
		return fmt.Errorf("wire: simvar value has unsupported type %T", raw.Value)
	}
	return nil
}

// SimvarsMessage carries a batch of named variable updates.
type SimvarsMessage struct {
	Type string            `json:"type"`
	Data map[string]Simvar `json:"data"`
}

// CommandMessage is an outbound fire-and-forget control event.
type CommandMessage struct {
	Type  string  `json:"type"`
	Event string  `json:"event"`
	Value float64 `json:"value"`
}

// NewCommand builds a command message for the given event.
func NewCommand(event string, value float64) CommandMessage {
	return CommandMessage{Type: TypeCommand, Event: event, Value: value}
}

// MessageType peeks at the type field without decoding the full payload.
func MessageType(data []byte) (string, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return "", fmt.Errorf("wire: decode message head: %w", err)
	}
	return head.Type, nil
}
