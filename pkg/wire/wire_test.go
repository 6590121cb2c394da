package wire

import (
	"encoding/json"
	"testing"
)

func TestSimvarsMessageDecodesNumbersAndBools(t *testing.T) {
	raw := `{"type":"simvars","data":{
		"INDICATED ALTITUDE":{"value":12500.5},
		"ENG COMBUSTION:1":{"value":true},
		"AIRSPEED INDICATED":{"value":0}
	}}`

	var msg SimvarsMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != TypeSimvars {
		t.Fatalf("type = %q, want %q", msg.Type, TypeSimvars)
	}
	if got := msg.Data[VarAltitude].Value; got != 12500.5 {
		t.Errorf("altitude = %v, want 12500.5", got)
	}
	if got := msg.Data[VarEngineRunning].Value; got != 1 {
		t.Errorf("engine running = %v, want 1 (normalized true)", got)
	}
	if got := msg.Data[VarAirspeed].Value; got != 0 {
		t.Errorf("airspeed = %v, want 0", got)
	}
}

func TestSimvarRejectsStringValue(t *testing.T) {
	var s Simvar
	if err := json.Unmarshal([]byte(`{"value":"fast"}`), &s); err == nil {
		t.Fatal("expected error for string value")
	}
}

func TestCommandMessageRoundTrip(t *testing.T) {
	cmd := NewCommand("SIMWIDGET_CAM_CMD", 2)
	data, err := json.Marshal(cmd)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded CommandMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Type != TypeCommand {
		t.Errorf("type = %q, want %q", decoded.Type, TypeCommand)
	}
	if decoded.Event != "SIMWIDGET_CAM_CMD" || decoded.Value != 2 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestCommandValueZeroStaysOnWire(t *testing.T) {
	data, err := json.Marshal(NewCommand("SIMWIDGET_CAM_SMOOTH", 0))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Fatalf("unmarshal generic: %v", err)
	}
	if _, ok := generic["value"]; !ok {
		t.Fatal("zero value must still be present in command JSON")
	}
}

func TestMessageTypePeek(t *testing.T) {
	typ, err := MessageType([]byte(`{"type":"simvars","data":{}}`))
	if err != nil {
		t.Fatalf("MessageType: %v", err)
	}
	if typ != TypeSimvars {
		t.Fatalf("type = %q, want simvars", typ)
	}

	if _, err := MessageType([]byte(`not json`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
