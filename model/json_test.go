package model

import (
	"encoding/json"
	"testing"
)

func TestEnumsMarshalAsWireNames(t *testing.T) {
	snap := VehicleSnapshot{
		ID:        7,
		Direction: East,
		Kind:      KindEmergency,
		X:         1400,
		Y:         430,
		Speed:     72.5,
	}
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if decoded["direction"] != "east" {
		t.Errorf("expected direction east, got %v", decoded["direction"])
	}
	if decoded["kind"] != "emergency" {
		t.Errorf("expected kind emergency, got %v", decoded["kind"])
	}
}

func TestPhaseStateMarshal(t *testing.T) {
	state := PhaseState{
		Group:              GroupEW,
		Stage:              StageYellow,
		Timer:              31.5,
		EmergencyActive:    true,
		EmergencyDirection: West,
	}
	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal phase state: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal phase state: %v", err)
	}
	if decoded["group"] != "EW" {
		t.Errorf("expected group EW, got %v", decoded["group"])
	}
	if decoded["stage"] != "YELLOW" {
		t.Errorf("expected stage YELLOW, got %v", decoded["stage"])
	}
}

func TestDirectionUnmarshalRejectsUnknown(t *testing.T) {
	var d Direction
	if err := json.Unmarshal([]byte(`"diagonal"`), &d); err == nil {
		t.Errorf("expected error for unknown direction name")
	}
	if err := json.Unmarshal([]byte(`"south"`), &d); err != nil || d != South {
		t.Errorf("expected south, got %v (%v)", d, err)
	}
}

func TestSpawnRateUnmarshal(t *testing.T) {
	var r SpawnRate
	if err := json.Unmarshal([]byte(`"high"`), &r); err != nil || r != SpawnHigh {
		t.Errorf("expected high, got %v (%v)", r, err)
	}
	if err := json.Unmarshal([]byte(`"absurd"`), &r); err == nil {
		t.Errorf("expected error for unknown spawn rate name")
	}
}
