package model

import (
	"encoding/json"
	"fmt"
)

// The closed enums marshal as their wire names so the presentation surface
// never sees raw ordinals.

func (d Direction) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *Direction) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDirection(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (g ApproachGroup) MarshalJSON() ([]byte, error) { return json.Marshal(g.String()) }

func (g *ApproachGroup) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseGroup(s)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

func (s Stage) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (k VehicleKind) MarshalJSON() ([]byte, error) { return json.Marshal(k.String()) }

func (r SpawnRate) MarshalJSON() ([]byte, error) { return json.Marshal(r.String()) }

func (r *SpawnRate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseSpawnRate(s)
	if err != nil {
		return fmt.Errorf("spawn rate: %w", err)
	}
	*r = parsed
	return nil
}
