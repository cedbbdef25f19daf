package model

import "testing"

func TestSpawnRateProbabilities(t *testing.T) {
	cases := []struct {
		rate SpawnRate
		want float64
	}{
		{SpawnVeryLow, 0.003},
		{SpawnLow, 0.01},
		{SpawnMedium, 0.02},
		{SpawnHigh, 0.04},
		{SpawnVeryHigh, 0.06},
	}
	for _, tc := range cases {
		if got := tc.rate.Probability(); got != tc.want {
			t.Errorf("%s: expected probability %v, got %v", tc.rate, tc.want, got)
		}
	}
}

func TestSpawnRateMonotonic(t *testing.T) {
	levels := []SpawnRate{SpawnVeryLow, SpawnLow, SpawnMedium, SpawnHigh, SpawnVeryHigh}
	for i := 1; i < len(levels); i++ {
		if levels[i].Probability() <= levels[i-1].Probability() {
			t.Errorf("probability must increase from %s to %s", levels[i-1], levels[i])
		}
	}
}

func TestInvalidSpawnRatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for out-of-domain spawn rate")
		}
	}()
	_ = SpawnRate(99).Probability()
}

func TestParseSpawnRateRoundTrip(t *testing.T) {
	for _, r := range []SpawnRate{SpawnVeryLow, SpawnLow, SpawnMedium, SpawnHigh, SpawnVeryHigh} {
		parsed, err := ParseSpawnRate(r.String())
		if err != nil {
			t.Fatalf("ParseSpawnRate(%q): %v", r.String(), err)
		}
		if parsed != r {
			t.Errorf("expected %v, got %v", r, parsed)
		}
	}
	if _, err := ParseSpawnRate("extreme"); err == nil {
		t.Errorf("expected error for unknown spawn rate")
	}
}
