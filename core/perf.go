package core

import "math"

// tickWindow is how many recent ticks the rolling statistics cover.
const tickWindow = 60

// TickStats tracks how long simulation ticks take to compute, over a rolling
// window, for the host's performance readout.
type TickStats struct {
	count      int
	durations  []float64
	maxSeconds float64
}

// Observe records one tick's compute duration in seconds.
func (t *TickStats) Observe(seconds float64) {
	t.count++
	t.durations = append(t.durations, seconds)
	if len(t.durations) > tickWindow {
		t.durations = t.durations[1:]
	}
	t.maxSeconds = math.Max(t.maxSeconds, seconds)
}

// Count is the total number of ticks observed.
func (t *TickStats) Count() int { return t.count }

// AverageSeconds is the mean tick duration over the window.
func (t *TickStats) AverageSeconds() float64 {
	if len(t.durations) == 0 {
		return 0
	}
	var sum float64
	for _, d := range t.durations {
		sum += d
	}
	return sum / float64(len(t.durations))
}

// MaxSeconds is the slowest tick ever observed.
func (t *TickStats) MaxSeconds() float64 { return t.maxSeconds }

// TicksPerSecond derives the achievable tick rate from the window average.
func (t *TickStats) TicksPerSecond() float64 {
	avg := t.AverageSeconds()
	if avg <= 0 {
		return 0
	}
	return 1 / avg
}
