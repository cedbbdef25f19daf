package core

import (
	"math"

	"github.com/citygridlabs/intersection-simulator/model"
)

// Priority score calibration: the count contribution saturates so long
// queues cannot grow the score without bound, the wait contribution rewards
// age up to a cap, and a single emergency vehicle dominates any plausible
// ordinary score.
const (
	scorePerVehicle    = 2.0
	scoreCountCap      = 20.0
	scorePerWaitSecond = 0.5
	scoreWaitCap       = 15.0
	scorePerEmergency  = 25.0
)

// ApproachStats aggregates the waiting vehicles on one approach for a single
// analysis interval. It is rebuilt wholesale every sample, never patched
// across intervals.
type ApproachStats struct {
	VehicleCount   int     `json:"vehicles"`
	TotalWait      float64 `json:"total_wait"`
	MaxWait        float64 `json:"max_wait"`
	LongestWaiting float64 `json:"longest_waiting"`
	EmergencyCount int     `json:"emergencies"`
}

// Observe folds one waiting vehicle into the stats.
func (a *ApproachStats) Observe(wait float64, emergency bool) {
	a.VehicleCount++
	a.TotalWait += wait
	a.MaxWait = math.Max(a.MaxWait, wait)
	a.LongestWaiting = math.Max(a.LongestWaiting, wait)
	if emergency {
		a.EmergencyCount++
	}
}

// AverageWait is the mean wait across observed vehicles, zero when empty.
func (a ApproachStats) AverageWait() float64 {
	if a.VehicleCount == 0 {
		return 0
	}
	return a.TotalWait / float64(a.VehicleCount)
}

// PriorityScore converts the stats into the approach's congestion score.
func (a ApproachStats) PriorityScore() float64 {
	count := math.Min(float64(a.VehicleCount)*scorePerVehicle, scoreCountCap)
	wait := math.Min(a.LongestWaiting*scorePerWaitSecond, scoreWaitCap)
	return count + wait + float64(a.EmergencyCount)*scorePerEmergency
}

// CongestionAnalyzer samples the fleet on its own cadence, slower than the
// tick rate, and turns the waiting vehicles into per-approach statistics.
// Between samples it keeps serving the stats from the last sample; the
// arbitration policy is only re-run when a fresh sample lands.
type CongestionAnalyzer struct {
	interval    float64
	sinceSample float64
	stats       [model.NumDirections]ApproachStats
}

// NewCongestionAnalyzer constructs an analyzer with everything at zero; the
// first sample is taken one full interval after start.
func NewCongestionAnalyzer(settings AnalyzerSettings) *CongestionAnalyzer {
	return &CongestionAnalyzer{interval: settings.IntervalSeconds}
}

// Update advances the sampling clock by dt and, when an interval has
// elapsed, rebuilds the approach statistics from a fresh fleet sample. The
// sample function is only invoked when a sample is actually due. Returns
// true when new statistics were produced.
func (c *CongestionAnalyzer) Update(dt float64, sample func() []model.VehicleSample) bool {
	c.sinceSample += dt
	if c.sinceSample < c.interval {
		return false
	}
	c.sinceSample = 0

	c.stats = [model.NumDirections]ApproachStats{}
	for _, s := range sample() {
		if s.Passed || s.WaitTime <= 0 {
			continue
		}
		c.stats[s.Direction].Observe(s.WaitTime, s.Kind == model.KindEmergency)
	}
	return true
}

// DirectionStats returns the last sample's stats for one approach.
func (c *CongestionAnalyzer) DirectionStats(d model.Direction) ApproachStats {
	return c.stats[d]
}

// GroupScore sums the priority scores of a group's two approaches.
func (c *CongestionAnalyzer) GroupScore(g model.ApproachGroup) float64 {
	dirs := g.Directions()
	return c.stats[dirs[0]].PriorityScore() + c.stats[dirs[1]].PriorityScore()
}

// GroupCount sums the waiting-vehicle counts of a group's two approaches.
func (c *CongestionAnalyzer) GroupCount(g model.ApproachGroup) int {
	dirs := g.Directions()
	return c.stats[dirs[0]].VehicleCount + c.stats[dirs[1]].VehicleCount
}

// Emergency reports whether the last sample saw any emergency vehicle still
// waiting, and from which approach. With emergencies on several approaches
// the last one in enumeration order wins, which is deterministic.
func (c *CongestionAnalyzer) Emergency() (model.Direction, bool) {
	dir, found := model.North, false
	for _, d := range model.AllDirections() {
		if c.stats[d].EmergencyCount > 0 {
			dir, found = d, true
		}
	}
	return dir, found
}

// ApproachSummary is the per-approach view used by the presentation surface.
type ApproachSummary struct {
	Vehicles    int     `json:"vehicles"`
	AverageWait float64 `json:"avg_wait"`
	MaxWait     float64 `json:"max_wait"`
	Emergencies int     `json:"emergencies"`
	Priority    float64 `json:"priority"`
}

// Summary reports every approach keyed by direction name.
func (c *CongestionAnalyzer) Summary() map[string]ApproachSummary {
	out := make(map[string]ApproachSummary, model.NumDirections)
	for _, d := range model.AllDirections() {
		s := c.stats[d]
		out[d.String()] = ApproachSummary{
			Vehicles:    s.VehicleCount,
			AverageWait: s.AverageWait(),
			MaxWait:     s.MaxWait,
			Emergencies: s.EmergencyCount,
			Priority:    s.PriorityScore(),
		}
	}
	return out
}

// Reset clears all statistics and restarts the sampling clock.
func (c *CongestionAnalyzer) Reset() {
	c.sinceSample = 0
	c.stats = [model.NumDirections]ApproachStats{}
}
