package timectrl

import (
	"testing"
	"time"
)

func TestAcceleratedRunCompletesDuration(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, time.Second, Accelerated)

	var calls int
	var lastDt float64
	var lastTime time.Time
	tc.AddListener(func(simTime time.Time, dt float64) {
		calls++
		lastDt = dt
		lastTime = simTime
	})

	select {
	case <-tc.Start(5 * time.Second):
	case <-time.After(5 * time.Second):
		t.Fatal("accelerated run did not finish")
	}

	if calls != 5 {
		t.Errorf("expected 5 ticks, got %d", calls)
	}
	if lastDt != 1.0 {
		t.Errorf("expected dt 1.0, got %v", lastDt)
	}
	if want := start.Add(5 * time.Second); !lastTime.Equal(want) {
		t.Errorf("expected final sim time %v, got %v", want, lastTime)
	}
	if !tc.Now().Equal(start.Add(5 * time.Second)) {
		t.Errorf("controller clock must end at start+duration, got %v", tc.Now())
	}
}

func TestUnboundedRunStops(t *testing.T) {
	start := time.Now().UTC()
	tc := NewTimeController(start, 10*time.Millisecond, Accelerated)

	var calls int
	tc.AddListener(func(time.Time, float64) {
		calls++
		if calls == 3 {
			tc.Stop()
		}
	})

	select {
	case <-tc.Start(0):
	case <-time.After(5 * time.Second):
		t.Fatal("unbounded run did not honour Stop")
	}

	if calls < 3 {
		t.Errorf("expected at least 3 ticks before stop, got %d", calls)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	tc := NewTimeController(time.Now(), time.Second, Accelerated)
	tc.Stop()
	tc.Stop() // must not panic
}

func TestRealTimeTicksFollowWallClock(t *testing.T) {
	start := time.Now().UTC()
	tc := NewTimeController(start, 5*time.Millisecond, RealTime)

	var calls int
	tc.AddListener(func(time.Time, float64) { calls++ })

	select {
	case <-tc.Start(25 * time.Millisecond):
	case <-time.After(5 * time.Second):
		t.Fatal("real-time run did not finish")
	}

	if calls != 5 {
		t.Errorf("expected 5 ticks of 5ms over 25ms, got %d", calls)
	}
}

func TestListenersRunInRegistrationOrder(t *testing.T) {
	tc := NewTimeController(time.Now(), time.Second, Accelerated)

	var order []int
	tc.AddListener(func(time.Time, float64) { order = append(order, 1) })
	tc.AddListener(func(time.Time, float64) { order = append(order, 2) })

	<-tc.Start(time.Second)

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("expected listeners in registration order, got %v", order)
	}
}
