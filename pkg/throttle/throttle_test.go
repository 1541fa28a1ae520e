package throttle

import (
	"testing"
	"time"
)

func TestBurstAllowsOne(t *testing.T) {
	l := NewLimiter(time.Hour)
	allowed := 0
	for i := 0; i < 10; i++ {
		if l.Allow() {
			allowed++
		}
	}
	if allowed != 1 {
		t.Errorf("burst allowed %v sends, want 1", allowed)
	}
}

func TestAllowsAfterInterval(t *testing.T) {
	l := NewLimiter(10 * time.Millisecond)
	if !l.Allow() {
		t.Fatal("first call should pass")
	}
	if l.Allow() {
		t.Fatal("second immediate call should be denied")
	}
	time.Sleep(15 * time.Millisecond)
	if !l.Allow() {
		t.Error("call after the interval should pass")
	}
}

func TestCeilingOverWindow(t *testing.T) {
	const interval = 20 * time.Millisecond
	l := NewLimiter(interval)
	start := time.Now()
	allowed := 0
	for time.Since(start) < 90*time.Millisecond {
		if l.Allow() {
			allowed++
		}
		time.Sleep(time.Millisecond)
	}
	// ceil(duration / interval) is the hard ceiling
	if allowed > 5 {
		t.Errorf("allowed %v sends in ~90ms with %v interval", allowed, interval)
	}
	if allowed == 0 {
		t.Error("nothing was allowed at all")
	}
}

func TestSetInterval(t *testing.T) {
	l := NewLimiter(time.Hour)
	l.Allow()
	l.SetInterval(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	if !l.Allow() {
		t.Error("shrunk interval should open the gate")
	}
	if l.Interval() != time.Millisecond {
		t.Errorf("interval = %v", l.Interval())
	}
}
