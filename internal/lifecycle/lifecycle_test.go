package lifecycle

import (
	"testing"
	"time"
)

func TestManual_DeliversResume(t *testing.T) {
	m := NewManual()
	m.Resume()

	select {
	case <-m.Resumed():
	case <-time.After(time.Second):
		t.Fatal("expected a resume event")
	}
}

func TestManual_CoalescesBursts(t *testing.T) {
	m := NewManual()
	m.Resume()
	m.Resume()
	m.Resume()

	<-m.Resumed()
	select {
	case <-m.Resumed():
		t.Fatal("burst should coalesce into one event")
	default:
	}
}

func TestClockMonitor_NoFalseResume(t *testing.T) {
	m := NewClockMonitor(10*time.Millisecond, 500*time.Millisecond)
	m.Start()
	defer m.Stop()

	select {
	case <-m.Resumed():
		t.Fatal("unexpected resume during normal ticking")
	case <-time.After(100 * time.Millisecond):
	}
}
