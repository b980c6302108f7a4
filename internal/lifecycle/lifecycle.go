package lifecycle

import (
	"context"
	"sync"
	"time"
)

// Notifier reports host suspend/resume transitions. Mobile and laptop hosts
// routinely kill sockets during sleep without a close frame, so the
// connection layer needs a resume signal to probe the channel proactively
// instead of waiting out its reconnect timer.
type Notifier interface {
	// Resumed returns a channel that receives a tick each time the host
	// comes back from a suspension.
	Resumed() <-chan struct{}
}

// ClockMonitor detects suspensions by watching for wall-clock jumps: a
// ticker that fires far later than scheduled means the process was not
// running in between. This works on any platform, unlike OS-specific
// sleep notifications.
type ClockMonitor struct {
	interval time.Duration
	gap      time.Duration
	resumed  chan struct{}

	once sync.Once
	stop context.CancelFunc
}

// NewClockMonitor creates a monitor that polls every interval and treats a
// delay beyond gap as a suspension. Zero values select 1s / 5s.
func NewClockMonitor(interval, gap time.Duration) *ClockMonitor {
	if interval <= 0 {
		interval = time.Second
	}
	if gap <= 0 {
		gap = 5 * time.Second
	}
	return &ClockMonitor{
		interval: interval,
		gap:      gap,
		resumed:  make(chan struct{}, 1),
	}
}

// Start begins polling. Safe to call once; Stop ends it.
func (m *ClockMonitor) Start() {
	m.once.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		m.stop = cancel
		go m.run(ctx)
	})
}

// Stop ends polling. The Resumed channel is not closed so late readers
// simply stop receiving.
func (m *ClockMonitor) Stop() {
	if m.stop != nil {
		m.stop()
	}
}

func (m *ClockMonitor) Resumed() <-chan struct{} {
	return m.resumed
}

func (m *ClockMonitor) run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if now.Sub(last) > m.interval+m.gap {
				select {
				case m.resumed <- struct{}{}:
				default:
				}
			}
			last = now
		}
	}
}

// Manual is a Notifier driven by explicit calls, for tests and for hosts
// that surface their own sleep notifications.
type Manual struct {
	ch chan struct{}
}

// NewManual creates an empty manual notifier.
func NewManual() *Manual {
	return &Manual{ch: make(chan struct{}, 1)}
}

// Resume signals a resume event. Coalesces if nobody is listening.
func (m *Manual) Resume() {
	select {
	case m.ch <- struct{}{}:
	default:
	}
}

func (m *Manual) Resumed() <-chan struct{} {
	return m.ch
}
