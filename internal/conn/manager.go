package conn

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rkal/geostreak/internal/lifecycle"
	"github.com/rkal/geostreak/internal/locale"
	"github.com/rkal/geostreak/internal/protocol"
)

// State is the connection lifecycle phase. Accepted is required before any
// gameplay message is meaningful.
type State int

const (
	StateConnecting State = iota
	StateAwaitingAcceptance
	StateAccepted
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAwaitingAcceptance:
		return "awaiting acceptance"
	case StateAccepted:
		return "accepted"
	case StateDisconnected:
		return "disconnected"
	}
	return "unknown"
}

// ErrNotConnected reports a send attempted without a live channel.
var ErrNotConnected = errors.New("not connected")

// Event is a state change or an inbound message. Both flow through one
// channel so the session layer observes them in arrival order.
type Event interface {
	connEvent()
}

// StateEvent reports a lifecycle transition. Attempt counts consecutive
// failed reconnects; it is only meaningful while reconnecting and in the
// terminal Disconnected event.
type StateEvent struct {
	State   State
	Attempt int
}

// MessageEvent carries one decoded server message.
type MessageEvent struct {
	Message protocol.ServerMessage
}

func (StateEvent) connEvent()   {}
func (MessageEvent) connEvent() {}

// Config tunes the manager. Zero values select the defaults.
type Config struct {
	URL string

	// MaxAttempts is the reconnect budget for consecutive failures.
	MaxAttempts int

	// BaseBackoff and MaxBackoff bound the exponential retry delay.
	BaseBackoff time.Duration
	MaxBackoff  time.Duration

	HandshakeTimeout time.Duration
}

const (
	defaultMaxAttempts      = 10
	defaultBaseBackoff      = 500 * time.Millisecond
	defaultMaxBackoff       = 5 * time.Second
	defaultHandshakeTimeout = 10 * time.Second
	wakeProbeTimeout        = 2 * time.Second
)

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = defaultBaseBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = defaultMaxBackoff
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = defaultHandshakeTimeout
	}
	return c
}

// Manager owns the websocket for one session: dialing, the user_accept
// handshake on every open, bounded reconnection and the wake probe. It is
// the only component that touches the raw socket.
type Manager struct {
	cfg   Config
	hello func() protocol.UserAccept

	events chan Event
	wake   chan struct{}

	mu      sync.Mutex
	ws      *websocket.Conn
	writeMu sync.Mutex

	cancel  context.CancelFunc
	started bool
}

// NewManager creates a manager. hello builds the handshake payload and is
// re-evaluated on every (re)open, so token, mode and language are always
// current when the channel comes back.
func NewManager(cfg Config, hello func() protocol.UserAccept) *Manager {
	return &Manager{
		cfg:    cfg.withDefaults(),
		hello:  hello,
		events: make(chan Event, 32),
		wake:   make(chan struct{}, 1),
	}
}

// Open starts the connection loop. The Events channel closes when the loop
// ends, either through Close or after the reconnect budget is exhausted.
func (m *Manager) Open(ctx context.Context) {
	if m.started {
		return
	}
	m.started = true
	ctx, m.cancel = context.WithCancel(ctx)
	go m.run(ctx)
}

// Events returns the ordered stream of state changes and server messages.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// Send writes one client message on the live channel.
func (m *Manager) Send(msg protocol.ClientMessage) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}

	m.mu.Lock()
	ws := m.ws
	m.mu.Unlock()
	if ws == nil {
		return ErrNotConnected
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	return ws.WriteMessage(websocket.TextMessage, data)
}

// ChangeLanguage forwards a language switch on the live channel. While
// disconnected the switch is not lost: the next handshake carries the new
// language via the hello snapshot.
func (m *Manager) ChangeLanguage(lang string) {
	_ = m.Send(protocol.UserChangeLanguage{Language: lang})
}

// Wake probes the channel after a host resume. Sleeping devices drop
// sockets without a close frame, so the read loop may be blocked on a dead
// connection; a failed ping forces it out and triggers an immediate redial
// instead of waiting for the passive timer.
func (m *Manager) Wake() {
	select {
	case m.wake <- struct{}{}:
	default:
	}

	m.mu.Lock()
	ws := m.ws
	m.mu.Unlock()
	if ws == nil {
		return
	}
	deadline := time.Now().Add(wakeProbeTimeout)
	if err := ws.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
		_ = ws.Close()
	}
}

// BindLifecycle consumes resume notifications for the wake probe.
func (m *Manager) BindLifecycle(ctx context.Context, n lifecycle.Notifier) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-n.Resumed():
				m.Wake()
			}
		}
	}()
}

// BindLocale forwards language changes as they happen.
func (m *Manager) BindLocale(p *locale.Provider) {
	p.Subscribe(m.ChangeLanguage)
}

// Close tears the connection down and ends the loop.
func (m *Manager) Close() {
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Lock()
	ws := m.ws
	m.mu.Unlock()
	if ws != nil {
		_ = ws.Close()
	}
}

func (m *Manager) run(ctx context.Context) {
	defer close(m.events)

	dialer := &websocket.Dialer{HandshakeTimeout: m.cfg.HandshakeTimeout}
	attempt := 0

	for {
		if ctx.Err() != nil {
			return
		}

		m.emit(ctx, StateEvent{State: StateConnecting, Attempt: attempt})
		ws, resp, err := dialer.DialContext(ctx, m.cfg.URL, nil)
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		if err != nil {
			attempt++
			if attempt >= m.cfg.MaxAttempts {
				m.emit(ctx, StateEvent{State: StateDisconnected, Attempt: attempt})
				return
			}
			m.sleep(ctx, m.backoff(attempt))
			continue
		}

		m.setConn(ws)
		m.emit(ctx, StateEvent{State: StateAwaitingAcceptance})

		accepted := false
		if err := m.Send(m.hello()); err == nil {
			accepted = m.readLoop(ctx, ws)
		}

		m.setConn(nil)
		_ = ws.Close()

		if ctx.Err() != nil {
			return
		}

		if accepted {
			// A session that reached acceptance gets a fresh budget.
			attempt = 0
		}
		attempt++
		if attempt >= m.cfg.MaxAttempts {
			m.emit(ctx, StateEvent{State: StateDisconnected, Attempt: attempt})
			return
		}
		m.sleep(ctx, m.backoff(attempt))
	}
}

// readLoop forwards inbound messages until the socket dies. Reports whether
// the server accepted the handshake during this connection.
func (m *Manager) readLoop(ctx context.Context, ws *websocket.Conn) bool {
	accepted := false
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return accepted
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			// Unknown or malformed frames are dropped, never fatal.
			continue
		}

		if msg.Type == protocol.TypeUserAccept && !accepted {
			accepted = true
			m.emit(ctx, StateEvent{State: StateAccepted})
		}
		m.emit(ctx, MessageEvent{Message: msg})
	}
}

func (m *Manager) setConn(ws *websocket.Conn) {
	m.mu.Lock()
	m.ws = ws
	m.mu.Unlock()
}

func (m *Manager) emit(ctx context.Context, ev Event) {
	select {
	case m.events <- ev:
	case <-ctx.Done():
	}
}

func (m *Manager) backoff(attempt int) time.Duration {
	d := m.cfg.BaseBackoff << (attempt - 1)
	if d > m.cfg.MaxBackoff || d <= 0 {
		d = m.cfg.MaxBackoff
	}
	return d
}

// sleep waits out the backoff, cut short by a wake probe or shutdown.
func (m *Manager) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-m.wake:
	case <-ctx.Done():
	}
}
