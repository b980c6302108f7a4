package session

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/google/uuid"

	"github.com/rkal/geostreak/internal/auth"
	"github.com/rkal/geostreak/internal/config"
	"github.com/rkal/geostreak/internal/conn"
	"github.com/rkal/geostreak/internal/lifecycle"
	"github.com/rkal/geostreak/internal/locale"
	"github.com/rkal/geostreak/internal/protocol"
	"github.com/rkal/geostreak/internal/router"
	"github.com/rkal/geostreak/internal/score"
	"github.com/rkal/geostreak/internal/screen"
	"github.com/rkal/geostreak/internal/screens/summary"
	sess "github.com/rkal/geostreak/internal/session"
	"github.com/rkal/geostreak/internal/store"
	"github.com/rkal/geostreak/internal/token"
	"github.com/rkal/geostreak/internal/ui/components"
	"github.com/rkal/geostreak/internal/ui/layout"
)

// languages the language shortcut cycles through.
var languages = []string{"en", "de", "fr", "es"}

// Deps are the shared services a game session needs.
type Deps struct {
	Config    config.Config
	Tokens    *token.Store
	Locale    *locale.Provider
	Auth      auth.Provider
	Events    store.EventRepo
	Lifecycle lifecycle.Notifier
}

// SessionScreen runs one quiz session: it owns the connection manager and
// the orchestrator, and translates between Bubble Tea messages and both.
type SessionScreen struct {
	deps Deps
	mode score.Mode

	mgr    *conn.Manager
	orch   *sess.Orchestrator
	cancel context.CancelFunc

	input       components.TextInput
	quitConfirm bool
	startedAt   time.Time
	done        bool
	errMsg      string
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.StreakProvider = (*SessionScreen)(nil)

// New creates a session screen. The connection is not dialed until Init.
func New(deps Deps, mode score.Mode) *SessionScreen {
	return &SessionScreen{
		deps:      deps,
		mode:      mode,
		input:     components.NewTextInput("Type your answer...", 60),
		startedAt: time.Now(),
	}
}

func (s *SessionScreen) Init() tea.Cmd {
	tok, err := s.deps.Tokens.Acquire(string(s.mode))
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}

	mode := s.mode
	deps := s.deps
	// The hello closure re-reads the locale so a reconnect after a language
	// switch handshakes with the current language.
	s.mgr = conn.NewManager(conn.Config{URL: deps.Config.ServerURL}, func() protocol.UserAccept {
		return protocol.UserAccept{
			Token:    tok.Token,
			GameMode: string(mode),
			Language: deps.Locale.Current(),
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mgr.Open(ctx)
	if deps.Lifecycle != nil {
		s.mgr.BindLifecycle(ctx, deps.Lifecycle)
	}
	if deps.Locale != nil {
		s.mgr.BindLocale(deps.Locale)
	}

	s.orch = sess.New(sess.Options{
		Mode:      s.mode,
		SessionID: uuid.New().String(),
		Sender:    s.mgr,
		Auth:      deps.Auth,
		Events:    deps.Events,
	})

	return tea.Batch(s.listen(), s.input.Init())
}

func (s *SessionScreen) Title() string {
	if s.mode == score.ModeChallenge {
		return "Challenge"
	}
	return "Training"
}

// Streak feeds the header bar.
func (s *SessionScreen) Streak() (int, int) {
	if s.orch == nil {
		return 0, 0
	}
	snap := s.orch.Snap()
	return snap.Score.Streak, snap.Score.Best
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	if s.orch == nil {
		return nil
	}
	if s.quitConfirm {
		return []layout.KeyHint{
			{Key: "Y", Description: "Leave"},
			{Key: "N", Description: "Keep playing"},
		}
	}
	switch s.orch.Snap().Phase {
	case sess.PhaseActive:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit"},
			{Key: "Tab", Description: "Skip"},
			{Key: "Ctrl+L", Description: "Language"},
			{Key: "Esc", Description: "Leave"},
		}
	case sess.PhaseLost:
		return []layout.KeyHint{
			{Key: "R", Description: "Play again"},
			{Key: "S", Description: "Summary"},
			{Key: "Esc", Description: "Leave"},
		}
	}
	return []layout.KeyHint{
		{Key: "Esc", Description: "Leave"},
	}
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case connEventMsg:
		return s.handleConnEvent(msg)

	case connClosedMsg:
		return s, nil

	case statusClearMsg:
		if s.orch != nil {
			s.orch.ClearStatus(msg.Epoch)
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	return s, nil
}

func (s *SessionScreen) handleConnEvent(msg connEventMsg) (screen.Screen, tea.Cmd) {
	before := s.orch.Snap().StatusEpoch
	s.orch.HandleEvent(msg.Event)
	snap := s.orch.Snap()

	cmds := []tea.Cmd{s.listen()}

	// A fresh correct/wrong acknowledgment reverts to neutral after a
	// short moment. Partial statuses persist, the orchestrator enforces
	// that on the clear itself.
	if snap.StatusEpoch != before && snap.Status != score.StatusNone {
		epoch := snap.StatusEpoch
		cmds = append(cmds, tea.Tick(sess.StatusClearDelay, func(time.Time) tea.Msg {
			return statusClearMsg{Epoch: epoch}
		}))
	}

	return s, tea.Batch(cmds...)
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" || s.orch == nil {
		return s, s.leave()
	}

	if s.quitConfirm {
		switch key {
		case "y", "Y":
			s.quitConfirm = false
			return s, s.leave()
		case "n", "N", "esc":
			s.quitConfirm = false
		}
		return s, nil
	}

	snap := s.orch.Snap()

	switch snap.Phase {
	case sess.PhaseDisconnected, sess.PhaseAuthDesync:
		// Terminal states: any key goes back.
		return s, s.leave()

	case sess.PhaseLost:
		switch key {
		case "r", "R", "enter":
			s.orch.Restart()
			s.input.Reset()
		case "s", "S":
			return s, s.pushSummary(snap)
		case "esc":
			return s, s.leave()
		}
		return s, nil
	}

	switch key {
	case "esc":
		s.quitConfirm = true
		return s, nil
	case "ctrl+l":
		s.cycleLanguage()
		return s, nil
	case "tab":
		s.orch.Skip()
		return s, nil
	case "enter":
		if v := s.input.Value(); v != "" && snap.Phase == sess.PhaseActive {
			s.orch.Submit(v)
			s.input.Reset()
		}
		return s, nil
	}

	// Everything else is typing.
	if snap.Phase == sess.PhaseActive {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		s.orch.InputChanged(s.input.Value())
		return s, cmd
	}

	return s, nil
}

// listen blocks on the next connection event.
func (s *SessionScreen) listen() tea.Cmd {
	mgr := s.mgr
	return func() tea.Msg {
		ev, ok := <-mgr.Events()
		if !ok {
			return connClosedMsg{}
		}
		return connEventMsg{Event: ev}
	}
}

func (s *SessionScreen) cycleLanguage() {
	if s.deps.Locale == nil {
		return
	}
	cur := s.deps.Locale.Current()
	next := languages[0]
	for i, l := range languages {
		if l == cur {
			next = languages[(i+1)%len(languages)]
			break
		}
	}
	s.deps.Locale.Set(next)
}

func (s *SessionScreen) pushSummary(snap sess.Snapshot) tea.Cmd {
	stats := summary.Stats{
		Mode:        string(s.mode),
		Answered:    snap.Answered,
		Correct:     snap.Correct,
		FinalStreak: snap.Score.Streak,
		BestStreak:  snap.Score.Best,
		Duration:    time.Since(s.startedAt),
	}
	if snap.Outcome != nil {
		stats.FinalStreak = snap.Outcome.FinalStreak
		stats.BestStreak = snap.Outcome.BestStreakEver
	}
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: summary.New(stats)}
	}
}

// leave finishes the journal, tears down the connection and pops back.
func (s *SessionScreen) leave() tea.Cmd {
	if !s.done {
		s.done = true
		if s.orch != nil {
			s.orch.Finish()
		}
		if s.mgr != nil {
			s.mgr.Close()
		}
		if s.cancel != nil {
			s.cancel()
		}
		// The token proves continuity of this session only; leaving it
		// behind would let a later run resume a dead session.
		if s.deps.Tokens != nil {
			_ = s.deps.Tokens.Clear()
		}
	}
	return func() tea.Msg { return router.PopScreenMsg{} }
}
