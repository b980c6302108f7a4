package session

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/rkal/geostreak/internal/conn"
	"github.com/rkal/geostreak/internal/locale"
	"github.com/rkal/geostreak/internal/protocol"
	"github.com/rkal/geostreak/internal/router"
	"github.com/rkal/geostreak/internal/score"
	sess "github.com/rkal/geostreak/internal/session"
)

type recordingSender struct {
	sent []protocol.ClientMessage
}

func (r *recordingSender) Send(msg protocol.ClientMessage) error {
	r.sent = append(r.sent, msg)
	return nil
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// newTestScreen builds a session screen wired to a recording sender instead
// of a live connection. The connection manager stays nil; listen commands
// are returned but never executed by these tests.
func newTestScreen(mode score.Mode) (*SessionScreen, *recordingSender) {
	sender := &recordingSender{}
	s := New(Deps{Locale: locale.NewProvider("en")}, mode)
	s.orch = sess.New(sess.Options{
		Mode:      mode,
		SessionID: "test-session",
		Sender:    sender,
	})
	return s, sender
}

// activate walks the screen into active play with one question on deck.
func activate(t *testing.T, s *SessionScreen) {
	t.Helper()
	s.orch.HandleEvent(conn.StateEvent{State: conn.StateAccepted})
	s.orch.HandleEvent(conn.MessageEvent{Message: protocol.ServerMessage{
		Type:         protocol.TypeNewQuestions,
		NewQuestions: &protocol.NewQuestionsPayload{Questions: map[int]string{7: "Capital of France?"}},
	}})
	if s.orch.Snap().Phase != sess.PhaseActive {
		t.Fatalf("phase = %v, want active", s.orch.Snap().Phase)
	}
}

// lose drives a challenge session into the lost phase with a wrong verdict.
func lose(t *testing.T, s *SessionScreen) {
	t.Helper()
	s.orch.HandleEvent(conn.MessageEvent{Message: protocol.ServerMessage{
		Type: protocol.TypeAnswerResult,
		AnswerResult: &protocol.AnswerResultPayload{
			IsCorrect:     false,
			CurrentStreak: 0,
			BestStreak:    4,
			CorrectAnswer: []protocol.CorrectAnswer{{Name: "Paris", Code: "FR"}},
		},
	}})
	if s.orch.Snap().Phase != sess.PhaseLost {
		t.Fatalf("phase = %v, want lost", s.orch.Snap().Phase)
	}
}

func runCmd(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

func TestTitlePerMode(t *testing.T) {
	s, _ := newTestScreen(score.ModeChallenge)
	if s.Title() != "Challenge" {
		t.Errorf("title = %q, want Challenge", s.Title())
	}
	s, _ = newTestScreen(score.ModeTraining)
	if s.Title() != "Training" {
		t.Errorf("title = %q, want Training", s.Title())
	}
}

func TestEscOpensQuitConfirm(t *testing.T) {
	s, _ := newTestScreen(score.ModeChallenge)
	activate(t, s)

	updated, _ := s.Update(specialKey(tea.KeyEscape))
	scr := updated.(*SessionScreen)
	if !scr.quitConfirm {
		t.Fatal("esc should open the quit confirmation")
	}

	updated, _ = scr.Update(keyPress('n'))
	scr = updated.(*SessionScreen)
	if scr.quitConfirm {
		t.Error("n should dismiss the quit confirmation")
	}
	if scr.orch.Snap().Phase != sess.PhaseActive {
		t.Error("declining the quit should keep the session active")
	}
}

func TestQuitConfirmYesPops(t *testing.T) {
	s, _ := newTestScreen(score.ModeChallenge)
	activate(t, s)

	updated, _ := s.Update(specialKey(tea.KeyEscape))
	scr := updated.(*SessionScreen)
	updated, cmd := scr.Update(keyPress('y'))
	scr = updated.(*SessionScreen)

	if _, ok := runCmd(cmd).(router.PopScreenMsg); !ok {
		t.Error("confirming the quit should pop the screen")
	}
	if !scr.done {
		t.Error("leaving should mark the screen done")
	}
}

func TestEnterSubmitsInputValue(t *testing.T) {
	s, sender := newTestScreen(score.ModeChallenge)
	activate(t, s)

	s.input.Model.SetValue("Paris")
	updated, _ := s.Update(specialKey(tea.KeyEnter))
	scr := updated.(*SessionScreen)

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	sub, ok := sender.sent[0].(protocol.AnswerSubmission)
	if !ok {
		t.Fatalf("sent %T, want AnswerSubmission", sender.sent[0])
	}
	if sub.ID != 7 || sub.Answer != "Paris" {
		t.Errorf("submission = %+v, want id 7 answer Paris", sub)
	}
	if scr.input.Value() != "" {
		t.Error("submitting should clear the input")
	}
}

func TestEnterWithEmptyInputSendsNothing(t *testing.T) {
	s, sender := newTestScreen(score.ModeChallenge)
	activate(t, s)

	s.Update(specialKey(tea.KeyEnter))
	if len(sender.sent) != 0 {
		t.Errorf("sent %d messages, want 0", len(sender.sent))
	}
}

func TestTabSkipsCurrentQuestion(t *testing.T) {
	s, sender := newTestScreen(score.ModeChallenge)
	activate(t, s)

	s.Update(specialKey(tea.KeyTab))
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	skip, ok := sender.sent[0].(protocol.QuestionSkipped)
	if !ok {
		t.Fatalf("sent %T, want QuestionSkipped", sender.sent[0])
	}
	if skip.ID != 7 || skip.Answer != "" {
		t.Errorf("skip = %+v, want id 7 empty answer", skip)
	}
}

func TestCtrlLCyclesLanguage(t *testing.T) {
	s, _ := newTestScreen(score.ModeChallenge)
	activate(t, s)

	s.Update(tea.KeyPressMsg{Code: 'l', Mod: tea.ModCtrl})
	if got := s.deps.Locale.Current(); got != "de" {
		t.Errorf("language = %q, want de", got)
	}
	s.Update(tea.KeyPressMsg{Code: 'l', Mod: tea.ModCtrl})
	if got := s.deps.Locale.Current(); got != "fr" {
		t.Errorf("language = %q, want fr", got)
	}
}

func TestLostRestartResumesPlay(t *testing.T) {
	s, _ := newTestScreen(score.ModeChallenge)
	activate(t, s)
	s.orch.HandleEvent(conn.MessageEvent{Message: protocol.ServerMessage{
		Type:         protocol.TypeNewQuestions,
		NewQuestions: &protocol.NewQuestionsPayload{Questions: map[int]string{8: "Capital of Spain?"}},
	}})
	lose(t, s)

	updated, _ := s.Update(keyPress('r'))
	scr := updated.(*SessionScreen)
	if scr.orch.Snap().Phase != sess.PhaseActive {
		t.Error("r should restart into active play")
	}
}

func TestLostSummaryPushesScreen(t *testing.T) {
	s, _ := newTestScreen(score.ModeChallenge)
	activate(t, s)
	lose(t, s)

	_, cmd := s.Update(keyPress('s'))
	msg, ok := runCmd(cmd).(router.PushScreenMsg)
	if !ok {
		t.Fatal("s should push the summary screen")
	}
	if msg.Screen == nil {
		t.Fatal("pushed screen is nil")
	}
}

func TestLostEscLeaves(t *testing.T) {
	s, _ := newTestScreen(score.ModeChallenge)
	activate(t, s)
	lose(t, s)

	_, cmd := s.Update(specialKey(tea.KeyEscape))
	if _, ok := runCmd(cmd).(router.PopScreenMsg); !ok {
		t.Error("esc on the lost screen should pop")
	}
}

func TestTerminalPhaseAnyKeyLeaves(t *testing.T) {
	s, _ := newTestScreen(score.ModeChallenge)
	activate(t, s)
	s.orch.HandleEvent(conn.StateEvent{State: conn.StateDisconnected, Attempt: 10})

	_, cmd := s.Update(keyPress('x'))
	if _, ok := runCmd(cmd).(router.PopScreenMsg); !ok {
		t.Error("any key on a terminal phase should pop")
	}
}

func TestStatusClearForwardsEpoch(t *testing.T) {
	s, _ := newTestScreen(score.ModeTraining)
	activate(t, s)
	s.orch.HandleEvent(conn.MessageEvent{Message: protocol.ServerMessage{
		Type:         protocol.TypeAnswerResult,
		AnswerResult: &protocol.AnswerResultPayload{IsCorrect: true, CurrentStreak: 1, BestStreak: 1},
	}})
	snap := s.orch.Snap()
	if snap.Status != score.StatusCorrect {
		t.Fatalf("status = %v, want correct", snap.Status)
	}

	s.Update(statusClearMsg{Epoch: snap.StatusEpoch})
	if got := s.orch.Snap().Status; got != score.StatusNone {
		t.Errorf("status after clear = %v, want none", got)
	}
}

func TestKeyHintsFollowPhase(t *testing.T) {
	s, _ := newTestScreen(score.ModeChallenge)
	activate(t, s)
	if len(s.KeyHints()) == 0 {
		t.Error("active phase should offer key hints")
	}

	lose(t, s)
	hints := s.KeyHints()
	if len(hints) == 0 || hints[0].Key != "R" {
		t.Errorf("lost hints = %+v, want restart first", hints)
	}
}

func TestStreakFeedsHeader(t *testing.T) {
	s, _ := newTestScreen(score.ModeChallenge)
	activate(t, s)
	s.orch.HandleEvent(conn.MessageEvent{Message: protocol.ServerMessage{
		Type:         protocol.TypeAnswerResult,
		AnswerResult: &protocol.AnswerResultPayload{IsCorrect: true, CurrentStreak: 3, BestStreak: 5},
	}})

	cur, best := s.Streak()
	if cur != 3 || best != 5 {
		t.Errorf("streak = (%d, %d), want (3, 5)", cur, best)
	}
}

func TestViewCoversPhases(t *testing.T) {
	s, _ := newTestScreen(score.ModeChallenge)
	if s.View(80, 24) == "" {
		t.Error("connecting view is empty")
	}

	activate(t, s)
	if s.View(80, 24) == "" {
		t.Error("active view is empty")
	}

	lose(t, s)
	if s.View(80, 24) == "" {
		t.Error("lost view is empty")
	}
}
