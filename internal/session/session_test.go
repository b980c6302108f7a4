package session

import (
	"testing"
	"time"

	"github.com/rkal/geostreak/internal/conn"
	"github.com/rkal/geostreak/internal/protocol"
	"github.com/rkal/geostreak/internal/score"
)

// fakeSender records every outbound message.
type fakeSender struct {
	sent []protocol.ClientMessage
}

func (f *fakeSender) Send(msg protocol.ClientMessage) error {
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) count(match func(protocol.ClientMessage) bool) int {
	n := 0
	for _, m := range f.sent {
		if match(m) {
			n++
		}
	}
	return n
}

func (f *fakeSender) prefetches() int {
	return f.count(func(m protocol.ClientMessage) bool {
		_, ok := m.(protocol.RequestQuestions)
		return ok
	})
}

func (f *fakeSender) skips() int {
	return f.count(func(m protocol.ClientMessage) bool {
		_, ok := m.(protocol.QuestionSkipped)
		return ok
	})
}

// fakeAuth reports a fixed local credential and counts redirects.
type fakeAuth struct {
	authenticated bool
	redirects     int
}

func (f *fakeAuth) IsAuthenticated() bool { return f.authenticated }
func (f *fakeAuth) RedirectToLogin()      { f.redirects++ }

type fixture struct {
	orch   *Orchestrator
	sender *fakeSender
	auth   *fakeAuth
	clock  time.Time
}

func newFixture(mode score.Mode) *fixture {
	f := &fixture{
		sender: &fakeSender{},
		auth:   &fakeAuth{authenticated: true},
		clock:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.orch = New(Options{
		Mode:      mode,
		SessionID: "test-session",
		Sender:    f.sender,
		Auth:      f.auth,
		Now:       func() time.Time { return f.clock },
	})
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func (f *fixture) accept() {
	f.orch.HandleEvent(conn.StateEvent{State: conn.StateAccepted})
	f.orch.HandleEvent(conn.MessageEvent{Message: protocol.ServerMessage{
		Type:   protocol.TypeUserAccept,
		Accept: &protocol.AcceptPayload{IsUserAuthenticated: true},
	}})
}

func (f *fixture) ingest(questions map[int]string) {
	f.orch.HandleEvent(conn.MessageEvent{Message: protocol.ServerMessage{
		Type:         protocol.TypeNewQuestions,
		NewQuestions: &protocol.NewQuestionsPayload{Questions: questions},
	}})
}

func (f *fixture) result(r protocol.AnswerResultPayload) {
	f.orch.HandleEvent(conn.MessageEvent{Message: protocol.ServerMessage{
		Type:         protocol.TypeAnswerResult,
		AnswerResult: &r,
	}})
}

func TestOrchestrator_PhasesToActive(t *testing.T) {
	f := newFixture(score.ModeTraining)

	if got := f.orch.Snap().Phase; got != PhaseConnecting {
		t.Fatalf("initial phase = %v", got)
	}
	f.orch.HandleEvent(conn.StateEvent{State: conn.StateAwaitingAcceptance})
	f.accept()
	if got := f.orch.Snap().Phase; got != PhaseLoading {
		t.Fatalf("phase after accept = %v, want loading", got)
	}
	f.ingest(map[int]string{1: "FR"})
	if got := f.orch.Snap().Phase; got != PhaseActive {
		t.Fatalf("phase after first questions = %v, want active", got)
	}
}

func TestOrchestrator_ActionsNoOpBeforeAcceptance(t *testing.T) {
	f := newFixture(score.ModeTraining)

	f.orch.Submit("paris")
	f.orch.Skip()
	f.orch.Restart()
	if len(f.sender.sent) != 0 {
		t.Errorf("sent %d messages before acceptance, want 0", len(f.sender.sent))
	}

	// Language changes are the exception: always forwarded.
	f.orch.ChangeLanguage("fr")
	if len(f.sender.sent) != 1 {
		t.Fatalf("sent = %v, want just the language change", f.sender.sent)
	}
	if _, ok := f.sender.sent[0].(protocol.UserChangeLanguage); !ok {
		t.Errorf("sent %T, want UserChangeLanguage", f.sender.sent[0])
	}
}

func TestOrchestrator_CorrectAnswerAdvancesAndPrefetches(t *testing.T) {
	f := newFixture(score.ModeTraining)
	f.accept()
	f.ingest(map[int]string{1: "Q1", 2: "Q2", 3: "Q3"})

	f.orch.Submit("answer one")
	f.result(protocol.AnswerResultPayload{IsCorrect: true, CurrentStreak: 1, BestStreak: 1})

	cur, ok := f.orch.Current()
	if !ok || cur.Prompt != "Q2" {
		t.Errorf("current = %+v, want Q2", cur)
	}
	// Remaining after advance is 1 <= 2, so exactly one prefetch fired.
	if got := f.sender.prefetches(); got != 1 {
		t.Errorf("prefetch requests = %d, want 1", got)
	}
	if got := f.orch.Snap().Score.Streak; got != 1 {
		t.Errorf("streak = %d, want 1", got)
	}
	if got := f.orch.Snap().Status; got != score.StatusCorrect {
		t.Errorf("status = %v, want correct", got)
	}
}

func TestOrchestrator_PrefetchFiresOnEveryQualifyingReply(t *testing.T) {
	f := newFixture(score.ModeTraining)
	f.accept()
	f.ingest(map[int]string{1: "Q1", 2: "Q2", 3: "Q3", 4: "Q4", 5: "Q5", 6: "Q6"})

	replies := 0
	for i := 0; i < 4; i++ {
		f.orch.Submit("x")
		f.result(protocol.AnswerResultPayload{IsCorrect: true, CurrentStreak: i + 1})
		replies++
	}

	// Remaining after each advance: 4, 3, 2, 1 — only the last two qualify.
	if got := f.sender.prefetches(); got != 2 {
		t.Errorf("prefetch requests = %d, want 2 after %d replies", got, replies)
	}

	// Refill and drain again: the trigger must keep firing.
	f.ingest(map[int]string{7: "Q7", 8: "Q8"})
	f.orch.Submit("x")
	f.result(protocol.AnswerResultPayload{IsCorrect: true, CurrentStreak: 5})
	if got := f.sender.prefetches(); got != 3 {
		t.Errorf("prefetch requests = %d, want 3 after refill", got)
	}
}

func TestOrchestrator_PartialNeverAdvances(t *testing.T) {
	f := newFixture(score.ModeChallenge)
	f.accept()
	f.ingest(map[int]string{1: "name all capitals", 2: "Q2"})

	f.orch.Submit("pretoria")
	f.result(protocol.AnswerResultPayload{IsCorrect: true, RemainingToGuess: 2, CurrentStreak: 0})

	cur, _ := f.orch.Current()
	if cur.ID != 1 {
		t.Errorf("current id = %d, want 1 (held)", cur.ID)
	}
	if got := f.orch.Snap().Status; got != score.StatusPartial {
		t.Errorf("status = %v, want partial", got)
	}

	// Completing the last sub-answer advances.
	f.orch.Submit("cape town")
	f.result(protocol.AnswerResultPayload{IsCorrect: true, RemainingToGuess: 0, CurrentStreak: 1})
	cur, _ = f.orch.Current()
	if cur.ID != 2 {
		t.Errorf("current id = %d, want 2", cur.ID)
	}
}

func TestOrchestrator_TrainingNeverLoses(t *testing.T) {
	f := newFixture(score.ModeTraining)
	f.accept()
	f.ingest(map[int]string{1: "Q1", 2: "Q2", 3: "Q3", 4: "Q4"})

	f.orch.Submit("wrong")
	f.result(protocol.AnswerResultPayload{
		IsCorrect:     false,
		CurrentStreak: 0,
		BestStreak:    3,
		CorrectAnswer: []protocol.CorrectAnswer{{Name: "Paris", Code: "FR"}},
	})

	snap := f.orch.Snap()
	if snap.Outcome != nil {
		t.Fatal("training mode must never lose")
	}
	if snap.Phase != PhaseActive {
		t.Errorf("phase = %v, want active", snap.Phase)
	}
	cur, _ := f.orch.Current()
	if cur.ID != 2 {
		t.Errorf("current id = %d, want 2 (moved on)", cur.ID)
	}
	if len(snap.CorrectAnswers) != 1 || snap.CorrectAnswers[0].Name != "Paris" {
		t.Errorf("banner = %v", snap.CorrectAnswers)
	}
}

func TestOrchestrator_ChallengeLosesOnWrong(t *testing.T) {
	for _, remaining := range []int{0, 2} {
		f := newFixture(score.ModeChallenge)
		f.accept()
		f.ingest(map[int]string{1: "Q1", 2: "Q2"})

		f.orch.Submit("wrong")
		f.result(protocol.AnswerResultPayload{
			IsCorrect:        false,
			RemainingToGuess: remaining,
			CurrentStreak:    0,
			BestStreak:       7,
		})

		snap := f.orch.Snap()
		if snap.Phase != PhaseLost || snap.Outcome == nil {
			t.Fatalf("remaining=%d: phase = %v, outcome = %v", remaining, snap.Phase, snap.Outcome)
		}
		if snap.Outcome.BestStreakEver != 7 {
			t.Errorf("best streak = %d, want 7", snap.Outcome.BestStreakEver)
		}
		cur, _ := f.orch.Current()
		if cur.ID != 1 {
			t.Errorf("current id = %d, want 1 (not advanced)", cur.ID)
		}
	}
}

func TestOrchestrator_RestartReusesLiveSession(t *testing.T) {
	f := newFixture(score.ModeChallenge)
	f.accept()
	f.ingest(map[int]string{1: "Q1", 2: "Q2", 3: "Q3"})

	f.orch.Submit("wrong")
	f.result(protocol.AnswerResultPayload{IsCorrect: false, BestStreak: 4})
	if f.orch.Snap().Phase != PhaseLost {
		t.Fatal("expected lost phase")
	}

	before := len(f.sender.sent)
	f.orch.Restart()

	snap := f.orch.Snap()
	if snap.Phase != PhaseActive || snap.Outcome != nil {
		t.Errorf("after restart: phase = %v, outcome = %v", snap.Phase, snap.Outcome)
	}
	cur, _ := f.orch.Current()
	if cur.ID != 2 {
		t.Errorf("current id = %d, want 2", cur.ID)
	}
	// No reconnect, no new handshake: restart is purely local plus the
	// queue advance.
	if len(f.sender.sent) != before {
		t.Errorf("restart sent %d extra messages", len(f.sender.sent)-before)
	}
}

func TestOrchestrator_SkipCooldown(t *testing.T) {
	f := newFixture(score.ModeTraining)
	f.accept()
	f.ingest(map[int]string{1: "Q1", 2: "Q2"})

	f.orch.Skip()
	f.advance(100 * time.Millisecond)
	f.orch.Skip() // double tap, dropped
	if got := f.sender.skips(); got != 1 {
		t.Fatalf("skips on the wire = %d, want 1", got)
	}

	f.advance(SkipCooldown)
	f.orch.Skip()
	if got := f.sender.skips(); got != 2 {
		t.Errorf("skips after cool-down = %d, want 2", got)
	}
}

func TestOrchestrator_SkipScoresAsWrong(t *testing.T) {
	f := newFixture(score.ModeTraining)
	f.accept()
	f.ingest(map[int]string{5: "Q5", 6: "Q6", 7: "Q7"})

	f.orch.Skip()
	sent := f.sender.sent[len(f.sender.sent)-1]
	skip, ok := sent.(protocol.QuestionSkipped)
	if !ok {
		t.Fatalf("last message = %T, want QuestionSkipped", sent)
	}
	if skip.ID != 5 || skip.Answer != "" {
		t.Errorf("skip = %+v, want id 5 with empty answer", skip)
	}
}

func TestOrchestrator_StaleReplyDoesNotRewind(t *testing.T) {
	f := newFixture(score.ModeTraining)
	f.accept()
	f.ingest(map[int]string{1: "Q1", 2: "Q2", 3: "Q3", 4: "Q4"})

	f.orch.Skip()
	f.result(protocol.AnswerResultPayload{IsCorrect: false, CurrentStreak: 0})
	cur, _ := f.orch.Current()
	if cur.ID != 2 {
		t.Fatalf("current id = %d, want 2", cur.ID)
	}

	// A late duplicate reply for the skipped question: score updates,
	// queue moves forward (training) but never backwards.
	f.result(protocol.AnswerResultPayload{IsCorrect: false, CurrentStreak: 0})
	cur, _ = f.orch.Current()
	if cur.ID < 2 {
		t.Errorf("queue rewound to id %d", cur.ID)
	}
}

func TestOrchestrator_AuthDesyncRedirectsOnce(t *testing.T) {
	f := newFixture(score.ModeChallenge)
	f.orch.HandleEvent(conn.StateEvent{State: conn.StateAccepted})

	deny := conn.MessageEvent{Message: protocol.ServerMessage{
		Type:   protocol.TypeUserAccept,
		Accept: &protocol.AcceptPayload{IsUserAuthenticated: false},
	}}
	f.orch.HandleEvent(deny)
	f.orch.HandleEvent(deny) // duplicate ack must not re-fire

	if f.auth.redirects != 1 {
		t.Errorf("redirects = %d, want exactly 1", f.auth.redirects)
	}
	if got := f.orch.Snap().Phase; got != PhaseAuthDesync {
		t.Errorf("phase = %v, want auth desync", got)
	}
}

func TestOrchestrator_AnonymousUserIsNotDesync(t *testing.T) {
	f := newFixture(score.ModeTraining)
	f.auth.authenticated = false
	f.orch.HandleEvent(conn.StateEvent{State: conn.StateAccepted})
	f.orch.HandleEvent(conn.MessageEvent{Message: protocol.ServerMessage{
		Type:   protocol.TypeUserAccept,
		Accept: &protocol.AcceptPayload{IsUserAuthenticated: false},
	}})

	if f.auth.redirects != 0 {
		t.Errorf("redirects = %d, want 0 for an anonymous user", f.auth.redirects)
	}
	if got := f.orch.Snap().Phase; got != PhaseLoading {
		t.Errorf("phase = %v, want loading", got)
	}
}

func TestOrchestrator_TerminalDisconnect(t *testing.T) {
	f := newFixture(score.ModeTraining)
	f.orch.HandleEvent(conn.StateEvent{State: conn.StateDisconnected, Attempt: 10})

	snap := f.orch.Snap()
	if snap.Phase != PhaseDisconnected {
		t.Fatalf("phase = %v, want disconnected", snap.Phase)
	}
	if snap.ReconnectAttempt != 10 {
		t.Errorf("attempt = %d, want 10", snap.ReconnectAttempt)
	}

	// Terminal means terminal: later events change nothing.
	f.accept()
	if got := f.orch.Snap().Phase; got != PhaseDisconnected {
		t.Errorf("phase after late accept = %v, want disconnected", got)
	}
}

func TestOrchestrator_TypingClearsBanner(t *testing.T) {
	f := newFixture(score.ModeTraining)
	f.accept()
	f.ingest(map[int]string{1: "Q1", 2: "Q2", 3: "Q3", 4: "Q4"})

	f.orch.Submit("wrong")
	f.result(protocol.AnswerResultPayload{
		IsCorrect:     false,
		CorrectAnswer: []protocol.CorrectAnswer{{Name: "Oslo", Code: "NO"}},
	})
	if len(f.orch.Snap().CorrectAnswers) == 0 {
		t.Fatal("expected a banner after a wrong answer")
	}

	f.orch.InputChanged("") // empty input keeps the banner
	if len(f.orch.Snap().CorrectAnswers) == 0 {
		t.Fatal("empty input must not clear the banner")
	}

	f.orch.InputChanged("o")
	if len(f.orch.Snap().CorrectAnswers) != 0 {
		t.Error("typing must clear the banner locally")
	}
}

func TestOrchestrator_ClearStatusEpochGuard(t *testing.T) {
	f := newFixture(score.ModeTraining)
	f.accept()
	f.ingest(map[int]string{1: "Q1", 2: "Q2", 3: "Q3", 4: "Q4"})

	f.orch.Submit("a")
	f.result(protocol.AnswerResultPayload{IsCorrect: true, CurrentStreak: 1})
	stale := f.orch.Snap().StatusEpoch

	f.orch.Submit("b")
	f.result(protocol.AnswerResultPayload{IsCorrect: true, CurrentStreak: 2})

	// The first reply's timer fires late: it must not wipe the newer status.
	f.orch.ClearStatus(stale)
	if got := f.orch.Snap().Status; got != score.StatusCorrect {
		t.Fatalf("status = %v, want correct after stale clear", got)
	}

	f.orch.ClearStatus(f.orch.Snap().StatusEpoch)
	if got := f.orch.Snap().Status; got != score.StatusNone {
		t.Errorf("status = %v, want none after matching clear", got)
	}
}

func TestOrchestrator_ClearStatusHoldsWhilePartial(t *testing.T) {
	f := newFixture(score.ModeChallenge)
	f.accept()
	f.ingest(map[int]string{1: "Q1", 2: "Q2", 3: "Q3"})

	f.orch.Submit("one of several")
	f.result(protocol.AnswerResultPayload{IsCorrect: true, RemainingToGuess: 1})

	f.orch.ClearStatus(f.orch.Snap().StatusEpoch)
	if got := f.orch.Snap().Status; got != score.StatusPartial {
		t.Errorf("status = %v, want partial to persist until the question completes", got)
	}
}
