package session

import (
	"context"
	"time"

	"github.com/rkal/geostreak/internal/auth"
	"github.com/rkal/geostreak/internal/conn"
	"github.com/rkal/geostreak/internal/protocol"
	"github.com/rkal/geostreak/internal/queue"
	"github.com/rkal/geostreak/internal/score"
	"github.com/rkal/geostreak/internal/store"
)

const (
	// SkipCooldown suppresses duplicate skips from double taps or held
	// keys. The window is short enough to be invisible to a deliberate
	// user and long enough to swallow key repeat.
	SkipCooldown = 500 * time.Millisecond

	// StatusClearDelay is how long a correct/wrong acknowledgment stays
	// on screen before reverting to none. Purely visual; queue advance
	// and prefetch never wait on it.
	StatusClearDelay = 500 * time.Millisecond

	// PrefetchThreshold is the buffer level at or below which more
	// questions are requested after each reply.
	PrefetchThreshold = 2
)

// Sender puts client messages on the wire. Satisfied by *conn.Manager.
type Sender interface {
	Send(protocol.ClientMessage) error
}

// Options configures an Orchestrator.
type Options struct {
	Mode      score.Mode
	SessionID string
	Sender    Sender
	Auth      auth.Provider
	Events    store.EventRepo // optional local history
	Now       func() time.Time
}

// Orchestrator is the session state machine. It owns the question queue,
// score and outcome, and interprets the event stream from the connection
// manager. All methods must be called from one goroutine; the Bubble Tea
// update loop provides that naturally, and tests drive it directly.
type Orchestrator struct {
	mode   score.Mode
	sender Sender
	auth   auth.Provider
	events store.EventRepo
	now    func() time.Time

	sessionID string
	startedAt time.Time

	queue *queue.Queue
	score score.State
	phase Phase

	status      score.Status
	statusEpoch int
	remaining   int

	// UI-hint layer: the "correct answer was X" banner. Cleared locally
	// on typing, never consulted by queue or score logic.
	banner []protocol.CorrectAnswer

	outcome    *LostInfo
	lastSkip   time.Time
	lastSent   *submission
	redirected bool
	attempt    int

	answered int
	correct  int
	ended    bool
}

// New creates an orchestrator and journals the session start.
func New(opts Options) *Orchestrator {
	nowFn := opts.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	o := &Orchestrator{
		mode:      opts.Mode,
		sender:    opts.Sender,
		auth:      opts.Auth,
		events:    opts.Events,
		now:       nowFn,
		sessionID: opts.SessionID,
		queue:     queue.New(),
		phase:     PhaseConnecting,
	}
	o.startedAt = o.now()

	if o.events != nil {
		_ = o.events.AppendSessionEvent(context.Background(), store.SessionEventData{
			SessionID: o.sessionID,
			Mode:      string(o.mode),
			Action:    "start",
		})
	}
	return o
}

// HandleEvent processes one connection event to completion.
func (o *Orchestrator) HandleEvent(ev conn.Event) {
	switch ev := ev.(type) {
	case conn.StateEvent:
		o.handleState(ev)
	case conn.MessageEvent:
		o.handleMessage(ev.Message)
	}
}

func (o *Orchestrator) handleState(ev conn.StateEvent) {
	if o.terminal() {
		return
	}
	switch ev.State {
	case conn.StateConnecting:
		o.attempt = ev.Attempt
		if o.phase != PhaseLost {
			o.phase = PhaseConnecting
		}
	case conn.StateAwaitingAcceptance:
		if o.phase != PhaseLost {
			o.phase = PhaseAwaitingAcceptance
		}
	case conn.StateAccepted:
		o.attempt = 0
		// A lost challenge session stays lost across a reconnect; the
		// user decides whether to restart.
		if o.phase == PhaseLost {
			return
		}
		if _, ok := o.queue.Current(); ok {
			o.phase = PhaseActive
		} else {
			o.phase = PhaseLoading
		}
	case conn.StateDisconnected:
		o.phase = PhaseDisconnected
		o.attempt = ev.Attempt
		o.finish()
	}
}

func (o *Orchestrator) handleMessage(msg protocol.ServerMessage) {
	switch msg.Type {
	case protocol.TypeUserAccept:
		o.handleAccept(*msg.Accept)
	case protocol.TypeNewQuestions:
		o.handleNewQuestions(*msg.NewQuestions)
	case protocol.TypeAnswerResult:
		o.handleAnswerResult(*msg.AnswerResult)
	}
}

// handleAccept checks for authentication desynchronization: the local
// client believes it is authenticated but the server disagrees. Fatal to
// the session; the redirect fires exactly once.
func (o *Orchestrator) handleAccept(p protocol.AcceptPayload) {
	if p.IsUserAuthenticated {
		return
	}
	if o.auth == nil || !o.auth.IsAuthenticated() || o.redirected {
		return
	}
	o.redirected = true
	o.auth.RedirectToLogin()
	o.phase = PhaseAuthDesync
	o.finish()
}

func (o *Orchestrator) handleNewQuestions(p protocol.NewQuestionsPayload) {
	if o.terminal() {
		return
	}
	o.queue.Ingest(p.Questions)
	if o.phase == PhaseLoading {
		if _, ok := o.queue.Current(); ok {
			o.phase = PhaseActive
		}
	}
}

func (o *Orchestrator) handleAnswerResult(r protocol.AnswerResultPayload) {
	if o.terminal() {
		return
	}

	d := score.Apply(o.mode, o.score, r)
	o.score = d.State
	o.status = d.Status
	o.statusEpoch++
	o.remaining = r.RemainingToGuess

	if len(d.CorrectAnswers) > 0 {
		o.banner = d.CorrectAnswers
	}

	o.answered++
	if r.IsCorrect && r.RemainingToGuess == 0 {
		o.correct++
	}

	o.journalAnswer(r)

	// A reply for a question that is no longer current still lands here:
	// score and outcome update, the cursor only ever moves forward.
	if d.Advance {
		o.queue.Advance()
	}
	if d.Lost && o.phase == PhaseActive {
		o.outcome = &LostInfo{FinalStreak: d.State.Streak, BestStreakEver: d.State.Best}
		o.phase = PhaseLost
	}

	// The server streams a small rolling buffer, so this must fire on
	// every qualifying reply, not just the first.
	if o.queue.Remaining() <= PrefetchThreshold {
		_ = o.sender.Send(protocol.RequestQuestions{})
	}
}

func (o *Orchestrator) journalAnswer(r protocol.AnswerResultPayload) {
	if o.events == nil || o.lastSent == nil {
		return
	}
	_ = o.events.AppendAnswerEvent(context.Background(), store.AnswerEventData{
		SessionID:  o.sessionID,
		QuestionID: o.lastSent.QuestionID,
		Prompt:     o.lastSent.Prompt,
		Answer:     o.lastSent.Answer,
		Skipped:    o.lastSent.Skipped,
		Correct:    r.IsCorrect,
		Remaining:  r.RemainingToGuess,
		Streak:     r.CurrentStreak,
		TimeMs:     int(o.now().Sub(o.lastSent.SentAt).Milliseconds()),
	})
}

// Submit sends the raw answer for the current question. No-op outside
// active play or while the queue has no current question.
func (o *Orchestrator) Submit(raw string) {
	if o.phase != PhaseActive {
		return
	}
	cur, ok := o.queue.Current()
	if !ok {
		return
	}
	o.lastSent = &submission{
		QuestionID: cur.ID,
		Prompt:     cur.Prompt,
		Answer:     raw,
		SentAt:     o.now(),
	}
	_ = o.sender.Send(protocol.AnswerSubmission{ID: cur.ID, Answer: raw})
}

// Skip submits the degenerate empty answer for the current question. Every
// skip path (button, shortcut) goes through here so the cool-down guard
// cannot be bypassed; a skip inside the window is dropped silently.
func (o *Orchestrator) Skip() {
	if o.phase != PhaseActive {
		return
	}
	cur, ok := o.queue.Current()
	if !ok {
		return
	}
	now := o.now()
	if !o.lastSkip.IsZero() && now.Sub(o.lastSkip) < SkipCooldown {
		return
	}
	o.lastSkip = now
	o.lastSent = &submission{
		QuestionID: cur.ID,
		Prompt:     cur.Prompt,
		Skipped:    true,
		SentAt:     now,
	}
	_ = o.sender.Send(protocol.QuestionSkipped{ID: cur.ID, Answer: ""})
}

// Restart resumes challenge play after a loss on the live session: same
// connection, same token, next question.
func (o *Orchestrator) Restart() {
	if o.phase != PhaseLost {
		return
	}
	o.outcome = nil
	o.status = score.StatusNone
	o.statusEpoch++
	o.banner = nil
	o.queue.Advance()
	o.phase = PhaseActive
}

// ChangeLanguage is always allowed and always forwarded, whatever the
// phase; the server applies it to whatever session state it holds.
func (o *Orchestrator) ChangeLanguage(lang string) {
	_ = o.sender.Send(protocol.UserChangeLanguage{Language: lang})
}

// InputChanged reports the user's in-progress answer text. Typing a
// non-empty answer clears the stale correct-answer banner immediately,
// without waiting for any server reply. Pure UI-hint layer: the queue and
// the score never consult it.
func (o *Orchestrator) InputChanged(text string) {
	if text == "" {
		return
	}
	o.banner = nil
	if o.status == score.StatusWrong {
		o.status = score.StatusNone
		o.statusEpoch++
	}
}

// ClearStatus reverts the transient acknowledgment to none. epoch must
// match the Snapshot that scheduled the clear, so a delayed timer never
// wipes a newer status; partial statuses persist until the question
// completes.
func (o *Orchestrator) ClearStatus(epoch int) {
	if epoch != o.statusEpoch {
		return
	}
	if o.remaining != 0 {
		return
	}
	o.status = score.StatusNone
}

// Finish journals the session end. Idempotent; called when the user
// leaves the session screen and on terminal phases.
func (o *Orchestrator) Finish() {
	o.finish()
}

func (o *Orchestrator) finish() {
	if o.ended || o.events == nil {
		return
	}
	o.ended = true
	_ = o.events.AppendSessionEvent(context.Background(), store.SessionEventData{
		SessionID:    o.sessionID,
		Mode:         string(o.mode),
		Action:       "end",
		Answered:     o.answered,
		Correct:      o.correct,
		BestStreak:   o.score.Best,
		FinalStreak:  o.score.Streak,
		DurationSecs: int(o.now().Sub(o.startedAt).Seconds()),
	})
}

func (o *Orchestrator) terminal() bool {
	return o.phase == PhaseDisconnected || o.phase == PhaseAuthDesync
}

// Current returns the question under the cursor.
func (o *Orchestrator) Current() (queue.Question, bool) {
	return o.queue.Current()
}

// Remaining exposes the delivered-but-unplayed buffer size.
func (o *Orchestrator) Remaining() int {
	return o.queue.Remaining()
}

// Snap returns the current presentation view.
func (o *Orchestrator) Snap() Snapshot {
	return Snapshot{
		Phase:            o.phase,
		Score:            o.score,
		Status:           o.status,
		StatusEpoch:      o.statusEpoch,
		Outcome:          o.outcome,
		CorrectAnswers:   o.banner,
		ReconnectAttempt: o.attempt,
		Answered:         o.answered,
		Correct:          o.correct,
	}
}
