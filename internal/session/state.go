package session

import (
	"time"

	"github.com/rkal/geostreak/internal/protocol"
	"github.com/rkal/geostreak/internal/score"
)

// Phase is the externally visible session state.
type Phase int

const (
	// PhaseConnecting covers the initial dial and any reconnect cycle.
	PhaseConnecting Phase = iota
	// PhaseAwaitingAcceptance means the channel is up but the handshake
	// has not been acknowledged.
	PhaseAwaitingAcceptance
	// PhaseLoading means accepted but no questions have arrived yet.
	PhaseLoading
	// PhaseActive is normal gameplay.
	PhaseActive
	// PhaseLost is the challenge-mode defeat state; restart re-enters
	// PhaseActive on the live session.
	PhaseLost
	// PhaseDisconnected is terminal: the reconnect budget is exhausted.
	PhaseDisconnected
	// PhaseAuthDesync is terminal: the server rejected the caller's
	// authentication and the redirect side effect has fired.
	PhaseAuthDesync
)

func (p Phase) String() string {
	switch p {
	case PhaseConnecting:
		return "connecting"
	case PhaseAwaitingAcceptance:
		return "awaiting acceptance"
	case PhaseLoading:
		return "loading"
	case PhaseActive:
		return "active"
	case PhaseLost:
		return "lost"
	case PhaseDisconnected:
		return "disconnected"
	case PhaseAuthDesync:
		return "auth desync"
	}
	return "unknown"
}

// LostInfo captures the defeat details for the loss popup and summary.
type LostInfo struct {
	FinalStreak    int
	BestStreakEver int
}

// submission remembers what was last sent so the eventual answer_result
// can be journaled against the right question even if the cursor has
// moved by the time the reply lands.
type submission struct {
	QuestionID int
	Prompt     string
	Answer     string
	Skipped    bool
	SentAt     time.Time
}

// Snapshot is a read-only view for the presentation layer.
type Snapshot struct {
	Phase            Phase
	Score            score.State
	Status           score.Status
	StatusEpoch      int
	Outcome          *LostInfo // nil unless lost
	CorrectAnswers   []protocol.CorrectAnswer
	ReconnectAttempt int
	Answered         int
	Correct          int
}
