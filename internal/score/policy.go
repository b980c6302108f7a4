package score

import "github.com/rkal/geostreak/internal/protocol"

// Mode selects how wrong answers are treated.
type Mode string

const (
	// ModeTraining is open-ended: wrong answers are informational.
	ModeTraining Mode = "training"
	// ModeChallenge ends the session on the first wrong or incomplete answer.
	ModeChallenge Mode = "challenge"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeTraining || m == ModeChallenge
}

// State is the running score. The streak is server-authoritative: each
// reply replaces it outright, nothing is incremented locally.
type State struct {
	Streak int
	Best   int
}

// Status is the transient answer acknowledgment for the presentation layer.
type Status int

const (
	StatusNone Status = iota
	StatusCorrect
	StatusPartial
	StatusWrong
)

// Decision is the interpreted effect of one answer_result reply.
type Decision struct {
	State   State
	Status  Status
	Advance bool // move the queue cursor to the next question
	Lost    bool // challenge mode only

	// CorrectAnswers holds the expected answers when the reply was wrong,
	// for the "the answer was X" banner.
	CorrectAnswers []protocol.CorrectAnswer
}

// Apply interprets a reply under the active mode, starting from the
// previous score state.
//
//	correct, none remaining  → advance, streak replaced
//	correct, some remaining  → hold position, streak untouched
//	wrong, training          → record answers, streak replaced, move on
//	wrong, challenge         → record answers, streak replaced, session lost
func Apply(mode Mode, prev State, r protocol.AnswerResultPayload) Decision {
	d := Decision{State: prev}

	if r.BestStreak > d.State.Best {
		d.State.Best = r.BestStreak
	}

	if r.IsCorrect {
		if r.RemainingToGuess > 0 {
			// A multi-part question with sub-answers still owed. The queue
			// holds and the streak only updates once the question is done.
			d.Status = StatusPartial
			return d
		}
		d.Status = StatusCorrect
		d.State.Streak = r.CurrentStreak
		d.Advance = true
		return d
	}

	d.Status = StatusWrong
	d.State.Streak = r.CurrentStreak
	d.CorrectAnswers = r.CorrectAnswer

	switch mode {
	case ModeChallenge:
		// First mistake ends the session; the cursor stays put so the
		// missed question is still on screen behind the loss popup.
		d.Lost = true
	default:
		d.Advance = true
	}
	return d
}
