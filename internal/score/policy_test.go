package score

import (
	"testing"

	"github.com/rkal/geostreak/internal/protocol"
)

func TestApply_CorrectComplete(t *testing.T) {
	for _, mode := range []Mode{ModeTraining, ModeChallenge} {
		d := Apply(mode, State{Streak: 4, Best: 10}, protocol.AnswerResultPayload{
			IsCorrect:     true,
			CurrentStreak: 5,
			BestStreak:    10,
		})
		if !d.Advance {
			t.Errorf("%s: expected advance", mode)
		}
		if d.Status != StatusCorrect {
			t.Errorf("%s: status = %v, want correct", mode, d.Status)
		}
		if d.State.Streak != 5 {
			t.Errorf("%s: streak = %d, want 5 (server value)", mode, d.State.Streak)
		}
		if d.Lost {
			t.Errorf("%s: correct answer must not lose", mode)
		}
	}
}

func TestApply_PartiallyCorrectHoldsPosition(t *testing.T) {
	prev := State{Streak: 3, Best: 7}
	d := Apply(ModeChallenge, prev, protocol.AnswerResultPayload{
		IsCorrect:        true,
		RemainingToGuess: 2,
		CurrentStreak:    3,
	})
	if d.Advance {
		t.Error("partially correct must not advance the queue")
	}
	if d.Status != StatusPartial {
		t.Errorf("status = %v, want partial", d.Status)
	}
	if d.State.Streak != prev.Streak {
		t.Errorf("streak = %d, want unchanged %d", d.State.Streak, prev.Streak)
	}
	if d.Lost {
		t.Error("partially correct must not lose")
	}
}

func TestApply_WrongInTrainingMovesOn(t *testing.T) {
	answers := []protocol.CorrectAnswer{{Name: "Paris", Code: "FR"}}
	d := Apply(ModeTraining, State{Streak: 9}, protocol.AnswerResultPayload{
		IsCorrect:     false,
		CurrentStreak: 0,
		BestStreak:    9,
		CorrectAnswer: answers,
	})
	if d.Lost {
		t.Error("training mode never loses")
	}
	if !d.Advance {
		t.Error("training moves on after a wrong answer")
	}
	if d.Status != StatusWrong {
		t.Errorf("status = %v, want wrong", d.Status)
	}
	if d.State.Streak != 0 {
		t.Errorf("streak = %d, want 0 (server value)", d.State.Streak)
	}
	if len(d.CorrectAnswers) != 1 || d.CorrectAnswers[0].Name != "Paris" {
		t.Errorf("correct answers = %v", d.CorrectAnswers)
	}
}

func TestApply_WrongInChallengeLoses(t *testing.T) {
	// remainingToGuess is ignored on a wrong reply; any value loses.
	for _, remaining := range []int{0, 1, 3} {
		d := Apply(ModeChallenge, State{Streak: 6}, protocol.AnswerResultPayload{
			IsCorrect:        false,
			RemainingToGuess: remaining,
			CurrentStreak:    0,
			BestStreak:       6,
		})
		if !d.Lost {
			t.Errorf("remaining=%d: expected loss", remaining)
		}
		if d.Advance {
			t.Errorf("remaining=%d: losing must not advance the queue", remaining)
		}
		if d.State.Best != 6 {
			t.Errorf("remaining=%d: best = %d, want 6", remaining, d.State.Best)
		}
	}
}

func TestApply_BestStreakNeverShrinks(t *testing.T) {
	d := Apply(ModeTraining, State{Streak: 2, Best: 20}, protocol.AnswerResultPayload{
		IsCorrect:     true,
		CurrentStreak: 3,
		BestStreak:    3,
	})
	if d.State.Best != 20 {
		t.Errorf("best = %d, want 20", d.State.Best)
	}
}
