package summary

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/rkal/geostreak/internal/router"
)

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func TestEnterAndEscPop(t *testing.T) {
	for _, code := range []rune{tea.KeyEnter, tea.KeyEscape} {
		s := New(Stats{})
		_, cmd := s.Update(specialKey(code))
		if cmd == nil {
			t.Fatal("expected a navigation command")
		}
		if _, ok := cmd().(router.PopScreenMsg); !ok {
			t.Error("expected a pop back to the previous screen")
		}
	}
}

func TestViewShowsStats(t *testing.T) {
	s := New(Stats{
		Mode:        "challenge",
		Answered:    10,
		Correct:     8,
		FinalStreak: 3,
		BestStreak:  12,
		Duration:    95 * time.Second,
	})

	view := s.View(80, 24)
	for _, want := range []string{"Challenge session", "1:35", "Answered: 10", "Correct: 8", "80%", "Final streak: 3", "Best: 12"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestOtherKeysIgnored(t *testing.T) {
	s := New(Stats{})
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})
	if cmd != nil {
		t.Error("unrelated keys should not navigate")
	}
}
