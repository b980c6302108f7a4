package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/rkal/geostreak/internal/router"
	"github.com/rkal/geostreak/internal/screen"
	"github.com/rkal/geostreak/internal/store"
	"github.com/rkal/geostreak/internal/ui/layout"
	"github.com/rkal/geostreak/internal/ui/theme"
)

type historyLoadedMsg struct {
	Sessions []store.SessionSummaryRecord
	Err      error
}

type answersLoadedMsg struct {
	Index   int
	Answers []store.AnswerRecord
}

// HistoryScreen displays past sessions with expandable answer details.
type HistoryScreen struct {
	eventRepo store.EventRepo
	sessions  []store.SessionSummaryRecord
	answers   map[int][]store.AnswerRecord
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		answers:   make(map[int][]store.AnswerRecord),
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		sessions, err := s.eventRepo.QuerySessionSummaries(context.Background(), store.QueryOpts{Limit: 50})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		return historyLoadedMsg{Sessions: sessions}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
		}
		s.loaded = true
		return s, nil

	case answersLoadedMsg:
		s.answers[msg.Index] = msg.Answers
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			return s, s.toggleDetails()
		}
	}
	return s, nil
}

// toggleDetails expands or collapses the selected session, lazily loading
// its answers on first expand.
func (s *HistoryScreen) toggleDetails() tea.Cmd {
	if s.selected >= len(s.sessions) {
		return nil
	}
	idx := s.selected
	s.expanded[idx] = !s.expanded[idx]

	if _, ok := s.answers[idx]; ok || !s.expanded[idx] {
		return nil
	}
	sessionID := s.sessions[idx].SessionID
	return func() tea.Msg {
		answers, err := s.eventRepo.QueryAnswers(context.Background(), sessionID)
		if err != nil {
			return answersLoadedMsg{Index: idx}
		}
		return answersLoadedMsg{Index: idx, Answers: answers}
	}
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No sessions yet. Start a streak!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, sess := range s.sessions {
		dateStr := sess.Timestamp.Format("Jan 02, 2006")
		mins := sess.DurationSecs / 60
		secs := sess.DurationSecs % 60

		var accuracy float64
		if sess.Answered > 0 {
			accuracy = float64(sess.Correct) / float64(sess.Answered) * 100
		}

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %s  %d:%02d  %d answered  %.0f%%  ⚡ best %d",
			prefix, dateStr, sess.Mode, mins, secs, sess.Answered, accuracy, sess.BestStreak)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(s.renderAnswers(width, i))
		}
	}

	return b.String()
}

func (s *HistoryScreen) renderAnswers(width, idx int) string {
	answers, ok := s.answers[idx]
	if !ok {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
				Render("    Loading...")) + "\n"
	}
	if len(answers) == 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
				Render("    No answers recorded")) + "\n"
	}

	var b strings.Builder
	for _, a := range answers {
		mark := lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		if a.Correct {
			mark = lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		}
		detail := a.Answer
		if a.Skipped {
			detail = "(skipped)"
			mark = lipgloss.NewStyle().Foreground(theme.TextDim).Render("→")
		}
		line := fmt.Sprintf("    %s %s — %s", mark, a.Prompt, detail)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}
