package summary

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/rkal/geostreak/internal/router"
	"github.com/rkal/geostreak/internal/screen"
	"github.com/rkal/geostreak/internal/ui/layout"
	"github.com/rkal/geostreak/internal/ui/theme"
)

// Stats is everything the summary shows about one session.
type Stats struct {
	Mode        string
	Answered    int
	Correct     int
	FinalStreak int
	BestStreak  int
	Duration    time.Duration
}

// SummaryScreen displays the session result.
type SummaryScreen struct {
	stats Stats
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(stats Stats) *SummaryScreen {
	return &SummaryScreen{stats: stats}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Back"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	st := s.stats
	var b strings.Builder

	title := st.Mode
	if title != "" {
		title = strings.ToUpper(title[:1]) + title[1:]
	}
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render(title + " session"))
	b.WriteString("\n\n")

	mins := int(st.Duration.Minutes())
	secs := int(st.Duration.Seconds()) % 60
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Duration: %d:%02d", mins, secs)))
	b.WriteString("\n\n")

	var accuracy float64
	if st.Answered > 0 {
		accuracy = float64(st.Correct) / float64(st.Answered) * 100
	}
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Render(fmt.Sprintf("Answered: %d        Correct: %d        Accuracy: %.0f%%",
			st.Answered, st.Correct, accuracy)))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Accent).
		Bold(true).
		Render(fmt.Sprintf("⚡ Final streak: %d        ★ Best: %d",
			st.FinalStreak, st.BestStreak)))

	return b.String()
}
