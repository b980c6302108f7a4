package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/rkal/geostreak/internal/score"
	sess "github.com/rkal/geostreak/internal/session"
	"github.com/rkal/geostreak/internal/ui/theme"
)

func (s *SessionScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, s.errMsg)
	}
	if s.orch == nil {
		return renderNotice(width, "Starting...")
	}
	if s.quitConfirm {
		return renderQuitConfirm(width)
	}

	snap := s.orch.Snap()
	switch snap.Phase {
	case sess.PhaseConnecting:
		if snap.ReconnectAttempt > 0 {
			return renderNotice(width, fmt.Sprintf("Reconnecting... (attempt %d)", snap.ReconnectAttempt))
		}
		return renderNotice(width, "Connecting...")
	case sess.PhaseAwaitingAcceptance:
		return renderNotice(width, "Joining game...")
	case sess.PhaseLoading:
		return renderNotice(width, "Waiting for questions...")
	case sess.PhaseLost:
		return s.renderLost(width, snap)
	case sess.PhaseDisconnected:
		return renderError(width, "Connection lost. The server could not be reached.")
	case sess.PhaseAuthDesync:
		return renderError(width, "Signed out. Log in again, then restart the session.")
	}

	return s.renderQuestion(width, snap)
}

func (s *SessionScreen) renderQuestion(width int, snap sess.Snapshot) string {
	var b strings.Builder

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  " + s.Title())

	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("⚡ %d   ★ %d", snap.Score.Streak, snap.Score.Best))

	infoLine := infoLeft
	rightPad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4
	if rightPad > 0 {
		infoLine += strings.Repeat(" ", rightPad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	cur, ok := s.orch.Current()
	if !ok {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("Waiting for the next question..."))
		return b.String()
	}

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render(cur.Prompt))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render("Answer: " + s.input.View()))
	b.WriteString("\n\n")

	b.WriteString(renderStatus(width, snap))

	return b.String()
}

// renderStatus shows the transient verdict line and, after a miss, what the
// correct answers were.
func renderStatus(width int, snap sess.Snapshot) string {
	var b strings.Builder

	switch snap.Status {
	case score.StatusCorrect:
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Success).
			Bold(true).
			Render("Correct!"))
		b.WriteString("\n")
	case score.StatusPartial:
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Accent).
			Bold(true).
			Render("Keep going, more to name"))
		b.WriteString("\n")
	case score.StatusWrong:
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Bold(true).
			Render("Not quite"))
		b.WriteString("\n")
	}

	for _, ca := range snap.CorrectAnswers {
		line := ca.Name
		if ca.Code != "" {
			line = fmt.Sprintf("%s (%s)", ca.Name, ca.Code)
		}
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render(line))
		b.WriteString("\n")
	}

	return b.String()
}

func (s *SessionScreen) renderLost(width int, snap sess.Snapshot) string {
	var b strings.Builder
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Bold(true).
		Render("Streak over!"))
	b.WriteString("\n\n")

	if snap.Outcome != nil {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Text).
			Render(fmt.Sprintf("Final streak: %d        Best ever: %d",
				snap.Outcome.FinalStreak, snap.Outcome.BestStreakEver)))
		b.WriteString("\n\n")
	}

	for _, ca := range snap.CorrectAnswers {
		line := ca.Name
		if ca.Code != "" {
			line = fmt.Sprintf("%s (%s)", ca.Name, ca.Code)
		}
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("Correct answer: " + line))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Success).
		Render("[R] Play again"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Render("[S] Summary    [Esc] Leave"))

	return b.String()
}

func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render("Leave the session?"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("Your streak history is saved locally."))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Success).
		Render("[Y] Yes, leave"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Render("[N] No, keep playing"))

	return b.String()
}

func renderNotice(width int, msg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("\n\n\n  " + msg)
}

func renderError(width int, errMsg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  %s\n\n  Press any key to go back.", errMsg))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
