package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/rkal/geostreak/internal/router"
	"github.com/rkal/geostreak/internal/score"
	"github.com/rkal/geostreak/internal/screen"
	"github.com/rkal/geostreak/internal/screens/history"
	sessionscreen "github.com/rkal/geostreak/internal/screens/session"
	"github.com/rkal/geostreak/internal/store"
	"github.com/rkal/geostreak/internal/ui/components"
	"github.com/rkal/geostreak/internal/ui/theme"
)

// HomeScreen is the main menu.
type HomeScreen struct {
	menu       components.Menu
	bestStreak int
	sessions   int
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps sessionscreen.Deps) *HomeScreen {
	var totals store.Totals
	if deps.Events != nil {
		totals, _ = deps.Events.Totals(context.Background())
	}

	items := []components.MenuItem{
		{Label: "TRAINING", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: sessionscreen.New(deps, score.ModeTraining)}
			}
		}},
		{Label: "CHALLENGE", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: sessionscreen.New(deps, score.ModeChallenge)}
			}
		}},
		{Label: "HISTORY", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(deps.Events)}
			}
		}, Disabled: deps.Events == nil},
		{Label: "EXIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	return &HomeScreen{
		menu:       components.NewMenu(items),
		bestStreak: totals.BestStreak,
		sessions:   totals.Sessions,
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var sections []string

	title := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render("G E O S T R E A K")
	subtitle := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("How long can you keep the streak alive?")
	sections = append(sections, title+"\n"+subtitle)

	stats := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Accent).
		Render(fmt.Sprintf("★ Best streak: %d        Sessions played: %d",
			h.bestStreak, h.sessions))
	sections = append(sections, stats)

	sections = append(sections, lipgloss.PlaceHorizontal(width, lipgloss.Center, h.menu.View()))

	content := strings.Join(sections, "\n\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
