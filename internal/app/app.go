package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/rkal/geostreak/internal/router"
	"github.com/rkal/geostreak/internal/score"
	"github.com/rkal/geostreak/internal/screen"
	"github.com/rkal/geostreak/internal/screens/home"
	sessionscreen "github.com/rkal/geostreak/internal/screens/session"
	"github.com/rkal/geostreak/internal/ui/layout"
)

// Options carries the shared services into the TUI. A non-empty StartMode
// opens a session immediately instead of the home menu.
type Options struct {
	Session   sessionscreen.Deps
	StartMode score.Mode
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router    *router.Router
	startMode score.Mode
	session   sessionscreen.Deps
	width     int
	height    int
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(opts Options) AppModel {
	homeScreen := home.New(opts.Session)
	return AppModel{
		router:    router.New(homeScreen),
		startMode: opts.StartMode,
		session:   opts.Session,
	}
}

func (m AppModel) Init() tea.Cmd {
	if m.startMode.Valid() {
		deps := m.session
		mode := m.startMode
		return func() tea.Msg {
			return router.PushScreenMsg{Screen: sessionscreen.New(deps, mode)}
		}
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	var streak, best int
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StreakProvider); ok {
			streak, best = sp.Streak()
		}
	}

	header := layout.RenderHeader(title, streak, best, m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	}
	if footerHints == nil {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
