package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rkal/geostreak/internal/app"
	"github.com/rkal/geostreak/internal/auth"
	"github.com/rkal/geostreak/internal/config"
	"github.com/rkal/geostreak/internal/lifecycle"
	"github.com/rkal/geostreak/internal/locale"
	"github.com/rkal/geostreak/internal/score"
	sessionscreen "github.com/rkal/geostreak/internal/screens/session"
	"github.com/rkal/geostreak/internal/store"
	"github.com/rkal/geostreak/internal/token"
)

// runApp loads config, opens the store and launches the TUI. A valid
// startMode skips the home menu and opens a session directly.
func runApp(cmd *cobra.Command, startMode score.Mode) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if s, _ := cmd.Flags().GetString("server"); s != "" {
		cfg.ServerURL = s
	}
	if l, _ := cmd.Flags().GetString("lang"); l != "" {
		cfg.Language = l
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	statePath, err := token.DefaultPath()
	if err != nil {
		return fmt.Errorf("resolve state path: %w", err)
	}

	// Wall-clock gaps over a minute mean the host slept; the session
	// probes its socket on resume instead of waiting out the backoff.
	monitor := lifecycle.NewClockMonitor(15*time.Second, time.Minute)
	monitor.Start()
	defer monitor.Stop()

	opts := app.Options{
		StartMode: startMode,
		Session: sessionscreen.Deps{
			Config:    *cfg,
			Tokens:    token.NewStore(statePath),
			Locale:    locale.NewProvider(cfg.Language),
			Auth:      auth.NewEnvProvider(),
			Events:    st.EventRepo(),
			Lifecycle: monitor,
		},
	}
	return app.Run(opts)
}
