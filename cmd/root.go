package cmd

import (
	"github.com/rkal/geostreak/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "geostreak",
	Short: "Geography streak quiz in your terminal",
	Long:  "Geostreak — terminal client for the Geostreak quiz server. Answer geography questions, keep the streak alive.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, "")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides GEOSTREAK_DB env var)")
	rootCmd.PersistentFlags().String("server", "", "Quiz server websocket URL (overrides GEOSTREAK_SERVER_URL env var)")
	rootCmd.PersistentFlags().String("lang", "", "Question language (overrides GEOSTREAK_LANGUAGE env var)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then GEOSTREAK_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
