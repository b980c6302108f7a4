package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rkal/geostreak/internal/token"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete local play history and the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove database: %w", err)
		}

		statePath, err := token.DefaultPath()
		if err != nil {
			return fmt.Errorf("resolve state path: %w", err)
		}
		if err := token.NewStore(statePath).Clear(); err != nil {
			return fmt.Errorf("clear session token: %w", err)
		}

		fmt.Println("Local history and session token removed.")
		return nil
	},
}
