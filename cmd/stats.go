package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rkal/geostreak/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show lifetime play statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		totals, err := st.EventRepo().Totals(cmd.Context())
		if err != nil {
			return fmt.Errorf("query totals: %w", err)
		}

		var accuracy float64
		if totals.Answered > 0 {
			accuracy = float64(totals.Correct) / float64(totals.Answered) * 100
		}

		fmt.Printf("Sessions:    %d\n", totals.Sessions)
		fmt.Printf("Answered:    %d\n", totals.Answered)
		fmt.Printf("Correct:     %d (%.0f%%)\n", totals.Correct, accuracy)
		fmt.Printf("Skipped:     %d\n", totals.Skipped)
		fmt.Printf("Best streak: %d\n", totals.BestStreak)
		fmt.Printf("Play time:   %dm%02ds\n", totals.PlaySecs/60, totals.PlaySecs%60)
		return nil
	},
}
