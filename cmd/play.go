package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rkal/geostreak/internal/score"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Jump straight into a session",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _ := cmd.Flags().GetString("mode")
		mode := score.Mode(m)
		if !mode.Valid() {
			return fmt.Errorf("unknown mode %q (training or challenge)", m)
		}
		return runApp(cmd, mode)
	},
}

func init() {
	playCmd.Flags().String("mode", string(score.ModeChallenge), "Session mode: training or challenge")
}
