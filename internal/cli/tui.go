package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"wsup/internal/conn"
	"wsup/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive terminal UI",
	Long:  `Launch the full-screen interactive terminal UI for managing connections, composing messages, and organizing templates.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Keep established connections alive while the UI runs.
		keepalive, err := conn.NewKeepalive(appInstance.Connections)
		if err != nil {
			return err
		}
		if err := keepalive.Start(30 * time.Second); err != nil {
			return fmt.Errorf("failed to start keepalive: %w", err)
		}
		defer keepalive.Stop()

		deps := tui.Deps{
			Storage:     appInstance.Storage,
			Library:     appInstance.Library,
			Connections: appInstance.Connections,
			Version:     version,
		}

		p := tui.NewProgram(deps)
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
