package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"wsup/internal/app"
)

var (
	appInstance *app.App
	version     = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "wsup",
	Short: "wsup - A WebSocket endpoint testing client",
	Long: `wsup - A WebSocket endpoint testing client

  Connect to WebSocket endpoints, compose messages with {{variable}}
  placeholders, and organize reusable message templates.

  Quick start:
    wsup tui
    wsup send wss://echo.example.com -m '{"ping": true}'
    wsup probe --all

  Core features:
    • Multiple simultaneous connections with per-connection message logs
    • Message templates organized into collections
    • {{variable}} placeholder substitution
    • Batch endpoint reachability probing with parallel workers`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dbPath, _ := cmd.Flags().GetString("db")
		verbose, _ := cmd.Flags().GetBool("verbose")

		// Initialize app
		var err error
		appInstance, err = app.New(app.Options{DBPath: dbPath, Verbose: verbose})
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		// Cleanup
		if appInstance != nil {
			return appInstance.Close()
		}
		return nil
	},
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("db", "", "database path")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wsup %s\n", version)
	},
}
