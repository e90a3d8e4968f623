package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"wsup/internal/format"
	"wsup/internal/probe"
	"wsup/internal/storage/models"
)

var probeCmd = &cobra.Command{
	Use:   "probe [url]",
	Short: "Probe WebSocket endpoint reachability",
	Long: `Check whether WebSocket endpoints accept a handshake.

Probe a single URL directly, or probe every saved connection with --all.`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeEndpointURLs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		workers, _ := cmd.Flags().GetInt64("workers")
		timeoutMS, _ := cmd.Flags().GetInt64("timeout")
		all, _ := cmd.Flags().GetBool("all")

		prober := probe.New(probe.Config{
			Workers: workers,
			Timeout: time.Duration(timeoutMS) * time.Millisecond,
		})

		if all {
			return runBatchProbe(ctx, prober)
		}

		if len(args) == 0 {
			return fmt.Errorf("please specify a URL, or use --all")
		}

		return runSingleProbe(ctx, prober, args[0])
	},
}

func runSingleProbe(ctx context.Context, prober *probe.Prober, url string) error {
	fmt.Printf("Probing %s... ", url)

	result := prober.Single(ctx, &models.Connection{URL: url})

	if result.Reachable {
		color.Green("%d ms", result.Latency.Milliseconds())
	} else {
		color.Red("FAILED (%v)", result.Err)
	}

	return nil
}

func runBatchProbe(ctx context.Context, prober *probe.Prober) error {
	conns := appInstance.Connections.Connections()
	if len(conns) == 0 {
		fmt.Println("No saved connections found.")
		return nil
	}

	fmt.Printf("Probing %d endpoints...\n\n", len(conns))

	progress := func(result *probe.Result, current, total int) {
		if result.Reachable {
			fmt.Printf("  [%d/%d] %-40s %d ms\n", current, total,
				format.TruncateURL(result.Connection.URL, 40), result.Latency.Milliseconds())
		} else {
			fmt.Printf("  [%d/%d] %-40s FAILED\n", current, total,
				format.TruncateURL(result.Connection.URL, 40))
		}
	}

	batch := prober.Batch(ctx, conns, progress)

	// Print sorted results table
	fmt.Printf("\n\nResults (sorted by latency):\n")
	fmt.Println(strings.Repeat("─", 75))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tURL\tLATENCY\tSTATUS")
	fmt.Fprintln(w, "-\t---\t-------\t------")

	for i, result := range batch.Results {
		latStr := "N/A"
		statusStr := "FAIL"
		if result.Reachable {
			latStr = fmt.Sprintf("%d ms", result.Latency.Milliseconds())
			statusStr = "OK"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			i+1, format.TruncateURL(result.Connection.URL, 50), latStr, statusStr)
	}
	w.Flush()

	fmt.Printf("\nSummary: %d probed, %d reachable, %d failed (%.1fs)\n",
		batch.Probed, batch.Reachable, batch.Failed, batch.Duration.Seconds())

	return nil
}

func init() {
	probeCmd.Flags().Int64P("workers", "w", 5, "number of concurrent workers")
	probeCmd.Flags().Int64P("timeout", "t", 5000, "per-probe timeout in milliseconds")
	probeCmd.Flags().Bool("all", false, "probe all saved connections")

	rootCmd.AddCommand(probeCmd)
}
