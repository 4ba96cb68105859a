package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ingesta-cli/internal/adapters/driving/tui"
	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
)

// syncWatch enables the live progress view.
var syncWatch bool

var syncCmd = &cobra.Command{
	Use:   "sync [source]",
	Short: "Sync sources into remote collections",
	Long: `Runs the ingestion pipeline: source records are resolved to files,
changed revisions are uploaded, remote parsing is started and monitored,
and outcomes are recorded in the local ledger.

If a source name or ID is given, only that source is synced.
Otherwise, every enabled source is synced.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVarP(&syncWatch, "watch", "w", false, "Show live progress while syncing")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if syncOrchestrator == nil {
		return errors.New("sync service not configured")
	}

	source := ""
	if len(args) > 0 {
		source = args[0]
	}

	if syncWatch {
		return runSyncWatch(cmd, source)
	}

	ctx := context.Background()

	var (
		report *domain.RunReport
		err    error
	)
	if source != "" {
		cmd.Printf("Syncing source: %s...\n", source)
		report, err = syncOrchestrator.Sync(ctx, source)
	} else {
		cmd.Println("Syncing all sources...")
		report, err = syncOrchestrator.SyncAll(ctx)
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	printRunReport(cmd, report)
	return nil
}

// runSyncWatch runs the sync under the live progress view and prints
// the report afterwards so it survives in scrollback.
func runSyncWatch(cmd *cobra.Command, source string) error {
	model := tui.NewModel(syncOrchestrator, source)

	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return fmt.Errorf("progress view: %w", err)
	}

	m, ok := final.(*tui.Model)
	if !ok {
		return nil
	}
	if m.Err() != nil {
		return fmt.Errorf("sync failed: %w", m.Err())
	}
	printRunReport(cmd, m.Report())
	return nil
}

// printRunReport prints a finished run, one block per collection.
func printRunReport(cmd *cobra.Command, report *domain.RunReport) {
	if report == nil {
		return
	}

	cmd.Println()
	for _, col := range report.Collections {
		cmd.Printf("Collection %s: %d seen, %d uploaded, %d skipped, %d failed\n",
			col.Collection, col.ItemsSeen, col.Uploaded, col.Skipped, col.Failed)

		for _, failure := range col.Failures {
			cmd.Printf("  failed %s (%s): %s\n", failure.SourceKey, failure.Stage, failure.Reason)
		}
		for _, warning := range col.Warnings {
			cmd.Printf("  warning: %s\n", warning)
		}

		if col.ParseRequested {
			cmd.Printf("  parse: %s\n", formatParseStates(col.ParseStates))
		}
		if col.DeadlineExceeded {
			cmd.Printf("  parse monitoring hit its deadline; check later with 'ingesta parse check %s'\n",
				col.Collection)
		}
	}

	elapsed := report.FinishedAt.Sub(report.StartedAt).Round(time.Second)
	cmd.Printf("\nDone in %s: %d uploaded, %d skipped, %d failed.\n",
		elapsed, report.TotalUploaded(), report.TotalSkipped(), report.TotalFailed())
}

// formatParseStates formats a run-state distribution in a fixed order.
func formatParseStates(counts domain.RunStateCounts) string {
	if len(counts) == 0 {
		return "no documents"
	}

	order := []domain.RunState{
		domain.RunStateDone,
		domain.RunStateRunning,
		domain.RunStateUnstarted,
		domain.RunStateFailed,
		domain.RunStateCancelled,
	}

	out := ""
	for _, state := range order {
		if n, ok := counts[state]; ok && n > 0 {
			if out != "" {
				out += ", "
			}
			out += fmt.Sprintf("%d %s", n, state)
		}
	}
	return out
}
