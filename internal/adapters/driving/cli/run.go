package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ingesta-cli/internal/logger"
)

// runWatch also watches local source files for changes.
var runWatch bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run scheduled syncs in the foreground",
	Long: `Runs the scheduler as a foreground daemon. Syncs fire on the
configured schedule (settings key "schedule.spec") and the download
cache is swept hourly. A missed run fires on the next start.

With --watch, the local files behind enabled sources are watched and a
changed file re-syncs its source without waiting for the schedule.

Stops on SIGINT or SIGTERM.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVarP(&runWatch, "watch", "w", false, "Also re-sync when local source files change")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	if schedulerService == nil {
		return errors.New("scheduler not configured")
	}

	if settingsService != nil {
		settings, err := settingsService.Get()
		if err == nil && settings.Log.File != "" {
			logger.SetFile(settings.Log.File, settings.Log.MaxSizeMB, settings.Log.MaxBackups)
			defer logger.CloseFile() //nolint:errcheck // Best-effort flush on shutdown
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if runWatch {
		if fileWatcher == nil {
			return errors.New("file watcher not configured")
		}
		go func() {
			if err := fileWatcher.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("File watcher stopped: %v", err)
			}
		}()
	}

	cmd.Println("Scheduler running. Press Ctrl+C to stop.")

	if err := schedulerService.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scheduler: %w", err)
	}
	return schedulerService.Stop()
}
