// Package cli provides the cobra command surface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ingesta-cli/internal/logger"
)

// version is the application version, set at build time via ldflags.
var version = "dev"

// Services used by the commands. Injected by main via SetServices
// before Execute runs; commands guard against missing services.
var (
	syncOrchestrator driving.SyncOrchestrator
	sourceService    driving.SourceService
	settingsService  driving.SettingsService
	collectionAdmin  driving.CollectionAdmin
	schedulerService driving.Scheduler
	fileWatcher      driving.FileWatcher
)

// verbose enables debug logging for all commands.
var verbose bool

// rootCmd is the base command all subcommands hang off.
var rootCmd = &cobra.Command{
	Use:   "ingesta",
	Short: "Ingest source records into remote document collections",
	Long: `Ingesta feeds heterogeneous sources - spreadsheet rows, database
queries, GitHub repositories - into a remote document collection service.

Each run resolves source records to files, uploads changed revisions,
triggers remote parsing, and records outcomes in a local ledger so
unchanged items are skipped next time.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

// Services bundles everything the CLI needs.
type Services struct {
	Sync        driving.SyncOrchestrator
	Source      driving.SourceService
	Settings    driving.SettingsService
	Collections driving.CollectionAdmin
	Scheduler   driving.Scheduler
	Watcher     driving.FileWatcher
}

// SetServices injects the services the commands run against.
func SetServices(services Services) {
	syncOrchestrator = services.Sync
	sourceService = services.Source
	settingsService = services.Settings
	collectionAdmin = services.Collections
	schedulerService = services.Scheduler
	fileWatcher = services.Watcher
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
