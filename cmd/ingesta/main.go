// Command ingesta syncs configured sources into remote document collections.
package main

import (
	"fmt"
	"os"

	"github.com/custodia-labs/ingesta-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ingesta-cli/internal/adapters/driven/convert/soffice"
	"github.com/custodia-labs/ingesta-cli/internal/adapters/driven/remote/ragflow"
	"github.com/custodia-labs/ingesta-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ingesta-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/ingesta-cli/internal/connectors"
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ingesta-cli/internal/core/services"
	"github.com/custodia-labs/ingesta-cli/internal/logger"
	"github.com/custodia-labs/ingesta-cli/internal/resolver"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = ""

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config store: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("opening metadata store: %w", err)
	}
	defer store.Close() //nolint:errcheck // Best-effort close on exit

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	factory := connectors.NewFactory()
	connectors.RegisterBuiltins(factory, settings)

	svcs := cli.Services{
		Source:   services.NewSourceService(store.SourceStore(), factory),
		Settings: settingsService,
	}

	// Everything remote needs a configured endpoint. Until then those
	// services stay nil and their commands say so; source and settings
	// management work regardless.
	client, err := ragflow.NewClient(settings.Remote)
	if err != nil {
		logger.Debug("Remote client unavailable: %v", err)
	} else {
		converter := soffice.New(settings.Resolve.ConverterPath, settings.Resolve.ConvertTimeout)
		cache := store.DownloadCache()
		newResolver := func() (driven.FileResolver, error) {
			return resolver.New(settings.Resolve, converter, cache)
		}

		monitor := services.NewJobMonitor(client, settings.Monitor)
		coordinator := services.NewSyncCoordinator(
			store.SourceStore(),
			factory,
			store.RevisionLedger(),
			client,
			newResolver,
			monitor,
			settings,
		)

		svcs.Sync = coordinator
		svcs.Collections = services.NewCollectionAdmin(client, store.RevisionLedger(), monitor)
		svcs.Scheduler = services.NewScheduler(settings, store.SchedulerStore(), coordinator, cache)
		svcs.Watcher = services.NewWatcher(store.SourceStore(), coordinator)
	}

	cli.SetServices(svcs)
	cli.SetVersion(version)

	return cli.Execute()
}
