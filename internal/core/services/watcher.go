package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ingesta-cli/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driving.FileWatcher = (*Watcher)(nil)

// DefaultWatchDebounce coalesces filesystem event bursts. Editors save
// through temp-file renames that produce several events per save.
const DefaultWatchDebounce = 2 * time.Second

// Watcher re-runs sync for a source whenever one of its local input
// files changes. Remote sources (GitHub, Google Sheets) have nothing to
// watch and are ignored.
type Watcher struct {
	sourceStore driven.SourceStore
	sync        driving.SyncOrchestrator
	debounce    time.Duration
}

// NewWatcher creates a watcher over all configured sources.
func NewWatcher(sourceStore driven.SourceStore, syncOrch driving.SyncOrchestrator) *Watcher {
	return &Watcher{
		sourceStore: sourceStore,
		sync:        syncOrch,
		debounce:    DefaultWatchDebounce,
	}
}

// Watch blocks until the context is cancelled, syncing sources as their
// files change. Returns an error when no source has a watchable file.
func (w *Watcher) Watch(ctx context.Context) error {
	sources, err := w.sourceStore.List(ctx)
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}

	targets := watchTargets(sources)
	if len(targets) == 0 {
		return fmt.Errorf("%w: no enabled source reads a watchable local file", domain.ErrInvalidInput)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	// Watch containing directories rather than the files themselves so
	// save-by-rename does not silently drop the watch.
	dirs := make(map[string]bool)
	for path := range targets {
		dir := filepath.Dir(path)
		if dirs[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	logger.Info("Watching %d files across %d directories", len(targets), len(dirs))

	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !shouldResync(event.Op) {
				continue
			}
			names := targets[filepath.Clean(event.Name)]
			if len(names) == 0 {
				continue
			}
			for _, name := range names {
				pending[name] = true
			}
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher: %v", err)

		case <-timer.C:
			w.flush(ctx, pending, timer)
		}
	}
}

// flush syncs every pending source. A source whose sync is rejected
// because a run is already active stays pending for the next round.
func (w *Watcher) flush(ctx context.Context, pending map[string]bool, timer *time.Timer) {
	for name := range pending {
		delete(pending, name)
		logger.Info("Change detected, syncing %s", name)
		if _, err := w.sync.Sync(ctx, name); err != nil {
			if errors.Is(err, domain.ErrSyncInProgress) {
				pending[name] = true
				continue
			}
			logger.Warn("Watcher: sync %s: %v", name, err)
		}
	}
	if len(pending) > 0 {
		timer.Reset(w.debounce)
	}
}

// shouldResync reports whether a filesystem event warrants a re-sync.
// Writes and creates do; a create is how editors surface save-by-rename.
// Removals do not: syncing a missing file only produces noise, and a
// replace arrives as a create moments later.
func shouldResync(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create)
}

// watchTargets maps each watchable local file to the names of the
// enabled sources that read it.
func watchTargets(sources []domain.Source) map[string][]string {
	targets := make(map[string][]string)
	add := func(path, name string) {
		if path == "" {
			return
		}
		path = filepath.Clean(path)
		targets[path] = append(targets[path], name)
	}

	for _, src := range sources {
		if !src.Enabled {
			continue
		}
		switch src.Type {
		case domain.SourceTypeSpreadsheet:
			add(localPath(src.Setting("path", "")), src.Name)
		case domain.SourceTypeDatabase:
			add(localPath(src.Setting("dsn", "")), src.Name)
			add(localPath(src.Setting("query_file", "")), src.Name)
		case domain.SourceTypeGitHub:
			// Nothing on disk to watch.
		}
	}
	return targets
}

// localPath extracts a filesystem path from a path-or-URL setting.
// Returns empty for remote references.
func localPath(ref string) string {
	if ref == "" || strings.Contains(ref, "://") {
		return ""
	}
	if rest, ok := strings.CutPrefix(ref, "file:"); ok {
		// SQLite file: DSNs carry options after '?'.
		if q := strings.IndexByte(rest, '?'); q >= 0 {
			rest = rest[:q]
		}
		return rest
	}
	return ref
}
