package driving

import "context"

// FileWatcher re-syncs sources when their local input files change.
type FileWatcher interface {
	// Watch blocks until the context is cancelled, syncing sources as
	// their files change. Returns an error when no enabled source reads
	// a watchable local file.
	Watch(ctx context.Context) error
}
