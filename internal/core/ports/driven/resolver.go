package driven

import (
	"context"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
)

// FileResolver turns one work item's content reference into zero or more
// local files ready for upload: local and file:// paths are copied into a
// scratch area, http(s) URLs are downloaded, archives are expanded member
// by member, convertible formats go through the document converter, and
// literal payloads are materialised as labelled text files.
//
// Failure classes: domain.ErrDownloadFailed and domain.ErrInvalidFile are
// per-item failures. Conversion failures do not fail the item: the original
// file is returned with its warning set and the remote service gets the
// final say.
type FileResolver interface {
	// Resolve produces the upload-ready files for an item, in a stable
	// order (archive members in archive order).
	Resolve(ctx context.Context, item domain.WorkItem) ([]domain.ResolvedFile, error)

	// Cleanup removes the run's scratch area.
	Cleanup() error
}

// DocumentConverter invokes an external converter subprocess to turn an
// unaccepted document format into an accepted one.
type DocumentConverter interface {
	// Available reports whether a converter binary was found.
	Available() bool

	// Convert writes path converted to targetFormat into outDir and
	// returns the produced file's path. Bounded runtime; a non-zero exit,
	// timeout or missing output fails with domain.ErrConversionFailed.
	Convert(ctx context.Context, path, targetFormat, outDir string) (string, error)
}
