package driven

import (
	"context"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
)

// CollectionClient is the request/response client for the remote document
// service's dataset, document and parse-job endpoints. Every operation is
// independently retryable by the caller and fails with one of the remote
// error classes: domain.ErrRemoteUnavailable (connection-level),
// domain.ErrRemoteRejected (4xx or application error, non-retryable) or
// domain.ErrRemoteTransient (5xx or timeout, retryable).
type CollectionClient interface {
	// GetOrCreateCollection looks a collection up by exact name. Found and
	// accessible: reused. Found but owned by another principal: a new
	// collection is created under the name plus a timestamp suffix, never
	// silently reused. Absent: created from the spec. The spec's empty
	// EmbeddingModel means the tenant default is used; the client must not
	// invent an override.
	GetOrCreateCollection(ctx context.Context, spec domain.CollectionSpec) (*domain.Collection, error)

	// ListCollections pages through all collections.
	ListCollections(ctx context.Context, page, pageSize int) (int, []domain.Collection, error)

	// FindCollection looks a collection up by exact name.
	// Returns domain.ErrNotFound when absent.
	FindCollection(ctx context.Context, name string) (*domain.Collection, error)

	// DeleteCollection removes a collection and all its documents.
	DeleteCollection(ctx context.Context, collectionID string) error

	// UploadDocument uploads one file in a single shot and returns the
	// remote document id. No metadata-mutation call may follow an upload
	// within the same unit of work: the remote service corrupts the
	// document's backing-storage pointer when metadata is patched onto a
	// freshly uploaded document. Metadata therefore rides the display name.
	UploadDocument(ctx context.Context, collectionID, localPath, displayName string) (string, error)

	// DeleteDocuments removes documents by id. Idempotent: absent ids are
	// not an error.
	DeleteDocuments(ctx context.Context, collectionID string, documentIDs []string) error

	// ListDocuments pages through a collection's documents.
	ListDocuments(ctx context.Context, collectionID string, page, pageSize int) (int, []domain.RemoteDocument, error)

	// StartParse requests asynchronous parsing for exactly the given ids.
	// Never collection-wide: unscoped parsing duplicates work across runs.
	StartParse(ctx context.Context, collectionID string, documentIDs []string) error

	// StopParse cancels parsing for the given ids.
	StopParse(ctx context.Context, collectionID string, documentIDs []string) error
}
