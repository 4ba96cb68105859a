package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown source adapter type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrSyncInProgress indicates a sync is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// Pipeline Errors.

	// ErrSourceUnavailable indicates the underlying spreadsheet, database or
	// repository could not be opened. Aborts the whole run, never per-item.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrDownloadFailed indicates a content reference could not be fetched.
	// Recorded as a per-item failure.
	ErrDownloadFailed = errors.New("download failed")

	// ErrInvalidFile indicates a resolved file is missing or zero-length.
	ErrInvalidFile = errors.New("invalid file")

	// ErrConversionFailed indicates the external converter failed.
	// The resolver degrades to the original file rather than dropping the item.
	ErrConversionFailed = errors.New("conversion failed")

	// Remote Errors.

	// ErrRemoteUnavailable indicates the collection service could not be reached.
	ErrRemoteUnavailable = errors.New("remote service unavailable")

	// ErrRemoteTransient indicates a retryable remote failure (5xx or timeout).
	ErrRemoteTransient = errors.New("transient remote failure")

	// ErrRemoteRejected indicates the remote service refused the request.
	// Non-retryable.
	ErrRemoteRejected = errors.New("request rejected by remote service")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrLedgerWriteFailed indicates uploads succeeded but the ledger commit
	// did not. The uploaded documents remain remote and unrecorded, so the
	// next run will re-upload them. Fatal to the item, not the run.
	ErrLedgerWriteFailed = errors.New("ledger write failed")
)
