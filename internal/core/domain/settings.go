package domain

import "time"

// RemoteSettings holds collection service connection configuration.
type RemoteSettings struct {
	// BaseURL is the service root, without the /api/v1 suffix.
	BaseURL string

	// APIKey is the bearer token. The INGESTA_API_KEY environment
	// variable overrides the stored value.
	APIKey string

	// Timeout bounds a single request.
	Timeout time.Duration

	// RetryAttempts bounds retries for transient failures.
	RetryAttempts int

	// RatePerSecond throttles outgoing requests.
	RatePerSecond float64
}

// CollectionSettings holds defaults for newly created collections.
type CollectionSettings struct {
	// Permission is the access scope for new collections.
	Permission Permission

	// Language hints the remote text handling.
	Language string

	// ChunkMethod selects the remote chunking strategy.
	ChunkMethod string

	// EmbeddingModel overrides the tenant default. Leave empty unless the
	// tenant default is deliberately unsuitable.
	EmbeddingModel string

	// Parser configures the remote parsing stage.
	Parser ParserSettings
}

// Spec builds a CollectionSpec for the given collection name.
func (c CollectionSettings) Spec(name string) CollectionSpec {
	return CollectionSpec{
		Name:           name,
		Permission:     c.Permission,
		Language:       c.Language,
		ChunkMethod:    c.ChunkMethod,
		EmbeddingModel: c.EmbeddingModel,
		Parser:         c.Parser,
	}
}

// ResolveSettings holds file resolution configuration.
type ResolveSettings struct {
	// ScratchDir is where downloads, extracted archives and conversions
	// land. Empty means a per-run directory under the OS temp dir.
	ScratchDir string

	// DownloadTimeout bounds one HTTP download.
	DownloadTimeout time.Duration

	// ConvertTimeout bounds one converter subprocess run.
	ConvertTimeout time.Duration

	// ConverterPath overrides converter discovery. Empty probes known
	// install locations and PATH.
	ConverterPath string

	// CacheTTL is how long cached downloads stay valid.
	CacheTTL time.Duration
}

// SyncSettings holds sync coordinator behaviour.
type SyncSettings struct {
	// SkipUnchanged skips items whose fingerprint is already ledgered.
	SkipUnchanged bool

	// DeleteBeforeUpload deletes a changed item's prior remote documents
	// before uploading the new revision.
	DeleteBeforeUpload bool

	// NameMaxLen caps the display name after metadata folding.
	NameMaxLen int

	// RowSeparator separates records in materialised literal documents.
	RowSeparator string
}

// MonitorSettings holds parse-job monitoring configuration.
type MonitorSettings struct {
	// PollInterval is the gap between listDocuments polls.
	PollInterval time.Duration

	// Deadline bounds total monitoring time per collection.
	Deadline time.Duration
}

// LogSettings holds log output configuration for daemon mode.
type LogSettings struct {
	// File is the log file path. Empty logs to stderr only.
	File string

	// MaxSizeMB rotates the file beyond this size.
	MaxSizeMB int

	// MaxBackups bounds rotated files kept.
	MaxBackups int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Remote holds collection service connection settings.
	Remote RemoteSettings

	// Collection holds defaults for new collections.
	Collection CollectionSettings

	// Resolve holds file resolution settings.
	Resolve ResolveSettings

	// Sync holds coordinator behaviour settings.
	Sync SyncSettings

	// Monitor holds parse monitoring settings.
	Monitor MonitorSettings

	// ScheduleSpec drives daemon mode: "HH:MM" daily, "HH:MM,HH:MM" for
	// several daily times, or a bare number of seconds for a fixed interval.
	ScheduleSpec string

	// Log holds daemon log output settings.
	Log LogSettings
}

// DefaultAppSettings returns settings with sensible defaults. The remote
// base URL and API key must be configured before any sync can run.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Remote: RemoteSettings{
			Timeout:       30 * time.Second,
			RetryAttempts: 3,
			RatePerSecond: 5,
		},
		Collection: CollectionSettings{
			Permission:  PermissionMe,
			Language:    "English",
			ChunkMethod: "naive",
			Parser: ParserSettings{
				ChunkTokens: 512,
			},
		},
		Resolve: ResolveSettings{
			DownloadTimeout: 60 * time.Second,
			ConvertTimeout:  5 * time.Minute,
			CacheTTL:        24 * time.Hour,
		},
		Sync: SyncSettings{
			SkipUnchanged:      true,
			DeleteBeforeUpload: true,
			NameMaxLen:         120,
			RowSeparator:       "\n---\n",
		},
		Monitor: MonitorSettings{
			PollInterval: 10 * time.Second,
			Deadline:     30 * time.Minute,
		},
		Log: LogSettings{
			MaxSizeMB:  20,
			MaxBackups: 3,
		},
	}
}
