package domain

import "time"

// SourceType identifies a source adapter type.
type SourceType string

// Available source types.
const (
	// SourceTypeSpreadsheet walks workbook rows, taking each row's primary
	// hyperlink as the content reference.
	SourceTypeSpreadsheet SourceType = "spreadsheet"

	// SourceTypeDatabase executes a SQL query, mapping designated columns
	// to content references, literal payloads and metadata.
	SourceTypeDatabase SourceType = "database"

	// SourceTypeGitHub walks a repository tree, uploading eligible blobs.
	SourceTypeGitHub SourceType = "github"
)

// IsValid returns true if the source type is recognised.
func (t SourceType) IsValid() bool {
	switch t {
	case SourceTypeSpreadsheet, SourceTypeDatabase, SourceTypeGitHub:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t SourceType) String() string {
	return string(t)
}

// Source represents a configured data source. Each source feeds one remote
// collection, named after the source unless overridden in Settings.
type Source struct {
	// ID is the unique identifier for the source.
	ID string

	// Name is the human-readable name. Doubles as the default collection name.
	Name string

	// Type identifies the adapter that produces this source's work items.
	Type SourceType

	// Enabled indicates whether sync runs include this source.
	Enabled bool

	// Settings contains adapter-specific configuration.
	//
	// spreadsheet: path (workbook path or sheets URL), key_column (optional)
	// database:    dsn, query or query_file, ref_column, content_columns,
	//              metadata_columns, key_column
	// github:      repo ("owner/name"), ref (optional), token, patterns
	Settings map[string]string

	// CreatedAt is when the source was created.
	CreatedAt time.Time

	// UpdatedAt is when the source was last updated.
	UpdatedAt time.Time
}

// Setting returns the named setting or the given default when unset.
func (s *Source) Setting(key, def string) string {
	if v, ok := s.Settings[key]; ok && v != "" {
		return v
	}
	return def
}

// CollectionName returns the remote collection name for this source.
func (s *Source) CollectionName() string {
	if v, ok := s.Settings["collection"]; ok && v != "" {
		return v
	}
	return s.Name
}
