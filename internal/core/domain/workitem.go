package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// WorkItem represents one unit of ingestible content produced by a source
// adapter. Items are immutable once constructed and are discarded after the
// sync coordinator finishes processing them.
type WorkItem struct {
	// SourceKey is an opaque identifier stable across runs, used to
	// correlate the item with the revision ledger. Typically sheet name
	// plus row number, a query key column, or a repository file path.
	SourceKey string

	// ContentRef is a resolvable reference: local path, file:// URI,
	// http(s):// URL, or a suggested file name when Payload is set.
	ContentRef string

	// Payload holds literal content for items materialised from source
	// columns rather than fetched from a reference. Nil for all other items.
	Payload []byte

	// Metadata carries labelled values through to the uploaded document
	// unchanged. Order follows the source's column order.
	Metadata Metadata

	// RevisionFingerprint identifies the content's current version.
	// Two items with equal SourceKey and equal fingerprint are unchanged.
	// Always derived deterministically from source-exposed content.
	RevisionFingerprint string
}

// IsLiteral reports whether the item carries its content inline instead of
// referencing it.
func (w WorkItem) IsLiteral() bool {
	return w.Payload != nil
}

// MetadataField is one labelled value attached to a work item.
type MetadataField struct {
	// Key is the source column or header label.
	Key string

	// Value is the cell or column value coerced to a string.
	Value string
}

// Metadata is an ordered set of labelled values. Insertion order is
// preserved so display names and materialised documents keep the source's
// column order.
type Metadata []MetadataField

// Get returns the value for key and whether it exists.
func (m Metadata) Get(key string) (string, bool) {
	for _, f := range m {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Set replaces the value for key in place, or appends the field when absent.
func (m *Metadata) Set(key, value string) {
	for i, f := range *m {
		if f.Key == key {
			(*m)[i].Value = value
			return
		}
	}
	*m = append(*m, MetadataField{Key: key, Value: value})
}

// Keys returns the field keys in order.
func (m Metadata) Keys() []string {
	keys := make([]string, len(m))
	for i, f := range m {
		keys[i] = f.Key
	}
	return keys
}

// Clone returns an independent copy.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	copy(out, m)
	return out
}

// Fingerprint derives a deterministic revision fingerprint from the given
// fields. Equal inputs always produce equal fingerprints across runs and
// hosts.
func Fingerprint(fields ...string) string {
	h := sha256.New()
	for _, f := range fields {
		h.Write([]byte(f))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ItemPhase tracks a work item through the sync pipeline.
type ItemPhase string

// Pipeline phases in processing order.
const (
	// PhasePending is the initial state before any decision.
	PhasePending ItemPhase = "pending"

	// PhaseSkipped means the ledger already holds this revision.
	PhaseSkipped ItemPhase = "skipped"

	// PhaseResolving means file resolution is underway.
	PhaseResolving ItemPhase = "resolving"

	// PhaseResolved means local files are ready for upload.
	PhaseResolved ItemPhase = "resolved"

	// PhaseUploading means uploads are in flight.
	PhaseUploading ItemPhase = "uploading"

	// PhaseUploaded means every file for the item was uploaded.
	PhaseUploaded ItemPhase = "uploaded"

	// PhaseCommitted means the ledger now records the new revision.
	PhaseCommitted ItemPhase = "committed"

	// PhaseFailed means the item failed and was excluded from the parse batch.
	PhaseFailed ItemPhase = "failed"
)

// Terminal reports whether no further transitions can occur.
func (p ItemPhase) Terminal() bool {
	switch p {
	case PhaseSkipped, PhaseCommitted, PhaseFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p ItemPhase) String() string {
	return string(p)
}

// ResolvedFile is one upload-ready local file produced by the file resolver.
type ResolvedFile struct {
	// Path is the absolute path in the run's scratch area.
	Path string

	// ContentType is the detected MIME type, from the file extension.
	ContentType string

	// Converted is true when the file is the output of a format conversion.
	Converted bool

	// Warning carries a non-fatal degradation notice, such as a conversion
	// failure that fell back to the original file.
	Warning string
}
