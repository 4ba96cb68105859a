package domain

import "time"

// RevisionRecord is one ledger entry: the last known remote identity for a
// source key. At most one live record exists per SourceKey. Records are
// created on first successful upload and replaced whole when the fingerprint
// changes; they are never partially updated.
type RevisionRecord struct {
	// SourceKey identifies the source item. Primary key.
	SourceKey string

	// Fingerprint is the revision fingerprint recorded at last sync.
	Fingerprint string

	// CollectionID is the remote collection holding the documents.
	CollectionID string

	// DocumentIDs are the remote documents created for this item, in upload
	// order. An archive item may expand to many documents.
	DocumentIDs []string

	// LastSyncedAt is when the record was last written.
	LastSyncedAt time.Time
}

// Clone returns an independent copy.
func (r RevisionRecord) Clone() RevisionRecord {
	out := r
	out.DocumentIDs = make([]string, len(r.DocumentIDs))
	copy(out.DocumentIDs, r.DocumentIDs)
	return out
}

// LedgerStats summarises ledger contents for status reporting.
type LedgerStats struct {
	// Records is the total number of live revision records.
	Records int

	// Documents is the total number of remote document ids recorded.
	Documents int

	// ByCollection maps collection id to record count.
	ByCollection map[string]int

	// LastSyncedAt is the most recent record write, zero when empty.
	LastSyncedAt time.Time
}
