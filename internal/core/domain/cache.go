package domain

import "time"

// CacheEntry records one completed download.
type CacheEntry struct {
	// URL is the fetched location. Primary key.
	URL string

	// LocalPath is where the content landed.
	LocalPath string

	// SizeBytes is the downloaded size.
	SizeBytes int64

	// FetchedAt is when the download completed.
	FetchedAt time.Time
}

// Fresh reports whether the entry is still within its time-to-live.
// Callers must separately verify the cached file still exists.
func (e CacheEntry) Fresh(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(e.FetchedAt) < ttl
}
