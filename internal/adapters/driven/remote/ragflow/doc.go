// Package ragflow implements the collection client against a
// RAGFlow-compatible document service HTTP API.
//
// All endpoints live under {base}/api/v1 and respond with a JSON envelope
// of code, message and data. A non-zero code is an application error
// regardless of HTTP status, and the client folds both signals into one
// error taxonomy:
//
//   - [domain.ErrRemoteUnavailable]: the service could not be reached
//   - [domain.ErrRemoteTransient]: 5xx, 429 or a timeout; retried with
//     doubling backoff up to the configured attempt budget
//   - [domain.ErrRemoteRejected]: 4xx or an envelope code != 0; never
//     retried
//
// The concrete service detail is available via [APIError] through
// errors.As.
//
// # Authentication and pacing
//
// Every request carries a bearer token injected by an oauth2 static token
// source. A token bucket limiter gates each outgoing request so bulk runs
// stay under the service's request ceiling.
//
// # Upload semantics
//
// Uploads are single-shot multipart requests. The display name given at
// upload is the only metadata channel: updating a document's metadata
// after upload has been observed to corrupt the document's
// backing-storage pointer on the service side, so the client never issues
// a mutation call for a freshly uploaded document.
//
// # Collection reuse
//
// GetOrCreateCollection reuses an accessible collection with the exact
// requested name. When the name belongs to another principal the service
// only reveals it through an ownership error, in which case a new
// collection is created under the name plus a unix-timestamp suffix.
package ragflow
