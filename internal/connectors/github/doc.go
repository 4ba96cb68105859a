// Package github implements a source adapter for GitHub repositories.
//
// The adapter walks a single configured repository tree and produces one
// work item per eligible blob. Blob SHAs serve as revision fingerprints,
// so an unchanged file is skipped by the revision ledger on later runs
// without any content comparison.
//
// # Configuration
//
// Source settings accept the following keys:
//
//   - repo: the repository as "owner/name". Required.
//   - ref: branch, tag or commit to walk. Default: the default branch.
//   - token: personal access token. Required for private repositories;
//     public repositories work unauthenticated at a reduced rate limit.
//   - patterns: comma-separated glob patterns selecting files.
//     Example: "*.md,docs/*". Default: all non-binary files.
//   - max_file_size: per-blob size cap in bytes. Default: 1 MiB, the
//     API's inline blob limit.
//
// # Content references
//
// Public repository blobs are referenced by their raw download URL and
// fetched by the file resolver, which lets the download cache absorb
// repeat runs. Private repository blobs cannot be fetched without
// credentials the resolver does not hold, so their content is read
// through the API up front and carried on the work item as a literal
// payload.
//
// # Rate limiting
//
// Requests pass a dual-strategy limiter: a proactive token bucket keeps
// the request rate under the API budget, and response headers are
// tracked so the adapter can wait out an exhausted quota instead of
// burning requests into 403s.
package github
