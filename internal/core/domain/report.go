package domain

import "time"

// FailureStage names the pipeline stage where an item failed.
type FailureStage string

// Failure stages.
const (
	// StageResolve covers download, extraction and conversion failures.
	StageResolve FailureStage = "resolve"

	// StageUpload covers remote upload failures.
	StageUpload FailureStage = "upload"

	// StageLedger covers ledger commit failures after successful uploads.
	StageLedger FailureStage = "ledger"
)

// ItemFailure records one failed work item and why.
type ItemFailure struct {
	// SourceKey identifies the failed item.
	SourceKey string

	// Stage is where the failure occurred.
	Stage FailureStage

	// Reason is the wrapped error message.
	Reason string
}

// CollectionReport summarises one collection's outcome within a run.
type CollectionReport struct {
	// Collection is the remote collection name.
	Collection string

	// CollectionID is the remote collection identifier.
	CollectionID string

	// ItemsSeen counts work items produced by the source.
	ItemsSeen int

	// Skipped counts items whose revision was already ledgered.
	Skipped int

	// Uploaded counts items whose files all uploaded and ledgered.
	Uploaded int

	// Failed counts items excluded from the parse batch.
	Failed int

	// Failures holds per-item reasons, in processing order.
	Failures []ItemFailure

	// DocumentIDs are the remote ids uploaded this run, in upload order.
	// This is exactly the set handed to the parse request.
	DocumentIDs []string

	// ParseRequested is true when a parse was started for DocumentIDs.
	ParseRequested bool

	// ParseStates is the final observed run-state distribution.
	ParseStates RunStateCounts

	// DeadlineExceeded is true when monitoring stopped at the deadline
	// with documents still in a non-terminal state. Reported, not fatal.
	DeadlineExceeded bool

	// Warnings holds non-fatal notices such as conversion fallbacks.
	Warnings []string
}

// AddFailure records a failed item.
func (r *CollectionReport) AddFailure(sourceKey string, stage FailureStage, reason string) {
	r.Failed++
	r.Failures = append(r.Failures, ItemFailure{
		SourceKey: sourceKey,
		Stage:     stage,
		Reason:    reason,
	})
}

// RunReport aggregates a whole sync run.
type RunReport struct {
	// RunID uniquely identifies the run.
	RunID string

	// StartedAt is when the run began.
	StartedAt time.Time

	// FinishedAt is when the run completed.
	FinishedAt time.Time

	// Collections holds one report per synced collection.
	Collections []CollectionReport

	// Fatal is set when the run aborted before completing, such as a
	// source being unavailable. Distinct from per-item failures.
	Fatal string
}

// TotalUploaded sums uploads across collections.
func (r *RunReport) TotalUploaded() int {
	n := 0
	for _, c := range r.Collections {
		n += c.Uploaded
	}
	return n
}

// TotalFailed sums failed items across collections.
func (r *RunReport) TotalFailed() int {
	n := 0
	for _, c := range r.Collections {
		n += c.Failed
	}
	return n
}

// TotalSkipped sums skipped items across collections.
func (r *RunReport) TotalSkipped() int {
	n := 0
	for _, c := range r.Collections {
		n += c.Skipped
	}
	return n
}
