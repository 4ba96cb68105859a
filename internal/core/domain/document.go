package domain

// RemoteDocument represents a document as the collection service reports it.
// Created by upload; all state transitions are driven by the remote service,
// this system only observes them.
type RemoteDocument struct {
	// ID is the service-assigned document identifier.
	ID string

	// CollectionID is the collection holding the document.
	CollectionID string

	// Name is the display name given at upload.
	Name string

	// RunState is the document's parsing progress.
	RunState RunState

	// SizeBytes is the stored size as reported remotely.
	SizeBytes int64
}

// RunState describes a remote document's parsing and indexing progress.
type RunState string

// Run states.
const (
	// RunStateUnstarted means parsing has not been requested or begun.
	RunStateUnstarted RunState = "unstarted"

	// RunStateRunning means parsing is in progress.
	RunStateRunning RunState = "running"

	// RunStateCancelled means parsing was cancelled remotely.
	RunStateCancelled RunState = "cancelled"

	// RunStateDone means parsing completed successfully.
	RunStateDone RunState = "done"

	// RunStateFailed means parsing failed remotely.
	RunStateFailed RunState = "failed"
)

// Terminal reports whether the state is final.
func (s RunState) Terminal() bool {
	switch s {
	case RunStateDone, RunStateFailed, RunStateCancelled:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s RunState) String() string {
	return string(s)
}

// ParseRunState maps the remote service's run tokens onto RunState.
// Unknown tokens map to RunStateUnstarted.
func ParseRunState(remote string) RunState {
	switch remote {
	case "UNSTART":
		return RunStateUnstarted
	case "RUNNING":
		return RunStateRunning
	case "CANCEL":
		return RunStateCancelled
	case "DONE":
		return RunStateDone
	case "FAIL":
		return RunStateFailed
	default:
		return RunStateUnstarted
	}
}

// RunStateCounts is a distribution of tracked documents over run states.
type RunStateCounts map[RunState]int

// Terminal returns the number of documents in a terminal state.
func (c RunStateCounts) Terminal() int {
	return c[RunStateDone] + c[RunStateFailed] + c[RunStateCancelled]
}

// Total returns the total count across all states.
func (c RunStateCounts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}
