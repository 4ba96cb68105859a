package services

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ingesta-cli/internal/logger"
)

// monitorPageSize is the document page size used while polling.
const monitorPageSize = 100

// JobMonitor polls the remote service until a set of documents reaches
// terminal parse states. Parsing itself runs remotely; the monitor only
// observes.
type JobMonitor struct {
	client   driven.CollectionClient
	interval time.Duration
	deadline time.Duration
}

// NewJobMonitor creates a monitor with the given polling configuration.
func NewJobMonitor(client driven.CollectionClient, settings domain.MonitorSettings) *JobMonitor {
	interval := settings.PollInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	deadline := settings.Deadline
	if deadline <= 0 {
		deadline = 30 * time.Minute
	}
	return &JobMonitor{client: client, interval: interval, deadline: deadline}
}

// Monitor polls the collection until every tracked document is in a
// terminal state, the deadline passes, or ctx is cancelled. It returns
// the last observed distribution and whether the deadline cut
// monitoring short. A deadline is reported, never an error: in-flight
// remote work is left to finish on its own.
//
// The onPoll callback, when non-nil, receives each observed
// distribution so callers can surface live progress.
func (m *JobMonitor) Monitor(
	ctx context.Context,
	collectionID string,
	documentIDs []string,
	onPoll func(domain.RunStateCounts),
) (domain.RunStateCounts, bool, error) {
	if len(documentIDs) == 0 {
		return domain.RunStateCounts{}, false, nil
	}

	tracked := make(map[string]bool, len(documentIDs))
	for _, id := range documentIDs {
		tracked[id] = true
	}

	deadline := time.NewTimer(m.deadline)
	defer deadline.Stop()
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	last := domain.RunStateCounts{}
	observe := func() (bool, error) {
		counts, err := m.poll(ctx, collectionID, tracked)
		if err != nil {
			// Rejections will not heal by polling again; transient and
			// connection-level failures might.
			if errors.Is(err, domain.ErrRemoteRejected) {
				return false, err
			}
			logger.Warn("monitor: poll failed: %v", err)
			return false, nil
		}
		last = counts
		if onPoll != nil {
			onPoll(counts)
		}
		return counts.Terminal() >= len(tracked), nil
	}

	// First look right away; uploads may already be parsed.
	done, err := observe()
	if err != nil {
		return last, false, err
	}
	if done {
		return last, false, nil
	}

	for {
		select {
		case <-ctx.Done():
			return last, false, ctx.Err()

		case <-deadline.C:
			logger.Warn("monitor: deadline reached with %d of %d documents terminal",
				last.Terminal(), len(tracked))
			return last, true, nil

		case <-ticker.C:
			done, err := observe()
			if err != nil {
				return last, false, err
			}
			if done {
				return last, false, nil
			}
		}
	}
}

// poll pages through the collection's documents and tallies the run
// states of tracked ids.
func (m *JobMonitor) poll(ctx context.Context, collectionID string, tracked map[string]bool) (domain.RunStateCounts, error) {
	counts := domain.RunStateCounts{}

	page := 1
	seen := 0
	for {
		total, docs, err := m.client.ListDocuments(ctx, collectionID, page, monitorPageSize)
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			if tracked[doc.ID] {
				counts[doc.RunState]++
			}
		}

		seen += len(docs)
		if len(docs) == 0 || seen >= total {
			return counts, nil
		}
		page++
	}
}
