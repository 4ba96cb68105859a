package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ingesta-cli/internal/logger"
)

// Ensure CollectionAdmin implements the interface.
var _ driving.CollectionAdmin = (*CollectionAdmin)(nil)

// collectionPageSize is the page size for collection and document listings.
const collectionPageSize = 50

// CollectionAdmin provides remote collection housekeeping: listing,
// deletion with ledger purge, and parse control outside a sync run.
type CollectionAdmin struct {
	client  driven.CollectionClient
	ledger  driven.RevisionLedger
	monitor *JobMonitor
}

// NewCollectionAdmin creates a collection admin service.
func NewCollectionAdmin(client driven.CollectionClient, ledger driven.RevisionLedger, monitor *JobMonitor) *CollectionAdmin {
	return &CollectionAdmin{client: client, ledger: ledger, monitor: monitor}
}

// List returns every remote collection.
func (a *CollectionAdmin) List(ctx context.Context) ([]domain.Collection, error) {
	var all []domain.Collection

	page := 1
	for {
		total, collections, err := a.client.ListCollections(ctx, page, collectionPageSize)
		if err != nil {
			return nil, fmt.Errorf("list collections: %w", err)
		}
		all = append(all, collections...)

		if len(collections) == 0 || len(all) >= total {
			return all, nil
		}
		page++
	}
}

// Delete removes the named collection remotely, then purges its ledger
// records so later runs re-upload from scratch.
func (a *CollectionAdmin) Delete(ctx context.Context, name string) error {
	collection, err := a.client.FindCollection(ctx, name)
	if err != nil {
		return fmt.Errorf("find collection %q: %w", name, err)
	}

	if err := a.client.DeleteCollection(ctx, collection.RemoteID); err != nil {
		return fmt.Errorf("delete collection %q: %w", name, err)
	}

	purged, err := a.ledger.DeleteByCollection(ctx, collection.RemoteID)
	if err != nil {
		// The remote collection is already gone; the stale records only
		// cost needless skip checks, so report rather than fail.
		logger.Warn("purging ledger for %s: %v", name, err)
		return nil
	}
	logger.Info("Deleted collection %s and %d ledger records", name, purged)
	return nil
}

// CheckAndParse finds the named collection's unparsed and failed
// documents, starts parsing for exactly those, and monitors the result.
func (a *CollectionAdmin) CheckAndParse(ctx context.Context, name string) (*domain.CollectionReport, error) {
	collection, err := a.client.FindCollection(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("find collection %q: %w", name, err)
	}

	report := &domain.CollectionReport{
		Collection:   collection.Name,
		CollectionID: collection.RemoteID,
	}

	ids, err := a.documentsInStates(ctx, collection.RemoteID, domain.RunStateUnstarted, domain.RunStateFailed)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		logger.Info("Collection %s has no unparsed documents", name)
		return report, nil
	}

	if err := a.client.StartParse(ctx, collection.RemoteID, ids); err != nil {
		return nil, fmt.Errorf("start parse: %w", err)
	}
	report.DocumentIDs = ids
	report.ParseRequested = true
	logger.Info("Parsing %d documents in %s", len(ids), name)

	counts, deadlineExceeded, err := a.monitor.Monitor(ctx, collection.RemoteID, ids, nil)
	report.ParseStates = counts
	report.DeadlineExceeded = deadlineExceeded
	if err != nil {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		report.Warnings = append(report.Warnings, fmt.Sprintf("parse monitoring stopped: %v", err))
	}
	return report, nil
}

// CancelParse stops parsing for the named collection's running
// documents and returns how many were told to stop.
func (a *CollectionAdmin) CancelParse(ctx context.Context, name string) (int, error) {
	collection, err := a.client.FindCollection(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("find collection %q: %w", name, err)
	}

	ids, err := a.documentsInStates(ctx, collection.RemoteID, domain.RunStateRunning)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if err := a.client.StopParse(ctx, collection.RemoteID, ids); err != nil {
		return 0, fmt.Errorf("stop parse: %w", err)
	}
	return len(ids), nil
}

// LedgerStats summarises the local revision ledger.
func (a *CollectionAdmin) LedgerStats(ctx context.Context) (*domain.LedgerStats, error) {
	return a.ledger.Stats(ctx)
}

// ExportRecords returns every live ledger record, grouped by collection
// id in sorted order so exports are stable across runs.
func (a *CollectionAdmin) ExportRecords(ctx context.Context) ([]domain.RevisionRecord, error) {
	stats, err := a.ledger.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger stats: %w", err)
	}

	collectionIDs := make([]string, 0, len(stats.ByCollection))
	for id := range stats.ByCollection {
		collectionIDs = append(collectionIDs, id)
	}
	sort.Strings(collectionIDs)

	var records []domain.RevisionRecord
	for _, id := range collectionIDs {
		fromCollection, err := a.ledger.List(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("list ledger records for %s: %w", id, err)
		}
		records = append(records, fromCollection...)
	}
	return records, nil
}

// documentsInStates pages through a collection and returns the ids of
// documents in any of the given run states, in listing order.
func (a *CollectionAdmin) documentsInStates(ctx context.Context, collectionID string, states ...domain.RunState) ([]string, error) {
	wanted := make(map[domain.RunState]bool, len(states))
	for _, s := range states {
		wanted[s] = true
	}

	var ids []string

	page := 1
	seen := 0
	for {
		total, docs, err := a.client.ListDocuments(ctx, collectionID, page, collectionPageSize)
		if err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		for _, doc := range docs {
			if wanted[doc.RunState] {
				ids = append(ids, doc.ID)
			}
		}

		seen += len(docs)
		if len(docs) == 0 || seen >= total {
			return ids, nil
		}
		page++
	}
}
