package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ingesta-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driven"
)

// purgeFailingLedger fails DeleteByCollection and delegates the rest.
type purgeFailingLedger struct {
	driven.RevisionLedger
	err error
}

func (l *purgeFailingLedger) DeleteByCollection(context.Context, string) (int, error) {
	return 0, l.err
}

func newTestAdmin(remote *fakeRemote, ledger driven.RevisionLedger) *CollectionAdmin {
	return NewCollectionAdmin(remote, ledger, fastMonitor(remote))
}

func seedCollection(t *testing.T, remote *fakeRemote, name string) *domain.Collection {
	t.Helper()
	col, err := remote.GetOrCreateCollection(context.Background(), domain.CollectionSpec{Name: name})
	require.NoError(t, err)
	return col
}

func TestCollectionAdmin_List_Empty(t *testing.T) {
	admin := newTestAdmin(newFakeRemote(), memory.NewRevisionLedger())

	collections, err := admin.List(context.Background())

	require.NoError(t, err)
	assert.Empty(t, collections)
}

func TestCollectionAdmin_List_Pages(t *testing.T) {
	remote := newFakeRemote()
	for i := 0; i < 120; i++ {
		seedCollection(t, remote, fmt.Sprintf("kb-%03d", i))
	}
	admin := newTestAdmin(remote, memory.NewRevisionLedger())

	collections, err := admin.List(context.Background())

	require.NoError(t, err)
	require.Len(t, collections, 120)
	assert.Equal(t, "kb-000", collections[0].Name)
	assert.Equal(t, "kb-119", collections[119].Name)
}

func TestCollectionAdmin_Delete_PurgesLedger(t *testing.T) {
	remote := newFakeRemote()
	ledger := memory.NewRevisionLedger()
	ctx := context.Background()

	col := seedCollection(t, remote, "reports")
	other := seedCollection(t, remote, "notes")
	require.NoError(t, ledger.Replace(ctx, domain.RevisionRecord{
		SourceKey: "rows!1", Fingerprint: "fp-1", CollectionID: col.RemoteID, DocumentIDs: []string{"doc-1"},
	}))
	require.NoError(t, ledger.Replace(ctx, domain.RevisionRecord{
		SourceKey: "rows!2", Fingerprint: "fp-2", CollectionID: col.RemoteID, DocumentIDs: []string{"doc-2"},
	}))
	require.NoError(t, ledger.Replace(ctx, domain.RevisionRecord{
		SourceKey: "notes!1", Fingerprint: "fp-3", CollectionID: other.RemoteID, DocumentIDs: []string{"doc-3"},
	}))

	admin := newTestAdmin(remote, ledger)
	require.NoError(t, admin.Delete(ctx, "reports"))

	_, err := remote.FindCollection(ctx, "reports")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Records for the deleted collection are gone, others stay.
	_, err = ledger.Lookup(ctx, "rows!1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = ledger.Lookup(ctx, "rows!2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	record, err := ledger.Lookup(ctx, "notes!1")
	require.NoError(t, err)
	assert.Equal(t, other.RemoteID, record.CollectionID)
}

func TestCollectionAdmin_Delete_NotFound(t *testing.T) {
	admin := newTestAdmin(newFakeRemote(), memory.NewRevisionLedger())

	err := admin.Delete(context.Background(), "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCollectionAdmin_Delete_LedgerPurgeFailureIsNotFatal(t *testing.T) {
	remote := newFakeRemote()
	seedCollection(t, remote, "reports")
	ledger := &purgeFailingLedger{
		RevisionLedger: memory.NewRevisionLedger(),
		err:            errors.New("disk full"),
	}
	admin := newTestAdmin(remote, ledger)

	err := admin.Delete(context.Background(), "reports")

	require.NoError(t, err, "the remote collection is gone, stale records are not fatal")
	_, findErr := remote.FindCollection(context.Background(), "reports")
	assert.ErrorIs(t, findErr, domain.ErrNotFound)
}

func TestCollectionAdmin_CheckAndParse_ParsesUnstartedAndFailed(t *testing.T) {
	remote := newFakeRemote()
	seedCollection(t, remote, "reports")
	remote.setStates(domain.RunStateUnstarted, "doc-a")
	remote.setStates(domain.RunStateFailed, "doc-b")
	remote.setStates(domain.RunStateDone, "doc-c")
	remote.setStates(domain.RunStateRunning, "doc-d")
	// Parsing finishes the unstarted document after the first poll.
	remote.afterList = func(fr *fakeRemote) {
		if fr.docStates["doc-a"] == domain.RunStateUnstarted {
			fr.docStates["doc-a"] = domain.RunStateDone
		}
	}
	admin := newTestAdmin(remote, memory.NewRevisionLedger())

	report, err := admin.CheckAndParse(context.Background(), "reports")

	require.NoError(t, err)
	assert.True(t, report.ParseRequested)
	assert.Equal(t, []string{"doc-a", "doc-b"}, report.DocumentIDs)

	require.Len(t, remote.parses, 1)
	assert.Equal(t, []string{"doc-a", "doc-b"}, remote.parses[0],
		"done and running documents are left alone")

	assert.False(t, report.DeadlineExceeded)
	assert.Equal(t, 1, report.ParseStates[domain.RunStateDone])
	assert.Equal(t, 1, report.ParseStates[domain.RunStateFailed])
}

func TestCollectionAdmin_CheckAndParse_NothingToParse(t *testing.T) {
	remote := newFakeRemote()
	seedCollection(t, remote, "reports")
	remote.setStates(domain.RunStateDone, "doc-a", "doc-b")
	admin := newTestAdmin(remote, memory.NewRevisionLedger())

	report, err := admin.CheckAndParse(context.Background(), "reports")

	require.NoError(t, err)
	assert.False(t, report.ParseRequested)
	assert.Empty(t, report.DocumentIDs)
	assert.Empty(t, remote.parses)
}

func TestCollectionAdmin_CheckAndParse_CollectionNotFound(t *testing.T) {
	admin := newTestAdmin(newFakeRemote(), memory.NewRevisionLedger())

	_, err := admin.CheckAndParse(context.Background(), "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCollectionAdmin_CheckAndParse_StartParseFails(t *testing.T) {
	remote := newFakeRemote()
	seedCollection(t, remote, "reports")
	remote.setStates(domain.RunStateUnstarted, "doc-a")
	remote.parseErr = fmt.Errorf("%w: 502", domain.ErrRemoteUnavailable)
	admin := newTestAdmin(remote, memory.NewRevisionLedger())

	_, err := admin.CheckAndParse(context.Background(), "reports")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
}

func TestCollectionAdmin_CancelParse_StopsRunning(t *testing.T) {
	remote := newFakeRemote()
	seedCollection(t, remote, "reports")
	remote.setStates(domain.RunStateRunning, "doc-a", "doc-c")
	remote.setStates(domain.RunStateDone, "doc-b")
	admin := newTestAdmin(remote, memory.NewRevisionLedger())

	n, err := admin.CancelParse(context.Background(), "reports")

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, remote.stops, 1)
	assert.Equal(t, []string{"doc-a", "doc-c"}, remote.stops[0])
	assert.Equal(t, domain.RunStateCancelled, remote.docStates["doc-a"])
	assert.Equal(t, domain.RunStateDone, remote.docStates["doc-b"])
}

func TestCollectionAdmin_CancelParse_NothingRunning(t *testing.T) {
	remote := newFakeRemote()
	seedCollection(t, remote, "reports")
	remote.setStates(domain.RunStateDone, "doc-a")
	admin := newTestAdmin(remote, memory.NewRevisionLedger())

	n, err := admin.CancelParse(context.Background(), "reports")

	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, remote.stops)
}

func TestCollectionAdmin_CancelParse_CollectionNotFound(t *testing.T) {
	admin := newTestAdmin(newFakeRemote(), memory.NewRevisionLedger())

	_, err := admin.CancelParse(context.Background(), "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCollectionAdmin_LedgerStats(t *testing.T) {
	ledger := memory.NewRevisionLedger()
	ctx := context.Background()
	require.NoError(t, ledger.Replace(ctx, domain.RevisionRecord{
		SourceKey: "rows!1", Fingerprint: "fp-1", CollectionID: "kb-1", DocumentIDs: []string{"doc-1", "doc-2"},
	}))
	require.NoError(t, ledger.Replace(ctx, domain.RevisionRecord{
		SourceKey: "notes!1", Fingerprint: "fp-2", CollectionID: "kb-2", DocumentIDs: []string{"doc-3"},
	}))
	admin := newTestAdmin(newFakeRemote(), ledger)

	stats, err := admin.LedgerStats(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, stats.Records)
	assert.Equal(t, 3, stats.Documents)
	assert.Equal(t, map[string]int{"kb-1": 1, "kb-2": 1}, stats.ByCollection)
}

func TestCollectionAdmin_ExportRecords(t *testing.T) {
	ledger := memory.NewRevisionLedger()
	ctx := context.Background()
	require.NoError(t, ledger.Replace(ctx, domain.RevisionRecord{
		SourceKey: "rows!1", Fingerprint: "fp-1", CollectionID: "kb-2", DocumentIDs: []string{"doc-1"},
	}))
	require.NoError(t, ledger.Replace(ctx, domain.RevisionRecord{
		SourceKey: "rows!2", Fingerprint: "fp-2", CollectionID: "kb-1", DocumentIDs: []string{"doc-2"},
	}))
	admin := newTestAdmin(newFakeRemote(), ledger)

	records, err := admin.ExportRecords(ctx)

	require.NoError(t, err)
	require.Len(t, records, 2)
	// Grouped by collection id in sorted order.
	assert.Equal(t, "rows!2", records[0].SourceKey)
	assert.Equal(t, "rows!1", records[1].SourceKey)
}

func TestCollectionAdmin_ExportRecords_Empty(t *testing.T) {
	admin := newTestAdmin(newFakeRemote(), memory.NewRevisionLedger())

	records, err := admin.ExportRecords(context.Background())

	require.NoError(t, err)
	assert.Empty(t, records)
}
