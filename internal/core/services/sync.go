package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ingesta-cli/internal/logger"
)

// Ensure SyncCoordinator implements the interface.
var _ driving.SyncOrchestrator = (*SyncCoordinator)(nil)

// ResolverFactory creates a run-scoped file resolver. Every run gets
// its own scratch area, cleaned up when the run finishes.
type ResolverFactory func() (driven.FileResolver, error)

// SyncCoordinator drives the ingestion pipeline: it streams work items
// from a source adapter, skips unchanged revisions, resolves the rest
// to local files, uploads them, commits the revision ledger and hands
// the uploaded ids to the parse monitor.
type SyncCoordinator struct {
	sourceStore driven.SourceStore
	factory     driven.AdapterFactory
	ledger      driven.RevisionLedger
	client      driven.CollectionClient
	newResolver ResolverFactory
	monitor     *JobMonitor

	syncCfg    domain.SyncSettings
	collection domain.CollectionSettings

	// Status tracking
	mu      sync.RWMutex
	running bool
	status  driving.SyncStatus
}

// NewSyncCoordinator creates a sync coordinator.
func NewSyncCoordinator(
	sourceStore driven.SourceStore,
	factory driven.AdapterFactory,
	ledger driven.RevisionLedger,
	client driven.CollectionClient,
	newResolver ResolverFactory,
	monitor *JobMonitor,
	settings *domain.AppSettings,
) *SyncCoordinator {
	return &SyncCoordinator{
		sourceStore: sourceStore,
		factory:     factory,
		ledger:      ledger,
		client:      client,
		newResolver: newResolver,
		monitor:     monitor,
		syncCfg:     settings.Sync,
		collection:  settings.Collection,
	}
}

// Sync runs the pipeline for one source, identified by name or ID.
func (c *SyncCoordinator) Sync(ctx context.Context, source string) (*domain.RunReport, error) {
	src, err := c.findSource(ctx, source)
	if err != nil {
		return nil, err
	}
	return c.run(ctx, []domain.Source{*src})
}

// SyncAll runs the pipeline for every enabled source. A source that
// fails fatally does not stop the remaining sources.
func (c *SyncCoordinator) SyncAll(ctx context.Context) (*domain.RunReport, error) {
	sources, err := c.sourceStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	enabled := make([]domain.Source, 0, len(sources))
	for _, src := range sources {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}
	return c.run(ctx, enabled)
}

// Status returns a copy of the live run progress.
func (c *SyncCoordinator) Status(_ context.Context) (*driving.SyncStatus, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// Copy so callers never share the tracked struct.
	status := c.status
	status.ParseStates = make(domain.RunStateCounts, len(c.status.ParseStates))
	for k, v := range c.status.ParseStates {
		status.ParseStates[k] = v
	}
	status.Running = c.running
	return &status, nil
}

// run executes the pipeline for each source in turn and aggregates one
// report. Runs are exclusive: a second concurrent call fails fast.
func (c *SyncCoordinator) run(ctx context.Context, sources []domain.Source) (*domain.RunReport, error) {
	if !c.begin() {
		return nil, domain.ErrSyncInProgress
	}
	defer c.end()

	report := &domain.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	logger.Section("Sync run " + report.RunID)

	var errs []error
	for _, src := range sources {
		colReport, err := c.syncSource(ctx, src)
		if colReport != nil {
			report.Collections = append(report.Collections, *colReport)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("source %s: %w", src.Name, err))
			if ctx.Err() != nil {
				break
			}
		}
	}

	report.FinishedAt = time.Now().UTC()

	if len(errs) > 0 {
		err := errors.Join(errs...)
		report.Fatal = err.Error()
		return report, err
	}

	logger.Info("Run complete: %d uploaded, %d skipped, %d failed",
		report.TotalUploaded(), report.TotalSkipped(), report.TotalFailed())
	return report, nil
}

// syncSource runs the pipeline for one source into its collection.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (c *SyncCoordinator) syncSource(ctx context.Context, source domain.Source) (*domain.CollectionReport, error) {
	logger.Info("Syncing source %s (%s)", source.Name, source.Type)
	c.setStatus(func(s *driving.SyncStatus) {
		s.Source = source.Name
		s.Phase = "starting"
	})

	// 1. Build the adapter for this source type.
	adapter, err := c.factory.Create(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("create adapter: %w", err)
	}
	defer adapter.Close()

	// 2. Check the source opens before touching the remote service.
	if err := adapter.Validate(ctx); err != nil {
		return nil, err
	}

	// 3. Ensure the collection exists.
	spec := c.collection.Spec(source.CollectionName())
	collection, err := c.client.GetOrCreateCollection(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("get or create collection %q: %w", spec.Name, err)
	}

	report := &domain.CollectionReport{
		Collection:   collection.Name,
		CollectionID: collection.RemoteID,
	}
	c.setStatus(func(s *driving.SyncStatus) {
		s.Collection = collection.Name
		s.Phase = "streaming"
	})

	// 4. A fresh scratch area for this run.
	resolver, err := c.newResolver()
	if err != nil {
		return report, fmt.Errorf("create resolver: %w", err)
	}
	defer func() {
		if err := resolver.Cleanup(); err != nil {
			logger.Warn("scratch cleanup: %v", err)
		}
	}()

	// 5. Stream and process items.
	if err := c.processStream(ctx, adapter, collection.RemoteID, resolver, report); err != nil {
		return report, err
	}

	// 6. One parse request for everything uploaded this run.
	if len(report.DocumentIDs) > 0 {
		if err := c.client.StartParse(ctx, collection.RemoteID, report.DocumentIDs); err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("parse start failed: %v", err))
			logger.Warn("parse start for %s failed: %v", collection.Name, err)
			return report, nil
		}
		report.ParseRequested = true

		// 7. Watch the parse jobs until they settle or the deadline hits.
		c.setStatus(func(s *driving.SyncStatus) {
			s.Phase = "monitoring"
			s.Monitoring = true
		})
		counts, deadlineExceeded, err := c.monitor.Monitor(ctx, collection.RemoteID, report.DocumentIDs,
			func(counts domain.RunStateCounts) {
				c.setStatus(func(s *driving.SyncStatus) { s.ParseStates = counts })
			})
		report.ParseStates = counts
		report.DeadlineExceeded = deadlineExceeded
		c.setStatus(func(s *driving.SyncStatus) { s.Monitoring = false })
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.Warnings = append(report.Warnings, fmt.Sprintf("parse monitoring stopped: %v", err))
		}
	}

	logger.Info("Source %s: %d seen, %d skipped, %d uploaded, %d failed",
		source.Name, report.ItemsSeen, report.Skipped, report.Uploaded, report.Failed)
	return report, nil
}

// processStream consumes the adapter's channels until both close. A
// terminal stream error aborts this source; per-item failures land in
// the report and the stream continues.
func (c *SyncCoordinator) processStream(
	ctx context.Context,
	adapter driven.SourceAdapter,
	collectionID string,
	resolver driven.FileResolver,
	report *domain.CollectionReport,
) error {
	items, errs := adapter.Produce(ctx)

	var streamErr error
	for items != nil || errs != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil && streamErr == nil {
				streamErr = err
			}

		case item, ok := <-items:
			if !ok {
				items = nil
				continue
			}
			report.ItemsSeen++
			c.setStatus(func(s *driving.SyncStatus) { s.ItemsSeen++ })
			c.processItem(ctx, item, collectionID, resolver, report)
		}
	}

	if streamErr != nil {
		return fmt.Errorf("source stream: %w", streamErr)
	}
	return nil
}

// processItem runs one work item through skip, delete-prior, resolve,
// upload and ledger commit. Failures are isolated to the item.
//
//nolint:gocognit // Pipeline with sequential, individually guarded steps
func (c *SyncCoordinator) processItem(
	ctx context.Context,
	item domain.WorkItem,
	collectionID string,
	resolver driven.FileResolver,
	report *domain.CollectionReport,
) {
	// 1. SKIP UNCHANGED
	if c.syncCfg.SkipUnchanged {
		skip, err := c.ledger.ShouldSkip(ctx, item.SourceKey, item.RevisionFingerprint)
		if err != nil {
			logger.Warn("ledger check for %s: %v", item.SourceKey, err)
		} else if skip {
			report.Skipped++
			c.setStatus(func(s *driving.SyncStatus) { s.Skipped++ })
			logger.Debug("Unchanged: %s", item.SourceKey)
			return
		}
	}

	// 2. DELETE THE PRIOR REVISION'S REMOTE DOCUMENTS
	// Must happen before upload and before the ledger write, so a crash
	// leaves stale documents rather than orphaned ledger entries.
	prior, err := c.ledger.Lookup(ctx, item.SourceKey)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		c.failItem(report, item.SourceKey, domain.StageLedger, fmt.Sprintf("prior revision lookup: %v", err))
		return
	}
	if prior != nil && len(prior.DocumentIDs) > 0 && c.syncCfg.DeleteBeforeUpload {
		logger.Debug("Replacing %s: deleting %d prior documents", item.SourceKey, len(prior.DocumentIDs))
		if err := c.client.DeleteDocuments(ctx, prior.CollectionID, prior.DocumentIDs); err != nil {
			c.failItem(report, item.SourceKey, domain.StageUpload, fmt.Sprintf("deleting prior documents: %v", err))
			return
		}
	}

	// 3. RESOLVE TO LOCAL FILES
	c.setStatus(func(s *driving.SyncStatus) { s.Phase = "resolving" })
	files, err := resolver.Resolve(ctx, item)
	if err != nil {
		c.failItem(report, item.SourceKey, domain.StageResolve, err.Error())
		return
	}
	for _, f := range files {
		if f.Warning != "" {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %s", item.SourceKey, f.Warning))
		}
	}

	// 4. UPLOAD EVERY FILE
	c.setStatus(func(s *driving.SyncStatus) { s.Phase = "uploading" })
	ids := make([]string, 0, len(files))
	for _, f := range files {
		name := displayName(f.Path, item.Metadata, c.syncCfg.NameMaxLen)
		id, err := c.client.UploadDocument(ctx, collectionID, f.Path, name)
		if err != nil {
			// Remove this item's partial uploads so nothing unledgered
			// lingers remotely. Best effort.
			if len(ids) > 0 {
				if delErr := c.client.DeleteDocuments(ctx, collectionID, ids); delErr != nil {
					logger.Warn("removing partial uploads for %s: %v", item.SourceKey, delErr)
				}
			}
			c.failItem(report, item.SourceKey, domain.StageUpload, fmt.Sprintf("uploading %s: %v", name, err))
			return
		}
		logger.Debug("Uploaded %s as %s (%s)", f.Path, name, id)
		ids = append(ids, id)
	}

	// 5. COMMIT THE LEDGER
	record := domain.RevisionRecord{
		SourceKey:    item.SourceKey,
		Fingerprint:  item.RevisionFingerprint,
		CollectionID: collectionID,
		DocumentIDs:  ids,
		LastSyncedAt: time.Now().UTC(),
	}
	if err := c.ledger.Replace(ctx, record); err != nil {
		// The uploads stay remote but unrecorded; the next run will
		// upload this revision again. Surfaced with its own stage so
		// the report tells the two apart.
		c.failItem(report, item.SourceKey, domain.StageLedger,
			fmt.Sprintf("%v: %v", domain.ErrLedgerWriteFailed, err))
		return
	}

	// 6. ONLY LEDGERED UPLOADS JOIN THE PARSE BATCH
	report.DocumentIDs = append(report.DocumentIDs, ids...)
	report.Uploaded++
	c.setStatus(func(s *driving.SyncStatus) { s.Uploaded++ })
}

func (c *SyncCoordinator) failItem(report *domain.CollectionReport, sourceKey string, stage domain.FailureStage, reason string) {
	report.AddFailure(sourceKey, stage, reason)
	c.setStatus(func(s *driving.SyncStatus) { s.Failed++ })
	logger.Debug("Failed %s at %s: %s", sourceKey, stage, reason)
}

// findSource resolves a source reference by ID first, then by name.
func (c *SyncCoordinator) findSource(ctx context.Context, ref string) (*domain.Source, error) {
	src, err := c.sourceStore.Get(ctx, ref)
	if err == nil {
		return src, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get source: %w", err)
	}

	src, err = c.sourceStore.GetByName(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("get source %q: %w", ref, err)
	}
	return src, nil
}

// begin marks a run active; false when one is already running.
func (c *SyncCoordinator) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return false
	}
	c.running = true
	c.status = driving.SyncStatus{Running: true}
	return true
}

func (c *SyncCoordinator) end() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	c.status.Running = false
	c.status.Phase = "idle"
}

func (c *SyncCoordinator) setStatus(mutate func(*driving.SyncStatus)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	mutate(&c.status)
}
