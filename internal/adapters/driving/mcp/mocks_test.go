package mcp

import (
	"context"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driving"
)

// mockSyncOrchestrator is a mock implementation of driving.SyncOrchestrator.
type mockSyncOrchestrator struct {
	syncCalls []string
	report    *domain.RunReport
	status    *driving.SyncStatus
	err       error
}

func (m *mockSyncOrchestrator) Sync(_ context.Context, source string) (*domain.RunReport, error) {
	m.syncCalls = append(m.syncCalls, source)
	return m.report, m.err
}

func (m *mockSyncOrchestrator) SyncAll(_ context.Context) (*domain.RunReport, error) {
	m.syncCalls = append(m.syncCalls, "")
	return m.report, m.err
}

func (m *mockSyncOrchestrator) Status(_ context.Context) (*driving.SyncStatus, error) {
	if m.status != nil || m.err != nil {
		return m.status, m.err
	}
	return &driving.SyncStatus{}, nil
}

// mockSourceService is a mock implementation of driving.SourceService.
type mockSourceService struct {
	sources []domain.Source
	source  *domain.Source
	err     error
}

func (m *mockSourceService) Add(_ context.Context, _ domain.Source) error {
	return m.err
}

func (m *mockSourceService) Get(_ context.Context, _ string) (*domain.Source, error) {
	return m.source, m.err
}

func (m *mockSourceService) List(_ context.Context) ([]domain.Source, error) {
	return m.sources, m.err
}

func (m *mockSourceService) Update(_ context.Context, _ domain.Source) error {
	return m.err
}

func (m *mockSourceService) Remove(_ context.Context, _ string) error {
	return m.err
}

func (m *mockSourceService) SetEnabled(_ context.Context, _ string, _ bool) error {
	return m.err
}

func (m *mockSourceService) ValidateConfig(_ context.Context, _ domain.SourceType, _ map[string]string) error {
	return m.err
}

// mockCollectionAdmin is a mock implementation of driving.CollectionAdmin.
type mockCollectionAdmin struct {
	collections []domain.Collection
	records     []domain.RevisionRecord
	stats       *domain.LedgerStats
	cancelN     int
	err         error
}

func (m *mockCollectionAdmin) List(_ context.Context) ([]domain.Collection, error) {
	return m.collections, m.err
}

func (m *mockCollectionAdmin) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockCollectionAdmin) CheckAndParse(_ context.Context, _ string) (*domain.CollectionReport, error) {
	return nil, m.err
}

func (m *mockCollectionAdmin) CancelParse(_ context.Context, _ string) (int, error) {
	return m.cancelN, m.err
}

func (m *mockCollectionAdmin) LedgerStats(_ context.Context) (*domain.LedgerStats, error) {
	return m.stats, m.err
}

func (m *mockCollectionAdmin) ExportRecords(_ context.Context) ([]domain.RevisionRecord, error) {
	return m.records, m.err
}
