package tui

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driving"
)

// fakeOrchestrator records calls and serves canned results.
type fakeOrchestrator struct {
	mu        sync.Mutex
	syncCalls []string
	report    *domain.RunReport
	err       error
	status    *driving.SyncStatus
	statusErr error
}

func (f *fakeOrchestrator) Sync(_ context.Context, source string) (*domain.RunReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncCalls = append(f.syncCalls, source)
	return f.report, f.err
}

func (f *fakeOrchestrator) SyncAll(context.Context) (*domain.RunReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncCalls = append(f.syncCalls, "")
	return f.report, f.err
}

func (f *fakeOrchestrator) Status(context.Context) (*driving.SyncStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, f.statusErr
}

func TestNewModel(t *testing.T) {
	model := NewModel(&fakeOrchestrator{}, "reports")

	require.NotNil(t, model)
	assert.Equal(t, "reports", model.source)
	assert.False(t, model.done)
	assert.Nil(t, model.Report())
	assert.NoError(t, model.Err())
}

func TestModel_Init_ReturnsCommands(t *testing.T) {
	model := NewModel(&fakeOrchestrator{}, "")

	cmd := model.Init()

	assert.NotNil(t, cmd)
}

func TestModel_StartRun_SingleSource(t *testing.T) {
	orch := &fakeOrchestrator{report: &domain.RunReport{RunID: "run-1"}}
	model := NewModel(orch, "reports")

	msg := model.startRun()()

	done, ok := msg.(doneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	assert.Equal(t, "run-1", done.report.RunID)
	assert.Equal(t, []string{"reports"}, orch.syncCalls)
}

func TestModel_StartRun_AllSources(t *testing.T) {
	orch := &fakeOrchestrator{report: &domain.RunReport{RunID: "run-2"}}
	model := NewModel(orch, "")

	msg := model.startRun()()

	done, ok := msg.(doneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	assert.Equal(t, []string{""}, orch.syncCalls)
}

func TestModel_Update_StatusMsg(t *testing.T) {
	model := NewModel(&fakeOrchestrator{}, "")

	status := &driving.SyncStatus{Running: true, Source: "reports", Uploaded: 3}
	updated, cmd := model.Update(statusMsg{status: status})

	assert.Equal(t, model, updated)
	assert.Nil(t, cmd)
	assert.Equal(t, status, model.status)
}

func TestModel_Update_NilStatusKeepsLast(t *testing.T) {
	model := NewModel(&fakeOrchestrator{}, "")
	last := &driving.SyncStatus{Running: true, Uploaded: 2}
	model.status = last

	model.Update(statusMsg{})

	assert.Equal(t, last, model.status)
}

func TestModel_Update_DoneMsg(t *testing.T) {
	model := NewModel(&fakeOrchestrator{}, "")
	report := &domain.RunReport{RunID: "run-3"}

	_, cmd := model.Update(doneMsg{report: report})

	assert.True(t, model.done)
	assert.Equal(t, report, model.Report())
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_Update_DoneMsg_Error(t *testing.T) {
	model := NewModel(&fakeOrchestrator{}, "")

	model.Update(doneMsg{err: errors.New("remote down")})

	assert.True(t, model.done)
	assert.EqualError(t, model.Err(), "remote down")
}

func TestModel_Update_QuitKeyCancelsRun(t *testing.T) {
	model := NewModel(&fakeOrchestrator{}, "")

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	// The program stays up until the run reports back.
	assert.Nil(t, cmd)
	assert.True(t, model.cancelling)
	assert.ErrorIs(t, model.ctx.Err(), context.Canceled)
}

func TestModel_Update_TickWhileDoneStops(t *testing.T) {
	model := NewModel(&fakeOrchestrator{}, "")
	model.done = true

	_, cmd := model.Update(tickMsg{})

	assert.Nil(t, cmd)
}

func TestModel_View_Starting(t *testing.T) {
	model := NewModel(&fakeOrchestrator{}, "reports")

	out := model.View()

	assert.Contains(t, out, "Syncing reports")
	assert.Contains(t, out, "starting")
}

func TestModel_View_ShowsProgress(t *testing.T) {
	model := NewModel(&fakeOrchestrator{}, "")
	model.status = &driving.SyncStatus{
		Running:    true,
		Source:     "reports",
		Collection: "reports",
		Phase:      "uploading",
		ItemsSeen:  10,
		Uploaded:   4,
		Skipped:    5,
		Failed:     1,
	}

	out := model.View()

	assert.Contains(t, out, "Syncing all sources")
	assert.Contains(t, out, "reports")
	assert.Contains(t, out, "uploading")
	assert.Contains(t, out, "seen 10")
	assert.Contains(t, out, "uploaded 4")
	assert.Contains(t, out, "skipped 5")
	assert.Contains(t, out, "failed 1")
}

func TestModel_View_ShowsParseStates(t *testing.T) {
	model := NewModel(&fakeOrchestrator{}, "")
	model.status = &driving.SyncStatus{
		Running:    true,
		Phase:      "monitoring",
		Monitoring: true,
		ParseStates: domain.RunStateCounts{
			domain.RunStateDone:    2,
			domain.RunStateRunning: 1,
		},
	}

	out := model.View()

	assert.Contains(t, out, "done 2")
	assert.Contains(t, out, "running 1")
}

func TestModel_View_Summary(t *testing.T) {
	model := NewModel(&fakeOrchestrator{}, "")
	model.done = true
	model.report = &domain.RunReport{
		Collections: []domain.CollectionReport{
			{Uploaded: 3, Skipped: 2, Failed: 1},
		},
	}

	out := model.View()

	assert.Contains(t, out, "Done: 3 uploaded, 2 skipped, 1 failed")
}

func TestModel_View_SummaryError(t *testing.T) {
	model := NewModel(&fakeOrchestrator{}, "")
	model.done = true
	model.err = errors.New("source unavailable")

	out := model.View()

	assert.Contains(t, out, "Sync failed")
	assert.Contains(t, out, "source unavailable")
}

func TestRenderParseStates(t *testing.T) {
	assert.Equal(t, "waiting", renderParseStates(nil))

	out := renderParseStates(domain.RunStateCounts{
		domain.RunStateDone:   3,
		domain.RunStateFailed: 1,
	})

	assert.Equal(t, "done 3  failed 1", out)
}
