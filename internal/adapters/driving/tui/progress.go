// Package tui provides the live progress view shown by watch-mode syncs.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driving"
)

// statusInterval is how often the view polls run progress.
const statusInterval = 200 * time.Millisecond

// Messages.
type (
	// statusMsg carries a progress snapshot.
	statusMsg struct {
		status *driving.SyncStatus
	}

	// doneMsg carries the final report when the run ends.
	doneMsg struct {
		report *domain.RunReport
		err    error
	}

	// tickMsg requests the next status poll.
	tickMsg time.Time
)

// keyMap holds the view's key bindings.
type keyMap struct {
	Quit key.Binding
}

var progressKeys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "cancel"),
	),
}

// viewStyles holds the pre-configured lipgloss styles for the view.
type viewStyles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Help    lipgloss.Style
}

func defaultViewStyles() viewStyles {
	return viewStyles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#06B6D4")),
		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086")),
		Value: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CDD6F4")),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6E3A1")),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F38BA8")),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086")),
	}
}

// Model drives one sync run and renders its progress. The run starts
// when the program does; the program quits when the run ends. Pressing
// q cancels the run's context and waits for it to wind down.
type Model struct {
	orchestrator driving.SyncOrchestrator
	source       string

	ctx    context.Context
	cancel context.CancelFunc

	spinner    spinner.Model
	styles     viewStyles
	status     *driving.SyncStatus
	report     *domain.RunReport
	err        error
	done       bool
	cancelling bool
}

// NewModel creates a progress model for one run. An empty source means
// every enabled source.
func NewModel(orchestrator driving.SyncOrchestrator, source string) *Model {
	ctx, cancel := context.WithCancel(context.Background())

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		orchestrator: orchestrator,
		source:       source,
		ctx:          ctx,
		cancel:       cancel,
		spinner:      sp,
		styles:       defaultViewStyles(),
	}
}

// Init starts the run and the polling loop.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startRun(), m.tick())
}

// startRun launches the sync and reports its outcome as a doneMsg.
func (m *Model) startRun() tea.Cmd {
	return func() tea.Msg {
		var (
			report *domain.RunReport
			err    error
		)
		if m.source == "" {
			report, err = m.orchestrator.SyncAll(m.ctx)
		} else {
			report, err = m.orchestrator.Sync(m.ctx, m.source)
		}
		return doneMsg{report: report, err: err}
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(statusInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// pollStatus fetches a progress snapshot. Poll failures are dropped;
// the next tick tries again.
func (m *Model) pollStatus() tea.Cmd {
	return func() tea.Msg {
		status, err := m.orchestrator.Status(m.ctx)
		if err != nil {
			return statusMsg{}
		}
		return statusMsg{status: status}
	}
}

// Update handles progress and key messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, progressKeys.Quit) && !m.done {
			// Cancel the run but keep the program alive until the
			// orchestrator reports back, so partial state is settled.
			m.cancelling = true
			m.cancel()
		}
		return m, nil

	case tickMsg:
		if m.done {
			return m, nil
		}
		return m, tea.Batch(m.pollStatus(), m.tick())

	case statusMsg:
		if msg.status != nil {
			m.status = msg.status
		}
		return m, nil

	case doneMsg:
		m.done = true
		m.report = msg.report
		m.err = msg.err
		m.cancel()
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the latest progress snapshot.
func (m *Model) View() string {
	var b strings.Builder

	title := "Syncing all sources"
	if m.source != "" {
		title = "Syncing " + m.source
	}
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n\n")

	if m.done {
		b.WriteString(m.renderSummary())
		return b.String()
	}

	if m.cancelling {
		b.WriteString(m.spinner.View())
		b.WriteString(" cancelling...\n")
		return b.String()
	}

	if m.status == nil || !m.status.Running {
		b.WriteString(m.spinner.View())
		b.WriteString(" starting...\n")
		return b.String()
	}

	b.WriteString(m.renderStatus(m.status))
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("[q] cancel"))
	b.WriteString("\n")
	return b.String()
}

// renderStatus renders one in-flight progress snapshot.
func (m *Model) renderStatus(status *driving.SyncStatus) string {
	var b strings.Builder

	if status.Source != "" {
		b.WriteString(m.styles.Label.Render("Source:     "))
		b.WriteString(m.styles.Value.Render(status.Source))
		b.WriteString("\n")
	}
	if status.Collection != "" {
		b.WriteString(m.styles.Label.Render("Collection: "))
		b.WriteString(m.styles.Value.Render(status.Collection))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Label.Render("Phase:      "))
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(m.styles.Value.Render(status.Phase))
	b.WriteString("\n\n")

	b.WriteString(m.styles.Value.Render(fmt.Sprintf(
		"seen %d   uploaded %d   skipped %d   failed %d",
		status.ItemsSeen, status.Uploaded, status.Skipped, status.Failed)))
	b.WriteString("\n")

	if status.Monitoring {
		b.WriteString(m.styles.Label.Render("Parsing:    "))
		b.WriteString(m.styles.Value.Render(renderParseStates(status.ParseStates)))
		b.WriteString("\n")
	}

	return b.String()
}

// renderSummary renders the final line once the run has ended.
func (m *Model) renderSummary() string {
	if m.err != nil {
		return m.styles.Error.Render(fmt.Sprintf("Sync failed: %v", m.err)) + "\n"
	}
	if m.report == nil {
		return m.styles.Success.Render("Done.") + "\n"
	}

	line := fmt.Sprintf("Done: %d uploaded, %d skipped, %d failed",
		m.report.TotalUploaded(), m.report.TotalSkipped(), m.report.TotalFailed())
	if m.report.TotalFailed() > 0 {
		return m.styles.Error.Render(line) + "\n"
	}
	return m.styles.Success.Render(line) + "\n"
}

// renderParseStates formats a run-state distribution in a fixed order.
func renderParseStates(counts domain.RunStateCounts) string {
	if len(counts) == 0 {
		return "waiting"
	}

	order := []domain.RunState{
		domain.RunStateDone,
		domain.RunStateRunning,
		domain.RunStateUnstarted,
		domain.RunStateFailed,
		domain.RunStateCancelled,
	}

	parts := make([]string, 0, len(order))
	for _, state := range order {
		if n, ok := counts[state]; ok && n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", state, n))
		}
	}
	return strings.Join(parts, "  ")
}

// Report returns the final run report, nil until the run ends.
func (m *Model) Report() *domain.RunReport {
	return m.report
}

// Err returns the run error, nil until the run ends.
func (m *Model) Err() error {
	return m.err
}
