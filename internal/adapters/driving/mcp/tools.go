package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
)

// TriggerSyncInput is the input schema for the trigger_sync tool.
type TriggerSyncInput struct {
	Source string `json:"source,omitempty" jsonschema:"source name or id to sync; empty syncs every enabled source"`
}

// TriggerSyncOutput is the output schema for the trigger_sync tool.
type TriggerSyncOutput struct {
	RunID       string                   `json:"run_id"`
	Uploaded    int                      `json:"uploaded"`
	Skipped     int                      `json:"skipped"`
	Failed      int                      `json:"failed"`
	Fatal       string                   `json:"fatal,omitempty"`
	Collections []CollectionResultOutput `json:"collections"`
}

// CollectionResultOutput summarises one collection's outcome within a run.
type CollectionResultOutput struct {
	Collection     string `json:"collection"`
	ItemsSeen      int    `json:"items_seen"`
	Uploaded       int    `json:"uploaded"`
	Skipped        int    `json:"skipped"`
	Failed         int    `json:"failed"`
	ParseRequested bool   `json:"parse_requested"`
}

// SyncStatusInput is the input schema for the sync_status tool.
type SyncStatusInput struct{}

// SyncStatusOutput is the output schema for the sync_status tool.
type SyncStatusOutput struct {
	Running     bool           `json:"running"`
	Source      string         `json:"source,omitempty"`
	Collection  string         `json:"collection,omitempty"`
	Phase       string         `json:"phase,omitempty"`
	ItemsSeen   int            `json:"items_seen"`
	Uploaded    int            `json:"uploaded"`
	Skipped     int            `json:"skipped"`
	Failed      int            `json:"failed"`
	Monitoring  bool           `json:"monitoring"`
	ParseStates map[string]int `json:"parse_states,omitempty"`
}

// ListCollectionsInput is the input schema for the list_collections tool.
type ListCollectionsInput struct{}

// ListCollectionsOutput is the output schema for the list_collections tool.
type ListCollectionsOutput struct {
	Collections []CollectionOutput `json:"collections"`
	Count       int                `json:"count"`
}

// CollectionOutput represents a single remote collection.
type CollectionOutput struct {
	Name      string `json:"name"`
	ID        string `json:"id"`
	Documents int    `json:"documents"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "trigger_sync",
		Description: "Run the ingestion pipeline for one source, or all enabled sources",
	}, s.handleTriggerSync)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_status",
		Description: "Report the live progress of the current sync run",
	}, s.handleSyncStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_collections",
		Description: "List remote document collections",
	}, s.handleListCollections)
}

// handleTriggerSync handles the trigger_sync tool invocation.
func (s *Server) handleTriggerSync(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input TriggerSyncInput,
) (*mcp.CallToolResult, TriggerSyncOutput, error) {
	var (
		report *domain.RunReport
		err    error
	)
	if input.Source != "" {
		report, err = s.ports.Sync.Sync(ctx, input.Source)
	} else {
		report, err = s.ports.Sync.SyncAll(ctx)
	}
	if err != nil {
		return nil, TriggerSyncOutput{}, err
	}

	output := TriggerSyncOutput{
		RunID:       report.RunID,
		Uploaded:    report.TotalUploaded(),
		Skipped:     report.TotalSkipped(),
		Failed:      report.TotalFailed(),
		Fatal:       report.Fatal,
		Collections: make([]CollectionResultOutput, len(report.Collections)),
	}

	for i := range report.Collections {
		c := &report.Collections[i]
		output.Collections[i] = CollectionResultOutput{
			Collection:     c.Collection,
			ItemsSeen:      c.ItemsSeen,
			Uploaded:       c.Uploaded,
			Skipped:        c.Skipped,
			Failed:         c.Failed,
			ParseRequested: c.ParseRequested,
		}
	}

	return nil, output, nil
}

// handleSyncStatus handles the sync_status tool invocation.
func (s *Server) handleSyncStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ SyncStatusInput,
) (*mcp.CallToolResult, SyncStatusOutput, error) {
	status, err := s.ports.Sync.Status(ctx)
	if err != nil {
		return nil, SyncStatusOutput{}, err
	}

	output := SyncStatusOutput{
		Running:    status.Running,
		Source:     status.Source,
		Collection: status.Collection,
		Phase:      status.Phase,
		ItemsSeen:  status.ItemsSeen,
		Uploaded:   status.Uploaded,
		Skipped:    status.Skipped,
		Failed:     status.Failed,
		Monitoring: status.Monitoring,
	}

	if len(status.ParseStates) > 0 {
		output.ParseStates = make(map[string]int, len(status.ParseStates))
		for state, n := range status.ParseStates {
			output.ParseStates[string(state)] = n
		}
	}

	return nil, output, nil
}

// handleListCollections handles the list_collections tool invocation.
func (s *Server) handleListCollections(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListCollectionsInput,
) (*mcp.CallToolResult, ListCollectionsOutput, error) {
	if s.ports.Collections == nil {
		return nil, ListCollectionsOutput{}, errors.New("mcp: collection admin not configured")
	}

	collections, err := s.ports.Collections.List(ctx)
	if err != nil {
		return nil, ListCollectionsOutput{}, err
	}

	output := ListCollectionsOutput{
		Collections: make([]CollectionOutput, len(collections)),
		Count:       len(collections),
	}

	for i, c := range collections {
		output.Collections[i] = CollectionOutput{
			Name:      c.Name,
			ID:        c.RemoteID,
			Documents: c.DocumentCount,
		}
	}

	return nil, output, nil
}
