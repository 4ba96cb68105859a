package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for Ingesta resources.
	uriScheme = "ingesta://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing sources.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sources",
		Name:        "sources",
		Description: "List of all configured data sources",
		MIMEType:    "application/json",
	}, s.handleSourcesResource)

	// Static resource for listing remote collections.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "collections",
		Name:        "collections",
		Description: "Remote document collections",
		MIMEType:    "application/json",
	}, s.handleCollectionsResource)

	// Template for a collection's ledger records.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "collections/{collectionId}/records",
		Name:        "collection-records",
		Description: "Revision ledger records for a specific collection",
		MIMEType:    "application/json",
	}, s.handleRecordsResource)
}

// handleSourcesResource returns a list of all configured sources.
func (s *Server) handleSourcesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Source == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	sources, err := s.ports.Source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}

	// Build simplified source list.
	type sourceInfo struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		Type       string `json:"type"`
		Enabled    bool   `json:"enabled"`
		Collection string `json:"collection"`
	}

	infos := make([]sourceInfo, len(sources))
	for i := range sources {
		infos[i] = sourceInfo{
			ID:         sources[i].ID,
			Name:       sources[i].Name,
			Type:       sources[i].Type.String(),
			Enabled:    sources[i].Enabled,
			Collection: sources[i].CollectionName(),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling sources: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleCollectionsResource returns the remote collection listing.
func (s *Server) handleCollectionsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Collections == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	collections, err := s.ports.Collections.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}

	// Build simplified collection list.
	type collectionInfo struct {
		Name      string `json:"name"`
		ID        string `json:"id"`
		Documents int    `json:"documents"`
	}

	infos := make([]collectionInfo, len(collections))
	for i, c := range collections {
		infos[i] = collectionInfo{
			Name:      c.Name,
			ID:        c.RemoteID,
			Documents: c.DocumentCount,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling collections: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleRecordsResource returns ledger records for a specific collection.
func (s *Server) handleRecordsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Collections == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract collectionId from URI: ingesta://collections/{collectionId}/records
	collectionID := extractCollectionID(req.Params.URI)
	if collectionID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	records, err := s.ports.Collections.ExportRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}

	// Build the record list for the requested collection.
	type recordInfo struct {
		SourceKey    string    `json:"source_key"`
		Fingerprint  string    `json:"fingerprint"`
		DocumentIDs  []string  `json:"document_ids"`
		LastSyncedAt time.Time `json:"last_synced_at"`
	}

	infos := make([]recordInfo, 0, len(records))
	for i := range records {
		if records[i].CollectionID != collectionID {
			continue
		}
		infos = append(infos, recordInfo{
			SourceKey:    records[i].SourceKey,
			Fingerprint:  records[i].Fingerprint,
			DocumentIDs:  records[i].DocumentIDs,
			LastSyncedAt: records[i].LastSyncedAt,
		})
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling records: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractCollectionID extracts the collection ID from a URI like
// ingesta://collections/{collectionId}/records.
func extractCollectionID(uri string) string {
	const prefix = uriScheme + "collections/"
	const suffix = "/records"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}
