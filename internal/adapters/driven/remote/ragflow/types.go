package ragflow

import (
	"encoding/json"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
)

// envelope is the frame every endpoint responds with. A non-zero code is
// an application error regardless of HTTP status. Total is only present
// on the dataset listing endpoint.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Total   int             `json:"total"`
}

// dataset is the wire form of a collection.
type dataset struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Permission    string `json:"permission"`
	DocumentCount int    `json:"document_count"`
}

func (d dataset) toDomain() domain.Collection {
	return domain.Collection{
		Name:          d.Name,
		RemoteID:      d.ID,
		Permission:    domain.Permission(d.Permission),
		DocumentCount: d.DocumentCount,
	}
}

// wireDocument is the wire form of a remote document.
type wireDocument struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Run  string `json:"run"`
	Size int64  `json:"size"`
}

func (d wireDocument) toDomain(collectionID string) domain.RemoteDocument {
	return domain.RemoteDocument{
		ID:           d.ID,
		CollectionID: collectionID,
		Name:         d.Name,
		RunState:     domain.ParseRunState(d.Run),
		SizeBytes:    d.Size,
	}
}

// documentPage is the data payload of the document listing endpoint.
type documentPage struct {
	Docs  []wireDocument `json:"docs"`
	Total int            `json:"total"`
}

// createDatasetRequest is the body of the collection creation endpoint.
// EmbeddingModel is omitted when empty so the tenant default applies.
type createDatasetRequest struct {
	Name           string        `json:"name"`
	Permission     string        `json:"permission,omitempty"`
	Language       string        `json:"language,omitempty"`
	ChunkMethod    string        `json:"chunk_method,omitempty"`
	EmbeddingModel string        `json:"embedding_model,omitempty"`
	ParserConfig   *parserConfig `json:"parser_config,omitempty"`
}

// parserConfig mirrors the service's parser configuration block.
type parserConfig struct {
	ChunkTokenNum   int    `json:"chunk_token_num,omitempty"`
	Delimiter       string `json:"delimiter,omitempty"`
	LayoutRecognize string `json:"layout_recognize,omitempty"`
}

// parserConfigFrom maps parser settings onto the wire form. Returns nil
// when nothing is set so the request omits the block entirely.
func parserConfigFrom(p domain.ParserSettings) *parserConfig {
	if p.ChunkTokens == 0 && p.Delimiter == "" && p.Layout == "" {
		return nil
	}
	return &parserConfig{
		ChunkTokenNum:   p.ChunkTokens,
		Delimiter:       p.Delimiter,
		LayoutRecognize: p.Layout,
	}
}

// idsRequest is the body of the document deletion endpoint.
type idsRequest struct {
	IDs []string `json:"ids"`
}

// documentIDsRequest is the body of the parse start and stop endpoints.
type documentIDsRequest struct {
	DocumentIDs []string `json:"document_ids"`
}
