package ragflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driven"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRetryAttempts is the default retry budget for transient errors.
	DefaultRetryAttempts = 3

	// RetryDelay is the initial delay between retries.
	RetryDelay = time.Second

	// DefaultRatePerSecond paces outgoing requests.
	DefaultRatePerSecond = 5

	// apiPrefix roots every endpoint path.
	apiPrefix = "/api/v1"

	// findPageSize bounds the name-filtered lookup page. The name filter
	// matches loosely, so one page must hold every near-match.
	findPageSize = 50

	contentTypeJSON = "application/json"
)

// Client speaks to a RAGFlow-compatible document collection service.
// Every request carries the bearer token and passes the rate limiter
// gate; transient failures are retried with doubling backoff.
type Client struct {
	baseURL    string
	http       *http.Client
	limiter    *rate.Limiter
	retries    int
	retryDelay time.Duration
}

var _ driven.CollectionClient = (*Client)(nil)

// NewClient creates a collection service client from remote settings.
func NewClient(settings domain.RemoteSettings) (*Client, error) {
	base := strings.TrimRight(settings.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("%w: remote base URL is not configured", domain.ErrInvalidInput)
	}
	if settings.APIKey == "" {
		return nil, fmt.Errorf("%w: remote API key is not configured", domain.ErrInvalidInput)
	}

	timeout := settings.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	retries := settings.RetryAttempts
	if retries <= 0 {
		retries = DefaultRetryAttempts
	}
	perSecond := settings.RatePerSecond
	if perSecond <= 0 {
		perSecond = DefaultRatePerSecond
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: settings.APIKey},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = timeout

	return &Client{
		baseURL:    base + apiPrefix,
		http:       tc,
		limiter:    rate.NewLimiter(rate.Limit(perSecond), 1),
		retries:    retries,
		retryDelay: RetryDelay,
	}, nil
}

// GetOrCreateCollection looks the collection up by exact name and reuses
// it when accessible. A name held by another principal gets a timestamp
// suffix instead, so runs keep flowing rather than failing on a
// tenant-wide name clash. Absent collections are created from the spec.
func (c *Client) GetOrCreateCollection(ctx context.Context, spec domain.CollectionSpec) (*domain.Collection, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("%w: collection name is empty", domain.ErrInvalidInput)
	}

	col, err := c.FindCollection(ctx, spec.Name)
	switch {
	case err == nil:
		return col, nil
	case IsOwnedElsewhere(err):
		suffixed := spec
		suffixed.Name = fmt.Sprintf("%s_%d", spec.Name, time.Now().Unix())
		return c.createCollection(ctx, suffixed)
	case errors.Is(err, domain.ErrNotFound):
		return c.createCollection(ctx, spec)
	default:
		return nil, err
	}
}

// FindCollection looks a collection up by exact name.
func (c *Client) FindCollection(ctx context.Context, name string) (*domain.Collection, error) {
	query := url.Values{}
	query.Set("name", name)
	query.Set("page", "1")
	query.Set("page_size", strconv.Itoa(findPageSize))

	env, err := c.do(ctx, http.MethodGet, "/datasets", query, "", nil)
	if err != nil {
		return nil, err
	}

	var sets []dataset
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &sets); err != nil {
			return nil, fmt.Errorf("%w: decoding dataset list: %v", domain.ErrRemoteRejected, err)
		}
	}

	// The service's name filter matches substrings.
	for _, ds := range sets {
		if ds.Name == name {
			col := ds.toDomain()
			return &col, nil
		}
	}
	return nil, fmt.Errorf("collection %q: %w", name, domain.ErrNotFound)
}

// ListCollections pages through all collections.
func (c *Client) ListCollections(ctx context.Context, page, pageSize int) (int, []domain.Collection, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("page_size", strconv.Itoa(pageSize))

	env, err := c.do(ctx, http.MethodGet, "/datasets", query, "", nil)
	if err != nil {
		return 0, nil, err
	}

	var sets []dataset
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &sets); err != nil {
			return 0, nil, fmt.Errorf("%w: decoding dataset list: %v", domain.ErrRemoteRejected, err)
		}
	}

	cols := make([]domain.Collection, 0, len(sets))
	for _, ds := range sets {
		cols = append(cols, ds.toDomain())
	}

	total := env.Total
	if total == 0 {
		total = len(cols)
	}
	return total, cols, nil
}

// DeleteCollection removes a collection and all its documents.
func (c *Client) DeleteCollection(ctx context.Context, collectionID string) error {
	if collectionID == "" {
		return fmt.Errorf("%w: collection id is empty", domain.ErrInvalidInput)
	}
	if _, err := c.do(ctx, http.MethodDelete, "/datasets/"+collectionID, nil, "", nil); err != nil {
		return fmt.Errorf("deleting collection %s: %w", collectionID, err)
	}
	return nil
}

// UploadDocument uploads one file in a single multipart request and
// returns the remote document id. Metadata must already be folded into
// the display name: patching metadata onto a freshly uploaded document
// corrupts its backing-storage pointer on the service side, so no
// mutation call ever follows an upload.
func (c *Client) UploadDocument(ctx context.Context, collectionID, localPath, displayName string) (string, error) {
	if displayName == "" {
		displayName = filepath.Base(localPath)
	}

	payload, contentType, err := multipartFile(localPath, displayName)
	if err != nil {
		return "", err
	}

	env, err := c.do(ctx, http.MethodPost, "/datasets/"+collectionID+"/documents", nil, contentType, payload)
	if err != nil {
		return "", fmt.Errorf("uploading %q: %w", displayName, err)
	}

	var docs []wireDocument
	if err := json.Unmarshal(env.Data, &docs); err != nil {
		return "", fmt.Errorf("%w: decoding upload response: %v", domain.ErrRemoteRejected, err)
	}
	if len(docs) == 0 || docs[0].ID == "" {
		return "", fmt.Errorf("%w: upload response carries no document id", domain.ErrRemoteRejected)
	}
	return docs[0].ID, nil
}

// DeleteDocuments removes documents by id. Absent ids are not an error:
// a prior partial run may have removed them already.
func (c *Client) DeleteDocuments(ctx context.Context, collectionID string, documentIDs []string) error {
	if len(documentIDs) == 0 {
		return nil
	}

	payload, err := json.Marshal(idsRequest{IDs: documentIDs})
	if err != nil {
		return fmt.Errorf("encoding delete request: %w", err)
	}

	if _, err := c.do(ctx, http.MethodDelete, "/datasets/"+collectionID+"/documents", nil, contentTypeJSON, payload); err != nil {
		if isMissingDocuments(err) {
			return nil
		}
		return fmt.Errorf("deleting documents: %w", err)
	}
	return nil
}

// ListDocuments pages through a collection's documents, newest first.
func (c *Client) ListDocuments(ctx context.Context, collectionID string, page, pageSize int) (int, []domain.RemoteDocument, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("page_size", strconv.Itoa(pageSize))
	query.Set("orderby", "create_time")
	query.Set("desc", "true")

	env, err := c.do(ctx, http.MethodGet, "/datasets/"+collectionID+"/documents", query, "", nil)
	if err != nil {
		return 0, nil, err
	}

	var pageData documentPage
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &pageData); err != nil {
			return 0, nil, fmt.Errorf("%w: decoding document list: %v", domain.ErrRemoteRejected, err)
		}
	}

	docs := make([]domain.RemoteDocument, 0, len(pageData.Docs))
	for _, d := range pageData.Docs {
		docs = append(docs, d.toDomain(collectionID))
	}
	return pageData.Total, docs, nil
}

// StartParse requests asynchronous parsing for exactly the given ids.
func (c *Client) StartParse(ctx context.Context, collectionID string, documentIDs []string) error {
	if len(documentIDs) == 0 {
		return nil
	}

	payload, err := json.Marshal(documentIDsRequest{DocumentIDs: documentIDs})
	if err != nil {
		return fmt.Errorf("encoding parse request: %w", err)
	}

	if _, err := c.do(ctx, http.MethodPost, "/datasets/"+collectionID+"/chunks", nil, contentTypeJSON, payload); err != nil {
		return fmt.Errorf("starting parse: %w", err)
	}
	return nil
}

// StopParse cancels parsing for the given ids.
func (c *Client) StopParse(ctx context.Context, collectionID string, documentIDs []string) error {
	if len(documentIDs) == 0 {
		return nil
	}

	payload, err := json.Marshal(documentIDsRequest{DocumentIDs: documentIDs})
	if err != nil {
		return fmt.Errorf("encoding parse cancel request: %w", err)
	}

	if _, err := c.do(ctx, http.MethodDelete, "/datasets/"+collectionID+"/chunks", nil, contentTypeJSON, payload); err != nil {
		return fmt.Errorf("stopping parse: %w", err)
	}
	return nil
}

// createCollection creates a collection from the spec. An empty
// EmbeddingModel is never sent, leaving the tenant default in charge.
func (c *Client) createCollection(ctx context.Context, spec domain.CollectionSpec) (*domain.Collection, error) {
	req := createDatasetRequest{
		Name:           spec.Name,
		Permission:     spec.Permission.String(),
		Language:       spec.Language,
		ChunkMethod:    spec.ChunkMethod,
		EmbeddingModel: spec.EmbeddingModel,
		ParserConfig:   parserConfigFrom(spec.Parser),
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding create request: %w", err)
	}

	env, err := c.do(ctx, http.MethodPost, "/datasets", nil, contentTypeJSON, payload)
	if err != nil {
		return nil, fmt.Errorf("creating collection %q: %w", spec.Name, err)
	}

	var ds dataset
	if err := json.Unmarshal(env.Data, &ds); err != nil {
		return nil, fmt.Errorf("%w: decoding created dataset: %v", domain.ErrRemoteRejected, err)
	}
	if ds.ID == "" {
		return nil, fmt.Errorf("%w: created dataset has no id", domain.ErrRemoteRejected)
	}

	col := domain.Collection{
		Name:       spec.Name,
		RemoteID:   ds.ID,
		Permission: spec.Permission,
	}
	if ds.Name != "" {
		col.Name = ds.Name
	}
	return &col, nil
}

// do issues a request through the rate limiter gate and retries the
// transient failure classes with doubling backoff.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, contentType string, payload []byte) (*envelope, error) {
	var lastErr error

	delay := c.retryDelay
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		env, err := c.doOnce(ctx, method, endpoint, query, contentType, payload)
		if err == nil {
			return env, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

// doOnce performs a single HTTP exchange and classifies the outcome into
// the remote error classes.
func (c *Client) doOnce(ctx context.Context, method, endpoint string, query url.Values, contentType string, payload []byte) (*envelope, error) {
	u := c.baseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransportError(err, u)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response from %s: %v", domain.ErrRemoteTransient, u, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	apiErr := &APIError{StatusCode: resp.StatusCode, Code: env.Code, Message: env.Message, URL: u}
	if apiErr.Message == "" {
		apiErr.Message = snippet(raw)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %w", domain.ErrRemoteTransient, apiErr)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: %w", domain.ErrRemoteRejected, apiErr)
	case decodeErr != nil:
		return nil, fmt.Errorf("%w: decoding response from %s: %v", domain.ErrRemoteRejected, u, decodeErr)
	case env.Code != 0:
		return nil, fmt.Errorf("%w: %w", domain.ErrRemoteRejected, apiErr)
	}

	return &env, nil
}

// classifyTransportError sorts connection failures into the remote error
// classes. A timeout may clear on retry, a refused connection means the
// service is down.
func classifyTransportError(err error, u string) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fmt.Errorf("%w: request to %s timed out: %v", domain.ErrRemoteTransient, u, err)
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrRemoteUnavailable, u, err)
}

// multipartFile buffers path as a single-part multipart body under the
// field name the service expects. Buffered in full so a transient retry
// can resend the same bytes.
func multipartFile(path, filename string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %v", domain.ErrInvalidFile, path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", fmt.Errorf("building multipart body: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("finalizing multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// isMissingDocuments reports whether a rejection only says the ids are
// already gone.
func isMissingDocuments(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.StatusCode == http.StatusNotFound {
		return true
	}
	msg := strings.ToLower(apiErr.Message)
	return strings.Contains(msg, "not found") || strings.Contains(msg, "doesn't exist") || strings.Contains(msg, "does not exist")
}

// snippet trims a response body down to an error-message-sized excerpt.
func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 160 {
		s = s[:160] + "..."
	}
	return s
}
