package github

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/ingesta-cli/internal/logger"
)

// DefaultTimeout bounds individual API requests.
const DefaultTimeout = 30 * time.Second

// Client wraps the GitHub API client with the handful of calls the
// adapter needs, adding rate limiting and error normalisation.
type Client struct {
	gh      *gh.Client
	limiter *RateLimiter
}

// NewClient creates an API client. An empty token means unauthenticated
// access, which only reaches public repositories and a 60 req/hour quota.
func NewClient(ctx context.Context, token string) *Client {
	httpClient := &http.Client{Timeout: DefaultTimeout}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
		httpClient.Timeout = DefaultTimeout
	}

	return &Client{
		gh:      gh.NewClient(httpClient),
		limiter: NewRateLimiter(),
	}
}

// Repository fetches repository metadata. The result carries the default
// branch and whether the repository is private.
func (c *Client) Repository(ctx context.Context, owner, repo string) (*gh.Repository, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	r, resp, err := c.gh.Repositories.Get(ctx, owner, repo)
	c.observe(resp)
	if err != nil {
		return nil, c.wrapError(err, resp)
	}
	return r, nil
}

// Tree fetches the full recursive tree for ref. GitHub truncates trees
// past ~100k entries; a truncated walk is logged, not failed.
func (c *Client) Tree(ctx context.Context, owner, repo, ref string) (*gh.Tree, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	tree, resp, err := c.gh.Git.GetTree(ctx, owner, repo, ref, true)
	c.observe(resp)
	if err != nil {
		return nil, c.wrapError(err, resp)
	}
	if tree.GetTruncated() {
		logger.Warn("github: tree for %s/%s@%s truncated by the API, some files will be missed", owner, repo, ref)
	}
	return tree, nil
}

// BlobContent fetches and decodes a blob's content.
func (c *Client) BlobContent(ctx context.Context, owner, repo, sha string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	blob, resp, err := c.gh.Git.GetBlob(ctx, owner, repo, sha)
	c.observe(resp)
	if err != nil {
		return nil, c.wrapError(err, resp)
	}

	content := blob.GetContent()
	if blob.GetEncoding() == "base64" {
		decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(content, "\n", ""))
		if err != nil {
			return nil, fmt.Errorf("decoding blob %s: %w", sha, err)
		}
		return decoded, nil
	}
	return []byte(content), nil
}

func (c *Client) observe(resp *gh.Response) {
	if resp != nil {
		c.limiter.UpdateFromResponse(resp.Response)
	}
}

// wrapError normalises go-github errors into the package's error types.
func (c *Client) wrapError(err error, resp *gh.Response) error {
	if err == nil {
		return nil
	}

	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return &RateLimitError{
			ResetTime: rateErr.Rate.Reset.Time,
			Remaining: rateErr.Rate.Remaining,
		}
	}

	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		apiErr := &APIError{
			StatusCode: errResp.Response.StatusCode,
			Message:    errResp.Message,
		}
		if errResp.Response.Request != nil && errResp.Response.Request.URL != nil {
			apiErr.URL = errResp.Response.Request.URL.String()
		}
		return apiErr
	}

	if resp != nil && resp.StatusCode >= 400 {
		return &APIError{StatusCode: resp.StatusCode, Message: err.Error()}
	}
	return err
}
