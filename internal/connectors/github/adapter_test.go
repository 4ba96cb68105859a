package github

import (
	"context"
	"net/http"
	"testing"
	"time"

	gh "github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
)

func TestParseConfig(t *testing.T) {
	t.Run("minimal valid config", func(t *testing.T) {
		cfg, err := ParseConfig(domain.Source{
			ID:       "src-1",
			Settings: map[string]string{"repo": "octocat/hello-world"},
		})
		require.NoError(t, err)
		assert.Equal(t, "octocat", cfg.Owner)
		assert.Equal(t, "hello-world", cfg.Repo)
		assert.Empty(t, cfg.Ref)
		assert.Empty(t, cfg.Patterns)
		assert.Equal(t, int64(DefaultMaxFileSize), cfg.MaxFileSize)
	})

	t.Run("full config", func(t *testing.T) {
		cfg, err := ParseConfig(domain.Source{
			Settings: map[string]string{
				"repo":          "acme/docs",
				"ref":           "release-2024",
				"token":         "ghp_secret",
				"patterns":      "*.md, docs/*,*.pdf",
				"max_file_size": "2048",
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "release-2024", cfg.Ref)
		assert.Equal(t, "ghp_secret", cfg.Token)
		assert.Equal(t, []string{"*.md", "docs/*", "*.pdf"}, cfg.Patterns)
		assert.Equal(t, int64(2048), cfg.MaxFileSize)
	})

	t.Run("missing repo", func(t *testing.T) {
		_, err := ParseConfig(domain.Source{Settings: map[string]string{}})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("repo without owner", func(t *testing.T) {
		_, err := ParseConfig(domain.Source{Settings: map[string]string{"repo": "hello-world"}})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("invalid max_file_size", func(t *testing.T) {
		_, err := ParseConfig(domain.Source{Settings: map[string]string{
			"repo":          "a/b",
			"max_file_size": "lots",
		}})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestMatchesPatterns(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		patterns []string
		want     bool
	}{
		{"no patterns matches everything", "src/main.go", nil, true},
		{"base name match", "docs/guide.md", []string{"*.md"}, true},
		{"full path match", "docs/guide.md", []string{"docs/*"}, true},
		{"no match", "src/main.go", []string{"*.md"}, false},
		{"second pattern matches", "notes.txt", []string{"*.md", "*.txt"}, true},
		{"nested path not matched by single star", "docs/api/ref.md", []string{"docs/*"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesPatterns(tt.path, tt.patterns))
		})
	}
}

func TestIsBinaryExtension(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"logo.png", true},
		{"assets/FONT.TTF", true},
		{"build/app.exe", true},
		{"report.pdf", false},
		{"archive.zip", false},
		{"readme.md", false},
		{"Makefile", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, isBinaryExtension(tt.path))
		})
	}
}

func TestAdapter_ItemFor(t *testing.T) {
	adapter := &Adapter{
		sourceID: "src-1",
		config: &Config{
			Owner:       "acme",
			Repo:        "docs",
			MaxFileSize: 1024,
		},
	}

	blob := func(path, sha string, size int) *gh.TreeEntry {
		return &gh.TreeEntry{
			Path: gh.Ptr(path),
			SHA:  gh.Ptr(sha),
			Size: gh.Ptr(size),
			Type: gh.Ptr("blob"),
		}
	}

	t.Run("public blob references the raw URL", func(t *testing.T) {
		item, ok := adapter.itemFor(blob("guides/setup.md", "abc123", 512), "main", false)
		require.True(t, ok)
		assert.Equal(t, "acme/docs:guides/setup.md", item.SourceKey)
		assert.Equal(t, "https://raw.githubusercontent.com/acme/docs/main/guides/setup.md", item.ContentRef)
		assert.Equal(t, "abc123", item.RevisionFingerprint)
		assert.False(t, item.IsLiteral())

		path, _ := item.Metadata.Get("path")
		assert.Equal(t, "guides/setup.md", path)
		repo, _ := item.Metadata.Get("repo")
		assert.Equal(t, "acme/docs", repo)
	})

	t.Run("private blob keeps the repository path as name hint", func(t *testing.T) {
		item, ok := adapter.itemFor(blob("guides/setup.md", "abc123", 512), "main", true)
		require.True(t, ok)
		assert.Equal(t, "guides/setup.md", item.ContentRef)
	})

	t.Run("skips directories", func(t *testing.T) {
		entry := &gh.TreeEntry{
			Path: gh.Ptr("guides"),
			SHA:  gh.Ptr("def456"),
			Type: gh.Ptr("tree"),
		}
		_, ok := adapter.itemFor(entry, "main", false)
		assert.False(t, ok)
	})

	t.Run("skips oversized blobs", func(t *testing.T) {
		_, ok := adapter.itemFor(blob("big.md", "big1", 4096), "main", false)
		assert.False(t, ok)
	})

	t.Run("skips binary extensions", func(t *testing.T) {
		_, ok := adapter.itemFor(blob("logo.png", "img1", 100), "main", false)
		assert.False(t, ok)
	})

	t.Run("applies patterns", func(t *testing.T) {
		adapter.config.Patterns = []string{"*.md"}
		defer func() { adapter.config.Patterns = nil }()

		_, ok := adapter.itemFor(blob("main.go", "go1", 100), "main", false)
		assert.False(t, ok)

		_, ok = adapter.itemFor(blob("readme.md", "md1", 100), "main", false)
		assert.True(t, ok)
	})
}

func TestRateLimiter_UpdateFromResponse(t *testing.T) {
	limiter := NewRateLimiter()
	assert.Equal(t, -1, limiter.Remaining())

	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("X-RateLimit-Remaining", "42")
	resp.Header.Set("X-RateLimit-Reset", "1700000000")
	limiter.UpdateFromResponse(resp)

	assert.Equal(t, 42, limiter.Remaining())
	assert.Equal(t, time.Unix(1700000000, 0), limiter.ResetTime())
}

func TestRateLimiter_WaitHonoursCancellation(t *testing.T) {
	limiter := NewRateLimiter()

	// Drain the burst so the next wait would block.
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.Wait(ctx))
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, limiter.Wait(cancelled))
}

func TestAdapter_Type(t *testing.T) {
	adapter := &Adapter{sourceID: "src-9", config: &Config{Owner: "a", Repo: "b"}}
	assert.Equal(t, domain.SourceTypeGitHub, adapter.Type())
	assert.Equal(t, "src-9", adapter.SourceID())
	assert.NoError(t, adapter.Close())
}
