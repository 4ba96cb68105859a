package github

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
)

// DefaultMaxFileSize caps blobs at the API's inline content limit.
const DefaultMaxFileSize = 1024 * 1024

// Config holds the parsed settings for one repository source.
type Config struct {
	// Owner and Repo name the repository to walk.
	Owner string
	Repo  string

	// Ref is the branch, tag or commit SHA to walk. Empty means the
	// repository's default branch.
	Ref string

	// Token authenticates API requests. Required for private
	// repositories.
	Token string

	// Patterns are glob patterns selecting which files to produce.
	// A file matches when any pattern matches its base name or its
	// full repository path. Empty means every file.
	Patterns []string

	// MaxFileSize skips blobs larger than this many bytes.
	MaxFileSize int64
}

// ParseConfig validates and parses a source's settings.
func ParseConfig(source domain.Source) (*Config, error) {
	repoSpec := source.Setting("repo", "")
	owner, name, ok := strings.Cut(repoSpec, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("%w: repo must be \"owner/name\", got %q", domain.ErrInvalidInput, repoSpec)
	}

	cfg := &Config{
		Owner:       owner,
		Repo:        name,
		Ref:         source.Setting("ref", ""),
		Token:       source.Setting("token", ""),
		MaxFileSize: DefaultMaxFileSize,
	}

	if patterns := source.Setting("patterns", ""); patterns != "" {
		for _, p := range strings.Split(patterns, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.Patterns = append(cfg.Patterns, p)
			}
		}
	}

	if v := source.Setting("max_file_size", ""); v != "" {
		size, err := strconv.ParseInt(v, 10, 64)
		if err != nil || size <= 0 {
			return nil, fmt.Errorf("%w: max_file_size must be a positive byte count, got %q", domain.ErrInvalidInput, v)
		}
		cfg.MaxFileSize = size
	}

	return cfg, nil
}
