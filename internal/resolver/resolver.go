// Package resolver turns work item content references into upload-ready
// local files: local and file:// paths are copied into a run-scoped
// scratch area, http(s) URLs are downloaded through the download cache,
// zip archives are expanded member by member, convertible formats pass
// through the external document converter, and literal payloads are
// written out as labelled text files.
package resolver

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ingesta-cli/internal/logger"
)

// convertTarget is the format convertible documents are turned into.
const convertTarget = "pdf"

// convertibleExts are formats the collection service rejects that the
// external converter can turn into pdf.
var convertibleExts = map[string]bool{
	"hwp":  true,
	"hwpx": true,
	"doc":  true,
	"ppt":  true,
}

// Resolver produces upload-ready files from work items. Each resolved
// item gets its own subdirectory so equal base names never collide.
type Resolver struct {
	runDir      string
	downloadDir string
	converter   driven.DocumentConverter
	cache       driven.DownloadCache
	http        *http.Client
	cacheTTL    time.Duration
	seq         atomic.Int64
}

var _ driven.FileResolver = (*Resolver)(nil)

// New creates a resolver with a fresh run-scoped scratch directory. With
// a configured scratch dir, downloads land in a sibling directory that
// persists across runs so the download cache survives Cleanup; otherwise
// everything lives under one temp directory per run.
func New(settings domain.ResolveSettings, converter driven.DocumentConverter, cache driven.DownloadCache) (*Resolver, error) {
	downloadTimeout := settings.DownloadTimeout
	if downloadTimeout <= 0 {
		downloadTimeout = DefaultDownloadTimeout
	}
	cacheTTL := settings.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}

	var runDir, downloadDir string
	var err error
	if settings.ScratchDir != "" {
		if err = os.MkdirAll(settings.ScratchDir, 0o700); err != nil {
			return nil, fmt.Errorf("creating scratch directory: %w", err)
		}
		runDir, err = os.MkdirTemp(settings.ScratchDir, "run-")
		downloadDir = filepath.Join(settings.ScratchDir, "downloads")
	} else {
		runDir, err = os.MkdirTemp("", "ingesta-")
		downloadDir = filepath.Join(runDir, "downloads")
	}
	if err != nil {
		return nil, fmt.Errorf("creating run directory: %w", err)
	}
	if err := os.MkdirAll(downloadDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating downloads directory: %w", err)
	}

	return &Resolver{
		runDir:      runDir,
		downloadDir: downloadDir,
		converter:   converter,
		cache:       cache,
		http:        &http.Client{Timeout: downloadTimeout},
		cacheTTL:    cacheTTL,
	}, nil
}

// Resolve produces the upload-ready files for an item, in a stable order.
func (r *Resolver) Resolve(ctx context.Context, item domain.WorkItem) ([]domain.ResolvedFile, error) {
	dir, err := r.nextItemDir()
	if err != nil {
		return nil, err
	}

	var files []domain.ResolvedFile
	if item.IsLiteral() {
		files, err = r.materializeLiteral(item, dir)
	} else {
		files, err = r.resolveRef(ctx, item.ContentRef, dir)
	}
	if err != nil {
		return nil, err
	}
	return files, r.verify(files)
}

// Cleanup removes the run's scratch area. Cached downloads in a
// configured scratch dir are kept: the cache sweep retires them on its
// own schedule.
func (r *Resolver) Cleanup() error {
	if r.runDir == "" {
		return nil
	}
	if err := os.RemoveAll(r.runDir); err != nil {
		return fmt.Errorf("removing scratch directory: %w", err)
	}
	return nil
}

func (r *Resolver) resolveRef(ctx context.Context, ref, dir string) ([]domain.ResolvedFile, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty content reference", domain.ErrInvalidFile)
	}

	local := ""
	needsCopy := true
	switch {
	case hasHTTPScheme(ref):
		fetched, err := r.fetch(ctx, ref)
		if err != nil {
			return nil, err
		}
		local = fetched
		needsCopy = false
	case strings.HasPrefix(strings.ToLower(ref), "file://"):
		p, err := fileURIPath(ref)
		if err != nil {
			return nil, err
		}
		local = p
	default:
		local = normalizePath(ref)
	}

	return r.resolveLocal(ctx, local, dir, needsCopy)
}

func (r *Resolver) resolveLocal(ctx context.Context, path, dir string, needsCopy bool) ([]domain.ResolvedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidFile, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidFile, path)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrInvalidFile, path)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch {
	case ext == "zip":
		return r.resolveArchive(ctx, path, dir)
	case convertibleExts[ext]:
		file, err := r.convert(ctx, path, dir, needsCopy)
		if err != nil {
			return nil, err
		}
		return []domain.ResolvedFile{file}, nil
	default:
		p := path
		if needsCopy {
			if p, err = copyInto(path, dir); err != nil {
				return nil, err
			}
		}
		return []domain.ResolvedFile{{Path: p, ContentType: contentTypeFor(p)}}, nil
	}
}

// resolveArchive expands a zip and resolves every member. The archive
// itself is never uploaded.
func (r *Resolver) resolveArchive(ctx context.Context, path, dir string) ([]domain.ResolvedFile, error) {
	destDir := filepath.Join(dir, stem(path))
	members, err := expandArchive(path, destDir)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: archive %s has no files", domain.ErrInvalidFile, path)
	}

	var files []domain.ResolvedFile
	for _, member := range members {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resolved, err := r.resolveLocal(ctx, member, filepath.Dir(member), false)
		if err != nil {
			return nil, err
		}
		files = append(files, resolved...)
	}
	return files, nil
}

// convert runs the external converter, degrading to the original file
// with a warning rather than failing the item.
func (r *Resolver) convert(ctx context.Context, path, dir string, needsCopy bool) (domain.ResolvedFile, error) {
	keep := func(warning string) (domain.ResolvedFile, error) {
		p := path
		if needsCopy {
			copied, err := copyInto(path, dir)
			if err != nil {
				return domain.ResolvedFile{}, err
			}
			p = copied
		}
		return domain.ResolvedFile{Path: p, ContentType: contentTypeFor(p), Warning: warning}, nil
	}

	if r.converter == nil || !r.converter.Available() {
		return keep("converter unavailable, uploading original")
	}

	produced, err := r.converter.Convert(ctx, path, convertTarget, dir)
	if err != nil {
		logger.Warn("conversion failed for %s: %v", filepath.Base(path), err)
		return keep(fmt.Sprintf("conversion failed, uploading original: %v", err))
	}

	return domain.ResolvedFile{Path: produced, ContentType: contentTypeFor(produced), Converted: true}, nil
}

// materializeLiteral writes a literal payload to disk under the item's
// suggested name.
func (r *Resolver) materializeLiteral(item domain.WorkItem, dir string) ([]domain.ResolvedFile, error) {
	if len(item.Payload) == 0 {
		return nil, fmt.Errorf("%w: item %s has an empty payload", domain.ErrInvalidFile, item.SourceKey)
	}

	name := filepath.Base(strings.TrimSpace(item.ContentRef))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = safeFileName(item.SourceKey) + ".txt"
	}

	dest := filepath.Join(dir, name)
	if err := os.WriteFile(dest, item.Payload, 0o600); err != nil {
		return nil, fmt.Errorf("writing %s: %w", dest, err)
	}
	return []domain.ResolvedFile{{Path: dest, ContentType: contentTypeFor(dest)}}, nil
}

// verify stat-checks every produced file. A missing or zero-length
// output means the item produced nothing uploadable.
func (r *Resolver) verify(files []domain.ResolvedFile) error {
	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrInvalidFile, f.Path, err)
		}
		if info.Size() == 0 {
			return fmt.Errorf("%w: %s is empty", domain.ErrInvalidFile, f.Path)
		}
	}
	return nil
}

func (r *Resolver) nextItemDir() (string, error) {
	n := r.seq.Add(1)
	dir := filepath.Join(r.runDir, fmt.Sprintf("item-%04d", n))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating item directory: %w", err)
	}
	return dir, nil
}

// copyInto copies src into dir keeping its base name.
func copyInto(src, dir string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrInvalidFile, src, err)
	}
	defer in.Close()

	dest := filepath.Join(dir, filepath.Base(src))
	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", dest, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", fmt.Errorf("copying %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("writing %s: %w", dest, err)
	}
	return dest, nil
}

func hasHTTPScheme(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// fileURIPath converts a file:// reference to a local path. A host part
// names a UNC share.
func fileURIPath(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("%w: parsing %s: %v", domain.ErrInvalidFile, ref, err)
	}
	if u.Host != "" {
		return normalizePath(`\\` + u.Host + filepath.FromSlash(u.Path)), nil
	}
	return filepath.FromSlash(u.Path), nil
}

// normalizePath accepts Windows-style separators, which is how UNC and
// drive paths arrive from spreadsheet cells.
func normalizePath(p string) string {
	if strings.Contains(p, `\`) {
		p = strings.ReplaceAll(p, `\`, "/")
	}
	return filepath.FromSlash(p)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// contentTypeFor detects a MIME type from the file extension.
func contentTypeFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".hwp", ".hwpx":
		// Not in the platform MIME tables.
		return "application/x-hwp"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// safeFileName turns a source key into a usable file name.
func safeFileName(key string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, key)
	if mapped == "" {
		return "item"
	}
	return mapped
}
