// Package soffice converts documents with a headless LibreOffice
// subprocess. Formats the collection service will not accept (hwp, hwpx,
// doc, ppt) are converted to pdf before upload; when no soffice binary is
// installed the resolver degrades to uploading originals instead.
package soffice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driven"
)

// DefaultTimeout bounds one conversion run. Large presentations can keep
// LibreOffice busy for minutes.
const DefaultTimeout = 5 * time.Minute

// probeLocations are checked before falling back to PATH lookup.
var probeLocations = []string{
	"/usr/bin/soffice",
	"/usr/bin/libreoffice",
	"/usr/local/bin/soffice",
	"/Applications/LibreOffice.app/Contents/MacOS/soffice",
}

// pathNames are resolved through PATH when no known location exists.
var pathNames = []string{"soffice", "libreoffice"}

// Converter shells out to LibreOffice in headless mode.
type Converter struct {
	binary  string
	timeout time.Duration
}

var _ driven.DocumentConverter = (*Converter)(nil)

// New creates a converter. An empty binaryPath probes the known install
// locations and PATH; when nothing is found the converter reports itself
// unavailable rather than failing construction.
func New(binaryPath string, timeout time.Duration) *Converter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Converter{
		binary:  probe(binaryPath),
		timeout: timeout,
	}
}

// Available reports whether a converter binary was found.
func (c *Converter) Available() bool {
	return c.binary != ""
}

// Path returns the resolved converter binary. Empty when unavailable.
func (c *Converter) Path() string {
	return c.binary
}

// Convert writes path converted to targetFormat into outDir and returns
// the produced file's path. LibreOffice names its output after the input
// stem, so the result is outDir/<stem>.<targetFormat>.
func (c *Converter) Convert(ctx context.Context, path, targetFormat, outDir string) (string, error) {
	if c.binary == "" {
		return "", fmt.Errorf("%w: no converter binary found", domain.ErrConversionFailed)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binary,
		"--headless",
		"--convert-to", targetFormat,
		"--outdir", outDir,
		path,
	)

	output, err := cmd.CombinedOutput()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("%w: converting %s timed out after %s", domain.ErrConversionFailed, path, c.timeout)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v\n%s", domain.ErrConversionFailed, path, err, strings.TrimSpace(string(output)))
	}

	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	produced := filepath.Join(outDir, stem+"."+targetFormat)

	info, err := os.Stat(produced)
	if err != nil {
		return "", fmt.Errorf("%w: %s produced no output: %v", domain.ErrConversionFailed, path, err)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("%w: %s produced an empty file", domain.ErrConversionFailed, path)
	}

	return produced, nil
}

// probe resolves the converter binary. An explicit override is honoured
// but never falls through to other candidates: a misconfigured path
// surfacing as a different binary would be confusing.
func probe(override string) string {
	if override != "" {
		if resolved, err := exec.LookPath(override); err == nil {
			return resolved
		}
		if _, err := os.Stat(override); err == nil {
			return override
		}
		return ""
	}

	for _, candidate := range probeLocations {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	for _, name := range pathNames {
		if resolved, err := exec.LookPath(name); err == nil {
			return resolved
		}
	}
	return ""
}
