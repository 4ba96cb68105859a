package resolver

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
)

// expandArchive extracts every file member of a zip into destDir and
// returns the extracted paths in archive order.
func expandArchive(archivePath, destDir string) ([]string, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening archive %s: %v", domain.ErrInvalidFile, archivePath, err)
	}
	defer zr.Close()

	var members []string
	for _, member := range zr.File {
		if member.FileInfo().IsDir() {
			continue
		}

		rel := sanitizeMemberPath(member.Name)
		if rel == "" {
			// Absolute or parent-escaping names never leave the root.
			continue
		}

		dest := filepath.Join(destDir, rel)
		if err := extractMember(member, dest); err != nil {
			return nil, err
		}
		members = append(members, dest)
	}
	return members, nil
}

func extractMember(member *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
	}

	rc, err := member.Open()
	if err != nil {
		return fmt.Errorf("%w: opening archive member %s: %v", domain.ErrInvalidFile, member.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("%w: extracting %s: %v", domain.ErrInvalidFile, member.Name, err)
	}
	return out.Close()
}

// sanitizeMemberPath rejects member names that would escape the
// extraction root. Returns "" for unusable names.
func sanitizeMemberPath(name string) string {
	cleaned := path.Clean(filepath.ToSlash(name))
	if cleaned == "." || cleaned == ".." || path.IsAbs(cleaned) || strings.HasPrefix(cleaned, "../") {
		return ""
	}
	return filepath.FromSlash(cleaned)
}
