package github

import (
	"path/filepath"
	"strings"
)

// binaryExtensions lists file types that never ingest usefully: images,
// media, executables and fonts. Document formats the remote can parse
// (pdf, docx, pptx, xlsx, hwp) stay eligible, as does zip, which the
// resolver expands.
var binaryExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".ico": true, ".svg": true, ".webp": true, ".tiff": true,
	".mp3": true, ".mp4": true, ".avi": true, ".mov": true, ".wav": true,
	".flac": true, ".mkv": true, ".webm": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".bin": true,
	".o": true, ".a": true, ".class": true, ".pyc": true, ".wasm": true,
	".ttf": true, ".otf": true, ".woff": true, ".woff2": true, ".eot": true,
	".gz": true, ".tar": true, ".tgz": true, ".7z": true, ".rar": true,
}

// matchesPatterns reports whether path matches any of the glob patterns.
// Patterns match against both the base name and the full repository path,
// so "*.md" and "docs/*" both behave as expected. No patterns means
// everything matches.
func matchesPatterns(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}

	base := filepath.Base(path)
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, path); matched {
			return true
		}
	}
	return false
}

// isBinaryExtension reports whether path has an extension we skip.
func isBinaryExtension(path string) bool {
	return binaryExtensions[strings.ToLower(filepath.Ext(path))]
}
