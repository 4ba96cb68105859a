package services

import (
	"path/filepath"
	"strings"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
)

// displayName builds an uploaded document's display name: the file's
// base name with the item's metadata folded in as a bracketed suffix
// before the extension. The remote service corrupts a freshly uploaded
// document's storage pointer when metadata is patched on afterwards, so
// the name is the only safe carrier.
//
// Over the length cap, whole metadata fields are dropped from the right
// until the name fits. The extension always survives; the remote
// service infers the document format from it.
func displayName(path string, meta domain.Metadata, maxLen int) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	fits := func(name string) bool {
		return maxLen <= 0 || len([]rune(name)) <= maxLen
	}

	for n := len(meta); n >= 0; n-- {
		name := stem + metadataSuffix(meta[:n]) + ext
		if fits(name) {
			return name
		}
	}

	// Even the bare name is over budget: trim the stem.
	extRunes := []rune(ext)
	keep := maxLen - len(extRunes)
	if keep < 1 {
		return string([]rune(stem + ext)[:maxLen])
	}
	stemRunes := []rune(stem)
	if keep > len(stemRunes) {
		keep = len(stemRunes)
	}
	return string(stemRunes[:keep]) + ext
}

// metadataSuffix renders metadata as " [k=v, k=v]", empty for no fields.
func metadataSuffix(meta domain.Metadata) string {
	if len(meta) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(" [")
	for i, f := range meta {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(f.Value)
	}
	b.WriteByte(']')
	return b.String()
}
