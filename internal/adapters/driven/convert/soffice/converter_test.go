package soffice

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
)

// writeFakeConverter installs a shell script that mimics soffice's
// argument order: --headless --convert-to FMT --outdir DIR PATH.
func writeFakeConverter(t *testing.T, script string) *Converter {
	t.Helper()

	path := filepath.Join(t.TempDir(), "soffice")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755))

	conv := New(path, time.Minute)
	require.True(t, conv.Available())
	return conv
}

func TestNew_ExplicitBinary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "soffice")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))

	conv := New(path, 0)

	assert.True(t, conv.Available())
	assert.Equal(t, path, conv.Path())
	assert.Equal(t, DefaultTimeout, conv.timeout)
}

func TestNew_MissingBinary(t *testing.T) {
	conv := New(filepath.Join(t.TempDir(), "nonexistent"), time.Minute)

	assert.False(t, conv.Available())
	assert.Empty(t, conv.Path())

	_, err := conv.Convert(context.Background(), "in.hwp", "pdf", t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConversionFailed)
}

func TestConverter_Convert_Success(t *testing.T) {
	conv := writeFakeConverter(t, `base=$(basename "$6"); stem=${base%.*}; echo converted > "$5/$stem.$3"`)

	inDir := t.TempDir()
	outDir := t.TempDir()
	input := filepath.Join(inDir, "report.hwp")
	require.NoError(t, os.WriteFile(input, []byte("hwp"), 0o600))

	produced, err := conv.Convert(context.Background(), input, "pdf", outDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outDir, "report.pdf"), produced)
	content, err := os.ReadFile(produced)
	require.NoError(t, err)
	assert.Equal(t, "converted\n", string(content))
}

func TestConverter_Convert_KeepsUnicodeStem(t *testing.T) {
	conv := writeFakeConverter(t, `base=$(basename "$6"); stem=${base%.*}; echo x > "$5/$stem.$3"`)

	inDir := t.TempDir()
	outDir := t.TempDir()
	input := filepath.Join(inDir, "상각자산명세.hwp")
	require.NoError(t, os.WriteFile(input, []byte("hwp"), 0o600))

	produced, err := conv.Convert(context.Background(), input, "pdf", outDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "상각자산명세.pdf"), produced)
}

func TestConverter_Convert_NonZeroExit(t *testing.T) {
	conv := writeFakeConverter(t, `echo "source file corrupt" >&2; exit 3`)

	_, err := conv.Convert(context.Background(), "broken.hwp", "pdf", t.TempDir())
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrConversionFailed)
	assert.Contains(t, err.Error(), "source file corrupt")
}

func TestConverter_Convert_NoOutput(t *testing.T) {
	conv := writeFakeConverter(t, `exit 0`)

	_, err := conv.Convert(context.Background(), "report.hwp", "pdf", t.TempDir())
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrConversionFailed)
	assert.Contains(t, err.Error(), "produced no output")
}

func TestConverter_Convert_EmptyOutput(t *testing.T) {
	conv := writeFakeConverter(t, `base=$(basename "$6"); stem=${base%.*}; : > "$5/$stem.$3"`)

	inDir := t.TempDir()
	input := filepath.Join(inDir, "report.hwp")
	require.NoError(t, os.WriteFile(input, []byte("hwp"), 0o600))

	_, err := conv.Convert(context.Background(), input, "pdf", t.TempDir())
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrConversionFailed)
	assert.Contains(t, err.Error(), "empty file")
}

func TestConverter_Convert_Timeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soffice")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nsleep 5\n"), 0o755))

	conv := New(path, 100*time.Millisecond)
	require.True(t, conv.Available())

	start := time.Now()
	_, err := conv.Convert(context.Background(), "report.hwp", "pdf", t.TempDir())
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrConversionFailed)
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), 3*time.Second)
}
