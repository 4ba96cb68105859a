package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	// Remote must be explicitly configured before use.
	assert.Empty(t, s.Remote.BaseURL)
	assert.Empty(t, s.Remote.APIKey)
	assert.Equal(t, 30*time.Second, s.Remote.Timeout)
	assert.Equal(t, 3, s.Remote.RetryAttempts)

	assert.Equal(t, PermissionMe, s.Collection.Permission)
	assert.Equal(t, "naive", s.Collection.ChunkMethod)
	// Tenant default embedding model unless deliberately overridden.
	assert.Empty(t, s.Collection.EmbeddingModel)
	assert.Equal(t, 512, s.Collection.Parser.ChunkTokens)

	assert.Equal(t, 60*time.Second, s.Resolve.DownloadTimeout)
	assert.Equal(t, 5*time.Minute, s.Resolve.ConvertTimeout)

	assert.True(t, s.Sync.SkipUnchanged)
	assert.True(t, s.Sync.DeleteBeforeUpload)

	assert.Equal(t, 10*time.Second, s.Monitor.PollInterval)
	assert.Equal(t, 30*time.Minute, s.Monitor.Deadline)
}

func TestCollectionSettings_Spec(t *testing.T) {
	cs := CollectionSettings{
		Permission:  PermissionTeam,
		Language:    "Korean",
		ChunkMethod: "naive",
		Parser:      ParserSettings{ChunkTokens: 256, Delimiter: "\n"},
	}

	spec := cs.Spec("hr-docs")

	assert.Equal(t, "hr-docs", spec.Name)
	assert.Equal(t, PermissionTeam, spec.Permission)
	assert.Equal(t, "Korean", spec.Language)
	assert.Empty(t, spec.EmbeddingModel)
	assert.Equal(t, 256, spec.Parser.ChunkTokens)
}
