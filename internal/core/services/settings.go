package services

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvAPIKey overrides the stored remote API key when set. Useful for CI
// and for keeping the token out of the config file entirely.
const EnvAPIKey = "INGESTA_API_KEY"

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyRemoteBaseURL  = "remote.base_url"
	keyRemoteAPIKey   = "remote.api_key"
	keyRemoteTimeout  = "remote.timeout_seconds"
	keyRemoteRetries  = "remote.retry_attempts"
	keyRemoteRate     = "remote.rate_per_second"
	keyColPermission  = "collection.permission"
	keyColLanguage    = "collection.language"
	keyColChunkMethod = "collection.chunk_method"
	keyColEmbedModel  = "collection.embedding_model"
	keyColLayout      = "collection.parser.layout"
	keyColChunkTokens = "collection.parser.chunk_tokens"
	keyColDelimiter   = "collection.parser.delimiter"
	keyResScratchDir  = "resolve.scratch_dir"
	keyResDownloadTO  = "resolve.download_timeout_seconds"
	keyResConvertTO   = "resolve.convert_timeout_seconds"
	keyResConverter   = "resolve.converter_path"
	keyResCacheTTL    = "resolve.cache_ttl_hours"
	keySyncSkip       = "sync.skip_unchanged"
	keySyncDelete     = "sync.delete_before_upload"
	keySyncNameMax    = "sync.name_max_len"
	keySyncRowSep     = "sync.row_separator"
	keyMonitorPoll    = "monitor.poll_seconds"
	keyMonitorDeadl   = "monitor.deadline_minutes"
	keyScheduleSpec   = "schedule.spec"
	keyLogFile        = "log.file"
	keyLogMaxSize     = "log.max_size_mb"
	keyLogMaxBackups  = "log.max_backups"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Get retrieves current application settings. The INGESTA_API_KEY
// environment variable, when set, overrides the stored API key.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Remote: domain.RemoteSettings{
			BaseURL:       s.configStore.GetString(keyRemoteBaseURL), // No default - must be configured
			APIKey:        s.configStore.GetString(keyRemoteAPIKey),
			Timeout:       s.getSeconds(keyRemoteTimeout, defaults.Remote.Timeout),
			RetryAttempts: s.getInt(keyRemoteRetries, defaults.Remote.RetryAttempts),
			RatePerSecond: s.getFloat(keyRemoteRate, defaults.Remote.RatePerSecond),
		},
		Collection: domain.CollectionSettings{
			Permission:     s.getPermission(defaults.Collection.Permission),
			Language:       s.getString(keyColLanguage, defaults.Collection.Language),
			ChunkMethod:    s.getString(keyColChunkMethod, defaults.Collection.ChunkMethod),
			EmbeddingModel: s.configStore.GetString(keyColEmbedModel), // No default - empty uses tenant default
			Parser: domain.ParserSettings{
				Layout:      s.configStore.GetString(keyColLayout),
				ChunkTokens: s.getInt(keyColChunkTokens, defaults.Collection.Parser.ChunkTokens),
				Delimiter:   s.configStore.GetString(keyColDelimiter),
			},
		},
		Resolve: domain.ResolveSettings{
			ScratchDir:      s.configStore.GetString(keyResScratchDir), // No default - empty means temp dir
			DownloadTimeout: s.getSeconds(keyResDownloadTO, defaults.Resolve.DownloadTimeout),
			ConvertTimeout:  s.getSeconds(keyResConvertTO, defaults.Resolve.ConvertTimeout),
			ConverterPath:   s.configStore.GetString(keyResConverter),
			CacheTTL:        s.getHours(keyResCacheTTL, defaults.Resolve.CacheTTL),
		},
		Sync: domain.SyncSettings{
			SkipUnchanged:      s.getBool(keySyncSkip, defaults.Sync.SkipUnchanged),
			DeleteBeforeUpload: s.getBool(keySyncDelete, defaults.Sync.DeleteBeforeUpload),
			NameMaxLen:         s.getInt(keySyncNameMax, defaults.Sync.NameMaxLen),
			RowSeparator:       s.getString(keySyncRowSep, defaults.Sync.RowSeparator),
		},
		Monitor: domain.MonitorSettings{
			PollInterval: s.getSeconds(keyMonitorPoll, defaults.Monitor.PollInterval),
			Deadline:     s.getMinutes(keyMonitorDeadl, defaults.Monitor.Deadline),
		},
		ScheduleSpec: s.configStore.GetString(keyScheduleSpec),
		Log: domain.LogSettings{
			File:       s.configStore.GetString(keyLogFile),
			MaxSizeMB:  s.getInt(keyLogMaxSize, defaults.Log.MaxSizeMB),
			MaxBackups: s.getInt(keyLogMaxBackups, defaults.Log.MaxBackups),
		},
	}

	if key := os.Getenv(EnvAPIKey); key != "" {
		settings.Remote.APIKey = key
	}

	return settings, nil
}

// Save persists application settings.
//
//nolint:gocyclo // Straight-line key-by-key persistence.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	// Save remote settings
	if err := s.configStore.Set(keyRemoteBaseURL, settings.Remote.BaseURL); err != nil {
		return fmt.Errorf("save remote base_url: %w", err)
	}
	if settings.Remote.APIKey != "" {
		if err := s.configStore.Set(keyRemoteAPIKey, settings.Remote.APIKey); err != nil {
			return fmt.Errorf("save remote api_key: %w", err)
		}
	}
	if err := s.configStore.Set(keyRemoteTimeout, int(settings.Remote.Timeout.Seconds())); err != nil {
		return fmt.Errorf("save remote timeout: %w", err)
	}
	if err := s.configStore.Set(keyRemoteRetries, settings.Remote.RetryAttempts); err != nil {
		return fmt.Errorf("save remote retry_attempts: %w", err)
	}
	if err := s.configStore.Set(keyRemoteRate, settings.Remote.RatePerSecond); err != nil {
		return fmt.Errorf("save remote rate_per_second: %w", err)
	}

	// Save collection settings
	if err := s.configStore.Set(keyColPermission, settings.Collection.Permission.String()); err != nil {
		return fmt.Errorf("save collection permission: %w", err)
	}
	if err := s.configStore.Set(keyColLanguage, settings.Collection.Language); err != nil {
		return fmt.Errorf("save collection language: %w", err)
	}
	if err := s.configStore.Set(keyColChunkMethod, settings.Collection.ChunkMethod); err != nil {
		return fmt.Errorf("save collection chunk_method: %w", err)
	}
	if err := s.configStore.Set(keyColEmbedModel, settings.Collection.EmbeddingModel); err != nil {
		return fmt.Errorf("save collection embedding_model: %w", err)
	}
	if err := s.configStore.Set(keyColLayout, settings.Collection.Parser.Layout); err != nil {
		return fmt.Errorf("save parser layout: %w", err)
	}
	if err := s.configStore.Set(keyColChunkTokens, settings.Collection.Parser.ChunkTokens); err != nil {
		return fmt.Errorf("save parser chunk_tokens: %w", err)
	}
	if err := s.configStore.Set(keyColDelimiter, settings.Collection.Parser.Delimiter); err != nil {
		return fmt.Errorf("save parser delimiter: %w", err)
	}

	// Save resolve settings
	if err := s.configStore.Set(keyResScratchDir, settings.Resolve.ScratchDir); err != nil {
		return fmt.Errorf("save resolve scratch_dir: %w", err)
	}
	if err := s.configStore.Set(keyResDownloadTO, int(settings.Resolve.DownloadTimeout.Seconds())); err != nil {
		return fmt.Errorf("save resolve download_timeout: %w", err)
	}
	if err := s.configStore.Set(keyResConvertTO, int(settings.Resolve.ConvertTimeout.Seconds())); err != nil {
		return fmt.Errorf("save resolve convert_timeout: %w", err)
	}
	if err := s.configStore.Set(keyResConverter, settings.Resolve.ConverterPath); err != nil {
		return fmt.Errorf("save resolve converter_path: %w", err)
	}
	if err := s.configStore.Set(keyResCacheTTL, int(settings.Resolve.CacheTTL.Hours())); err != nil {
		return fmt.Errorf("save resolve cache_ttl: %w", err)
	}

	// Save sync settings
	if err := s.configStore.Set(keySyncSkip, settings.Sync.SkipUnchanged); err != nil {
		return fmt.Errorf("save sync skip_unchanged: %w", err)
	}
	if err := s.configStore.Set(keySyncDelete, settings.Sync.DeleteBeforeUpload); err != nil {
		return fmt.Errorf("save sync delete_before_upload: %w", err)
	}
	if err := s.configStore.Set(keySyncNameMax, settings.Sync.NameMaxLen); err != nil {
		return fmt.Errorf("save sync name_max_len: %w", err)
	}
	if err := s.configStore.Set(keySyncRowSep, settings.Sync.RowSeparator); err != nil {
		return fmt.Errorf("save sync row_separator: %w", err)
	}

	// Save monitor settings
	if err := s.configStore.Set(keyMonitorPoll, int(settings.Monitor.PollInterval.Seconds())); err != nil {
		return fmt.Errorf("save monitor poll_seconds: %w", err)
	}
	if err := s.configStore.Set(keyMonitorDeadl, int(settings.Monitor.Deadline.Minutes())); err != nil {
		return fmt.Errorf("save monitor deadline_minutes: %w", err)
	}

	// Save schedule and log settings
	if err := s.configStore.Set(keyScheduleSpec, settings.ScheduleSpec); err != nil {
		return fmt.Errorf("save schedule spec: %w", err)
	}
	if err := s.configStore.Set(keyLogFile, settings.Log.File); err != nil {
		return fmt.Errorf("save log file: %w", err)
	}
	if err := s.configStore.Set(keyLogMaxSize, settings.Log.MaxSizeMB); err != nil {
		return fmt.Errorf("save log max_size_mb: %w", err)
	}
	if err := s.configStore.Set(keyLogMaxBackups, settings.Log.MaxBackups); err != nil {
		return fmt.Errorf("save log max_backups: %w", err)
	}

	return nil
}

// SetAPIKey stores the remote service bearer token.
func (s *SettingsService) SetAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: API key must not be empty", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(keyRemoteAPIKey, key); err != nil {
		return fmt.Errorf("save remote api_key: %w", err)
	}
	return nil
}

// SetRemote updates the remote service endpoint. Accepts URLs pasted with
// a trailing slash or the /api/v1 suffix and normalises them to the root.
func (s *SettingsService) SetRemote(baseURL string) error {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return fmt.Errorf("%w: base URL must not be empty", domain.ErrInvalidInput)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("%w: parse base URL: %v", domain.ErrInvalidInput, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: base URL must use http or https, got %q", domain.ErrInvalidInput, baseURL)
	}

	baseURL = strings.TrimRight(baseURL, "/")
	baseURL = strings.TrimSuffix(baseURL, "/api/v1")

	if err := s.configStore.Set(keyRemoteBaseURL, baseURL); err != nil {
		return fmt.Errorf("save remote base_url: %w", err)
	}
	return nil
}

// Validate checks that settings are complete enough to sync.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.Remote.BaseURL == "" {
		return fmt.Errorf("remote base URL not configured, run: ingesta settings set-remote <url>")
	}
	if settings.Remote.APIKey == "" {
		return fmt.Errorf("remote API key not configured, run: ingesta settings set-key")
	}
	if !settings.Collection.Permission.IsValid() {
		return fmt.Errorf("invalid collection permission: %s", settings.Collection.Permission)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

// getFloat reads a numeric value. Config stores decode TOML numbers as
// int64 or float64 depending on the literal, so both are accepted.
func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	raw, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	switch v := raw.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return time.Duration(val) * time.Second
}

func (s *SettingsService) getMinutes(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return time.Duration(val) * time.Minute
}

func (s *SettingsService) getHours(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return time.Duration(val) * time.Hour
}

func (s *SettingsService) getPermission(defaultVal domain.Permission) domain.Permission {
	val := s.configStore.GetString(keyColPermission)
	if val == "" {
		return defaultVal
	}
	permission := domain.Permission(val)
	if !permission.IsValid() {
		return defaultVal
	}
	return permission
}
