package driving

import "github.com/custodia-labs/ingesta-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with environment
	// overrides applied.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetAPIKey stores the remote service bearer token.
	SetAPIKey(key string) error

	// SetRemote updates the remote service endpoint.
	SetRemote(baseURL string) error

	// Validate checks that settings are complete enough to sync:
	// a base URL and an API key must be present.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
