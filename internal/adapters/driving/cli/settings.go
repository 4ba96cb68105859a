package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the remote endpoint, credentials, and sync options.

Use subcommands to set specific values or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetRemoteCmd = &cobra.Command{
	Use:   "set-remote [base-url]",
	Short: "Set the remote service endpoint",
	Long: `Sets the collection service base URL, for example http://rag.local:9380.
A trailing /api/v1 suffix is stripped; the scheme must be http or https.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsSetRemote,
}

var settingsSetKeyCmd = &cobra.Command{
	Use:   "set-key [api-key]",
	Short: "Set the remote service API key",
	Long: `Stores the bearer token for the collection service. Without an
argument the key is prompted for without echo.

The INGESTA_API_KEY environment variable overrides the stored key.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsSetKey,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure the remote connection step by step.`,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetRemoteCmd)
	settingsCmd.AddCommand(settingsSetKeyCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Remote]")
	if settings.Remote.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Remote.BaseURL)
	} else {
		cmd.Printf("  Base URL: (not set)\n")
	}
	if settings.Remote.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Remote.APIKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	cmd.Printf("  Timeout: %s\n", settings.Remote.Timeout)
	cmd.Printf("  Retries: %d\n", settings.Remote.RetryAttempts)
	cmd.Printf("  Rate: %.1f req/s\n", settings.Remote.RatePerSecond)
	cmd.Println()

	cmd.Println("[Collection]")
	cmd.Printf("  Permission: %s\n", settings.Collection.Permission)
	cmd.Printf("  Language: %s\n", settings.Collection.Language)
	cmd.Printf("  Chunk method: %s\n", settings.Collection.ChunkMethod)
	cmd.Printf("  Chunk tokens: %d\n", settings.Collection.Parser.ChunkTokens)
	cmd.Println()

	cmd.Println("[Resolve]")
	if settings.Resolve.ScratchDir != "" {
		cmd.Printf("  Scratch dir: %s\n", settings.Resolve.ScratchDir)
	} else {
		cmd.Printf("  Scratch dir: (per-run temp dir)\n")
	}
	cmd.Printf("  Download timeout: %s\n", settings.Resolve.DownloadTimeout)
	cmd.Printf("  Convert timeout: %s\n", settings.Resolve.ConvertTimeout)
	cmd.Printf("  Cache TTL: %s\n", settings.Resolve.CacheTTL)
	cmd.Println()

	cmd.Println("[Sync]")
	cmd.Printf("  Skip unchanged: %t\n", settings.Sync.SkipUnchanged)
	cmd.Printf("  Delete before upload: %t\n", settings.Sync.DeleteBeforeUpload)
	cmd.Printf("  Name max length: %d\n", settings.Sync.NameMaxLen)
	cmd.Println()

	cmd.Println("[Monitor]")
	cmd.Printf("  Poll interval: %s\n", settings.Monitor.PollInterval)
	cmd.Printf("  Deadline: %s\n", settings.Monitor.Deadline)
	cmd.Println()

	cmd.Println("[Schedule]")
	if settings.ScheduleSpec != "" {
		cmd.Printf("  Spec: %s\n", settings.ScheduleSpec)
	} else {
		cmd.Printf("  Spec: (not set, 'ingesta run' is idle)\n")
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'ingesta settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSetRemote(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.SetRemote(args[0]); err != nil {
		return fmt.Errorf("failed to set remote: %w", err)
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	cmd.Printf("Remote set to: %s\n", settings.Remote.BaseURL)
	return nil
}

func runSettingsSetKey(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	var key string
	if len(args) > 0 {
		key = args[0]
	} else {
		cmd.Print("Enter API key: ")
		key = readPassword()
		cmd.Println()
	}
	if key == "" {
		return errors.New("API key must not be empty")
	}

	if err := settingsService.SetAPIKey(key); err != nil {
		return fmt.Errorf("failed to set API key: %w", err)
	}

	cmd.Printf("API key saved: %s\n", maskAPIKey(strings.TrimSpace(key)))
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("Ingesta Settings Wizard")
	cmd.Println("=======================")
	cmd.Println()

	reader := bufio.NewReader(os.Stdin)

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	// Step 1: remote endpoint.
	cmd.Println("Step 1: Remote Endpoint")
	cmd.Println("-----------------------")
	current := settings.Remote.BaseURL
	if current == "" {
		current = "none"
	}
	cmd.Printf("Enter base URL [%s]: ", current)
	baseURL := readLine(reader)
	if baseURL != "" {
		if err := settingsService.SetRemote(baseURL); err != nil {
			return fmt.Errorf("failed to set remote: %w", err)
		}
		cmd.Printf("Remote set to: %s\n", baseURL)
	}
	cmd.Println()

	// Step 2: API key.
	cmd.Println("Step 2: API Key")
	cmd.Println("---------------")
	if settings.Remote.APIKey != "" {
		cmd.Printf("Current key: %s\n", maskAPIKey(settings.Remote.APIKey))
	}
	cmd.Print("Enter API key (empty keeps current): ")
	apiKey := readPassword()
	cmd.Println()
	if apiKey != "" {
		if err := settingsService.SetAPIKey(apiKey); err != nil {
			return fmt.Errorf("failed to set API key: %w", err)
		}
		cmd.Println("API key saved.")
	}
	cmd.Println()

	// Step 3: collection permission.
	cmd.Println("Step 3: Collection Permission")
	cmd.Println("-----------------------------")
	permissions := []domain.Permission{domain.PermissionMe, domain.PermissionTeam}
	for i, p := range permissions {
		cmd.Printf("  %d. %s\n", i+1, p)
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(permissions), 1)

	// Step 4: schedule.
	cmd.Println()
	cmd.Println("Step 4: Schedule")
	cmd.Println("----------------")
	cmd.Println(`Daily time "02:00", several times "02:00,14:00", or an interval
in seconds "3600". Empty disables scheduled runs.`)
	cmd.Print("Enter schedule: ")
	scheduleSpec := readLine(reader)
	if scheduleSpec != "" {
		if _, err := domain.ParseSchedule(scheduleSpec); err != nil {
			return fmt.Errorf("invalid schedule: %w", err)
		}
	}

	// Persist the non-credential answers in one save.
	settings, err = settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	settings.Collection.Permission = permissions[idx-1]
	settings.ScheduleSpec = scheduleSpec
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Println()
	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read the key without echo.
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input.
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
