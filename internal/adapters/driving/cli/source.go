package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage ingestion sources",
	Long:  `Add, list, inspect, enable or remove configured sources.`,
}

var sourceAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a source",
	Long: `Adds a named source. The name doubles as the remote collection name
unless overridden with --collection.

Settings are adapter-specific, passed as repeated --set key=value flags:

  spreadsheet: path (workbook path or sheets URL), key_column
  database:    dsn, query or query_file, ref_column, content_columns,
               metadata_columns, key_column
  github:      repo ("owner/name"), ref, token, patterns

Examples:
  ingesta source add reports --type spreadsheet --set path=/data/links.xlsx
  ingesta source add tickets --type database --set dsn=file:app.db \
    --set query_file=tickets.sql --set ref_column=attachment
  ingesta source add docs --type github --set repo=acme/docs --set token=ghp_xxx`,
	Args: cobra.ExactArgs(1),
	RunE: runSourceAdd,
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured sources",
	RunE:  runSourceList,
}

var sourceShowCmd = &cobra.Command{
	Use:   "show [source]",
	Short: "Show a source's configuration",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourceShow,
}

var sourceRemoveCmd = &cobra.Command{
	Use:   "remove [source]",
	Short: "Remove a source",
	Long: `Removes a source configuration. Ledger records and remote documents
are untouched; use 'ingesta collections delete' for those.`,
	Args: cobra.ExactArgs(1),
	RunE: runSourceRemove,
}

var sourceEnableCmd = &cobra.Command{
	Use:   "enable [source]",
	Short: "Include a source in sync runs",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourceEnable,
}

var sourceDisableCmd = &cobra.Command{
	Use:   "disable [source]",
	Short: "Exclude a source from sync runs",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourceDisable,
}

// Flags for source add.
var (
	sourceAddType       string
	sourceAddSettings   []string
	sourceAddCollection string
	sourceAddDisabled   bool
)

func init() {
	sourceAddCmd.Flags().StringVarP(&sourceAddType, "type", "t", "", "Source type: spreadsheet, database or github")
	sourceAddCmd.Flags().StringArrayVarP(&sourceAddSettings, "set", "s", nil, "Source setting as key=value (repeatable)")
	sourceAddCmd.Flags().StringVarP(&sourceAddCollection, "collection", "c", "", "Remote collection name (defaults to the source name)")
	sourceAddCmd.Flags().BoolVar(&sourceAddDisabled, "disabled", false, "Create the source disabled")

	sourceCmd.AddCommand(sourceAddCmd)
	sourceCmd.AddCommand(sourceListCmd)
	sourceCmd.AddCommand(sourceShowCmd)
	sourceCmd.AddCommand(sourceRemoveCmd)
	sourceCmd.AddCommand(sourceEnableCmd)
	sourceCmd.AddCommand(sourceDisableCmd)
	rootCmd.AddCommand(sourceCmd)
}

func runSourceAdd(cmd *cobra.Command, args []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}
	if sourceAddType == "" {
		return errors.New("source type is required, pass --type")
	}

	settings, err := parseSettingFlags(sourceAddSettings)
	if err != nil {
		return err
	}
	if sourceAddCollection != "" {
		settings["collection"] = sourceAddCollection
	}

	source := domain.Source{
		Name:     args[0],
		Type:     domain.SourceType(sourceAddType),
		Enabled:  !sourceAddDisabled,
		Settings: settings,
	}

	if err := sourceService.Add(context.Background(), source); err != nil {
		return fmt.Errorf("failed to add source: %w", err)
	}

	cmd.Printf("Added source %s (%s).\n", source.Name, source.Type)
	if !source.Enabled {
		cmd.Println("The source is disabled; enable it with 'ingesta source enable'.")
	}
	return nil
}

func runSourceList(cmd *cobra.Command, _ []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	sources, err := sourceService.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if len(sources) == 0 {
		cmd.Println("No configured sources. Add one with 'ingesta source add'.")
		return nil
	}

	cmd.Println("Configured sources:")
	cmd.Println()
	for i := range sources {
		state := "enabled"
		if !sources[i].Enabled {
			state = "disabled"
		}
		cmd.Printf("  %s (%s, %s)\n", sources[i].Name, sources[i].Type, state)
		cmd.Printf("    ID:         %s\n", sources[i].ID)
		cmd.Printf("    Collection: %s\n", sources[i].CollectionName())
		cmd.Println()
	}

	cmd.Printf("Total: %d sources\n", len(sources))
	return nil
}

func runSourceShow(cmd *cobra.Command, args []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	source, err := sourceService.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get source: %w", err)
	}

	state := "enabled"
	if !source.Enabled {
		state = "disabled"
	}

	cmd.Printf("Source: %s\n\n", source.Name)
	cmd.Printf("  ID:         %s\n", source.ID)
	cmd.Printf("  Type:       %s\n", source.Type)
	cmd.Printf("  State:      %s\n", state)
	cmd.Printf("  Collection: %s\n", source.CollectionName())
	cmd.Printf("  Created:    %s\n", source.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:    %s\n", source.UpdatedAt.Format("2006-01-02 15:04:05"))

	if len(source.Settings) > 0 {
		cmd.Println("\n  Settings:")
		keys := make([]string, 0, len(source.Settings))
		for k := range source.Settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			cmd.Printf("    %s: %s\n", k, maskSecretSetting(k, source.Settings[k]))
		}
	}

	return nil
}

func runSourceRemove(cmd *cobra.Command, args []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	if err := sourceService.Remove(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to remove source: %w", err)
	}

	cmd.Printf("Removed source: %s\n", args[0])
	return nil
}

func runSourceEnable(cmd *cobra.Command, args []string) error {
	return setSourceEnabled(cmd, args[0], true)
}

func runSourceDisable(cmd *cobra.Command, args []string) error {
	return setSourceEnabled(cmd, args[0], false)
}

func setSourceEnabled(cmd *cobra.Command, idOrName string, enabled bool) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	if err := sourceService.SetEnabled(context.Background(), idOrName, enabled); err != nil {
		return fmt.Errorf("failed to update source: %w", err)
	}

	if enabled {
		cmd.Printf("Source %s enabled.\n", idOrName)
	} else {
		cmd.Printf("Source %s disabled.\n", idOrName)
	}
	return nil
}

// parseSettingFlags turns repeated key=value flags into a settings map.
func parseSettingFlags(pairs []string) (map[string]string, error) {
	settings := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid setting %q, expected key=value", pair)
		}
		settings[key] = value
	}
	return settings, nil
}

// maskSecretSetting hides credential-bearing setting values.
func maskSecretSetting(key, value string) string {
	switch key {
	case "token", "password", "api_key":
		return maskAPIKey(value)
	default:
		return value
	}
}
