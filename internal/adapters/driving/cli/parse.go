package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Control remote document parsing",
	Long:  `Start parsing for a collection's unparsed documents, or stop running parse jobs.`,
}

var parseCheckCmd = &cobra.Command{
	Use:   "check [collection]",
	Short: "Parse a collection's unparsed documents",
	Long: `Finds documents in the named collection whose parsing has not started
or has failed, starts parsing for exactly those, and monitors until they
settle or the monitoring deadline passes.`,
	Args: cobra.ExactArgs(1),
	RunE: runParseCheck,
}

var parseCancelCmd = &cobra.Command{
	Use:   "cancel [collection]",
	Short: "Stop a collection's running parse jobs",
	Args:  cobra.ExactArgs(1),
	RunE:  runParseCancel,
}

func init() {
	parseCmd.AddCommand(parseCheckCmd)
	parseCmd.AddCommand(parseCancelCmd)
	rootCmd.AddCommand(parseCmd)
}

func runParseCheck(cmd *cobra.Command, args []string) error {
	if collectionAdmin == nil {
		return errors.New("collection service not configured")
	}

	name := args[0]
	cmd.Printf("Checking collection %s...\n", name)

	report, err := collectionAdmin.CheckAndParse(context.Background(), name)
	if err != nil {
		return fmt.Errorf("parse check failed: %w", err)
	}

	if !report.ParseRequested {
		cmd.Println("Nothing to parse; all documents are parsed or running.")
		return nil
	}

	cmd.Printf("Started parsing %d documents.\n", len(report.DocumentIDs))
	cmd.Printf("Final states: %s\n", formatParseStates(report.ParseStates))
	for _, warning := range report.Warnings {
		cmd.Printf("  warning: %s\n", warning)
	}
	if report.DeadlineExceeded {
		cmd.Println("Monitoring hit its deadline with documents still in progress; run 'ingesta parse check' again later.")
	}
	return nil
}

func runParseCancel(cmd *cobra.Command, args []string) error {
	if collectionAdmin == nil {
		return errors.New("collection service not configured")
	}

	name := args[0]
	cancelled, err := collectionAdmin.CancelParse(context.Background(), name)
	if err != nil {
		return fmt.Errorf("parse cancel failed: %w", err)
	}

	if cancelled == 0 {
		cmd.Println("No running parse jobs.")
		return nil
	}

	cmd.Printf("Cancelled parsing for %d documents.\n", cancelled)
	return nil
}
