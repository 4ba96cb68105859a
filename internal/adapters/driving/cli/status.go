package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show revision ledger statistics",
	Long: `Shows what the local revision ledger knows: how many items have been
synced, into which collections, and when the last sync happened.

With --export, the full record listing is written to a JSON file.`,
	RunE: runStatus,
}

// statusExport is the optional export file path.
var statusExport string

func init() {
	statusCmd.Flags().StringVarP(&statusExport, "export", "e", "", "Write all ledger records to this JSON file")
	rootCmd.AddCommand(statusCmd)
}

// exportedRecord is the JSON shape of one ledger record.
type exportedRecord struct {
	SourceKey    string    `json:"source_key"`
	Fingerprint  string    `json:"fingerprint"`
	CollectionID string    `json:"collection_id"`
	DocumentIDs  []string  `json:"document_ids"`
	LastSyncedAt time.Time `json:"last_synced_at"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if collectionAdmin == nil {
		return errors.New("collection service not configured")
	}

	ctx := context.Background()

	stats, err := collectionAdmin.LedgerStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read ledger: %w", err)
	}

	cmd.Println("Revision ledger")
	cmd.Println()
	cmd.Printf("  Records:   %d\n", stats.Records)
	cmd.Printf("  Documents: %d\n", stats.Documents)
	if stats.LastSyncedAt.IsZero() {
		cmd.Printf("  Last sync: never\n")
	} else {
		cmd.Printf("  Last sync: %s\n", stats.LastSyncedAt.Format("2006-01-02 15:04:05"))
	}

	if len(stats.ByCollection) > 0 {
		cmd.Println("\n  By collection:")
		ids := make([]string, 0, len(stats.ByCollection))
		for id := range stats.ByCollection {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			cmd.Printf("    %s: %d records\n", id, stats.ByCollection[id])
		}
	}

	if statusExport == "" {
		return nil
	}

	records, err := collectionAdmin.ExportRecords(ctx)
	if err != nil {
		return fmt.Errorf("failed to export ledger: %w", err)
	}

	exported := make([]exportedRecord, 0, len(records))
	for _, record := range records {
		exported = append(exported, exportedRecord{
			SourceKey:    record.SourceKey,
			Fingerprint:  record.Fingerprint,
			CollectionID: record.CollectionID,
			DocumentIDs:  record.DocumentIDs,
			LastSyncedAt: record.LastSyncedAt,
		})
	}

	data, err := json.MarshalIndent(exported, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	if err := os.WriteFile(statusExport, data, 0o600); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	cmd.Printf("\nExported %d records to %s\n", len(exported), statusExport)
	return nil
}
