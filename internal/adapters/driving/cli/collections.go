package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Manage remote collections",
	Long:  `List remote collections or delete one along with its ledger records.`,
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List remote collections",
	RunE:  runCollectionsList,
}

var collectionsDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a remote collection",
	Long: `Deletes the named collection from the remote service and purges its
revision ledger records, so the next sync re-uploads from scratch.

Deletion is remote and irreversible; --confirm is required.`,
	Args: cobra.ExactArgs(1),
	RunE: runCollectionsDelete,
}

// collectionsDeleteConfirm acknowledges the irreversible delete.
var collectionsDeleteConfirm bool

func init() {
	collectionsDeleteCmd.Flags().BoolVar(&collectionsDeleteConfirm, "confirm", false, "Confirm the irreversible deletion")

	collectionsCmd.AddCommand(collectionsListCmd)
	collectionsCmd.AddCommand(collectionsDeleteCmd)
	rootCmd.AddCommand(collectionsCmd)
}

func runCollectionsList(cmd *cobra.Command, _ []string) error {
	if collectionAdmin == nil {
		return errors.New("collection service not configured")
	}

	collections, err := collectionAdmin.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	if len(collections) == 0 {
		cmd.Println("No remote collections.")
		return nil
	}

	cmd.Println("Remote collections:")
	cmd.Println()
	for i := range collections {
		cmd.Printf("  %s\n", collections[i].Name)
		cmd.Printf("    ID:        %s\n", collections[i].RemoteID)
		cmd.Printf("    Documents: %d\n", collections[i].DocumentCount)
		cmd.Println()
	}

	cmd.Printf("Total: %d collections\n", len(collections))
	return nil
}

func runCollectionsDelete(cmd *cobra.Command, args []string) error {
	if collectionAdmin == nil {
		return errors.New("collection service not configured")
	}

	name := args[0]
	if !collectionsDeleteConfirm {
		return fmt.Errorf("refusing to delete collection %q: pass --confirm to proceed", name)
	}

	if err := collectionAdmin.Delete(context.Background(), name); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}

	cmd.Printf("Deleted collection %s and its ledger records.\n", name)
	return nil
}
