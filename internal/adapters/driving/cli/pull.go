package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/outremer-kg/recon-cli/internal/core/domain"
)

var pullCmd = &cobra.Command{
	Use:   "pull [doc-id]",
	Short: "Pull community decisions for a document",
	Long: `Fetches the full community decision history for a document from the
aggregation service and rebuilds the local tally from it.`,
	Args: cobra.ExactArgs(1),
	RunE: runPull,
}

func init() {
	rootCmd.AddCommand(pullCmd)
}

func runPull(cmd *cobra.Command, args []string) error {
	if reviewService == nil {
		return errors.New("review service not configured")
	}

	docID := args[0]
	if err := reviewService.Refresh(cmd.Context(), docID); err != nil {
		if errors.Is(err, domain.ErrRemoteUnavailable) {
			return errors.New("no aggregation service configured; set remote.base_url")
		}
		return fmt.Errorf("pull failed: %w", err)
	}

	keys, mentions := reviewService.Conflicts(docID)
	cmd.Printf("Pulled community decisions for %s.\n", docID)
	if len(keys) > 0 {
		cmd.Printf("%d conflicted candidates across %d mentions. Run 'outremer conflicts %s' to inspect.\n",
			len(keys), mentions, docID)
	}
	return nil
}
