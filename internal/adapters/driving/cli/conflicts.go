package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var conflictsCmd = &cobra.Command{
	Use:   "conflicts [doc-id]",
	Short: "List conflicted candidate matches",
	Long: `Lists every candidate with both community acceptances and rejections,
with the reviewers on each side. Conflicts reflect the tallies from the
last pull plus your own decisions since.`,
	Args: cobra.ExactArgs(1),
	RunE: runConflicts,
}

func init() {
	rootCmd.AddCommand(conflictsCmd)
}

func runConflicts(cmd *cobra.Command, args []string) error {
	if reviewService == nil {
		return errors.New("review service not configured")
	}

	keys, mentions := reviewService.Conflicts(args[0])
	if len(keys) == 0 {
		cmd.Println("No conflicts.")
		return nil
	}

	cmd.Printf("%d conflicted candidates across %d mentions:\n\n", len(keys), mentions)
	for _, key := range keys {
		tally := reviewService.Tally(key)
		cmd.Printf("  %s ↔ %s\n", key.Person, key.RecordKey)
		cmd.Printf("      accept (%d): %s\n", tally.Accepts, joinOrDash(tally.AcceptedBy))
		cmd.Printf("      reject (%d): %s\n", tally.Rejects, joinOrDash(tally.RejectedBy))
		if tally.Flags > 0 {
			cmd.Printf("      uncertain (%d): %s\n", tally.Flags, joinOrDash(tally.FlaggedBy))
		}
	}
	return nil
}

func joinOrDash(labels []string) string {
	if len(labels) == 0 {
		return "-"
	}
	return strings.Join(labels, ", ")
}
