package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/outremer-kg/recon-cli/internal/core/domain"
)

var decideComment string

var acceptCmd = &cobra.Command{
	Use:   "accept [doc-id] [person] [record-key]",
	Short: "Accept a candidate match",
	Long: `Records your acceptance of a candidate for a mention. Running the same
command again withdraws the acceptance; accepting after a reject replaces
it. The decision is saved locally first and shared in the background.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDecide(cmd, args, domain.DecisionAccept)
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject [doc-id] [person] [record-key]",
	Short: "Reject a candidate match",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDecide(cmd, args, domain.DecisionReject)
	},
}

var uncertainCmd = &cobra.Command{
	Use:   "uncertain [doc-id] [person] [record-key]",
	Short: "Flag a candidate match for discussion",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDecide(cmd, args, domain.DecisionFlag)
	},
}

func init() {
	for _, c := range []*cobra.Command{acceptCmd, rejectCmd, uncertainCmd} {
		c.Flags().StringVarP(&decideComment, "comment", "m", "", "optional note attached to the decision")
		rootCmd.AddCommand(c)
	}
}

func runDecide(cmd *cobra.Command, args []string, kind domain.DecisionKind) error {
	if reviewService == nil {
		return errors.New("review service not configured")
	}

	key := domain.DecisionKey{DocID: args[0], Person: args[1], RecordKey: args[2]}
	outcome, err := reviewService.Decide(cmd.Context(), key, kind, decideComment)
	if err != nil {
		return fmt.Errorf("recording decision: %w", err)
	}

	if outcome.Cleared {
		cmd.Printf("Withdrew %s on %s ↔ %s.\n", kind, key.Person, key.RecordKey)
	} else {
		cmd.Printf("Recorded %s on %s ↔ %s.\n", outcome.Kind, key.Person, key.RecordKey)
	}

	// Block on the push so the exit status can report it.
	reviewService.Drain()
	status := reviewService.PushStatus(key)
	switch status.State {
	case domain.SyncOK:
		cmd.Println("Synced with the aggregation service.")
	case domain.SyncError:
		cmd.Printf("Saved locally; sync failed: %s\n", status.Err)
	}

	tally := reviewService.Tally(key)
	if !tally.Empty() {
		cmd.Printf("Community: %d accept, %d reject, %d uncertain", tally.Accepts, tally.Rejects, tally.Flags)
		if tally.Conflict() {
			cmd.Print("  (conflicted)")
		}
		cmd.Println()
	}
	return nil
}
