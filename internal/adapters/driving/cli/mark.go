package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/outremer-kg/recon-cli/internal/core/domain"
)

var markCmd = &cobra.Command{
	Use:   "mark [doc-id] [person] [kind]",
	Short: "Toggle an entity flag on a mention",
	Long: `Toggles a surface-form flag on a mention, independent of any match
decisions. Running the same command again clears the flag.

Kinds:
  not_person  - extraction artefact, not a person
  wrong_era   - person outside the period under study
  duplicate   - duplicates another mention in the document
  group       - collective wrongly extracted as an individual`,
	Args: cobra.ExactArgs(3),
	RunE: runMark,
}

var markListCmd = &cobra.Command{
	Use:   "list [doc-id]",
	Short: "List entity flags for a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runMarkList,
}

func init() {
	markCmd.AddCommand(markListCmd)
	rootCmd.AddCommand(markCmd)
}

func runMark(cmd *cobra.Command, args []string) error {
	if reviewService == nil {
		return errors.New("review service not configured")
	}

	kind := domain.EntityFlagKind(args[2])
	set, err := reviewService.ToggleFlag(cmd.Context(), args[0], args[1], kind)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownKind) {
			return fmt.Errorf("unknown flag kind %q", args[2])
		}
		return fmt.Errorf("toggling flag: %w", err)
	}

	if set {
		cmd.Printf("Marked %q as %s.\n", args[1], kind)
	} else {
		cmd.Printf("Cleared %s on %q.\n", kind, args[1])
	}
	return nil
}

func runMarkList(cmd *cobra.Command, args []string) error {
	if reviewService == nil {
		return errors.New("review service not configured")
	}

	flags, err := reviewService.Flags(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("listing flags: %w", err)
	}

	if len(flags) == 0 {
		cmd.Println("No flags set.")
		return nil
	}

	for _, f := range flags {
		cmd.Printf("  %-30s %s\n", f.Person, f.Kind)
	}
	return nil
}
