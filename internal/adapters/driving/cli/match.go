package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/outremer-kg/recon-cli/internal/core/domain"
)

var (
	matchLimit    int
	matchJSON     bool
	matchDiscover bool
)

var matchCmd = &cobra.Command{
	Use:   "match [doc-id] [person]",
	Short: "Show candidate matches for a mention",
	Long: `Shows the ranked candidate list for one person mention, with a
side-by-side comparison of contextual attributes against the top candidate.

With --discover, mentions whose bundle candidate list is empty are looked
up against Wikidata instead.`,
	Args: cobra.ExactArgs(2),
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().IntVarP(&matchLimit, "limit", "n", 5, "maximum number of candidates")
	matchCmd.Flags().BoolVar(&matchJSON, "json", false, "output as JSON")
	matchCmd.Flags().BoolVar(&matchDiscover, "discover", false, "look up open-world candidates when the bundle has none")
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	if bundleStore == nil || matchService == nil {
		return errors.New("match service not configured")
	}

	ctx := cmd.Context()
	link, err := findMention(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	candidates := link.Candidates
	if len(candidates) == 0 && matchDiscover {
		cmd.Printf("No bundle candidates for %q, querying Wikidata...\n", link.Mention.Name)
		candidates, err = matchService.Discover(ctx, link.Mention, matchLimit)
		if err != nil {
			return fmt.Errorf("discovery failed: %w", err)
		}
	}
	if len(candidates) > matchLimit {
		candidates = candidates[:matchLimit]
	}

	if matchJSON {
		data, err := json.MarshalIndent(candidates, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal candidates: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(candidates) == 0 {
		cmd.Printf("No candidates for %q.\n", link.Mention.Name)
		return nil
	}

	cmd.Printf("Candidates for %q:\n\n", link.Mention.Name)
	for i := range candidates {
		c := &candidates[i]
		cmd.Printf("  [%d] %s (%.2f, %s)\n", i+1, c.Label, c.Score, c.Tier)
		cmd.Printf("      %s\n", c.RecordID)
		if c.Evidence != "" {
			cmd.Printf("      %s\n", c.Evidence)
		}
	}

	printAlignment(ctx, cmd, link)
	return nil
}

// printAlignment renders the context comparison for the top candidate, if
// its authority record is available. Best effort; display only.
func printAlignment(ctx context.Context, cmd *cobra.Command, link *domain.MentionLink) {
	top := link.Top()
	if top == nil || authorityIndex == nil {
		return
	}
	records, err := authorityIndex.Records(ctx)
	if err != nil {
		return
	}
	for i := range records {
		if records[i].ID != top.RecordID {
			continue
		}
		rows := matchService.Align(link.Mention, records[i])
		if len(rows) == 0 {
			return
		}
		cmd.Println()
		cmd.Printf("Context vs %s:\n", records[i].Label)
		for _, row := range rows {
			cmd.Printf("  %-6s %-20s %-25s %s\n", row.Attribute,
				orDash(row.Extracted), orDash(row.Reference), row.Result)
		}
		return
	}
}

// findMention locates a mention by name within a document bundle. The name
// is matched case-insensitively to keep shell quoting forgiving.
func findMention(ctx context.Context, docID, person string) (*domain.MentionLink, error) {
	b, err := bundleStore.Get(ctx, docID)
	if err != nil {
		if errors.Is(err, domain.ErrNoBundle) {
			return nil, fmt.Errorf("no bundle for document %q", docID)
		}
		return nil, fmt.Errorf("loading bundle: %w", err)
	}

	for i := range b.Links {
		if strings.EqualFold(b.Links[i].Mention.Name, person) {
			return &b.Links[i], nil
		}
	}
	return nil, fmt.Errorf("no mention %q in document %q", person, docID)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
