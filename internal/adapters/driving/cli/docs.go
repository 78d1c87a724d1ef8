package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/outremer-kg/recon-cli/internal/core/domain"
)

var (
	docsJSON  bool
	docsWatch bool
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List documents with pipeline bundles",
	Long: `Lists every document the ingestion pipeline has produced a bundle for,
with a per-tier breakdown of its mention matches.

With --watch, keeps running and reports documents whose bundle file the
pipeline rewrites.`,
	RunE: runDocsList,
}

var docsShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show the mentions of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsShow,
}

func init() {
	docsCmd.Flags().BoolVar(&docsJSON, "json", false, "output as JSON")
	docsCmd.Flags().BoolVar(&docsWatch, "watch", false, "watch for bundle changes after listing")
	docsCmd.AddCommand(docsShowCmd)
	rootCmd.AddCommand(docsCmd)
}

func runDocsList(cmd *cobra.Command, _ []string) error {
	if bundleStore == nil {
		return errors.New("bundle store not configured")
	}

	ctx := cmd.Context()
	ids, err := bundleStore.List(ctx)
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	if len(ids) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	type docRow struct {
		DocID   string            `json:"doc_id"`
		Source  string            `json:"source_file,omitempty"`
		Counts  domain.TierCounts `json:"counts"`
		Persons int               `json:"persons"`
	}

	rows := make([]docRow, 0, len(ids))
	for _, id := range ids {
		b, err := bundleStore.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("loading bundle %s: %w", id, err)
		}
		rows = append(rows, docRow{
			DocID:   b.DocID,
			Source:  b.SourceFile,
			Counts:  b.Count(),
			Persons: len(b.Links),
		})
	}

	if docsJSON {
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal documents: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for _, r := range rows {
		cmd.Printf("  %s\n", r.DocID)
		cmd.Printf("      %d persons: %d high, %d medium, %d low, %d no match\n",
			r.Persons, r.Counts.High, r.Counts.Medium, r.Counts.Low, r.Counts.NoMatch)
	}

	if docsWatch {
		return watchDocs(ctx, cmd)
	}
	return nil
}

// watchDocs blocks reporting changed bundles until the context is cancelled.
func watchDocs(ctx context.Context, cmd *cobra.Command) error {
	changes, err := bundleStore.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watching bundle directory: %w", err)
	}

	cmd.Println()
	cmd.Println("Watching for bundle changes (ctrl-c to stop)...")
	for id := range changes {
		cmd.Printf("  changed: %s\n", id)
	}
	return nil
}

func runDocsShow(cmd *cobra.Command, args []string) error {
	if bundleStore == nil {
		return errors.New("bundle store not configured")
	}

	b, err := bundleStore.Get(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNoBundle) {
			return fmt.Errorf("no bundle for document %q", args[0])
		}
		return fmt.Errorf("loading bundle: %w", err)
	}

	cmd.Printf("%s", b.DocID)
	if b.SourceFile != "" {
		cmd.Printf(" (%s)", b.SourceFile)
	}
	cmd.Println()
	cmd.Println()

	for i := range b.Links {
		link := &b.Links[i]
		name := link.Mention.Name
		if link.Mention.Group {
			name += " (group)"
		}
		if top := link.Top(); top != nil {
			cmd.Printf("  %-30s %-9s %s (%.2f)\n", name, link.Status, top.Label, top.Score)
		} else {
			cmd.Printf("  %-30s %-9s -\n", name, link.Status)
		}
	}
	return nil
}
