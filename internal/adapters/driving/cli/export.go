package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/outremer-kg/recon-cli/internal/core/domain"
)

var exportAcceptedOnly bool

var exportCmd = &cobra.Command{
	Use:   "export [doc-id]",
	Short: "Export resolved entity links for a document",
	Long: `Emits the per-mention resolution signal as JSON: the top candidate and
whether the link passed the acceptance gate. A link is accepted when you
accepted it locally, or when the community accept tally reaches the
threshold. Downstream exporters consume this to decide which links to
materialise.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().BoolVar(&exportAcceptedOnly, "accepted-only", false, "emit only mentions that passed the gate")
	rootCmd.AddCommand(exportCmd)
}

type exportRecord struct {
	Person     string  `json:"person"`
	Group      bool    `json:"group,omitempty"`
	RecordID   string  `json:"record_id,omitempty"`
	Label      string  `json:"label,omitempty"`
	Score      float64 `json:"score,omitempty"`
	Accepted   bool    `json:"accepted"`
	Conflicted bool    `json:"conflicted,omitempty"`
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportService == nil {
		return errors.New("export service not configured")
	}

	entries, err := exportService.Export(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNoBundle) {
			return fmt.Errorf("no bundle for document %q", args[0])
		}
		return fmt.Errorf("export failed: %w", err)
	}

	records := make([]exportRecord, 0, len(entries))
	for _, e := range entries {
		if exportAcceptedOnly && !e.Accepted {
			continue
		}
		rec := exportRecord{
			Person:     e.Person,
			Group:      e.Group,
			Accepted:   e.Accepted,
			Conflicted: e.Conflicted,
		}
		if e.Top != nil {
			rec.RecordID = e.Top.RecordID
			rec.Label = e.Top.Label
			rec.Score = e.Top.Score
		}
		records = append(records, rec)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
