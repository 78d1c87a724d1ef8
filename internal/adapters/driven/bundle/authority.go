package bundle

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/outremer-kg/recon-cli/internal/core/domain"
	"github.com/outremer-kg/recon-cli/internal/core/ports/driven"
	"github.com/outremer-kg/recon-cli/internal/textnorm"
)

// Ensure Authority implements the interface.
var _ driven.AuthorityIndex = (*Authority)(nil)

// Authority loads the curated authority file (authority.json in the data
// directory) and flattens every entry's name variants into match-ready
// records. The file is read once and cached: it only changes when the
// pipeline reruns, which also replaces the bundles.
type Authority struct {
	path string

	once    sync.Once
	records []domain.ReferenceRecord
	err     error
}

// NewAuthority creates an authority index over the data directory's
// authority.json.
func NewAuthority(dataDir string) *Authority {
	return &Authority{path: filepath.Join(dataDir, "authority.json")}
}

// Records returns all authority records.
func (a *Authority) Records(_ context.Context) ([]domain.ReferenceRecord, error) {
	a.once.Do(a.load)
	return a.records, a.err
}

func (a *Authority) load() {
	data, err := os.ReadFile(a.path)
	if err != nil {
		a.err = fmt.Errorf("reading authority file: %w", err)
		return
	}

	// Both the old "entities" and the current "persons" top-level key
	// are in circulation.
	var file struct {
		Persons  []authorityEntry `json:"persons"`
		Entities []authorityEntry `json:"entities"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		a.err = fmt.Errorf("parsing authority file: %w", err)
		return
	}

	entries := file.Persons
	if len(entries) == 0 {
		entries = file.Entities
	}

	for _, e := range entries {
		if r, ok := e.toRecord(); ok {
			a.records = append(a.records, r)
		}
	}
}

// authorityEntry mirrors one row of the authority file. Name variants are
// scattered across several blocks that have accreted over the project's
// life; all of them feed the variant list.
type authorityEntry struct {
	AuthorityID    string   `json:"authority_id"`
	PreferredLabel string   `json:"preferred_label"`
	Type           string   `json:"type"`
	Variants       []string `json:"variants"`
	Normalized     struct {
		Preferred string   `json:"preferred"`
		Variants  []string `json:"variants"`
	} `json:"normalized"`
	Name struct {
		Raw string `json:"raw"`
	} `json:"name"`

	BirthYear   int      `json:"birth_year"`
	DeathYear   int      `json:"death_year"`
	Floruit     string   `json:"floruit"`
	Place       string   `json:"place"`
	Roles       []string `json:"roles"`
	Relations   []string `json:"relations"`
	WikidataQID string   `json:"wikidata_qid"`
}

// toRecord flattens an entry. Entries without an id or label are skipped:
// they cannot be decided on or exported.
func (e *authorityEntry) toRecord() (domain.ReferenceRecord, bool) {
	if e.AuthorityID == "" || e.PreferredLabel == "" {
		return domain.ReferenceRecord{}, false
	}

	raw := make([]string, 0, len(e.Variants)+len(e.Normalized.Variants)+2)
	raw = append(raw, e.Variants...)
	if e.Normalized.Preferred != "" {
		raw = append(raw, e.Normalized.Preferred)
	}
	raw = append(raw, e.Normalized.Variants...)
	if e.Name.Raw != "" {
		raw = append(raw, e.Name.Raw)
	}

	// Deduplicate on normalised form; the label itself never repeats as
	// a variant.
	seen := map[string]struct{}{textnorm.Normalise(e.PreferredLabel): {}}
	var variants []string
	for _, v := range raw {
		n := textnorm.Normalise(v)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		variants = append(variants, v)
	}

	return domain.ReferenceRecord{
		ID:          e.AuthorityID,
		Label:       e.PreferredLabel,
		Variants:    variants,
		BirthYear:   e.BirthYear,
		DeathYear:   e.DeathYear,
		Floruit:     e.Floruit,
		Place:       e.Place,
		Roles:       e.Roles,
		Relations:   e.Relations,
		WikidataQID: e.WikidataQID,
	}, true
}
