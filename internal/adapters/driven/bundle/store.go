// Package bundle reads the ingestion pipeline's per-document JSON output
// from a data directory.
//
// Each document is one <doc_id>.json file holding the extracted mentions
// and their pre-ranked candidate links. The directory also carries the
// authority file (authority.json) and index sidecars, which are not
// bundles and are skipped when listing. Bundles are immutable: the store
// only reads, and a directory watch reports new or rewritten files so
// long-running sessions can pick up fresh pipeline output.
package bundle

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/outremer-kg/recon-cli/internal/core/domain"
	"github.com/outremer-kg/recon-cli/internal/core/ports/driven"
	"github.com/outremer-kg/recon-cli/internal/logger"
)

// Sidecar files in the data directory that are not document bundles.
var sidecars = map[string]struct{}{
	"authority.json":        {},
	"index.json":            {},
	"wikidata_matches.json": {},
}

// Ensure Store implements the interface.
var _ driven.BundleStore = (*Store)(nil)

// Store reads document bundles from one data directory.
type Store struct {
	dir string
}

// NewStore creates a bundle store over dir.
func NewStore(dir string) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("data directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data directory: %s is not a directory", dir)
	}
	return &Store{dir: dir}, nil
}

// List returns the ids of all available documents, sorted.
func (s *Store) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading data directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if _, skip := sidecars[name]; skip {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// Get loads one document bundle by id.
func (s *Store) Get(_ context.Context, docID string) (*domain.Bundle, error) {
	if _, sidecar := sidecars[docID+".json"]; sidecar || docID == "" {
		return nil, domain.ErrNoBundle
	}

	path := filepath.Join(s.dir, docID+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNoBundle
		}
		return nil, fmt.Errorf("reading bundle: %w", err)
	}

	var file bundleFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing bundle %s: %w", docID, err)
	}
	if file.DocID == "" {
		file.DocID = docID
	}
	return file.toDomain(), nil
}

// Watch reports document ids whose bundle files are created or rewritten
// under the data directory. The channel closes when ctx is cancelled.
func (s *Store) Watch(ctx context.Context) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", s.dir, err)
	}

	ch := make(chan string)
	go func() {
		defer close(ch)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}
				name := filepath.Base(event.Name)
				if !strings.HasSuffix(name, ".json") {
					continue
				}
				if _, skip := sidecars[name]; skip {
					continue
				}
				select {
				case ch <- strings.TrimSuffix(name, ".json"):
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Bundle watch error: %v", err)
			}
		}
	}()
	return ch, nil
}

// ==================== File Format ====================

// bundleFile mirrors the pipeline's per-document JSON payload. Fields the
// reviewer never needs (raw text hash, bibliography) are ignored.
type bundleFile struct {
	DocID      string `json:"doc_id"`
	SourceFile string `json:"source_file"`
	Metadata   struct {
		Year string `json:"year"`
	} `json:"metadata"`
	Persons []personRecord `json:"persons"`
	Links   []linkRecord   `json:"links"`
}

type personRecord struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Toponym     string   `json:"toponym"`
	Role        string   `json:"role"`
	Date        string   `json:"date"`
	Related     []string `json:"related"`
	Group       bool     `json:"group"`
	WikidataQID string   `json:"wikidata_qid"`
}

type linkRecord struct {
	Person      string            `json:"person"`
	PersonGroup bool              `json:"person_group"`
	Candidates  []candidateRecord `json:"candidates"`
	Status      string            `json:"status"`
}

type candidateRecord struct {
	ID        string  `json:"outremer_id"`
	Name      string  `json:"outremer_name"`
	Score     float64 `json:"score"`
	MatchType string  `json:"match_type"`
	Evidence  string  `json:"evidence"`
}

// toDomain joins the link list with the person records so each mention
// carries its contextual attributes. The document year stands in for
// mentions without a date of their own.
func (f *bundleFile) toDomain() *domain.Bundle {
	persons := make(map[string]*personRecord, len(f.Persons))
	for i := range f.Persons {
		persons[f.Persons[i].Name] = &f.Persons[i]
	}

	b := &domain.Bundle{
		DocID:      f.DocID,
		SourceFile: f.SourceFile,
		Links:      make([]domain.MentionLink, 0, len(f.Links)),
	}
	for _, link := range f.Links {
		mention := domain.Mention{
			DocID: f.DocID,
			Name:  link.Person,
			Date:  f.Metadata.Year,
			Group: link.PersonGroup,
		}
		if p := persons[link.Person]; p != nil {
			if p.Date != "" {
				mention.Date = p.Date
			}
			mention.Place = p.Toponym
			mention.Role = p.Role
			if mention.Role == "" {
				mention.Role = p.Title
			}
			mention.Related = p.Related
			mention.Group = mention.Group || p.Group
			mention.WikidataQID = p.WikidataQID
		}

		candidates := make([]domain.CandidateLink, 0, len(link.Candidates))
		for _, c := range link.Candidates {
			candidates = append(candidates, domain.CandidateLink{
				RecordID: c.ID,
				Label:    c.Name,
				Score:    c.Score,
				Tier:     domain.TierForScore(c.Score),
				Method:   matchMethod(c.MatchType),
				Evidence: c.Evidence,
			})
		}

		status := domain.MatchTier(link.Status)
		if link.Status == "" {
			status = domain.TierNone
			if len(candidates) > 0 {
				status = candidates[0].Tier
			}
		}
		b.Links = append(b.Links, domain.MentionLink{
			Mention:    mention,
			Candidates: candidates,
			Status:     status,
		})
	}
	return b
}

// matchMethod maps the pipeline's match_type vocabulary onto ours. The
// pipeline calls containment matches "alias".
func matchMethod(s string) domain.MatchMethod {
	switch s {
	case "exact":
		return domain.MethodExact
	case "contextual":
		return domain.MethodContextual
	default:
		return domain.MethodFuzzy
	}
}
