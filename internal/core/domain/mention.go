package domain

// Mention is an extracted reference to a person within one document.
// Mentions are produced by the ingestion pipeline and are read-only here.
type Mention struct {
	// DocID identifies the document the mention was extracted from.
	DocID string

	// Name is the surface form as it appears in the text.
	Name string

	// Date is the date mentioned alongside the person, if any.
	// Free text ("1095", "c. 1100-1118"); compared on normalised form only.
	Date string

	// Place is the place mentioned alongside the person, if any.
	Place string

	// Role is the role or title mentioned alongside the person, if any.
	Role string

	// Related holds names of persons co-mentioned near this one, used as
	// a weak corroboration signal against a record's known relations.
	Related []string

	// Group marks mentions of a collective ("the Templars") rather than
	// an individual. Group mentions are never sent to open-world lookup.
	Group bool

	// WikidataQID is an external identifier carried by the mention when
	// ingestion already resolved it. Empty for most mentions.
	WikidataQID string
}

// ReferenceRecord is a row from a reference dataset: either the curated
// authority file or an open-world source such as Wikidata. Read-only.
type ReferenceRecord struct {
	// ID is the stable, namespaced identifier ("AUTH:baldwin-i",
	// "WIKIDATA:Q173821").
	ID string

	// Label is the preferred display label.
	Label string

	// Variants are alternate name forms, already deduplicated.
	Variants []string

	// Description is a short free-text gloss (open-world records only).
	Description string

	// BirthYear and DeathYear are known lifespan bounds; zero when unknown.
	BirthYear int
	DeathYear int

	// Floruit is a free-text active period when lifespan is unknown.
	Floruit string

	// Place is the principal associated place (title seat), if known.
	Place string

	// Roles are known titles or offices.
	Roles []string

	// Relations are labels of known family relations (spouse, parent,
	// child), used as a weak corroboration signal during scoring.
	Relations []string

	// WikidataQID is set when the record carries a Wikidata identifier,
	// whether it is an authority row with a cross-reference or an
	// open-world row itself.
	WikidataQID string
}

// Names returns the label plus all variants, label first.
func (r *ReferenceRecord) Names() []string {
	names := make([]string, 0, len(r.Variants)+1)
	names = append(names, r.Label)
	names = append(names, r.Variants...)
	return names
}

// Bundle is the ingestion output for one document: the mention list with
// pre-ranked candidate links. Immutable once loaded; re-scoring requires a
// new bundle.
type Bundle struct {
	// DocID is the stable document identifier (slug + content hash).
	DocID string

	// SourceFile is the ingested file the bundle was produced from.
	SourceFile string

	// Links holds one entry per mention, each with ranked candidates.
	Links []MentionLink
}

// MentionLink pairs one mention with its ranked candidate list.
type MentionLink struct {
	// Mention is the extracted person reference.
	Mention Mention

	// Candidates are ranked by score descending. An empty list is the
	// valid no_match terminal state, not an error.
	Candidates []CandidateLink

	// Status is the tier of the top candidate, or TierNone when the
	// candidate list is empty.
	Status MatchTier
}

// Top returns the highest-scored candidate, or nil when there is none.
func (l *MentionLink) Top() *CandidateLink {
	if len(l.Candidates) == 0 {
		return nil
	}
	return &l.Candidates[0]
}

// TierCounts summarises a bundle's links per tier for document listings.
type TierCounts struct {
	High    int
	Medium  int
	Low     int
	NoMatch int
}

// Count tallies link statuses for the whole bundle.
func (b *Bundle) Count() TierCounts {
	var c TierCounts
	for i := range b.Links {
		switch b.Links[i].Status {
		case TierHigh:
			c.High++
		case TierMedium:
			c.Medium++
		case TierLow:
			c.Low++
		case TierNone:
			c.NoMatch++
		}
	}
	return c
}
