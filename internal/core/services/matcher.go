package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/outremer-kg/recon-cli/internal/core/domain"
	"github.com/outremer-kg/recon-cli/internal/core/ports/driven"
	"github.com/outremer-kg/recon-cli/internal/core/ports/driving"
	"github.com/outremer-kg/recon-cli/internal/logger"
	"github.com/outremer-kg/recon-cli/internal/textnorm"
)

// Ensure Matcher implements the interface.
var _ driving.MatchService = (*Matcher)(nil)

// Scoring weights. The three tier bands in domain are the contract; these
// intermediate weights are tunable as long as the bands are reproduced.
// Weights of context signals absent on either side are redistributed onto
// the name signal, so a context-free pair is scored on its name alone.
const (
	weightName      = 0.40
	weightDate      = 0.20
	weightRole      = 0.25
	weightRelations = 0.15

	relationCap = 3

	// containmentBase is the floor score for normalised-name containment
	// with agreeing regnal numerals. Equality always outranks containment.
	containmentBase = 0.90
)

// Matcher scores mentions against reference records.
// Score, Rank and Align are pure; Discover consults the open-world source.
type Matcher struct {
	source driven.CandidateSource
}

// NewMatcher creates a matcher. source may be nil; Discover then returns
// no candidates.
func NewMatcher(source driven.CandidateSource) *Matcher {
	return &Matcher{source: source}
}

// Score computes the similarity of one mention against one record,
// applying the tiers in priority order: identifier short-circuit,
// normalised-name equality or containment, then the weighted fuzzy
// combination.
func (m *Matcher) Score(mention domain.Mention, record domain.ReferenceRecord) (float64, domain.MatchTier, domain.MatchMethod) {
	// 1. External-identifier short circuit.
	if mention.WikidataQID != "" && mention.WikidataQID == record.WikidataQID {
		return 1.0, domain.TierHigh, domain.MethodExact
	}

	nameScore, exact := m.nameScore(mention.Name, &record)

	// 2. Equality or containment already clears the high band.
	if nameScore >= domain.HighThreshold {
		method := domain.MethodFuzzy
		if exact {
			method = domain.MethodExact
		}
		return nameScore, domain.TierForScore(nameScore), method
	}

	// 3. Weighted fuzzy combination over name and context signals.
	score, contextual := m.weighted(nameScore, mention, &record)
	if score > 1.0 {
		score = 1.0
	}
	method := domain.MethodFuzzy
	if contextual {
		method = domain.MethodContextual
	}
	return score, domain.TierForScore(score), method
}

// nameScore returns the best name similarity across the record's variants.
// exact is true only for normalised equality.
func (m *Matcher) nameScore(name string, record *domain.ReferenceRecord) (best float64, exact bool) {
	norm := textnorm.Normalise(name)
	if norm == "" {
		return 0.0, false
	}
	regnal := textnorm.RegnalNumber(name)

	for _, variant := range record.Names() {
		vn := textnorm.Normalise(variant)
		if vn == "" {
			continue
		}
		if norm == vn {
			return 1.0, true
		}
		if contains(norm, vn) {
			// Regnal numerals present on both sides must agree:
			// "Baldwin" may contain-match "Baldwin II of Jerusalem",
			// but "Baldwin I" must not match "Baldwin II".
			vr := textnorm.RegnalNumber(variant)
			if regnal != 0 && vr != 0 && regnal != vr {
				continue
			}
			short, long := len(norm), len(vn)
			if short > long {
				short, long = long, short
			}
			s := containmentBase + (1.0-containmentBase)*float64(short)/float64(long)
			if s > best {
				best = s
			}
			continue
		}
		if s := textnorm.TokenSortRatio(norm, vn); s > best {
			best = s
		}
	}
	return best, false
}

func contains(a, b string) bool {
	return len(a) > 0 && len(b) > 0 &&
		(indexOf(a, b) >= 0 || indexOf(b, a) >= 0)
}

func indexOf(haystack, needle string) int {
	// Word-boundary containment: "guy" must not match inside "lusignan".
	padded := " " + haystack + " "
	target := " " + needle + " "
	for i := 0; i+len(target) <= len(padded); i++ {
		if padded[i:i+len(target)] == target {
			return i
		}
	}
	return -1
}

// weighted combines the name ratio with contextual signals. Signals absent
// on either side contribute nothing and hand their weight to the name, so
// the formula stays monotonic in every present signal and a context-free
// pair reduces to the plain token-sort ratio.
func (m *Matcher) weighted(nameScore float64, mention domain.Mention, record *domain.ReferenceRecord) (score float64, contextual bool) {
	nameWeight := weightName
	var contextScore float64

	if dateSignal, present := dateOverlap(mention.Date, record); present {
		contextScore += weightDate * dateSignal
	} else {
		nameWeight += weightDate
	}

	// A role that normalises to nothing carries no signal and degrades
	// to absent rather than dragging the score down.
	if textnorm.Normalise(mention.Role) != "" && len(record.Roles) > 0 {
		contextScore += weightRole * textnorm.Jaccard([]string{mention.Role}, record.Roles)
	} else {
		nameWeight += weightRole
	}

	if shared, present := sharedRelations(mention.Related, record.Relations); present {
		if shared > relationCap {
			shared = relationCap
		}
		contextScore += weightRelations * float64(shared) / float64(relationCap)
	} else {
		nameWeight += weightRelations
	}

	score = nameScore*nameWeight + contextScore
	// Contextual method: the context, not the name, carried the match
	// over the floor.
	contextual = score >= domain.ScoreFloor && nameScore*nameWeight < domain.ScoreFloor
	return score, contextual
}

// dateOverlap reports whether the mention's date span intersects the
// record's known lifespan. present is false when either side has no
// parseable year; malformed values degrade to absent, never error.
func dateOverlap(mentionDate string, record *domain.ReferenceRecord) (signal float64, present bool) {
	mFrom, mTo, ok := textnorm.YearSpan(mentionDate)
	if !ok {
		return 0, false
	}
	rFrom, rTo := record.BirthYear, record.DeathYear
	if rFrom == 0 && rTo == 0 {
		var fOK bool
		rFrom, rTo, fOK = textnorm.YearSpan(record.Floruit)
		if !fOK {
			return 0, false
		}
	}
	if rFrom == 0 {
		rFrom = rTo
	}
	if rTo == 0 {
		rTo = rFrom
	}
	if mFrom <= rTo && rFrom <= mTo {
		return 1.0, true
	}
	return 0.0, true
}

// sharedRelations counts relation labels the mention's co-mentioned names
// share with the record's known relations.
func sharedRelations(related, relations []string) (shared int, present bool) {
	if len(related) == 0 || len(relations) == 0 {
		return 0, false
	}
	recSet := make(map[string]struct{}, len(relations))
	for _, r := range relations {
		if n := textnorm.Normalise(r); n != "" {
			recSet[n] = struct{}{}
		}
	}
	for _, r := range related {
		if _, ok := recSet[textnorm.Normalise(r)]; ok {
			shared++
		}
	}
	return shared, true
}

// Rank scores a mention against every record, drops sub-floor results and
// returns the remainder sorted by score descending, ties broken by record
// id for determinism. Empty input yields an empty list, never an error.
func (m *Matcher) Rank(mention domain.Mention, records []domain.ReferenceRecord) []domain.CandidateLink {
	var links []domain.CandidateLink
	for i := range records {
		score, tier, method := m.Score(mention, records[i])
		if tier == domain.TierNone {
			continue
		}
		links = append(links, domain.CandidateLink{
			RecordID: records[i].ID,
			Label:    records[i].Label,
			Score:    score,
			Tier:     tier,
			Method:   method,
			Evidence: fmt.Sprintf("%s match: %q ↔ %q", method, mention.Name, records[i].Label),
		})
	}

	sort.Slice(links, func(i, j int) bool {
		if links[i].Score != links[j].Score {
			return links[i].Score > links[j].Score
		}
		return links[i].RecordID < links[j].RecordID
	})
	return links
}

// Discover fetches open-world candidates for a mention and ranks them.
// Group mentions and unconfigured sources yield no candidates.
func (m *Matcher) Discover(ctx context.Context, mention domain.Mention, limit int) ([]domain.CandidateLink, error) {
	if m.source == nil || mention.Group {
		return nil, nil
	}
	records, err := m.source.Lookup(ctx, mention.Name, limit)
	if err != nil {
		return nil, fmt.Errorf("open-world lookup: %w", err)
	}
	logger.Debug("Discover %q: %d open-world records", mention.Name, len(records))

	links := m.Rank(mention, records)
	if len(links) > limit && limit > 0 {
		links = links[:limit]
	}
	return links, nil
}
