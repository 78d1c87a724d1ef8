// Package wikidata implements the open-world candidate source against the
// Wikidata SPARQL endpoint.
//
// Name lookup goes through the mwapi EntitySearch service wrapped in SPARQL
// so the instance-of filter (P31 = Q5, human) applies before results come
// back: place and ship articles that outrank obscure medieval persons in
// plain entity search never reach the scorer. A second query per candidate
// fetches lifespan bounds (P569/P570); persons who lived entirely after the
// period cutoff are dropped. Requests are rate limited to stay polite to
// the public endpoint.
package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/outremer-kg/recon-cli/internal/core/domain"
	"github.com/outremer-kg/recon-cli/internal/core/ports/driven"
	"github.com/outremer-kg/recon-cli/internal/logger"
	"github.com/outremer-kg/recon-cli/internal/textnorm"
)

const (
	// DefaultEndpoint is the public Wikidata SPARQL endpoint.
	DefaultEndpoint = "https://query.wikidata.org/sparql"

	// userAgent identifies us to the endpoint, per Wikimedia policy.
	userAgent = "outremer-recon-cli/1.0 (+https://github.com/outremer-kg/recon-cli)"

	// requestTimeout bounds one SPARQL request.
	requestTimeout = 15 * time.Second

	// cutoffYear excludes persons who lived entirely after the period
	// under study.
	cutoffYear = 1500

	// innerSearchLimit is the EntitySearch breadth before the human
	// filter; wide enough that persons outranked by places survive.
	innerSearchLimit = 20
)

// relevantDescription matches description keywords typical of the Latin
// East and its period.
var relevantDescription = regexp.MustCompile(`(?i)\b(crusad|knight|king|queen|count|bishop|pope|sultan|emir|patriarch|noble|pilgrim|merchant|historian|chronicler|medieval|middle age|latin east|outremer|templars?|hospitall?er|constable|duke|baron)`)

// modernDescription matches descriptions of clearly post-period persons.
var modernDescription = regexp.MustCompile(`(?i)\b(born 1[5-9]\d\d|20th|21st century|politician|athlete|actor)\b`)

// Ensure Client implements the interface.
var _ driven.CandidateSource = (*Client)(nil)

// Client queries Wikidata for human entities by name.
type Client struct {
	endpoint string
	lang     string
	http     *http.Client
	limiter  *rate.Limiter
}

// NewClient creates a client for the given SPARQL endpoint; an empty
// endpoint selects the public one.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		lang:     "en",
		http:     &http.Client{Timeout: requestTimeout},
		// One request per 500ms, matching the endpoint's politeness
		// guidance for anonymous clients.
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}
}

// Lookup returns up to limit reference records for persons matching name,
// filtered to humans within the period cutoff and ordered by a relevance
// heuristic over label and description.
func (c *Client) Lookup(ctx context.Context, name string, limit int) ([]domain.ReferenceRecord, error) {
	if limit <= 0 {
		limit = 3
	}

	hits, err := c.searchHumans(ctx, name, limit+5)
	if err != nil {
		return nil, err
	}

	var records []domain.ReferenceRecord
	for _, hit := range hits {
		birth, death, err := c.lifespan(ctx, hit.qid)
		if err != nil {
			// Missing dates must not lose a candidate.
			logger.Debug("Lifespan lookup failed for %s: %v", hit.qid, err)
		}
		if postPeriod(birth, death) {
			logger.Debug("Dropped post-period candidate %s (%s)", hit.label, hit.qid)
			continue
		}
		records = append(records, domain.ReferenceRecord{
			ID:          "WIKIDATA:" + hit.qid,
			Label:       hit.label,
			Description: hit.description,
			BirthYear:   birth,
			DeathYear:   death,
			WikidataQID: hit.qid,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return relevance(name, &records[i]) > relevance(name, &records[j])
	})
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

type searchHit struct {
	qid         string
	label       string
	description string
}

// searchHumans runs the EntitySearch-in-SPARQL query with the human filter.
func (c *Client) searchHumans(ctx context.Context, name string, limit int) ([]searchHit, error) {
	safe := strings.NewReplacer(`"`, "", `\`, "").Replace(name)
	query := fmt.Sprintf(`
SELECT ?item ?itemLabel ?itemDescription WHERE {
  SERVICE wikibase:mwapi {
    bd:serviceParam wikibase:endpoint "www.wikidata.org" ;
                    wikibase:api "EntitySearch" ;
                    mwapi:search "%s" ;
                    mwapi:language "%s" ;
                    mwapi:limit "%d" .
    ?item wikibase:apiOutputItem mwapi:item .
  }
  ?item wdt:P31 wd:Q5 .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "%s,en" . }
}
LIMIT %d`, safe, c.lang, innerSearchLimit, c.lang, limit)

	bindings, err := c.sparql(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("entity search: %w", err)
	}

	var hits []searchHit
	for _, b := range bindings {
		iri := b.value("item")
		qid := iri[strings.LastIndex(iri, "/")+1:]
		label := b.value("itemLabel")
		if !strings.HasPrefix(qid, "Q") || label == qid || label == "" {
			continue
		}
		hits = append(hits, searchHit{
			qid:         qid,
			label:       label,
			description: b.value("itemDescription"),
		})
	}
	return hits, nil
}

// lifespan fetches birth (P569) and death (P570) years for one entity.
// Zero years mean unknown.
func (c *Client) lifespan(ctx context.Context, qid string) (birth, death int, err error) {
	query := fmt.Sprintf(`
SELECT ?birth ?death WHERE {
  wd:%s wdt:P569 ?birth .
  OPTIONAL { wd:%s wdt:P570 ?death . }
}`, qid, qid)

	bindings, err := c.sparql(ctx, query)
	if err != nil {
		return 0, 0, fmt.Errorf("lifespan query: %w", err)
	}

	for _, b := range bindings {
		if birth == 0 {
			birth = leadingYear(b.value("birth"))
		}
		if death == 0 {
			death = leadingYear(b.value("death"))
		}
	}
	return birth, death, nil
}

// sparqlResponse mirrors the application/sparql-results+json envelope.
type sparqlResponse struct {
	Results struct {
		Bindings []binding `json:"bindings"`
	} `json:"results"`
}

type binding map[string]struct {
	Value string `json:"value"`
}

func (b binding) value(key string) string {
	return b[key].Value
}

// sparql runs one query against the endpoint.
func (c *Client) sparql(ctx context.Context, query string) ([]binding, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying endpoint: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var out sparqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return out.Results.Bindings, nil
}

// postPeriod reports whether a person lived entirely after the cutoff.
// Unknown dates keep the candidate.
func postPeriod(birth, death int) bool {
	if birth == 0 && death == 0 {
		return false
	}
	if birth != 0 && birth <= cutoffYear {
		return false
	}
	if death != 0 && death <= cutoffYear {
		return false
	}
	return birth != 0
}

// relevance is a coarse pre-ranking heuristic over label similarity and
// description keywords. The scorer re-ranks the returned records; this
// only decides which candidates are worth returning at all.
func relevance(name string, r *domain.ReferenceRecord) float64 {
	score := 0.0

	nn := textnorm.Normalise(name)
	ln := textnorm.Normalise(r.Label)
	switch {
	case nn == ln:
		score += 0.5
	case strings.Contains(ln, nn) || strings.Contains(nn, ln):
		score += 0.3
	}

	if relevantDescription.MatchString(r.Description) {
		score += 0.4
	}
	if modernDescription.MatchString(r.Description) {
		score -= 0.5
	}

	if score < 0 {
		return 0
	}
	return score
}

// leadingYear parses the year from an ISO timestamp ("1145-01-01T00:00:00Z").
func leadingYear(s string) int {
	if len(s) < 4 {
		return 0
	}
	year, err := strconv.Atoi(s[:4])
	if err != nil {
		return 0
	}
	return year
}
