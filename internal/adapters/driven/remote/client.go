// Package remote implements the HTTP client for the shared decision
// aggregation service.
//
// The service is a thin store keyed by (doc_id, person, record_key,
// client_id): submissions upsert, deletes are idempotent, and the pull
// endpoint returns the full decision history for a document across all
// reviewers. Transport errors surface to the caller unchanged; the sync
// layer above decides how to present them.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/outremer-kg/recon-cli/internal/core/domain"
	"github.com/outremer-kg/recon-cli/internal/core/ports/driven"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Ensure Client implements the interface.
var _ driven.AggregationClient = (*Client)(nil)

// Client talks to one aggregation service endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the aggregation service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
}

// decisionPayload is the wire form of one reviewer's decision.
type decisionPayload struct {
	DocID        string `json:"doc_id"`
	Person       string `json:"person"`
	RecordKey    string `json:"record_key"`
	Decision     string `json:"decision,omitempty"`
	Comment      string `json:"comment,omitempty"`
	ClientID     string `json:"client_id"`
	ReviewerName string `json:"reviewer_name,omitempty"`
}

// decisionRecord is one row of the pulled decision history. The service
// echoes the submitting client id so anonymous reviewers keep a stable
// identity across pulls and optimistic local patches.
type decisionRecord struct {
	Person       string `json:"person"`
	RecordKey    string `json:"record_key"`
	Decision     string `json:"decision"`
	Comment      string `json:"comment"`
	ClientID     string `json:"client_id"`
	ReviewerName string `json:"reviewer_name"`
	DecidedAt    string `json:"decided_at"`
}

// PushDecision upserts the reviewer's decision for one triple.
func (c *Client) PushDecision(ctx context.Context, d domain.Decision) error {
	payload := decisionPayload{
		DocID:        d.DocID,
		Person:       d.Person,
		RecordKey:    d.RecordKey,
		Decision:     string(d.Kind),
		Comment:      d.Comment,
		ClientID:     d.Reviewer.ClientID,
		ReviewerName: d.Reviewer.Name,
	}
	resp, err := c.send(ctx, http.MethodPost, c.baseURL+"/decision", payload)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push decision: %w", statusError(resp))
	}
	return nil
}

// DeleteDecision removes the reviewer's decision for one triple. A 404
// means the decision is already gone, which is the desired end state: a
// toggle-off may race its own in-flight create.
func (c *Client) DeleteDecision(ctx context.Context, key domain.DecisionKey, reviewer domain.Reviewer) error {
	payload := decisionPayload{
		DocID:     key.DocID,
		Person:    key.Person,
		RecordKey: key.RecordKey,
		ClientID:  reviewer.ClientID,
	}
	resp, err := c.send(ctx, http.MethodDelete, c.baseURL+"/decision", payload)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("delete decision: %w", statusError(resp))
	}
	return nil
}

// FetchDecisions returns the full decision history for a document.
func (c *Client) FetchDecisions(ctx context.Context, docID string) ([]domain.Decision, error) {
	u := c.baseURL + "/decisions/" + url.PathEscape(docID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch decisions: %w", err)
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch decisions: %w", statusError(resp))
	}

	var records []decisionRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding decisions: %w", err)
	}

	decisions := make([]domain.Decision, 0, len(records))
	for _, r := range records {
		d := domain.Decision{
			DecisionKey: domain.DecisionKey{
				DocID:     docID,
				Person:    r.Person,
				RecordKey: r.RecordKey,
			},
			Kind:     domain.DecisionKind(r.Decision),
			Comment:  r.Comment,
			Reviewer: domain.Reviewer{ClientID: r.ClientID, Name: r.ReviewerName},
		}
		if t, err := time.Parse(time.RFC3339, r.DecidedAt); err == nil {
			d.DecidedAt = t
		}
		decisions = append(decisions, d)
	}
	return decisions, nil
}

// send issues one JSON request.
func (c *Client) send(ctx context.Context, method, u string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, u, err)
	}
	return resp, nil
}

// statusError turns a non-2xx response into an error carrying the status
// and a snippet of the body.
func statusError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	msg := strings.TrimSpace(string(snippet))
	if msg == "" {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return fmt.Errorf("unexpected status %s: %s", resp.Status, msg)
}

// drain discards the remaining body so the connection can be reused.
func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body) //nolint:errcheck
	resp.Body.Close()
}
