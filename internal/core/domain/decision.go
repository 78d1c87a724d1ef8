package domain

import "time"

// DecisionKind is a reviewer's judgment on one mention–candidate pair.
// The three kinds are mutually exclusive per pair: picking a different kind
// supersedes the previous one, picking the same kind again toggles it off.
type DecisionKind string

const (
	// DecisionAccept endorses the candidate link.
	DecisionAccept DecisionKind = "accept"
	// DecisionReject disputes the candidate link.
	DecisionReject DecisionKind = "reject"
	// DecisionFlag marks the pair for discussion without a verdict.
	DecisionFlag DecisionKind = "flag"
)

// Valid reports whether k is a known decision kind.
func (k DecisionKind) Valid() bool {
	switch k {
	case DecisionAccept, DecisionReject, DecisionFlag:
		return true
	}
	return false
}

// Reviewer identifies the acting reviewer. Identity is self-reported:
// a display name (possibly empty) plus a stable anonymous client id.
// There is no authentication.
type Reviewer struct {
	// ClientID is the stable anonymous identifier, generated once per
	// installation and persisted in config.
	ClientID string

	// Name is the self-reported display name. May be empty.
	Name string
}

// Label returns the display name, falling back to a truncated client id
// for anonymous reviewers.
func (r Reviewer) Label() string {
	if r.Name != "" {
		return r.Name
	}
	if len(r.ClientID) > 8 {
		return "anon-" + r.ClientID[:8]
	}
	return "anon"
}

// DecisionKey addresses one (document, mention, candidate) triple.
type DecisionKey struct {
	DocID     string
	Person    string
	RecordKey string
}

// Decision is a single reviewer's live judgment on one triple. At most one
// Decision exists per (reviewer, triple); a new kind overwrites in place.
type Decision struct {
	DecisionKey

	// Kind is the current judgment.
	Kind DecisionKind

	// Comment is an optional free-text note.
	Comment string

	// Reviewer identifies who decided.
	Reviewer Reviewer

	// DecidedAt is when the current Kind was (last) set.
	DecidedAt time.Time
}

// EntityFlagKind is a judgment on the mention itself, independent of any
// candidate. Flag kinds are independent binary toggles, not mutually
// exclusive.
type EntityFlagKind string

const (
	// FlagNotPerson marks an extraction artefact that is not a person.
	FlagNotPerson EntityFlagKind = "not_person"
	// FlagWrongEra marks a person outside the period under study.
	FlagWrongEra EntityFlagKind = "wrong_era"
	// FlagDuplicate marks a mention duplicating another in the document.
	FlagDuplicate EntityFlagKind = "duplicate"
	// FlagGroup marks a collective wrongly extracted as an individual.
	FlagGroup EntityFlagKind = "group"
)

// Valid reports whether k is a known flag kind.
func (k EntityFlagKind) Valid() bool {
	switch k {
	case FlagNotPerson, FlagWrongEra, FlagDuplicate, FlagGroup:
		return true
	}
	return false
}

// EntityFlag is one reviewer's set flag on one mention.
type EntityFlag struct {
	DocID     string
	Person    string
	Kind      EntityFlagKind
	FlaggedAt time.Time
}
