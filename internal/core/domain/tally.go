package domain

// Tally is the aggregated community vote for one (document, mention,
// candidate) triple: counts per decision kind plus the reviewer labels
// behind each count. Derived wholesale from the pulled decision history,
// then patched optimistically when the local reviewer acts.
type Tally struct {
	Accepts int
	Rejects int
	Flags   int

	// Reviewer display labels per kind, in pull order.
	AcceptedBy []string
	RejectedBy []string
	FlaggedBy  []string
}

// Add folds one decision into the tally.
func (t *Tally) Add(kind DecisionKind, reviewer string) {
	switch kind {
	case DecisionAccept:
		t.Accepts++
		t.AcceptedBy = append(t.AcceptedBy, reviewer)
	case DecisionReject:
		t.Rejects++
		t.RejectedBy = append(t.RejectedBy, reviewer)
	case DecisionFlag:
		t.Flags++
		t.FlaggedBy = append(t.FlaggedBy, reviewer)
	}
}

// Remove folds a retracted decision out of the tally and reports whether
// the reviewer's label was present. An absent label leaves the counts
// untouched: retracting a vote that never reached the community must not
// subtract someone else's.
func (t *Tally) Remove(kind DecisionKind, reviewer string) bool {
	var removed bool
	switch kind {
	case DecisionAccept:
		if t.AcceptedBy, removed = removeLabel(t.AcceptedBy, reviewer); removed {
			t.Accepts--
		}
	case DecisionReject:
		if t.RejectedBy, removed = removeLabel(t.RejectedBy, reviewer); removed {
			t.Rejects--
		}
	case DecisionFlag:
		if t.FlaggedBy, removed = removeLabel(t.FlaggedBy, reviewer); removed {
			t.Flags--
		}
	}
	return removed
}

// Conflict reports whether the triple has at least one accept and at least
// one reject.
func (t Tally) Conflict() bool {
	return t.Accepts > 0 && t.Rejects > 0
}

// Empty reports whether no votes remain.
func (t Tally) Empty() bool {
	return t.Accepts == 0 && t.Rejects == 0 && t.Flags == 0
}

func removeLabel(labels []string, label string) ([]string, bool) {
	for i, l := range labels {
		if l == label {
			return append(labels[:i], labels[i+1:]...), true
		}
	}
	return labels, false
}

// CommunityAcceptThreshold is the accept-tally level at which a candidate
// counts as community-accepted for export, absent a local accept.
const CommunityAcceptThreshold = 2
