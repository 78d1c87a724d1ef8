package services

import (
	"fmt"
	"strings"

	"github.com/outremer-kg/recon-cli/internal/core/domain"
	"github.com/outremer-kg/recon-cli/internal/textnorm"
)

// Align compares the mention's contextual attributes (date, place, role)
// against the record's known attributes, one row per attribute present on
// at least one side. Comparison is on normalised string form only — no
// date or place semantics. The output is advisory and never feeds back
// into a stored candidate score.
func (m *Matcher) Align(mention domain.Mention, record domain.ReferenceRecord) []domain.ComparisonRow {
	var rows []domain.ComparisonRow

	if row, ok := compare("date", mention.Date, recordDate(&record)); ok {
		rows = append(rows, row)
	}
	if row, ok := compare("place", mention.Place, record.Place); ok {
		rows = append(rows, row)
	}
	if row, ok := compareRole(mention.Role, record.Roles); ok {
		rows = append(rows, row)
	}
	return rows
}

// compare classifies one attribute pair. No row when both sides are absent.
func compare(attribute, extracted, reference string) (domain.ComparisonRow, bool) {
	en := textnorm.Normalise(extracted)
	rn := textnorm.Normalise(reference)

	row := domain.ComparisonRow{
		Attribute: attribute,
		Extracted: extracted,
		Reference: reference,
	}
	switch {
	case en == "" && rn == "":
		return domain.ComparisonRow{}, false
	case en == "" || rn == "":
		row.Result = domain.AlignPartial
	case en == rn:
		row.Result = domain.AlignMatch
	default:
		row.Result = domain.AlignMismatch
	}
	return row, true
}

// compareRole matches the mention role against the record's role set: any
// normalised-equal role counts as a match.
func compareRole(role string, roles []string) (domain.ComparisonRow, bool) {
	reference := strings.Join(roles, ", ")
	rn := textnorm.Normalise(role)
	if rn == "" || len(roles) == 0 {
		return compare("role", role, reference)
	}
	for _, r := range roles {
		if textnorm.Normalise(r) == rn {
			return domain.ComparisonRow{
				Attribute: "role",
				Extracted: role,
				Reference: reference,
				Result:    domain.AlignMatch,
			}, true
		}
	}
	return domain.ComparisonRow{
		Attribute: "role",
		Extracted: role,
		Reference: reference,
		Result:    domain.AlignMismatch,
	}, true
}

// recordDate renders the record's date knowledge as display text: the
// floruit when set, otherwise the lifespan bounds.
func recordDate(record *domain.ReferenceRecord) string {
	if record.Floruit != "" {
		return record.Floruit
	}
	switch {
	case record.BirthYear != 0 && record.DeathYear != 0:
		return fmt.Sprintf("%d-%d", record.BirthYear, record.DeathYear)
	case record.BirthYear != 0:
		return fmt.Sprintf("b. %d", record.BirthYear)
	case record.DeathYear != 0:
		return fmt.Sprintf("d. %d", record.DeathYear)
	}
	return ""
}
