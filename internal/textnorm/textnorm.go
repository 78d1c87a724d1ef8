// Package textnorm canonicalises name and attribute strings for comparison.
// All matching in the scorer and aligner happens on these canonical forms;
// no semantic parsing of dates or places is attempted.
package textnorm

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalise returns the canonical form of s: accents stripped, lower-cased,
// punctuation replaced by spaces, whitespace collapsed, trimmed. Total:
// never fails, empty input yields empty output.
func Normalise(s string) string {
	stripped, _, err := transform.String(accentStripper(), s)
	if err != nil {
		// Malformed input degrades to byte-wise handling below.
		stripped = s
	}

	var b strings.Builder
	b.Grow(len(stripped))
	space := true // swallow leading whitespace
	for _, r := range strings.ToLower(stripped) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// accentStripper decomposes to NFD and removes combining marks. Built per
// call: the chained transformer carries internal buffers and is not safe
// for concurrent reuse.
func accentStripper() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Tokens splits a normalised string into its word tokens.
func Tokens(s string) []string {
	return strings.Fields(Normalise(s))
}

// TokenSortRatio is a token-sort similarity in [0, 1]: both inputs are
// normalised, their tokens sorted and re-joined, and the result compared by
// Levenshtein distance. Word order does not affect the score.
func TokenSortRatio(a, b string) float64 {
	sa := tokenSorted(a)
	sb := tokenSorted(b)
	if sa == "" && sb == "" {
		return 1.0
	}
	if sa == "" || sb == "" {
		return 0.0
	}
	longest := max(len(sa), len(sb))
	return 1.0 - float64(levenshtein(sa, sb))/float64(longest)
}

func tokenSorted(s string) string {
	toks := Tokens(s)
	sort.Strings(toks)
	return strings.Join(toks, " ")
}

// levenshtein computes edit distance with a two-row table.
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Jaccard is set overlap over normalised values: |A∩B| / |A∪B|.
// Returns 0 when either side is empty.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	setA := make(map[string]struct{}, len(a))
	for _, v := range a {
		if n := Normalise(v); n != "" {
			setA[n] = struct{}{}
		}
	}
	setB := make(map[string]struct{}, len(b))
	for _, v := range b {
		if n := Normalise(v); n != "" {
			setB[n] = struct{}{}
		}
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}
	inter := 0
	for v := range setA {
		if _, ok := setB[v]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}

// RegnalNumber extracts the first regnal numeral from a name: a roman
// numeral token ("Baldwin II") or a bare ordinal digit token ("Baldwin 2").
// Returns 0 when none is present.
func RegnalNumber(name string) int {
	for _, tok := range Tokens(name) {
		if n := romanValue(tok); n > 0 {
			return n
		}
		if n, err := strconv.Atoi(tok); err == nil && n > 0 && n < 40 {
			return n
		}
	}
	return 0
}

var romanDigits = map[rune]int{'i': 1, 'v': 5, 'x': 10}

// romanValue parses small roman numerals (the regnal range, up to xxxix).
// Single "i" is not treated as a numeral: too ambiguous as a word.
func romanValue(tok string) int {
	if tok == "" || tok == "i" {
		return 0
	}
	total := 0
	prev := 0
	for _, r := range tok {
		v, ok := romanDigits[r]
		if !ok {
			return 0
		}
		if prev > 0 && prev < v {
			total += v - 2*prev
		} else {
			total += v
		}
		prev = v
	}
	return total
}

// YearSpan extracts the year range mentioned in a free-text date: every
// 3–4 digit number is collected and the span is their min..max. A single
// year yields a degenerate span. ok is false when no year is present.
func YearSpan(s string) (from, to int, ok bool) {
	digits := 0
	value := 0
	consider := func() {
		if digits >= 3 && digits <= 4 {
			if !ok || value < from {
				from = value
			}
			if !ok || value > to {
				to = value
			}
			ok = true
		}
	}
	for _, r := range s {
		if r >= '0' && r <= '9' {
			value = value*10 + int(r-'0')
			digits++
			continue
		}
		consider()
		digits, value = 0, 0
	}
	consider()
	return from, to, ok
}
