package matcher

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// TokenSetRatio scores two strings from 0 to 100, ignoring case, punctuation,
// word order and repeated words. Tokens shared by both sides are compared
// against each side's full token set, so a phrase that is a subset of the
// other scores 100.
func TokenSetRatio(a, b string) int {
	p1 := normalize(a)
	p2 := normalize(b)
	if p1 == "" || p2 == "" {
		return 0
	}

	tokens1 := tokenSet(p1)
	tokens2 := tokenSet(p2)

	var intersection, diff1to2, diff2to1 []string
	for tok := range tokens1 {
		if _, ok := tokens2[tok]; ok {
			intersection = append(intersection, tok)
		} else {
			diff1to2 = append(diff1to2, tok)
		}
	}
	for tok := range tokens2 {
		if _, ok := tokens1[tok]; !ok {
			diff2to1 = append(diff2to1, tok)
		}
	}
	sort.Strings(intersection)
	sort.Strings(diff1to2)
	sort.Strings(diff2to1)

	sortedSect := strings.Join(intersection, " ")
	combined1to2 := strings.TrimSpace(sortedSect + " " + strings.Join(diff1to2, " "))
	combined2to1 := strings.TrimSpace(sortedSect + " " + strings.Join(diff2to1, " "))

	best := ratio(sortedSect, combined1to2)
	if r := ratio(sortedSect, combined2to1); r > best {
		best = r
	}
	if r := ratio(combined1to2, combined2to1); r > best {
		best = r
	}
	return best
}

// ratio is 2*LCS/(len(a)+len(b)) scaled to 0-100, rounded half to even.
func ratio(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	lcs := edlib.LCS(a, b)
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	score := 100 * 2 * float64(lcs) / float64(total)
	return int(math.RoundToEven(score))
}

// normalize lower-cases s and replaces everything but letters, digits and
// underscores with spaces.
func normalize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.TrimSpace(mapped)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}
