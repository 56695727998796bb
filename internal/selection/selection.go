// Package selection parses compact code selections such as "1a, 2B" against
// the match groups most recently shown to the user.
package selection

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Veraticus/medicoder/internal/model"
)

// NoneKeyword declines every suggested code.
const NoneKeyword = "none"

var (
	// Diagnosis selections accept either letter case.
	diagnosisPattern = regexp.MustCompile(`(\d+)([a-zA-Z])`)
	// Procedure selections are only recognized with an uppercase letter.
	procedurePattern = regexp.MustCompile(`(\d+)([A-Z])`)
)

// Result holds the codes a selection string resolved to, in input order.
type Result struct {
	Diagnoses  []model.DiagnosisCode
	Procedures []model.ProcedureCode
}

// Empty reports whether nothing was resolved.
func (r Result) Empty() bool {
	return len(r.Diagnoses) == 0 && len(r.Procedures) == 0
}

// IsNone reports whether input is the literal decline keyword.
func IsNone(input string) bool {
	return strings.EqualFold(strings.TrimSpace(input), NoneKeyword)
}

// Parse resolves every comma-separated segment of input against the current
// groups. Both patterns are tried on each segment, so "1B" addresses the first
// diagnosis group and the first procedure group. Segments that do not parse or
// point outside the groups are skipped.
func Parse(input string, diagnosisGroups, procedureGroups []model.MatchGroup) Result {
	var result Result
	if IsNone(input) {
		return result
	}

	segments := strings.Split(input, ",")
	for _, segment := range segments {
		if m, ok := resolve(diagnosisPattern, segment, diagnosisGroups); ok {
			result.Diagnoses = append(result.Diagnoses, m.DiagnosisCode())
		}
	}
	for _, segment := range segments {
		if m, ok := resolve(procedurePattern, segment, procedureGroups); ok {
			result.Procedures = append(result.Procedures, m.ProcedureCode())
		}
	}
	return result
}

func resolve(pattern *regexp.Regexp, segment string, groups []model.MatchGroup) (model.MatchResult, bool) {
	sub := pattern.FindStringSubmatch(strings.TrimSpace(segment))
	if sub == nil {
		return model.MatchResult{}, false
	}

	ordinal, err := strconv.Atoi(sub[1])
	if err != nil {
		return model.MatchResult{}, false
	}
	groupIdx := ordinal - 1
	if groupIdx < 0 || groupIdx >= len(groups) {
		return model.MatchResult{}, false
	}

	letter := strings.ToLower(sub[2])[0]
	matchIdx := int(letter - 'a')
	matches := groups[groupIdx].Matches
	if matchIdx < 0 || matchIdx >= len(matches) {
		return model.MatchResult{}, false
	}
	return matches[matchIdx], true
}
