// Package matcher ranks catalog entries against free-text diagnoses and procedures.
package matcher

import (
	"sort"
	"strings"

	"github.com/Veraticus/medicoder/internal/model"
)

// DefaultThreshold is the score an entry must exceed to be kept.
const DefaultThreshold = 70

// Selector extracts one comparable text field from a catalog entry.
type Selector[T any] func(T) string

// Match scores every entry against query using the best score over all
// selectors, keeps entries scoring strictly above threshold and orders them by
// score descending. Ties keep catalog order.
func Match[T any](query string, entries []T, selectors []Selector[T], build func(T, int) model.MatchResult, threshold int) []model.MatchResult {
	if strings.TrimSpace(query) == "" || len(entries) == 0 || len(selectors) == 0 {
		return nil
	}

	var results []model.MatchResult
	for _, entry := range entries {
		best := 0
		for _, sel := range selectors {
			if score := TokenSetRatio(query, sel(entry)); score > best {
				best = score
			}
		}
		if best > threshold {
			results = append(results, build(entry, best))
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// Diagnoses ranks ICD-10 entries by the better of their disease and category scores.
func Diagnoses(query string, entries []model.DiagnosisCode, threshold int) []model.MatchResult {
	selectors := []Selector[model.DiagnosisCode]{
		func(d model.DiagnosisCode) string { return d.Disease },
		func(d model.DiagnosisCode) string { return d.Category },
	}
	return Match(query, entries, selectors, func(d model.DiagnosisCode, score int) model.MatchResult {
		return model.MatchResult{
			Code:     d.Code,
			Label:    d.Disease,
			Category: d.Category,
			Score:    score,
		}
	}, threshold)
}

// Procedures ranks CPT-4 entries by their procedure description.
func Procedures(query string, entries []model.ProcedureCode, threshold int) []model.MatchResult {
	selectors := []Selector[model.ProcedureCode]{
		func(p model.ProcedureCode) string { return p.Procedure },
	}
	return Match(query, entries, selectors, func(p model.ProcedureCode, score int) model.MatchResult {
		return model.MatchResult{
			Code:  p.Code,
			Label: p.Procedure,
			Score: score,
		}
	}, threshold)
}
