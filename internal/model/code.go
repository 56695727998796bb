// Package model defines the core domain models used throughout the application.
package model

// DiagnosisCode is one ICD-10 catalog record.
type DiagnosisCode struct {
	Code     string `json:"code"`
	Disease  string `json:"disease"`
	Category string `json:"category"`
}

// ProcedureCode is one CPT-4 catalog record.
type ProcedureCode struct {
	Code      string `json:"code"`
	Procedure string `json:"procedure"`
}

// MatchResult is a catalog entry scored against a free-text phrase.
// Label holds the disease name for diagnoses and the procedure name for procedures.
type MatchResult struct {
	Code     string `json:"code"`
	Label    string `json:"label"`
	Category string `json:"category,omitempty"`
	Score    int    `json:"score"`
}

// DiagnosisCode converts the match back into the diagnosis record it came from.
func (m MatchResult) DiagnosisCode() DiagnosisCode {
	return DiagnosisCode{
		Code:     m.Code,
		Disease:  m.Label,
		Category: m.Category,
	}
}

// ProcedureCode converts the match back into the procedure record it came from.
func (m MatchResult) ProcedureCode() ProcedureCode {
	return ProcedureCode{
		Code:      m.Code,
		Procedure: m.Label,
	}
}

// MaxGroupMatches is the number of candidates kept per extracted phrase.
const MaxGroupMatches = 5

// MatchGroup holds the ranked candidates for one extracted diagnosis or procedure phrase.
// Groups are addressed by their 1-based position in display order.
type MatchGroup struct {
	SourceText string        `json:"source_text"`
	Matches    []MatchResult `json:"matches"`
}

// NewMatchGroup builds a group keeping at most MaxGroupMatches candidates.
func NewMatchGroup(sourceText string, matches []MatchResult) MatchGroup {
	if len(matches) > MaxGroupMatches {
		matches = matches[:MaxGroupMatches]
	}
	kept := make([]MatchResult, len(matches))
	copy(kept, matches)
	return MatchGroup{
		SourceText: sourceText,
		Matches:    kept,
	}
}
