package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/medicoder/internal/claim"
	"github.com/Veraticus/medicoder/internal/llm"
	"github.com/Veraticus/medicoder/internal/matcher"
	"github.com/Veraticus/medicoder/internal/model"
	"github.com/Veraticus/medicoder/internal/selection"
)

var errNoAssembler = errors.New("no claim assembler configured")

func (e *Engine) handleClinicalNotes(t *turn, _ string) error {
	e.suggestCodes(t)
	return nil
}

// suggestCodes extracts diagnosis and procedure phrases, matches them against
// the catalogs and lists the candidates. Previously confirmed codes are kept;
// only the addressable groups are replaced.
func (e *Engine) suggestCodes(t *turn) {
	diagnoses := e.extractPhrases(t, diagnosesPrompt)
	procedures := e.extractPhrases(t, proceduresPrompt)

	t.state.DiagnosesText = diagnoses
	t.state.ProceduresText = procedures

	var diagnosisGroups []model.MatchGroup
	for _, phrase := range diagnoses {
		if matches := matcher.Diagnoses(phrase, e.catalog.Diagnoses(), e.threshold); len(matches) > 0 {
			diagnosisGroups = append(diagnosisGroups, model.NewMatchGroup(phrase, matches))
		}
	}
	var procedureGroups []model.MatchGroup
	for _, phrase := range procedures {
		if matches := matcher.Procedures(phrase, e.catalog.Procedures(), e.threshold); len(matches) > 0 {
			procedureGroups = append(procedureGroups, model.NewMatchGroup(phrase, matches))
		}
	}

	t.state.CurrentDiagnosisGroups = diagnosisGroups
	t.state.CurrentProcedureGroups = procedureGroups

	e.logger.Debug("Suggested codes",
		"diagnosis_phrases", len(diagnoses),
		"diagnosis_groups", len(diagnosisGroups),
		"procedure_phrases", len(procedures),
		"procedure_groups", len(procedureGroups))

	t.say(renderListing(diagnosisGroups, procedureGroups))
	t.state.Stage = model.StageConfirmingCodes
}

// extractPhrases returns nothing when generation fails so the listing
// degrades to "no codes found".
func (e *Engine) extractPhrases(t *turn, instruction string) []string {
	reply, ok := e.generate(t, instruction, false)
	if !ok {
		return nil
	}
	return llm.ParseListLines(reply)
}

func renderListing(diagnosisGroups, procedureGroups []model.MatchGroup) string {
	var b strings.Builder
	b.WriteString(listingHeader)

	if len(diagnosisGroups) > 0 {
		b.WriteString("DIAGNOSES:\n")
		writeGroups(&b, diagnosisGroups, "ICD-10")
	} else {
		b.WriteString(noDiagnoses)
	}

	b.WriteString("\n")

	if len(procedureGroups) > 0 {
		b.WriteString("PROCEDURES:\n")
		writeGroups(&b, procedureGroups, "CPT-4")
	} else {
		b.WriteString(noProcedures)
	}

	b.WriteString("\n")
	b.WriteString(selectionHelp)
	return b.String()
}

func writeGroups(b *strings.Builder, groups []model.MatchGroup, system string) {
	for i, group := range groups {
		fmt.Fprintf(b, "%d. For '%s', I found these %s codes:\n", i+1, group.SourceText, system)
		for j, match := range group.Matches {
			fmt.Fprintf(b, "   %c. %s - %s\n", rune('a'+j), match.Code, match.Label)
		}
	}
}

func (e *Engine) handleConfirmCodes(t *turn, input string) error {
	if selection.IsNone(input) {
		t.say(noneSelected)
		return nil
	}

	result := selection.Parse(input, t.state.CurrentDiagnosisGroups, t.state.CurrentProcedureGroups)
	if result.Empty() {
		t.say(selectionsUnclear)
		return nil
	}

	for _, code := range result.Diagnoses {
		t.state.ConfirmDiagnosis(code)
	}
	for _, code := range result.Procedures {
		t.state.ConfirmProcedure(code)
	}
	t.say(selectionsConfirmed)

	path, err := e.assemble(t)
	if err != nil {
		return err
	}

	t.state.Stage = model.StageReviewingClaim
	t.sayf(claimPreview, path, claim.FromState(t.state).Preview())
	return nil
}

// assemble renders the claim for the current state.
func (e *Engine) assemble(t *turn) (string, error) {
	if e.assembler == nil {
		return "", errNoAssembler
	}
	path, err := e.assembler.Assemble(t.ctx, claim.FromState(t.state))
	if err != nil {
		return "", fmt.Errorf("failed to assemble claim: %w", err)
	}
	return path, nil
}
