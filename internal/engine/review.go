package engine

import (
	"slices"
	"strings"

	"github.com/Veraticus/medicoder/internal/claim"
	"github.com/Veraticus/medicoder/internal/llm"
	"github.com/Veraticus/medicoder/internal/model"
)

func (e *Engine) handleReviewClaim(t *turn, input string) error {
	if containsPhrase(input, finalizePhrases) {
		return e.finalize(t)
	}

	reply, ok := e.generate(t, additionalInfoPrompt, false)
	if !ok {
		return nil
	}
	if details, decoded := llm.DecodeObject(reply); decoded {
		written := t.state.MergeClaimDetails(details.Fields())
		e.logger.Debug("Merged claim details", "count", written)
	} else {
		e.logger.Debug("No claim details in reply")
	}

	path, err := e.assemble(t)
	if err != nil {
		return err
	}
	t.sayf(claimUpdated, path)
	return nil
}

func (e *Engine) finalize(t *turn) error {
	path, err := e.assemble(t)
	if err != nil {
		return err
	}
	e.record(t, path)

	t.sayf(claimFinalized, path)
	t.say(postClaimMenu)
	t.state.Stage = model.StagePostClaimMenu
	return nil
}

// record stores the finalized claim. Ledger failures are logged and do not
// fail the turn.
func (e *Engine) record(t *turn, path string) {
	if e.recorder == nil {
		return
	}
	c := claim.FromState(t.state)
	record := &model.ClaimRecord{
		PatientName:  c.PatientName(),
		DocumentPath: path,
		Diagnoses:    c.Diagnoses,
		Procedures:   c.Procedures,
		Transcript:   slices.Clone(t.state.History),
	}
	if err := e.recorder.SaveClaim(t.ctx, record); err != nil {
		e.logger.Warn("Failed to record claim",
			"path", path,
			"error", err)
		return
	}
	e.logger.Info("Claim recorded",
		"id", record.ID,
		"patient", record.PatientName)
}

func (e *Engine) handlePostClaimMenu(t *turn, input string) error {
	choice := strings.ToLower(input)
	switch {
	case matchesChoice(choice, newCaseChoices):
		t.state.ResetCase()
		t.state.Stage = model.StageCollectingPatientInfo
		t.say(newCase)
	case matchesChoice(choice, modifyChoices):
		t.state.Stage = model.StageCollectingClinicalNotes
		t.say(updateCodes)
	case matchesChoice(choice, lookupChoices):
		t.state.Stage = model.StageCodeLookup
		t.say(lookupPrompt)
	case matchesChoice(choice, learnChoices):
		t.state.Stage = model.StageLearning
		t.say(learnPrompt)
	default:
		t.say(invalidMenu)
	}
	return nil
}

func (e *Engine) handleCodeLookup(t *turn, input string) error {
	results := e.catalog.LookupAll(input)
	if len(results) == 0 {
		t.say(noCodesGiven)
	} else {
		descriptions := make([]string, len(results))
		for i, r := range results {
			descriptions[i] = r.Describe()
		}
		t.say(strings.Join(descriptions, "\n\n"))
	}

	t.say(postClaimMenu)
	t.state.Stage = model.StagePostClaimMenu
	return nil
}

func (e *Engine) handleLearning(t *turn, _ string) error {
	e.generate(t, learningPrompt, true)
	t.say(postClaimMenu)
	t.state.Stage = model.StagePostClaimMenu
	return nil
}
