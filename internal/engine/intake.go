package engine

import (
	"strings"

	"github.com/Veraticus/medicoder/internal/common"
	"github.com/Veraticus/medicoder/internal/extract"
	"github.com/Veraticus/medicoder/internal/llm"
	"github.com/Veraticus/medicoder/internal/model"
)

func (e *Engine) handleGreeting(t *turn, input string) error {
	choice := strings.ToLower(input)
	switch {
	case matchesChoice(choice, guidedChoices):
		t.state.Stage = model.StageCollectingPatientInfo
		t.say(guidedMessage)
	case matchesChoice(choice, summaryChoice):
		t.state.Stage = model.StageCollectingSummary
		t.state.SummaryMode = true
		t.say(summaryMessage)
	case matchesChoice(choice, uploadChoices):
		t.state.Stage = model.StageProcessingDocument
		t.say(uploadMessage)
	default:
		t.say(invalidMode)
	}
	return nil
}

func (e *Engine) handlePatientInfo(t *turn, _ string) error {
	e.extractPatientInfo(t)

	if missing := t.state.MissingEssentialFields(); len(missing) > 0 {
		t.sayf(missingPatientInfo, fieldDescriptions(missing))
		return nil
	}

	t.state.Stage = model.StageCollectingClinicalNotes
	t.say(patientInfoDone)
	return nil
}

// extractPatientInfo asks the generator for patient fields and merges
// whatever it could decode. Undecodable replies leave the state untouched.
func (e *Engine) extractPatientInfo(t *turn) {
	reply, ok := e.generate(t, patientInfoPrompt, false)
	if !ok {
		return
	}
	fields, decoded := llm.DecodeObject(reply)
	if !decoded {
		e.logger.Debug("No patient fields in reply", "stage", t.state.Stage)
		return
	}
	written := t.state.MergePatientInfo(fields.Fields())
	e.logger.Debug("Merged patient fields", "count", written)
}

func (e *Engine) handleSummary(t *turn, _ string) error {
	e.extractPatientInfo(t)
	e.suggestCodes(t)

	path, err := e.assemble(t)
	if err != nil {
		return err
	}

	t.state.Stage = model.StageReviewingClaim
	t.sayf(summaryDone, path)
	return nil
}

func (e *Engine) handleDocument(t *turn, input string) error {
	path := extract.CleanPath(input)

	if e.extractor == nil {
		t.sayf(documentFailed, "document extraction is not available")
		return nil
	}

	text, err := e.extractor.Extract(t.ctx, path)
	if err != nil {
		e.logger.Warn("Document extraction failed",
			"path", path,
			"error", err)
		if msg, ok := common.UserMessage(err); ok {
			t.say(msg)
		} else {
			t.sayf(documentFailed, err)
		}
		return nil
	}

	t.state.AddMessage(model.RoleSystem, "Extracted text from document:\n"+text)

	reply, ok := e.generate(t, documentPrompt, false)
	if !ok {
		return nil
	}
	extracted, decoded := llm.DecodeObject(reply)
	if !decoded {
		e.logger.Warn("Document reply carried no structured data", "path", path)
		t.say(documentUnclear)
		return nil
	}

	if patient, ok := extracted.Section("patient_info"); ok {
		t.state.MergePatientInfo(patient.Fields())
	}

	t.state.ClinicalInfo = make(map[string]string)
	if clinical, ok := extracted.Section("clinical_info"); ok {
		if diagnoses, ok := clinical.List("diagnoses"); ok {
			t.state.DiagnosesText = diagnoses
		}
		if procedures, ok := clinical.List("procedures"); ok {
			t.state.ProceduresText = procedures
		}
		for key, value := range clinical.Without("diagnoses", "procedures").Fields() {
			if v := strings.TrimSpace(value); v != "" && !strings.EqualFold(v, "null") {
				t.state.ClinicalInfo[key] = v
			}
		}
	}

	if missing := t.state.MissingEssentialFields(); len(missing) > 0 {
		t.state.Stage = model.StageCollectingPatientInfo
		t.sayf(documentMissing, fieldDescriptions(missing))
		return nil
	}

	t.state.Stage = model.StageCollectingClinicalNotes
	t.say(documentProcessed)
	return nil
}
