package model

import (
	"errors"
	"fmt"
)

// ErrUnknownStage is returned for a dialogue stage outside the fixed set.
var ErrUnknownStage = errors.New("unknown dialogue stage")

// Stage tags the dialogue engine's current state.
type Stage string

// Dialogue stages.
const (
	StageGreeting                Stage = "greeting"
	StageCollectingPatientInfo   Stage = "collecting_patient_info"
	StageCollectingClinicalNotes Stage = "collecting_clinical_notes"
	StageConfirmingCodes         Stage = "confirming_codes"
	StageReviewingClaim          Stage = "reviewing_claim"
	StagePostClaimMenu           Stage = "post_claim_menu"
	StageCollectingSummary       Stage = "collecting_summary"
	StageCodeLookup              Stage = "code_lookup"
	StageProcessingDocument      Stage = "processing_document"
	StageLearning                Stage = "learning"
)

var allStages = []Stage{
	StageGreeting,
	StageCollectingPatientInfo,
	StageCollectingClinicalNotes,
	StageConfirmingCodes,
	StageReviewingClaim,
	StagePostClaimMenu,
	StageCollectingSummary,
	StageCodeLookup,
	StageProcessingDocument,
	StageLearning,
}

// Stages returns every valid stage in declaration order.
func Stages() []Stage {
	out := make([]Stage, len(allStages))
	copy(out, allStages)
	return out
}

// Valid reports whether s is one of the known stages.
func (s Stage) Valid() bool {
	for _, known := range allStages {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStage converts a stored tag into a Stage, rejecting unknown values.
func ParseStage(tag string) (Stage, error) {
	s := Stage(tag)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStage, tag)
	}
	return s, nil
}

func (s Stage) String() string {
	return string(s)
}
