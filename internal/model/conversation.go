package model

import (
	"maps"
	"strings"
	"time"
)

// Role identifies the author of a transcript turn.
type Role string

// Transcript roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript turn sent to the text-generation collaborator.
type Message struct {
	Timestamp time.Time `json:"timestamp"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
}

// EssentialField is a patient field that must be present before intake can finish.
type EssentialField struct {
	Key         string
	Description string
}

// EssentialFields lists the fields gating the move out of patient-info collection, in prompt order.
var EssentialFields = []EssentialField{
	{Key: "name", Description: "full name"},
	{Key: "dob", Description: "date of birth"},
	{Key: "gender", Description: "gender"},
	{Key: "insurance", Description: "insurance provider"},
	{Key: "policy", Description: "insurance ID"},
}

// PatientFields are the keys that belong to the patient record rather than clinical info.
var PatientFields = []string{"name", "dob", "gender", "address", "phone", "insurance", "policy", "group"}

// PatientFieldAliases maps alternative keys produced by document extraction to patient keys.
var PatientFieldAliases = map[string]string{
	"full_name":          "name",
	"date_of_birth":      "dob",
	"insurance_provider": "insurance",
	"insurance_id":       "policy",
}

// CanonicalPatientKey resolves aliases and reports whether key names a patient field.
func CanonicalPatientKey(key string) (string, bool) {
	k := strings.ToLower(strings.TrimSpace(key))
	if alias, ok := PatientFieldAliases[k]; ok {
		k = alias
	}
	for _, field := range PatientFields {
		if field == k {
			return k, true
		}
	}
	return k, false
}

// ConversationState is the aggregate owned by one dialogue session.
type ConversationState struct {
	PatientInfo             map[string]string `json:"patient_info"`
	ClinicalInfo            map[string]string `json:"clinical_info"`
	Stage                   Stage             `json:"stage"`
	DiagnosesText           []string          `json:"diagnoses_text"`
	ProceduresText          []string          `json:"procedures_text"`
	CurrentDiagnosisGroups  []MatchGroup      `json:"current_diagnosis_groups"`
	CurrentProcedureGroups  []MatchGroup      `json:"current_procedure_groups"`
	ConfirmedDiagnosisCodes []DiagnosisCode   `json:"confirmed_diagnosis_codes"`
	ConfirmedProcedureCodes []ProcedureCode   `json:"confirmed_procedure_codes"`
	History                 []Message         `json:"history"`
	SummaryMode             bool              `json:"summary_mode"`
}

// NewConversationState returns an empty state positioned at the greeting.
func NewConversationState() *ConversationState {
	return &ConversationState{
		PatientInfo:  make(map[string]string),
		ClinicalInfo: make(map[string]string),
		Stage:        StageGreeting,
	}
}

// AddMessage appends a transcript turn.
func (s *ConversationState) AddMessage(role Role, content string) {
	s.History = append(s.History, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
}

// MergePatientInfo copies non-empty values into PatientInfo, resolving key aliases.
// It returns the number of fields written.
func (s *ConversationState) MergePatientInfo(fields map[string]string) int {
	written := 0
	for key, value := range fields {
		if isBlank(value) {
			continue
		}
		k, _ := CanonicalPatientKey(key)
		s.PatientInfo[k] = strings.TrimSpace(value)
		written++
	}
	return written
}

// MergeClaimDetails routes patient keys to PatientInfo and everything else to ClinicalInfo.
func (s *ConversationState) MergeClaimDetails(fields map[string]string) int {
	written := 0
	for key, value := range fields {
		if isBlank(value) {
			continue
		}
		k, isPatient := CanonicalPatientKey(key)
		if isPatient {
			s.PatientInfo[k] = strings.TrimSpace(value)
		} else {
			s.ClinicalInfo[k] = strings.TrimSpace(value)
		}
		written++
	}
	return written
}

// MissingEssentialFields returns the essential fields that are absent or empty, in prompt order.
func (s *ConversationState) MissingEssentialFields() []EssentialField {
	var missing []EssentialField
	for _, field := range EssentialFields {
		if isBlank(s.PatientInfo[field.Key]) {
			missing = append(missing, field)
		}
	}
	return missing
}

// ConfirmDiagnosis appends code unless a code with the same identifier is already confirmed.
func (s *ConversationState) ConfirmDiagnosis(code DiagnosisCode) bool {
	for _, existing := range s.ConfirmedDiagnosisCodes {
		if existing.Code == code.Code {
			return false
		}
	}
	s.ConfirmedDiagnosisCodes = append(s.ConfirmedDiagnosisCodes, code)
	return true
}

// ConfirmProcedure appends code unless a code with the same identifier is already confirmed.
func (s *ConversationState) ConfirmProcedure(code ProcedureCode) bool {
	for _, existing := range s.ConfirmedProcedureCodes {
		if existing.Code == code.Code {
			return false
		}
	}
	s.ConfirmedProcedureCodes = append(s.ConfirmedProcedureCodes, code)
	return true
}

// ResetCase clears everything tied to the current patient while keeping the transcript.
func (s *ConversationState) ResetCase() {
	s.PatientInfo = make(map[string]string)
	s.ClinicalInfo = make(map[string]string)
	s.DiagnosesText = nil
	s.ProceduresText = nil
	s.CurrentDiagnosisGroups = nil
	s.CurrentProcedureGroups = nil
	s.ConfirmedDiagnosisCodes = nil
	s.ConfirmedProcedureCodes = nil
	s.SummaryMode = false
}

// Clone returns a deep copy that shares no mutable memory with s.
func (s *ConversationState) Clone() *ConversationState {
	c := &ConversationState{
		PatientInfo:             maps.Clone(s.PatientInfo),
		ClinicalInfo:            maps.Clone(s.ClinicalInfo),
		Stage:                   s.Stage,
		DiagnosesText:           cloneSlice(s.DiagnosesText),
		ProceduresText:          cloneSlice(s.ProceduresText),
		CurrentDiagnosisGroups:  cloneGroups(s.CurrentDiagnosisGroups),
		CurrentProcedureGroups:  cloneGroups(s.CurrentProcedureGroups),
		ConfirmedDiagnosisCodes: cloneSlice(s.ConfirmedDiagnosisCodes),
		ConfirmedProcedureCodes: cloneSlice(s.ConfirmedProcedureCodes),
		History:                 cloneSlice(s.History),
		SummaryMode:             s.SummaryMode,
	}
	if c.PatientInfo == nil {
		c.PatientInfo = make(map[string]string)
	}
	if c.ClinicalInfo == nil {
		c.ClinicalInfo = make(map[string]string)
	}
	return c
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func cloneGroups(in []MatchGroup) []MatchGroup {
	if in == nil {
		return nil
	}
	out := make([]MatchGroup, len(in))
	for i, g := range in {
		out[i] = MatchGroup{
			SourceText: g.SourceText,
			Matches:    cloneSlice(g.Matches),
		}
	}
	return out
}

func isBlank(value string) bool {
	v := strings.TrimSpace(value)
	return v == "" || strings.EqualFold(v, "null")
}
