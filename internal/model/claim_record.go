package model

import "time"

// ClaimRecord is a finalized claim as kept in the claims ledger.
type ClaimRecord struct {
	CreatedAt    time.Time       `json:"created_at"`
	ID           string          `json:"id"`
	PatientName  string          `json:"patient_name"`
	DocumentPath string          `json:"document_path"`
	Diagnoses    []DiagnosisCode `json:"diagnoses"`
	Procedures   []ProcedureCode `json:"procedures"`
	Transcript   []Message       `json:"transcript,omitempty"`
}
