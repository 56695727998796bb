// Package claim renders confirmed codes and patient details as a
// CMS-1500 style claim document.
package claim

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/Veraticus/medicoder/internal/model"
)

// Claim is the resolved content of one claim document.
type Claim struct {
	Patient    map[string]string
	Clinical   map[string]string
	Diagnoses  []model.DiagnosisCode
	Procedures []model.ProcedureCode
}

// FromState copies the claim-relevant fields out of a conversation.
func FromState(s *model.ConversationState) Claim {
	c := s.Clone()
	return Claim{
		Patient:    c.PatientInfo,
		Clinical:   c.ClinicalInfo,
		Diagnoses:  c.ConfirmedDiagnosisCodes,
		Procedures: c.ConfirmedProcedureCodes,
	}
}

// PatientName returns the patient's name or "Unknown".
func (c Claim) PatientName() string {
	if name := strings.TrimSpace(c.Patient["name"]); name != "" {
		return name
	}
	return "Unknown"
}

// FileName derives the document name from the patient's name, keeping only
// letters, digits, dashes and underscores. Spaces become underscores.
func FileName(patientName string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(patientName) {
		switch {
		case r == ' ':
			b.WriteRune('_')
		case r == '-' || r == '_' || r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		name = "Unknown"
	}
	return "claim_" + name + ".pdf"
}

// Preview renders the claim as chat text.
func (c Claim) Preview() string {
	var b strings.Builder

	b.WriteString("PATIENT INFORMATION:\n")
	for _, key := range orderedPatientKeys(c.Patient) {
		if value := strings.TrimSpace(c.Patient[key]); value != "" {
			fmt.Fprintf(&b, "- %s: %s\n", capitalize(key), value)
		}
	}

	if len(c.Clinical) > 0 {
		b.WriteString("\nCLINICAL INFORMATION:\n")
		for _, key := range sortedKeys(c.Clinical) {
			fmt.Fprintf(&b, "- %s: %s\n", clinicalLabel(key), c.Clinical[key])
		}
	}

	if len(c.Diagnoses) > 0 {
		b.WriteString("\nDIAGNOSIS CODES (ICD-10):\n")
		for _, d := range c.Diagnoses {
			fmt.Fprintf(&b, "- %s - %s\n", d.Code, d.Disease)
		}
	}

	if len(c.Procedures) > 0 {
		b.WriteString("\nPROCEDURE CODES (CPT-4):\n")
		for _, p := range c.Procedures {
			fmt.Fprintf(&b, "- %s - %s\n", p.Code, p.Procedure)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// orderedPatientKeys lists the known patient fields first, then any extras alphabetically.
func orderedPatientKeys(fields map[string]string) []string {
	keys := make([]string, 0, len(fields))
	known := make(map[string]bool, len(model.PatientFields))
	for _, key := range model.PatientFields {
		known[key] = true
		if _, ok := fields[key]; ok {
			keys = append(keys, key)
		}
	}
	var extras []string
	for key := range fields {
		if !known[key] {
			extras = append(extras, key)
		}
	}
	sort.Strings(extras)
	return append(keys, extras...)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// clinicalLabel turns "place_of_service" into "Place of service".
func clinicalLabel(key string) string {
	return capitalize(strings.ReplaceAll(key, "_", " "))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	runes := []rune(lower)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
