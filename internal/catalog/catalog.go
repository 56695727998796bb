// Package catalog loads the static ICD-10 and CPT-4 reference datasets.
package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Veraticus/medicoder/internal/model"
)

// Catalog holds both code datasets. It is read-only after construction and
// safe to share between sessions.
type Catalog struct {
	diagnoses  []model.DiagnosisCode
	procedures []model.ProcedureCode
}

// New builds a catalog from in-memory records.
func New(diagnoses []model.DiagnosisCode, procedures []model.ProcedureCode) *Catalog {
	return &Catalog{
		diagnoses:  diagnoses,
		procedures: procedures,
	}
}

// Load reads both catalogs from JSON files. A dataset that cannot be read is
// replaced by an empty one; the failure is logged, never returned.
func Load(icd10Path, cpt4Path string, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}

	diagnoses, err := LoadDiagnoses(icd10Path)
	if err != nil {
		logger.Warn("ICD-10 catalog unavailable, continuing with an empty catalog",
			"path", icd10Path,
			"error", err)
		diagnoses = nil
	}

	procedures, err := LoadProcedures(cpt4Path)
	if err != nil {
		logger.Warn("CPT-4 catalog unavailable, continuing with an empty catalog",
			"path", cpt4Path,
			"error", err)
		procedures = nil
	}

	logger.Debug("code catalogs loaded",
		"diagnoses", len(diagnoses),
		"procedures", len(procedures))

	return New(diagnoses, procedures)
}

// LoadDiagnoses reads a JSON array of {code, disease, category} records.
func LoadDiagnoses(path string) ([]model.DiagnosisCode, error) {
	var out []model.DiagnosisCode
	if err := readJSON(path, &out); err != nil {
		return nil, fmt.Errorf("failed to load ICD-10 data: %w", err)
	}
	return out, nil
}

// LoadProcedures reads a JSON array of {code, procedure} records.
func LoadProcedures(path string) ([]model.ProcedureCode, error) {
	var out []model.ProcedureCode
	if err := readJSON(path, &out); err != nil {
		return nil, fmt.Errorf("failed to load CPT-4 data: %w", err)
	}
	return out, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path) //nolint:gosec // catalog paths come from trusted config
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Diagnoses returns the ICD-10 records in file order.
func (c *Catalog) Diagnoses() []model.DiagnosisCode {
	return c.diagnoses
}

// Procedures returns the CPT-4 records in file order.
func (c *Catalog) Procedures() []model.ProcedureCode {
	return c.procedures
}

// LookupKind tells which dataset satisfied a lookup.
type LookupKind string

// Lookup kinds.
const (
	KindDiagnosis LookupKind = "ICD-10"
	KindProcedure LookupKind = "CPT-4"
)

// LookupResult is the outcome of an exact code lookup.
type LookupResult struct {
	Diagnosis *model.DiagnosisCode
	Procedure *model.ProcedureCode
	Kind      LookupKind
	Code      string
}

// Found reports whether either dataset contained the code.
func (r LookupResult) Found() bool {
	return r.Diagnosis != nil || r.Procedure != nil
}

// Describe renders the result the way the assistant reports it.
func (r LookupResult) Describe() string {
	switch {
	case r.Diagnosis != nil:
		return fmt.Sprintf("ICD-10 %s: %s\n  Category: %s", r.Code, r.Diagnosis.Disease, r.Diagnosis.Category)
	case r.Procedure != nil:
		return fmt.Sprintf("CPT-4 %s: %s", r.Code, r.Procedure.Procedure)
	default:
		return fmt.Sprintf("Code %s not found in ICD-10 or CPT-4 database.", r.Code)
	}
}

// Lookup finds an exact, case-insensitive code match. The diagnosis catalog is
// searched first and the first matching record wins.
func (c *Catalog) Lookup(code string) LookupResult {
	wanted := strings.ToUpper(strings.TrimSpace(code))
	result := LookupResult{Code: wanted}

	for i := range c.diagnoses {
		if strings.ToUpper(c.diagnoses[i].Code) == wanted {
			entry := c.diagnoses[i]
			result.Diagnosis = &entry
			result.Kind = KindDiagnosis
			return result
		}
	}
	for i := range c.procedures {
		if strings.ToUpper(c.procedures[i].Code) == wanted {
			entry := c.procedures[i]
			result.Procedure = &entry
			result.Kind = KindProcedure
			return result
		}
	}
	return result
}

// LookupAll splits a comma-separated list and looks up every non-empty code.
func (c *Catalog) LookupAll(input string) []LookupResult {
	var results []LookupResult
	for _, part := range strings.Split(input, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		results = append(results, c.Lookup(part))
	}
	return results
}
