package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/medicoder/internal/catalog"
	"github.com/Veraticus/medicoder/internal/model"
)

// Diagnoses returns the fixture ICD-10 records.
func Diagnoses() []model.DiagnosisCode {
	return []model.DiagnosisCode{
		{Code: "I10", Disease: "Essential (primary) hypertension", Category: "Hypertensive diseases"},
		{Code: "I11.9", Disease: "Hypertensive heart disease without heart failure", Category: "Hypertensive diseases"},
		{Code: "E11.9", Disease: "Type 2 diabetes mellitus without complications", Category: "Diabetes mellitus"},
		{Code: "J45.909", Disease: "Unspecified asthma, uncomplicated", Category: "Asthma"},
	}
}

// Procedures returns the fixture CPT-4 records.
func Procedures() []model.ProcedureCode {
	return []model.ProcedureCode{
		{Code: "99213", Procedure: "Office or other outpatient visit for the evaluation and management of an established patient"},
		{Code: "93000", Procedure: "Electrocardiogram, routine ECG with at least 12 leads; with interpretation and report"},
		{Code: "93005", Procedure: "Electrocardiogram, routine ECG with at least 12 leads; tracing only"},
	}
}

// Catalog returns a catalog holding the fixture records.
func Catalog() *catalog.Catalog {
	return catalog.New(Diagnoses(), Procedures())
}

// WriteCatalogFiles writes the fixture records as ICD10.json and CPT4.json in
// dir and returns their paths.
func WriteCatalogFiles(t *testing.T, dir string) (icd10, cpt4 string) {
	t.Helper()

	icd10 = filepath.Join(dir, "ICD10.json")
	cpt4 = filepath.Join(dir, "CPT4.json")
	writeJSON(t, icd10, Diagnoses())
	writeJSON(t, cpt4, Procedures())
	return icd10, cpt4
}

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("failed to encode %s: %v", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", filepath.Base(path), err)
	}
}
