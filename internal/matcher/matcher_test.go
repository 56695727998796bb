package matcher

import (
	"testing"

	"github.com/Veraticus/medicoder/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDiagnoses = []model.DiagnosisCode{
	{Code: "E11.9", Disease: "Type 2 diabetes mellitus without complications", Category: "Diabetes mellitus"},
	{Code: "I10", Disease: "Essential hypertension", Category: "Hypertensive diseases"},
	{Code: "I11.9", Disease: "Hypertensive heart disease without heart failure", Category: "Hypertensive diseases"},
	{Code: "J06.9", Disease: "Acute upper respiratory infection, unspecified", Category: "Acute upper respiratory infections"},
	{Code: "I10", Disease: "Essential hypertension", Category: "Duplicate row"},
}

var testProcedures = []model.ProcedureCode{
	{Code: "99213", Procedure: "Office or other outpatient visit, established patient"},
	{Code: "93000", Procedure: "Electrocardiogram with interpretation and report"},
	{Code: "93005", Procedure: "Electrocardiogram tracing only"},
}

func TestDiagnoses(t *testing.T) {
	queries := []string{
		"Essential hypertension",
		"hypertension",
		"type 2 diabetes",
		"upper respiratory infection",
		"heart disease",
		"something completely different",
	}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			results := Diagnoses(q, testDiagnoses, DefaultThreshold)
			for i, r := range results {
				assert.Greater(t, r.Score, DefaultThreshold)
				if i > 0 {
					assert.GreaterOrEqual(t, results[i-1].Score, r.Score, "results must be sorted by score")
				}
			}
		})
	}
}

func TestDiagnoses_ExactLabelRanksFirst(t *testing.T) {
	results := Diagnoses("Essential hypertension", testDiagnoses, DefaultThreshold)

	require.NotEmpty(t, results)
	assert.Equal(t, "I10", results[0].Code)
	assert.Equal(t, "Essential hypertension", results[0].Label)
	assert.Equal(t, "Hypertensive diseases", results[0].Category)
	assert.Equal(t, 100, results[0].Score)
}

func TestDiagnoses_TiesKeepCatalogOrder(t *testing.T) {
	results := Diagnoses("Essential hypertension", testDiagnoses, DefaultThreshold)

	require.GreaterOrEqual(t, len(results), 2)
	assert.Equal(t, 100, results[1].Score)
	assert.Equal(t, "Duplicate row", results[1].Category, "duplicate catalog rows are kept in file order")
}

func TestDiagnoses_CategoryScoreCounts(t *testing.T) {
	results := Diagnoses("hypertensive diseases", testDiagnoses, DefaultThreshold)

	require.NotEmpty(t, results)
	codes := make([]string, 0, len(results))
	for _, r := range results {
		codes = append(codes, r.Code)
		assert.Equal(t, 100, r.Score)
	}
	assert.Equal(t, []string{"I10", "I11.9"}, codes)
}

func TestDiagnoses_EmptyInputs(t *testing.T) {
	assert.Empty(t, Diagnoses("", testDiagnoses, DefaultThreshold))
	assert.Empty(t, Diagnoses("   ", testDiagnoses, DefaultThreshold))
	assert.Empty(t, Diagnoses("hypertension", nil, DefaultThreshold))
	assert.Empty(t, Procedures("", testProcedures, DefaultThreshold))
	assert.Empty(t, Procedures("electrocardiogram", []model.ProcedureCode{}, DefaultThreshold))
}

func TestDiagnoses_ThresholdIsExclusive(t *testing.T) {
	assert.Empty(t, Diagnoses("Essential hypertension", testDiagnoses, 100))
}

func TestProcedures(t *testing.T) {
	results := Procedures("electrocardiogram", testProcedures, DefaultThreshold)

	require.Len(t, results, 2)
	assert.Equal(t, "93000", results[0].Code)
	assert.Equal(t, "93005", results[1].Code)
	for _, r := range results {
		assert.Equal(t, 100, r.Score)
		assert.Empty(t, r.Category)
	}
}
