package engine

import (
	"context"
	"testing"

	"github.com/Veraticus/medicoder/internal/claim"
	"github.com/Veraticus/medicoder/internal/model"
	"github.com/Veraticus/medicoder/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalize_RecordsIntoLedger(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestDB(t)

	h := &harness{gen: NewMockGenerator(), assembler: &fakeAssembler{}}
	h.engine = New(Options{
		Generator: h.gen,
		Catalog:   testCatalog(),
		Assembler: h.assembler,
		Recorder:  store,
	})
	h.engine.Start()
	h.toReviewing(t)
	confirmed := h.engine.State()

	reply := h.send(t, "finalize")
	require.Equal(t, model.StagePostClaimMenu, reply.Stage)

	records, err := store.ListClaims(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Jane Doe", records[0].PatientName)
	assert.Equal(t, claim.FileName("Jane Doe"), records[0].DocumentPath)
	assert.Equal(t, confirmed.ConfirmedDiagnosisCodes, records[0].Diagnoses)
	assert.Equal(t, confirmed.ConfirmedProcedureCodes, records[0].Procedures)

	full, err := store.GetClaim(ctx, records[0].ID)
	require.NoError(t, err)
	require.NotEmpty(t, full.Transcript)
	assert.Equal(t, model.RoleSystem, full.Transcript[0].Role)
	assert.Equal(t, "finalize", full.Transcript[len(full.Transcript)-1].Content)
}
