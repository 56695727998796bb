package storage

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/medicoder/internal/common"
	"github.com/Veraticus/medicoder/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleClaim() *model.ClaimRecord {
	return &model.ClaimRecord{
		PatientName:  "Jane Doe",
		DocumentPath: "claims/claim_Jane_Doe.pdf",
		Diagnoses: []model.DiagnosisCode{
			{Code: "I10", Disease: "Essential (primary) hypertension", Category: "Hypertensive diseases"},
			{Code: "E11.9", Disease: "Type 2 diabetes mellitus without complications", Category: "Diabetes mellitus"},
		},
		Procedures: []model.ProcedureCode{
			{Code: "99213", Procedure: "Office or other outpatient visit"},
		},
		Transcript: []model.Message{
			{Role: model.RoleAssistant, Content: "Hello!"},
			{Role: model.RoleUser, Content: "1"},
		},
	}
}

func TestSaveClaim_AssignsIDAndTimestamp(t *testing.T) {
	store := newTestStorage(t)
	record := sampleClaim()

	require.NoError(t, store.SaveClaim(context.Background(), record))

	assert.NotEmpty(t, record.ID)
	assert.False(t, record.CreatedAt.IsZero())
}

func TestSaveClaim_RoundTrip(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	record := sampleClaim()
	require.NoError(t, store.SaveClaim(ctx, record))

	got, err := store.GetClaim(ctx, record.ID)
	require.NoError(t, err)

	assert.Equal(t, record.ID, got.ID)
	assert.Equal(t, "Jane Doe", got.PatientName)
	assert.Equal(t, record.DocumentPath, got.DocumentPath)
	assert.Equal(t, record.Diagnoses, got.Diagnoses)
	assert.Equal(t, record.Procedures, got.Procedures)
	assert.Equal(t, record.Transcript, got.Transcript)
	assert.WithinDuration(t, record.CreatedAt, got.CreatedAt, time.Second)
}

func TestSaveClaim_WithoutCodes(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	record := &model.ClaimRecord{PatientName: "Unknown", DocumentPath: "claim_Unknown.pdf"}
	require.NoError(t, store.SaveClaim(ctx, record))

	got, err := store.GetClaim(ctx, record.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Diagnoses)
	assert.Empty(t, got.Procedures)
	assert.Empty(t, got.Transcript)
}

func TestSaveClaim_Validation(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		record  *model.ClaimRecord
		wantErr error
		name    string
	}{
		{name: "nil record", record: nil, wantErr: ErrNilParameter},
		{name: "missing document", record: &model.ClaimRecord{PatientName: "A"}, wantErr: ErrInvalidClaim},
		{
			name: "blank diagnosis code",
			record: &model.ClaimRecord{
				DocumentPath: "x.pdf",
				Diagnoses:    []model.DiagnosisCode{{Disease: "no code"}},
			},
			wantErr: ErrInvalidClaim,
		},
		{
			name: "blank procedure code",
			record: &model.ClaimRecord{
				DocumentPath: "x.pdf",
				Procedures:   []model.ProcedureCode{{Procedure: "no code"}},
			},
			wantErr: ErrInvalidClaim,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.SaveClaim(ctx, tt.record)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSaveClaim_DuplicateIDFails(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	first := sampleClaim()
	require.NoError(t, store.SaveClaim(ctx, first))

	second := sampleClaim()
	second.ID = first.ID
	require.Error(t, store.SaveClaim(ctx, second))

	claims, err := store.ListClaims(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, claims, 1)
}

func TestGetClaim_NotFound(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.GetClaim(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetClaim_EmptyID(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.GetClaim(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestListClaims_NewestFirst(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, name := range []string{"First", "Second", "Third"} {
		record := sampleClaim()
		record.PatientName = name
		record.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, store.SaveClaim(ctx, record))
	}

	claims, err := store.ListClaims(ctx, 0)
	require.NoError(t, err)
	require.Len(t, claims, 3)
	assert.Equal(t, "Third", claims[0].PatientName)
	assert.Equal(t, "Second", claims[1].PatientName)
	assert.Equal(t, "First", claims[2].PatientName)
	assert.Len(t, claims[0].Diagnoses, 2)
	assert.Empty(t, claims[0].Transcript)

	limited, err := store.ListClaims(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "Third", limited[0].PatientName)
}
