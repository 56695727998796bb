// Package testutil provides shared fixtures for tests: a small code catalog
// and an isolated claims ledger.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/medicoder/internal/model"
	"github.com/Veraticus/medicoder/internal/storage"
)

// SetupTestDB creates a migrated in-memory claims ledger seeded with records.
// It is closed when the test ends.
//
// Example:
//
//	db := testutil.SetupTestDB(t, &model.ClaimRecord{PatientName: "Jane Doe", DocumentPath: "claim_Jane_Doe.pdf"})
func SetupTestDB(t *testing.T, records ...*model.ClaimRecord) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	for _, record := range records {
		if err := store.SaveClaim(ctx, record); err != nil {
			t.Fatalf("failed to seed claim for %q: %v", record.PatientName, err)
		}
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}
