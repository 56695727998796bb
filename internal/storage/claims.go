package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/medicoder/internal/catalog"
	"github.com/Veraticus/medicoder/internal/common"
	"github.com/Veraticus/medicoder/internal/model"
	"github.com/google/uuid"
)

// SaveClaim records a finalized claim and its codes. A missing ID or
// timestamp is filled in on the record.
func (s *SQLiteStorage) SaveClaim(ctx context.Context, record *model.ClaimRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateClaim(record); err != nil {
		return err
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	transcript, err := json.Marshal(record.Transcript)
	if err != nil {
		return fmt.Errorf("failed to encode transcript: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO claims (id, patient_name, document_path, transcript, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, record.ID, record.PatientName, record.DocumentPath, string(transcript), record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save claim: %w", err)
	}

	for i, d := range record.Diagnoses {
		if err := insertCode(ctx, tx, record.ID, catalog.KindDiagnosis, i, d.Code, d.Disease, d.Category); err != nil {
			return err
		}
	}
	for i, p := range record.Procedures {
		if err := insertCode(ctx, tx, record.ID, catalog.KindProcedure, i, p.Code, p.Procedure, ""); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit claim: %w", err)
	}
	return nil
}

func insertCode(ctx context.Context, q queryable, claimID string, kind catalog.LookupKind, position int, code, description, category string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO claim_codes (claim_id, kind, position, code, description, category)
		VALUES (?, ?, ?, ?, ?, ?)
	`, claimID, string(kind), position, code, description, category)
	if err != nil {
		return fmt.Errorf("failed to save %s code %s: %w", kind, code, err)
	}
	return nil
}

// GetClaim loads one claim including its transcript.
func (s *SQLiteStorage) GetClaim(ctx context.Context, id string) (*model.ClaimRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var (
		record     model.ClaimRecord
		transcript sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, patient_name, document_path, transcript, created_at
		FROM claims
		WHERE id = ?
	`, id).Scan(&record.ID, &record.PatientName, &record.DocumentPath, &transcript, &record.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("claim %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}

	if transcript.Valid && transcript.String != "" {
		if err := json.Unmarshal([]byte(transcript.String), &record.Transcript); err != nil {
			return nil, fmt.Errorf("%w: claim %s transcript: %v", common.ErrDatabaseCorrupted, id, err)
		}
	}

	if err := s.loadCodes(ctx, s.db, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListClaims returns the most recent claims first, without transcripts.
// A limit of zero or less returns every claim.
func (s *SQLiteStorage) ListClaims(ctx context.Context, limit int) ([]model.ClaimRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, patient_name, document_path, created_at
		FROM claims
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}

	var records []model.ClaimRecord
	for rows.Next() {
		var record model.ClaimRecord
		if err := rows.Scan(&record.ID, &record.PatientName, &record.DocumentPath, &record.CreatedAt); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("failed to iterate claims: %w", err)
	}
	// Close before loading codes: the pool holds a single connection.
	_ = rows.Close()

	for i := range records {
		if err := s.loadCodes(ctx, s.db, &records[i]); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (s *SQLiteStorage) loadCodes(ctx context.Context, q queryable, record *model.ClaimRecord) error {
	rows, err := q.QueryContext(ctx, `
		SELECT kind, code, description, COALESCE(category, '')
		FROM claim_codes
		WHERE claim_id = ?
		ORDER BY kind, position
	`, record.ID)
	if err != nil {
		return fmt.Errorf("failed to load claim codes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var kind, code, description, category string
		if err := rows.Scan(&kind, &code, &description, &category); err != nil {
			return fmt.Errorf("failed to scan claim code: %w", err)
		}
		switch catalog.LookupKind(kind) {
		case catalog.KindDiagnosis:
			record.Diagnoses = append(record.Diagnoses, model.DiagnosisCode{Code: code, Disease: description, Category: category})
		case catalog.KindProcedure:
			record.Procedures = append(record.Procedures, model.ProcedureCode{Code: code, Procedure: description})
		}
	}
	return rows.Err()
}
