package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/medicoder/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidClaim = errors.New("invalid claim")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateClaim checks the fields the ledger requires.
func validateClaim(record *model.ClaimRecord) error {
	if record == nil {
		return fmt.Errorf("%w: claim", ErrNilParameter)
	}
	if strings.TrimSpace(record.DocumentPath) == "" {
		return fmt.Errorf("%w: document path is required", ErrInvalidClaim)
	}
	for i, d := range record.Diagnoses {
		if strings.TrimSpace(d.Code) == "" {
			return fmt.Errorf("%w: diagnosis at index %d has no code", ErrInvalidClaim, i)
		}
	}
	for i, p := range record.Procedures {
		if strings.TrimSpace(p.Code) == "" {
			return fmt.Errorf("%w: procedure at index %d has no code", ErrInvalidClaim, i)
		}
	}
	return nil
}
