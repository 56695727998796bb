package engine

import (
	"context"

	"github.com/Veraticus/medicoder/internal/claim"
	"github.com/Veraticus/medicoder/internal/model"
)

// Generator produces the assistant's reply to a transcript.
type Generator interface {
	Generate(ctx context.Context, messages []model.Message) (string, error)
}

// Extractor turns a PDF or image on disk into plain text.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Assembler renders a claim document and returns where it was written.
type Assembler interface {
	Assemble(ctx context.Context, c claim.Claim) (string, error)
}

// ClaimRecorder keeps a record of every finalized claim.
type ClaimRecorder interface {
	SaveClaim(ctx context.Context, record *model.ClaimRecord) error
}
