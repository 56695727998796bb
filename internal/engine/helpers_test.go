package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Veraticus/medicoder/internal/catalog"
	"github.com/Veraticus/medicoder/internal/claim"
	"github.com/Veraticus/medicoder/internal/model"
	"github.com/Veraticus/medicoder/internal/testutil"
	"github.com/stretchr/testify/require"
)

const completePatientJSON = `{"name": "Jane Doe", "dob": "1990-01-01", "gender": "F", "insurance": "Acme", "policy": "123"}`

func testCatalog() *catalog.Catalog {
	return testutil.Catalog()
}

type fakeAssembler struct {
	err    error
	claims []claim.Claim
	mu     sync.Mutex
}

func (a *fakeAssembler) Assemble(_ context.Context, c claim.Claim) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.claims = append(a.claims, c)
	if a.err != nil {
		return "", a.err
	}
	return claim.FileName(c.PatientName()), nil
}

func (a *fakeAssembler) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.claims)
}

func (a *fakeAssembler) last() claim.Claim {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.claims[len(a.claims)-1]
}

type fakeExtractor struct {
	err   error
	text  string
	paths []string
}

func (x *fakeExtractor) Extract(_ context.Context, path string) (string, error) {
	x.paths = append(x.paths, path)
	return x.text, x.err
}

type fakeRecorder struct {
	err     error
	records []*model.ClaimRecord
}

func (r *fakeRecorder) SaveClaim(_ context.Context, record *model.ClaimRecord) error {
	if r.err != nil {
		return r.err
	}
	record.ID = "claim-1"
	r.records = append(r.records, record)
	return nil
}

type harness struct {
	engine    *Engine
	gen       *MockGenerator
	assembler *fakeAssembler
	extractor *fakeExtractor
	recorder  *fakeRecorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		gen:       NewMockGenerator(),
		assembler: &fakeAssembler{},
		extractor: &fakeExtractor{},
		recorder:  &fakeRecorder{},
	}
	h.engine = New(Options{
		Generator: h.gen,
		Catalog:   testCatalog(),
		Extractor: h.extractor,
		Assembler: h.assembler,
		Recorder:  h.recorder,
	})
	h.engine.Start()
	return h
}

func (h *harness) send(t *testing.T, input string) Reply {
	t.Helper()
	reply, err := h.engine.Handle(context.Background(), input)
	require.NoError(t, err)
	return reply
}

// toClinicalNotes walks guided intake with a complete patient record.
func (h *harness) toClinicalNotes(t *testing.T) {
	t.Helper()
	h.send(t, "1")
	h.gen.Queue(completePatientJSON)
	reply := h.send(t, "Jane Doe, born 1990-01-01, female, Acme policy 123")
	require.Equal(t, model.StageCollectingClinicalNotes, reply.Stage)
}

// toConfirming lists one hypertension group and one office-visit group.
func (h *harness) toConfirming(t *testing.T) {
	t.Helper()
	h.toClinicalNotes(t)
	h.gen.Queue("1. Essential hypertension")
	h.gen.Queue("- Office visit")
	reply := h.send(t, "Patient has essential hypertension. Seen for an office visit.")
	require.Equal(t, model.StageConfirmingCodes, reply.Stage)
}

// toReviewing confirms the hypertension diagnosis and office-visit procedure.
func (h *harness) toReviewing(t *testing.T) {
	t.Helper()
	h.toConfirming(t)
	reply := h.send(t, "1a, 1A")
	require.Equal(t, model.StageReviewingClaim, reply.Stage)
}

var errBoom = errors.New("boom")
