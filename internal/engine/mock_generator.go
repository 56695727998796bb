package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/Veraticus/medicoder/internal/model"
)

// ErrNoScriptedResponse is returned by MockGenerator once its script runs out.
var ErrNoScriptedResponse = errors.New("no scripted response")

// MockGenerator is a scripted Generator for tests. Replies are returned in
// the order they were queued and every request is recorded.
type MockGenerator struct {
	script []mockResponse
	calls  [][]model.Message
	mu     sync.Mutex
}

type mockResponse struct {
	err  error
	text string
}

// NewMockGenerator creates a generator that answers with replies in order.
func NewMockGenerator(replies ...string) *MockGenerator {
	m := &MockGenerator{}
	for _, r := range replies {
		m.Queue(r)
	}
	return m
}

// Queue appends a reply to the script.
func (m *MockGenerator) Queue(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockResponse{text: text})
}

// QueueError appends a failure to the script.
func (m *MockGenerator) QueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockResponse{err: err})
}

// Generate pops the next scripted reply.
func (m *MockGenerator) Generate(ctx context.Context, messages []model.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recorded := make([]model.Message, len(messages))
	copy(recorded, messages)
	m.calls = append(m.calls, recorded)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(m.script) == 0 {
		return "", ErrNoScriptedResponse
	}

	next := m.script[0]
	m.script = m.script[1:]
	return next.text, next.err
}

// Calls returns a copy of every request received.
func (m *MockGenerator) Calls() [][]model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([][]model.Message, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CallCount returns the number of Generate calls.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Remaining returns how many scripted replies have not been consumed.
func (m *MockGenerator) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.script)
}
