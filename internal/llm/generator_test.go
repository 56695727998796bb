package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/medicoder/internal/common"
	"github.com/Veraticus/medicoder/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedClient struct {
	errs    []error
	replies []string
	calls   int
	mu      sync.Mutex
}

func (c *scriptedClient) Complete(_ context.Context, _ []model.Message) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.calls
	c.calls++
	if i < len(c.errs) && c.errs[i] != nil {
		return "", c.errs[i]
	}
	if i < len(c.replies) {
		return c.replies[i], nil
	}
	return "", errors.New("no scripted reply")
}

func fastConfig() Config {
	return Config{MaxRetries: 3, RetryDelay: time.Millisecond, RateLimit: 600}
}

func TestGenerator_RetriesTransientErrors(t *testing.T) {
	client := &scriptedClient{
		errs:    []error{errors.New("connection reset"), nil},
		replies: []string{"", "Essential hypertension"},
	}
	gen := NewGeneratorWithClient(client, fastConfig(), nil)
	defer gen.Close()

	reply, err := gen.Generate(context.Background(), []model.Message{{Role: model.RoleUser, Content: "hi"}})

	require.NoError(t, err)
	assert.Equal(t, "Essential hypertension", reply)
	assert.Equal(t, 2, client.calls)
}

func TestGenerator_StopsOnPermanentError(t *testing.T) {
	client := &scriptedClient{
		errs: []error{apiError("OpenAI", 401, []byte("bad key"))},
	}
	gen := NewGeneratorWithClient(client, fastConfig(), nil)
	defer gen.Close()

	_, err := gen.Generate(context.Background(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "generation failed")
	assert.Contains(t, err.Error(), "status 401")
	assert.Equal(t, 1, client.calls)
}

func TestGenerator_GivesUpAfterMaxRetries(t *testing.T) {
	boom := errors.New("timeout")
	client := &scriptedClient{errs: []error{boom, boom, boom}}
	gen := NewGeneratorWithClient(client, fastConfig(), nil)
	defer gen.Close()

	_, err := gen.Generate(context.Background(), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMaxRetries)
	assert.Equal(t, 3, client.calls)
}

func TestNewGenerator_UnknownProvider(t *testing.T) {
	_, err := NewGenerator(Config{Provider: "bogus", APIKey: "k"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create LLM client")
}
