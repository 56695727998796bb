package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Veraticus/medicoder/internal/common"
	"github.com/Veraticus/medicoder/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIClient(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: Config{
				APIKey: "test-key",
			},
			wantErr: false,
		},
		{
			name: "missing API key",
			config: Config{
				APIKey: "",
			},
			wantErr: true,
		},
		{
			name: "custom model and settings",
			config: Config{
				APIKey:      "test-key",
				Model:       "gpt-4",
				Temperature: 0.5,
				MaxTokens:   200,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := newOpenAIClient(tt.config)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, client)
			}
		})
	}
}

type openAIRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

func openAIReply(content string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"choices": []map[string]any{
			{"index": 0, "message": map[string]string{"role": "assistant", "content": content}},
		},
	}
}

func TestOpenAIClient_Complete(t *testing.T) {
	var got openAIRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openAIReply("  Essential hypertension\n"))
	}))
	defer server.Close()

	client, err := newOpenAIClient(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	reply, err := client.Complete(context.Background(), []model.Message{
		{Role: model.RoleSystem, Content: "You are a coding assistant."},
		{Role: model.RoleUser, Content: "Patient has high blood pressure."},
		{Role: model.RoleSystem, Content: "List the diagnoses."},
	})
	require.NoError(t, err)

	assert.Equal(t, "Essential hypertension", reply)
	assert.Equal(t, "gpt-4.1", got.Model)
	assert.InDelta(t, 0.7, got.Temperature, 1e-9)
	assert.Equal(t, 1000, got.MaxTokens)
	assert.Equal(t, []chatMessage{
		{Role: "system", Content: "You are a coding assistant."},
		{Role: "user", Content: "Patient has high blood pressure."},
		{Role: "system", Content: "List the diagnoses."},
	}, got.Messages)
}

func TestOpenAIClient_Errors(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		statusCode    int
		wantPermanent bool
		wantRateLimit bool
	}{
		{name: "rate limited", statusCode: http.StatusTooManyRequests, body: `{"error":"slow down"}`, wantRateLimit: true},
		{name: "server error", statusCode: http.StatusBadGateway, body: "bad gateway"},
		{name: "bad request", statusCode: http.StatusBadRequest, body: `{"error":"bad"}`, wantPermanent: true},
		{name: "unauthorized", statusCode: http.StatusUnauthorized, body: `{"error":"key"}`, wantPermanent: true},
		{name: "no choices", statusCode: http.StatusOK, body: `{"choices":[]}`},
		{name: "invalid json", statusCode: http.StatusOK, body: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := newOpenAIClient(Config{APIKey: "test-key", BaseURL: server.URL})
			require.NoError(t, err)

			_, err = client.Complete(context.Background(), []model.Message{{Role: model.RoleUser, Content: "hi"}})
			require.Error(t, err)

			var retryable *common.RetryableError
			permanent := errors.As(err, &retryable) && !retryable.Retryable
			assert.Equal(t, tt.wantPermanent, permanent)
			assert.Equal(t, tt.wantRateLimit, errors.Is(err, common.ErrRateLimit))
		})
	}
}

func TestMistralClient_Complete(t *testing.T) {
	var got openAIRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer mistral-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(openAIReply("Hello from Mistral"))
	}))
	defer server.Close()

	client, err := NewClient(Config{Provider: "mistral", APIKey: "mistral-key", BaseURL: server.URL})
	require.NoError(t, err)

	reply, err := client.Complete(context.Background(), []model.Message{{Role: model.RoleUser, Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "Hello from Mistral", reply)
	assert.Equal(t, "mistral-large-latest", got.Model)
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		wantErr  bool
	}{
		{name: "openai", provider: "openai"},
		{name: "anthropic", provider: "Anthropic"},
		{name: "mistral", provider: "mistral"},
		{name: "default is mistral", provider: ""},
		{name: "unsupported", provider: "claudecode", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(Config{Provider: tt.provider, APIKey: "key"})
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unsupported LLM provider")
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}
