package llm

import (
	"context"
	"net/http"
	"time"

	"github.com/Veraticus/medicoder/internal/model"
)

// Client defines the interface for LLM providers.
type Client interface {
	// Complete sends the ordered transcript and returns the model's reply text.
	Complete(ctx context.Context, messages []model.Message) (string, error)
}

// Config holds provider settings.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	MaxRetries  int
	RetryDelay  time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
}

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 1000
)

func (c Config) temperature() float64 {
	if c.Temperature == 0 {
		return defaultTemperature
	}
	return c.Temperature
}

func (c Config) maxTokens() int {
	if c.MaxTokens == 0 {
		return defaultMaxTokens
	}
	return c.MaxTokens
}

func (c Config) endpoint(fallback string) string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return fallback
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
