package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/medicoder/internal/common"
	"github.com/Veraticus/medicoder/internal/model"
)

// Generator produces assistant replies from a transcript. It rate limits and
// retries calls to the underlying provider.
type Generator struct {
	client      Client
	logger      *slog.Logger
	rateLimiter *rateLimiter
	retryOpts   common.RetryOptions
}

// NewGenerator creates a generator for the configured provider.
func NewGenerator(cfg Config, logger *slog.Logger) (*Generator, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return NewGeneratorWithClient(client, cfg, logger), nil
}

// NewGeneratorWithClient wraps an existing client with rate limiting and retries.
func NewGeneratorWithClient(client Client, cfg Config, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}

	retryOpts := common.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	return &Generator{
		client:      client,
		logger:      logger,
		retryOpts:   retryOpts,
		rateLimiter: newRateLimiter(cfg.RateLimit),
	}
}

// Generate returns the provider's reply to messages.
func (g *Generator) Generate(ctx context.Context, messages []model.Message) (string, error) {
	if err := g.rateLimiter.wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit error: %w", err)
	}

	var reply string
	err := common.WithRetry(ctx, func() error {
		text, err := g.client.Complete(ctx, messages)
		if err != nil {
			g.logger.Warn("generation attempt failed",
				"error", err,
				"messages", len(messages))
			return err
		}
		reply = text
		return nil
	}, g.retryOpts)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}

	g.logger.Debug("generated reply",
		"messages", len(messages),
		"reply_length", len(reply))

	return reply, nil
}

// Close releases the rate limiter.
func (g *Generator) Close() {
	g.rateLimiter.Close()
}
