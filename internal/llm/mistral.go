package llm

import "fmt"

const mistralEndpoint = "https://api.mistral.ai/v1/chat/completions"

// newMistralClient creates a Mistral client. Mistral's chat API accepts the
// OpenAI request and response shapes.
func newMistralClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("mistral API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "mistral-large-latest"
	}

	return &openAIClient{
		name:        "Mistral",
		endpoint:    cfg.endpoint(mistralEndpoint),
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: cfg.temperature(),
		maxTokens:   cfg.maxTokens(),
		httpClient:  newHTTPClient(),
	}, nil
}
