package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/Veraticus/medicoder/internal/common"
	"github.com/Veraticus/medicoder/internal/llm"
	"github.com/spf13/viper"
)

// providerKeys maps each provider onto its viper key and fallback environment variable.
var providerKeys = map[string]struct {
	viperKey string
	envVar   string
}{
	"openai":    {viperKey: "llm.openai_api_key", envVar: "OPENAI_API_KEY"},
	"anthropic": {viperKey: "llm.anthropic_api_key", envVar: "ANTHROPIC_API_KEY"},
	"mistral":   {viperKey: "llm.mistral_api_key", envVar: "MISTRAL_API_KEY"},
}

// LoadLLMConfig loads text-generation settings. API keys follow this precedence:
// 1. Viper configuration (from config file or MEDICODER_ env vars)
// 2. The provider's conventional environment variable
func LoadLLMConfig(v *viper.Viper) (llm.Config, error) {
	provider := strings.ToLower(v.GetString(KeyLLMProvider))
	if provider == "" {
		provider = "mistral"
	}

	keys, ok := providerKeys[provider]
	if !ok {
		return llm.Config{}, fmt.Errorf("%w: unsupported LLM provider: %s", common.ErrInvalidConfig, provider)
	}

	apiKey := v.GetString(keys.viperKey)
	if apiKey == "" {
		apiKey = os.Getenv(keys.envVar)
	}
	if apiKey == "" {
		return llm.Config{}, fmt.Errorf("%w: %s API key not found in config or %s environment variable",
			common.ErrMissingConfig, provider, keys.envVar)
	}

	return llm.Config{
		Provider:    provider,
		APIKey:      apiKey,
		Model:       v.GetString(KeyLLMModel),
		BaseURL:     v.GetString(KeyLLMBaseURL),
		Temperature: v.GetFloat64(KeyLLMTemperature),
		MaxTokens:   v.GetInt(KeyLLMMaxTokens),
		MaxRetries:  v.GetInt(KeyLLMMaxRetries),
		RetryDelay:  v.GetDuration(KeyLLMRetryDelay),
		RateLimit:   v.GetInt(KeyLLMRateLimit),
	}, nil
}
