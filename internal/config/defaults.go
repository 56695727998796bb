package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyLogLevel  = "logging.level"
	KeyLogFormat = "logging.format"

	KeyLLMProvider    = "llm.provider"
	KeyLLMModel       = "llm.model"
	KeyLLMBaseURL     = "llm.base_url"
	KeyLLMTemperature = "llm.temperature"
	KeyLLMMaxTokens   = "llm.max_tokens"
	KeyLLMMaxRetries  = "llm.max_retries"
	KeyLLMRetryDelay  = "llm.retry_delay"
	KeyLLMRateLimit   = "llm.rate_limit"

	KeyICD10Path = "catalog.icd10_path"
	KeyCPT4Path  = "catalog.cpt4_path"

	KeyTesseractPath = "ocr.tesseract_path"
	KeyPopplerPath   = "ocr.poppler_path"

	KeyClaimsOutputDir = "claims.output_dir"
	KeyDatabasePath    = "database.path"
	KeyServerAddr      = "server.addr"
	KeyServerTLS       = "server.tls"
	KeyServerCertDir   = "server.cert_dir"
	KeyServerTLSHosts  = "server.tls_hosts"
	KeyServerTTL       = "server.session_ttl"
)

// EnvPrefix prefixes every environment override, so llm.provider is read
// from MEDICODER_LLM_PROVIDER.
const EnvPrefix = "MEDICODER"

// BindEnv makes every key overridable from the environment.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")

	v.SetDefault(KeyLLMProvider, "mistral")
	v.SetDefault(KeyLLMTemperature, 0.7)
	v.SetDefault(KeyLLMMaxTokens, 1000)
	v.SetDefault(KeyLLMMaxRetries, 3)
	v.SetDefault(KeyLLMRetryDelay, time.Second)
	v.SetDefault(KeyLLMRateLimit, 60)

	v.SetDefault(KeyICD10Path, "ICD10.json")
	v.SetDefault(KeyCPT4Path, "CPT4.json")

	v.SetDefault(KeyTesseractPath, "tesseract")
	v.SetDefault(KeyPopplerPath, "")

	v.SetDefault(KeyClaimsOutputDir, ".")
	v.SetDefault(KeyDatabasePath, "$HOME/.local/share/medicoder/medicoder.db")
	v.SetDefault(KeyServerAddr, ":8080")
	v.SetDefault(KeyServerTLS, false)
	v.SetDefault(KeyServerCertDir, "$HOME/.config/medicoder/certs")
	v.SetDefault(KeyServerTLSHosts, []string{"localhost", "127.0.0.1", "::1"})
	v.SetDefault(KeyServerTTL, 30*time.Minute)
}

// Path returns the expanded path stored under key.
func Path(v *viper.Viper, key string) string {
	return ExpandPath(v.GetString(key))
}
