package config

import (
	"crypto/tls"
	"fmt"

	"github.com/Veraticus/medicoder/internal/certs"
	"github.com/spf13/viper"
)

// LoadTLSConfig returns the HTTPS settings for the API server, or nil when
// server.tls is off. The self-signed certificate is created on first use.
func LoadTLSConfig(v *viper.Viper) (*tls.Config, error) {
	if !v.GetBool(KeyServerTLS) {
		return nil, nil
	}

	store := certs.NewStore(Path(v, KeyServerCertDir), v.GetStringSlice(KeyServerTLSHosts)...)
	cfg, err := store.TLSConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
	}
	return cfg, nil
}
