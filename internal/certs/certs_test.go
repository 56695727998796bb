package certs

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaf(t *testing.T, cert tls.Certificate) *x509.Certificate {
	t.Helper()
	require.Len(t, cert.Certificate, 1)
	parsed, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)
	return parsed
}

func TestStore_Certificate(t *testing.T) {
	tests := []struct {
		setup    func(t *testing.T, dir string)
		validate func(t *testing.T, dir string, cert *x509.Certificate)
		name     string
		hosts    []string
	}{
		{
			name:  "creates new certificate when none exists",
			setup: func(_ *testing.T, _ string) {},
			validate: func(t *testing.T, dir string, cert *x509.Certificate) {
				t.Helper()
				assert.Equal(t, []string{"Medicoder"}, cert.Subject.Organization)
				assert.Contains(t, cert.DNSNames, "localhost")
				assert.True(t, cert.IPAddresses[0].Equal(net.ParseIP("127.0.0.1")))
				assert.True(t, cert.NotAfter.After(time.Now().Add(Validity-time.Hour)))
				require.NoError(t, cert.VerifyHostname("localhost"))

				info, err := os.Stat(filepath.Join(dir, "server.key"))
				require.NoError(t, err)
				assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
			},
		},
		{
			name: "regenerates unreadable certificate",
			setup: func(t *testing.T, dir string) {
				t.Helper()
				require.NoError(t, os.MkdirAll(dir, 0700))
				require.NoError(t, os.WriteFile(filepath.Join(dir, "server.crt"), []byte("garbage"), 0600))
				require.NoError(t, os.WriteFile(filepath.Join(dir, "server.key"), []byte("garbage"), 0600))
			},
			validate: func(t *testing.T, _ string, cert *x509.Certificate) {
				t.Helper()
				require.NoError(t, cert.VerifyHostname("localhost"))
			},
		},
		{
			name:  "splits custom hosts into names and addresses",
			hosts: []string{"coder.local", "10.0.0.5"},
			setup: func(_ *testing.T, _ string) {},
			validate: func(t *testing.T, _ string, cert *x509.Certificate) {
				t.Helper()
				assert.Equal(t, []string{"coder.local"}, cert.DNSNames)
				require.Len(t, cert.IPAddresses, 1)
				assert.True(t, cert.IPAddresses[0].Equal(net.ParseIP("10.0.0.5")))
				assert.Equal(t, "coder.local", cert.Subject.CommonName)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "certs")
			tt.setup(t, dir)

			cert, err := NewStore(dir, tt.hosts...).Certificate()
			require.NoError(t, err)
			tt.validate(t, dir, leaf(t, cert))
		})
	}
}

func TestStore_ReusesValidCertificate(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir).Certificate()
	require.NoError(t, err)
	second, err := NewStore(dir).Certificate()
	require.NoError(t, err)

	assert.Equal(t, leaf(t, first).SerialNumber, leaf(t, second).SerialNumber)
}

func TestStore_RegeneratesExpiringCertificate(t *testing.T) {
	dir := t.TempDir()

	old := NewStore(dir)
	old.now = func() time.Time { return time.Now().Add(-Validity + time.Hour) }
	first, err := old.Certificate()
	require.NoError(t, err)

	second, err := NewStore(dir).Certificate()
	require.NoError(t, err)

	assert.NotEqual(t, leaf(t, first).SerialNumber, leaf(t, second).SerialNumber)
	assert.True(t, leaf(t, second).NotAfter.After(time.Now().Add(RenewBefore)))
}

func TestStore_RegeneratesWhenHostsChange(t *testing.T) {
	dir := t.TempDir()

	_, err := NewStore(dir, "localhost").Certificate()
	require.NoError(t, err)

	cert, err := NewStore(dir, "localhost", "coder.local").Certificate()
	require.NoError(t, err)
	assert.NoError(t, leaf(t, cert).VerifyHostname("coder.local"))
}

func TestStore_DirectoryCreationFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	_, err := NewStore(filepath.Join(blocker, "certs")).Certificate()
	require.Error(t, err)
}

func TestStore_Exists(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  bool
	}{
		{name: "no files", want: false},
		{name: "both files", files: []string{"server.crt", "server.key"}, want: true},
		{name: "certificate only", files: []string{"server.crt"}, want: false},
		{name: "key only", files: []string{"server.key"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("x"), 0600))
			}

			got, err := NewStore(dir).Exists()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_VerifyEmpty(t *testing.T) {
	err := NewStore(t.TempDir()).verify(tls.Certificate{})
	assert.ErrorIs(t, err, errNoCertificate)
}

func TestStore_TLSConfig(t *testing.T) {
	store := NewStore(t.TempDir())

	cfg, err := store.TLSConfig()
	require.NoError(t, err)
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
	require.Len(t, cfg.Certificates, 1)
	assert.FileExists(t, store.CertFile())
}
