package tlsutil

import (
	"crypto/tls"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSelfSignedCertAndLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, GenerateSelfSignedCert([]string{"localhost", "127.0.0.1"}, dir))

	for _, name := range []string{"ca.pem", "ca-key.pem", "server.pem", "server-key.pem"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	cfg, err := ServerTLSConfig(ServerConfig{
		CertFile: filepath.Join(dir, "server.pem"),
		KeyFile:  filepath.Join(dir, "server-key.pem"),
	})
	require.NoError(t, err)
	assert.Len(t, cfg.Certificates, 1)
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
	assert.Equal(t, tls.NoClientCert, cfg.ClientAuth)
}

func TestServerTLSConfigWithClientCA(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, GenerateSelfSignedCert([]string{"localhost"}, dir))

	cfg, err := ServerTLSConfig(ServerConfig{
		CertFile:     filepath.Join(dir, "server.pem"),
		KeyFile:      filepath.Join(dir, "server-key.pem"),
		ClientCAFile: filepath.Join(dir, "ca.pem"),
	})
	require.NoError(t, err)
	assert.NotNil(t, cfg.ClientCAs)
	assert.Equal(t, tls.RequireAndVerifyClientCert, cfg.ClientAuth)
}

func TestServerCredentialsMissingFiles(t *testing.T) {
	_, err := ServerCredentials(ServerConfig{CertFile: "/nonexistent.pem", KeyFile: "/nonexistent-key.pem"})
	assert.Error(t, err)
}

func TestClientCredentials(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, GenerateSelfSignedCert([]string{"localhost"}, dir))

	creds, err := ClientCredentials(filepath.Join(dir, "ca.pem"))
	require.NoError(t, err)
	assert.Equal(t, "tls", creds.Info().SecurityProtocol)

	_, err = ClientCredentials(filepath.Join(dir, "server-key.pem"))
	assert.Error(t, err)
}
