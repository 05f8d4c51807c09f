package main

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureTLSCertCreatesFiles(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "certs", "browser.crt")
	keyPath := filepath.Join(dir, "keys", "browser.key")

	require.NoError(t, ensureTLSCert(certPath, keyPath))

	_, err := os.Stat(certPath)
	require.NoError(t, err)
	info, err := os.Stat(keyPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = tls.LoadX509KeyPair(certPath, keyPath)
	assert.NoError(t, err)
}

func TestEnsureTLSCertKeepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "browser.crt")
	keyPath := filepath.Join(dir, "browser.key")

	require.NoError(t, ensureTLSCert(certPath, keyPath))
	before, err := os.ReadFile(certPath)
	require.NoError(t, err)

	require.NoError(t, ensureTLSCert(certPath, keyPath))
	after, err := os.ReadFile(certPath)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after), "existing certificate is kept")
}

func TestGenerateSelfSignedHosts(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "c.crt")
	keyPath := filepath.Join(dir, "c.key")

	require.NoError(t, generateSelfSigned(certPath, keyPath, []string{"browser.local"}))
	raw, err := os.ReadFile(certPath)
	require.NoError(t, err)
	block, _ := pem.Decode(raw)
	require.NotNil(t, block, "expected PEM block")
	cert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)

	assert.Equal(t, certCommonName, cert.Subject.CommonName)
	assert.NoError(t, cert.VerifyHostname("browser.local"))
}
