package jwtinfra

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeKeys(t *testing.T) (string, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	require.NoError(t, os.WriteFile(privPath, privPEM, 0o600))
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0o600))
	return privPath, pubPath
}

func TestProvider_SignVerify(t *testing.T) {
	priv, pub := writeKeys(t)
	p, err := NewProvider(priv, pub, time.Hour)
	require.NoError(t, err)

	tok, err := p.Sign("u1", "alice@corp.test", "Alice", "s1")
	require.NoError(t, err)

	claims, err := p.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "alice@corp.test", claims.Email)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, "s1", claims.SessionID)
}

func TestProvider_Expired(t *testing.T) {
	priv, pub := writeKeys(t)
	p, err := NewProvider(priv, pub, -time.Minute)
	require.NoError(t, err)

	tok, err := p.Sign("u1", "a@b.c", "A", "s1")
	require.NoError(t, err)
	_, err = p.Verify(tok)
	assert.Error(t, err)
}

func TestProvider_TamperedToken(t *testing.T) {
	priv, pub := writeKeys(t)
	p, err := NewProvider(priv, pub, time.Hour)
	require.NoError(t, err)

	tok, err := p.Sign("u1", "a@b.c", "A", "s1")
	require.NoError(t, err)
	_, err = p.Verify(tok + "x")
	assert.Error(t, err)
}

func TestNewProvider_MissingKey(t *testing.T) {
	_, err := NewProvider(filepath.Join(t.TempDir(), "nope.pem"), "", time.Hour)
	assert.ErrorContains(t, err, "read private key")
}
