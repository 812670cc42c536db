package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"jasypt-go/internal/encryption"
	"jasypt-go/internal/jasypt"
)

// NewTestEncryptor creates a new test encryptor for testing.
func NewTestEncryptor() jasypt.StringEncryptor {
	return encryption.NewTestEncryptor()
}

// NewTestRSAKeyPEM generates a 2048-bit RSA private key and returns it as a
// PKCS#8 PEM block.
func NewTestRSAKeyPEM(t *testing.T) []byte {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating rsa key: %v", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshaling rsa key: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
}
