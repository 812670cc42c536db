package encryption

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"jasypt-go/internal/jasypt"
)

// testHeader is prepended to messages by TestEncryptor to make encrypted
// output clearly different from plaintext while remaining deterministic and
// reversible.
var testHeader = []byte("JSYPTEST")

// TestEncryptor is a simple, deterministic encryptor for testing.
// It base64-encodes a fixed 8-byte header followed by the message, and
// checks and strips the header on decryption.
type TestEncryptor struct{}

var _ jasypt.StringEncryptor = (*TestEncryptor)(nil)

// NewTestEncryptor creates a new TestEncryptor.
func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

func (e *TestEncryptor) Encrypt(message string) (string, error) {
	return base64.StdEncoding.EncodeToString(append(append([]byte(nil), testHeader...), message...)), nil
}

func (e *TestEncryptor) Decrypt(encrypted string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("decoding test ciphertext: %w", err)
	}
	if !bytes.HasPrefix(data, testHeader) {
		return "", fmt.Errorf("invalid test encryption header")
	}
	return string(data[len(testHeader):]), nil
}
