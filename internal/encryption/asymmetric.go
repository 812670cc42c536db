package encryption

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"strings"

	"jasypt-go/internal/jasypt"
)

// AsymmetricEncryptor encrypts with the public half of an RSA private key and
// decrypts with the private key, using PKCS#1 v1.5 padding and base64 text.
type AsymmetricEncryptor struct {
	key *rsa.PrivateKey
}

var _ jasypt.StringEncryptor = (*AsymmetricEncryptor)(nil)

// NewAsymmetricEncryptor loads the private key described by cfg. An inline
// key string takes precedence over a key location; locations are read
// through loader.
func NewAsymmetricEncryptor(ctx context.Context, cfg jasypt.AsymmetricConfig, loader jasypt.ResourceLoader) (*AsymmetricEncryptor, error) {
	var der []byte
	var err error
	switch {
	case cfg.PrivateKey != "":
		der, err = decodeKeyString(cfg.PrivateKey, cfg.PrivateKeyFormat)
	case cfg.PrivateKeyLocation != "":
		if loader == nil {
			return nil, fmt.Errorf("no resource loader for private key location %s", cfg.PrivateKeyLocation)
		}
		var raw []byte
		raw, err = loader.Load(ctx, cfg.PrivateKeyLocation)
		if err != nil {
			return nil, fmt.Errorf("loading private key: %w", err)
		}
		der, err = decodeKeyResource(raw, cfg.PrivateKeyFormat)
	default:
		return nil, fmt.Errorf("either a private key or a private key location is required")
	}
	if err != nil {
		return nil, err
	}

	key, err := parseRSAPrivateKey(der)
	if err != nil {
		return nil, err
	}
	return &AsymmetricEncryptor{key: key}, nil
}

// Encrypt encrypts message with the public key.
func (e *AsymmetricEncryptor) Encrypt(message string) (string, error) {
	ct, err := rsa.EncryptPKCS1v15(rand.Reader, &e.key.PublicKey, []byte(message))
	if err != nil {
		return "", fmt.Errorf("rsa encrypt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ct), nil
}

// Decrypt decrypts base64 ciphertext with the private key.
func (e *AsymmetricEncryptor) Decrypt(encrypted string) (string, error) {
	ct, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encrypted))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	plain, err := rsa.DecryptPKCS1v15(nil, e.key, ct)
	if err != nil {
		return "", ErrDecryption
	}
	return string(plain), nil
}

// decodeKeyString handles inline keys: base64 DER or PEM text.
func decodeKeyString(s string, format jasypt.KeyFormat) ([]byte, error) {
	if format == jasypt.KeyFormatPEM {
		return decodePEM([]byte(s))
	}
	der, err := base64.StdEncoding.DecodeString(stripWhitespace(s))
	if err != nil {
		return nil, fmt.Errorf("private key string is not base64 DER: %w", err)
	}
	return der, nil
}

// decodeKeyResource handles loaded keys: raw DER bytes or PEM text.
func decodeKeyResource(raw []byte, format jasypt.KeyFormat) ([]byte, error) {
	if format == jasypt.KeyFormatPEM {
		return decodePEM(raw)
	}
	return raw, nil
}

func decodePEM(data []byte) ([]byte, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in private key")
	}
	return block.Bytes, nil
}

// parseRSAPrivateKey accepts PKCS#8 and, as a fallback, PKCS#1 encodings.
func parseRSAPrivateKey(der []byte) (*rsa.PrivateKey, error) {
	if k, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		rsaKey, ok := k.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("private key is %T, want RSA", k)
		}
		return rsaKey, nil
	}
	k, err := x509.ParsePKCS1PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	return k, nil
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
}
