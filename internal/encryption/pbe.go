package encryption

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/text/unicode/norm"

	"jasypt-go/internal/jasypt"
)

// ErrDecryption is returned for any decryption failure. Like jasypt, it does
// not say whether the password, the padding or the encoding was wrong.
var ErrDecryption = errors.New("decryption failed: wrong key or corrupt ciphertext")

// saltSize and ivSize equal the AES block size, as jasypt uses for PBES2.
const (
	saltSize = aes.BlockSize
	ivSize   = aes.BlockSize
)

// PBEEncryptor is a jasypt-compatible password-based string encryptor.
// Ciphertexts are laid out as salt || iv || AES-CBC(PKCS#7(message)), with
// the salt omitted for ZeroSaltGenerator, and then encoded as text.
type PBEEncryptor struct {
	password   []byte
	algorithm  pbeAlgorithm
	iterations int
	salt       byteGenerator
	iv         byteGenerator
	codec      codec

	// The derived key for the most recent salt; with a zero salt every
	// operation reuses it.
	mu        sync.Mutex
	cachedFor []byte
	cachedKey []byte
}

var _ jasypt.StringEncryptor = (*PBEEncryptor)(nil)

// NewPBEEncryptor validates cfg and builds an encryptor from it.
func NewPBEEncryptor(cfg jasypt.PasswordBasedConfig) (*PBEEncryptor, error) {
	return newPBEEncryptor(cfg, nil)
}

// newPBEEncryptor lets tests supply the random source for salts and IVs.
func newPBEEncryptor(cfg jasypt.PasswordBasedConfig, random io.Reader) (*PBEEncryptor, error) {
	if cfg.Password == "" {
		return nil, fmt.Errorf("password must not be empty")
	}
	alg, err := parseAlgorithm(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	iterations, err := parsePositive("key obtention iterations", cfg.KeyObtentionIterations)
	if err != nil {
		return nil, err
	}
	salt, err := newSaltGenerator(cfg.SaltGeneratorClassName, random)
	if err != nil {
		return nil, err
	}
	iv, err := newIVGenerator(cfg.IVGeneratorClassName, random)
	if err != nil {
		return nil, err
	}
	c, err := newCodec(cfg.StringOutputType)
	if err != nil {
		return nil, err
	}

	return &PBEEncryptor{
		password:   []byte(norm.NFC.String(cfg.Password)),
		algorithm:  alg,
		iterations: iterations,
		salt:       salt,
		iv:         iv,
		codec:      c,
	}, nil
}

// Encrypt encrypts message with a fresh salt and IV.
func (e *PBEEncryptor) Encrypt(message string) (string, error) {
	salt, err := e.salt.generate(saltSize)
	if err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	iv, err := e.iv.generate(ivSize)
	if err != nil {
		return "", fmt.Errorf("generating iv: %w", err)
	}

	block, err := aes.NewCipher(e.deriveKey(salt))
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}
	plain := pkcs7Pad([]byte(message), aes.BlockSize)
	out := make([]byte, 0, saltSize+ivSize+len(plain))
	if e.salt.embedded {
		out = append(out, salt...)
	}
	if e.iv.embedded {
		out = append(out, iv...)
	}
	ct := make([]byte, len(plain))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, plain)
	out = append(out, ct...)

	return e.codec.encode(out), nil
}

// Decrypt reverses Encrypt.
func (e *PBEEncryptor) Decrypt(encrypted string) (string, error) {
	data, err := e.codec.decode(encrypted)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}

	salt, data, err := e.take(e.salt, data, saltSize)
	if err != nil {
		return "", err
	}
	iv, data, err := e.take(e.iv, data, ivSize)
	if err != nil {
		return "", err
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", ErrDecryption
	}

	block, err := aes.NewCipher(e.deriveKey(salt))
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}
	plain := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, data)

	plain, ok := pkcs7Unpad(plain, aes.BlockSize)
	if !ok {
		return "", ErrDecryption
	}
	return string(plain), nil
}

// take splits an embedded salt or IV off the front of data, or regenerates it
// when the generator does not embed.
func (e *PBEEncryptor) take(g byteGenerator, data []byte, n int) ([]byte, []byte, error) {
	if !g.embedded {
		b, err := g.generate(n)
		return b, data, err
	}
	if len(data) < n {
		return nil, nil, ErrDecryption
	}
	return data[:n], data[n:], nil
}

func (e *PBEEncryptor) deriveKey(salt []byte) []byte {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cachedKey != nil && bytes.Equal(e.cachedFor, salt) {
		return e.cachedKey
	}
	key := pbkdf2.Key(e.password, salt, e.iterations, e.algorithm.keyLen, e.algorithm.hash)
	e.cachedFor = append(e.cachedFor[:0], salt...)
	e.cachedKey = key
	return key
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	return append(append([]byte(nil), b...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, blockSize int) ([]byte, bool) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, false
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize {
		return nil, false
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, false
		}
	}
	return b[:len(b)-n], true
}

func parsePositive(field, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", field, s)
	}
	if n < 1 {
		return 0, fmt.Errorf("%s must be positive, got %d", field, n)
	}
	return n, nil
}
