package resource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"

	"jasypt-go/internal/jasypt"
)

// AgeSuffix marks locations whose content is age-encrypted.
const AgeSuffix = ".age"

// ErrNoAgeIdentity is returned when an age-encrypted location is loaded
// without a configured identity file.
var ErrNoAgeIdentity = errors.New("age identity file not configured")

// AgeLoader decrypts key material stored with age. Locations ending in
// ".age" are read through the wrapped loader and decrypted with the X25519
// identities in identityFile; every other location passes through unchanged.
type AgeLoader struct {
	next         jasypt.ResourceLoader
	identityFile string
}

var _ jasypt.ResourceLoader = (*AgeLoader)(nil)

// NewAgeLoader wraps next. identityFile may be empty when no encrypted
// locations are used.
func NewAgeLoader(next jasypt.ResourceLoader, identityFile string) *AgeLoader {
	return &AgeLoader{next: next, identityFile: identityFile}
}

// Load reads location and decrypts it if it is age-encrypted.
func (l *AgeLoader) Load(ctx context.Context, location string) ([]byte, error) {
	data, err := l.next.Load(ctx, location)
	if err != nil || !strings.HasSuffix(location, AgeSuffix) {
		return data, err
	}

	identities, err := l.identities()
	if err != nil {
		return nil, err
	}
	r, err := age.Decrypt(bytes.NewReader(data), identities...)
	if err != nil {
		return nil, fmt.Errorf("decrypting %s: %w", location, err)
	}
	plain, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted %s: %w", location, err)
	}
	return plain, nil
}

func (l *AgeLoader) identities() ([]age.Identity, error) {
	if l.identityFile == "" {
		return nil, ErrNoAgeIdentity
	}
	f, err := os.Open(l.identityFile)
	if err != nil {
		return nil, fmt.Errorf("opening age identity file: %w", err)
	}
	defer f.Close()

	identities, err := age.ParseIdentities(f)
	if err != nil {
		return nil, fmt.Errorf("parsing age identity file: %w", err)
	}
	return identities, nil
}

// GenerateAgeIdentity writes a new X25519 identity to path, which must not
// exist yet, and returns its recipient.
func GenerateAgeIdentity(path string) (string, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return "", fmt.Errorf("generating key pair: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("creating identity directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", fmt.Errorf("creating identity file: %w", err)
	}
	defer f.Close()

	if _, err := io.WriteString(f, identity.String()+"\n"); err != nil {
		return "", fmt.Errorf("writing identity file: %w", err)
	}
	return identity.Recipient().String(), nil
}

// SealAge encrypts data to the recipients of the identities in
// identityFile, in the format AgeLoader reads.
func SealAge(data []byte, identityFile string) ([]byte, error) {
	l := &AgeLoader{identityFile: identityFile}
	identities, err := l.identities()
	if err != nil {
		return nil, err
	}
	var recipients []age.Recipient
	for _, id := range identities {
		if x, ok := id.(*age.X25519Identity); ok {
			recipients = append(recipients, x.Recipient())
		}
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("no X25519 identities in %s", identityFile)
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipients...)
	if err != nil {
		return nil, fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("encrypting data: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encryption: %w", err)
	}
	return buf.Bytes(), nil
}
