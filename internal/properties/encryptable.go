package properties

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"jasypt-go/internal/jasypt"
)

// Detector recognizes encrypted property values such as "ENC(abc==)".
type Detector struct {
	Prefix string
	Suffix string
}

// NewDetector returns a Detector using the marker properties under prefix,
// "<prefix>.property.prefix" and "<prefix>.property.suffix", falling back to
// "ENC(" and ")".
func NewDetector(src jasypt.PropertySource, prefix string, logger jasypt.Logger) Detector {
	if logger == nil {
		logger = jasypt.NewNopLogger()
	}
	get := func(key, def string) string {
		v, defaulted := jasypt.GetWithDefault(src, key, def)
		if defaulted {
			logger.Debug("encryptable property marker not configured, using default", "key", key, "default", def)
		}
		return v
	}
	return Detector{
		Prefix: get(prefix+jasypt.KeyPropertyPrefix, jasypt.DefaultPropertyPrefix),
		Suffix: get(prefix+jasypt.KeyPropertySuffix, jasypt.DefaultPropertySuffix),
	}
}

// IsEncrypted reports whether value is wrapped in the detector's markers.
func (d Detector) IsEncrypted(value string) bool {
	v := strings.TrimSpace(value)
	return len(v) >= len(d.Prefix)+len(d.Suffix) &&
		strings.HasPrefix(v, d.Prefix) && strings.HasSuffix(v, d.Suffix)
}

// Unwrap strips the markers from an encrypted value.
func (d Detector) Unwrap(value string) string {
	v := strings.TrimSpace(value)
	return v[len(d.Prefix) : len(v)-len(d.Suffix)]
}

// Wrap adds the markers around an encrypted value.
func (d Detector) Wrap(value string) string {
	return d.Prefix + value + d.Suffix
}

// Decrypter resolves encrypted property values with a StringEncryptor.
type Decrypter struct {
	detector  Detector
	encryptor jasypt.StringEncryptor
}

// NewDecrypter creates a Decrypter.
func NewDecrypter(detector Detector, encryptor jasypt.StringEncryptor) *Decrypter {
	return &Decrypter{detector: detector, encryptor: encryptor}
}

// Resolve returns value decrypted if it is wrapped, or unchanged otherwise.
func (d *Decrypter) Resolve(value string) (string, error) {
	if !d.detector.IsEncrypted(value) {
		return value, nil
	}
	plain, err := d.encryptor.Decrypt(d.detector.Unwrap(value))
	if err != nil {
		return "", err
	}
	return plain, nil
}

// DecryptAll returns every property of src with encrypted values decrypted.
// At most limit decryptions run at once; limit < 1 means one.
func (d *Decrypter) DecryptAll(ctx context.Context, src Enumerable, limit int) (Map, error) {
	if limit < 1 {
		limit = 1
	}

	out := Map{}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, key := range src.Keys() {
		value, _ := src.Lookup(key)
		if !d.detector.IsEncrypted(value) {
			mu.Lock()
			out[key] = value
			mu.Unlock()
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			plain, err := d.Resolve(value)
			if err != nil {
				return fmt.Errorf("decrypting property %s: %w", key, err)
			}
			mu.Lock()
			out[key] = plain
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Decrypted is a PropertySource view over another source that decrypts
// wrapped values on lookup. Through Lookup, decryption failures surface as
// absent keys after being reported to the logger.
type Decrypted struct {
	Source    jasypt.PropertySource
	Decrypter *Decrypter
	Logger    jasypt.Logger
}

func (s Decrypted) Lookup(key string) (string, bool) {
	plain, ok, err := s.LookupErr(key)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Error("failed to decrypt property", "key", key, "error", err)
		}
		return "", false
	}
	return plain, ok
}

// LookupErr is Lookup with the decryption error returned to the caller.
func (s Decrypted) LookupErr(key string) (string, bool, error) {
	v, ok := s.Source.Lookup(key)
	if !ok {
		return "", false, nil
	}
	plain, err := s.Decrypter.Resolve(v)
	if err != nil {
		return "", false, err
	}
	return plain, true, nil
}
