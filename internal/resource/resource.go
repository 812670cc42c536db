// Package resource loads private-key material for asymmetric encryptors.
//
// Locations follow the Spring resource conventions:
//
//	/abs/path/key.pem         plain filesystem path
//	file:/abs/path/key.pem    filesystem path with explicit scheme
//	classpath:keys/key.der    resolved against the configured classpath dirs
//	s3://bucket/path/key.pem  object in S3
//
// Any location ending in ".age" is decrypted with age after loading.
package resource

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a location does not name an existing resource.
var ErrNotFound = errors.New("resource not found")

const (
	schemeFile      = "file:"
	schemeClasspath = "classpath:"
	schemeS3        = "s3://"
)

// splitScheme returns the scheme prefix of location ("" for plain paths) and
// the remainder.
func splitScheme(location string) (scheme, rest string) {
	for _, s := range []string{schemeS3, schemeClasspath, schemeFile} {
		if strings.HasPrefix(location, s) {
			return s, strings.TrimPrefix(location, s)
		}
	}
	return "", location
}
