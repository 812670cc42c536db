package jasypt

import "context"

// PropertySource is a read-only view over configuration properties keyed by
// dotted names such as "jasypt.encryptor.password".
type PropertySource interface {
	// Lookup returns the value for key and whether the key is present.
	Lookup(key string) (string, bool)
}

// ResourceLoader reads key material named by a location such as
// "/etc/keys/private.pem", "classpath:private.der" or "s3://bucket/key.pem".
type ResourceLoader interface {
	Load(ctx context.Context, location string) ([]byte, error)
}
