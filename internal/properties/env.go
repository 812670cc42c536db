package properties

import (
	"os"
	"strings"

	"jasypt-go/internal/jasypt"
)

// Env exposes the process environment using relaxed binding: the property
// "jasypt.encryptor.private-key-string" is read from
// JASYPT_ENCRYPTOR_PRIVATEKEYSTRING, falling back to
// JASYPT_ENCRYPTOR_PRIVATE_KEY_STRING.
type Env struct {
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

var _ jasypt.PropertySource = Env{}

func (e Env) Lookup(key string) (string, bool) {
	lookupEnv := e.LookupEnv
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	for _, name := range EnvNames(key) {
		if v, ok := lookupEnv(name); ok {
			return v, true
		}
	}
	return "", false
}

// EnvNames returns the environment variable names checked for key, in order.
func EnvNames(key string) []string {
	upper := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	canonical := strings.ReplaceAll(upper, "-", "")
	legacy := strings.ReplaceAll(upper, "-", "_")
	if canonical == legacy {
		return []string{canonical}
	}
	return []string{canonical, legacy}
}
