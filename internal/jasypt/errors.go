package jasypt

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is matching against *ConfigError.
var (
	ErrMissingCredentials = errors.New("missing encryptor credentials")
	ErrMissingRequired    = errors.New("missing required encryptor property")
	ErrInvalidValue       = errors.New("invalid encryptor property value")
)

// ErrorKind classifies a ConfigError.
type ErrorKind int

const (
	// MissingCredentials: neither the password nor a private key is configured.
	MissingCredentials ErrorKind = iota + 1
	// MissingRequired: a field required by the selected mode is absent.
	MissingRequired
	// InvalidValue: a value could not be converted to its field type.
	InvalidValue
)

// ConfigError is returned by Resolve. Keys lists the configuration keys the
// operator has to supply or fix.
type ConfigError struct {
	Kind  ErrorKind
	Keys  []string
	Cause error
}

func (e *ConfigError) Error() string {
	switch e.Kind {
	case MissingCredentials:
		// Keys: password, private-key-string, private-key-location.
		return fmt.Sprintf("either '%s' or one of ['%s'] must be provided for Password-based or Asymmetric encryption",
			e.Keys[0], strings.Join(e.Keys[1:], "', '"))
	case MissingRequired:
		return fmt.Sprintf("required encryption configuration property missing: %s", strings.Join(e.Keys, ", "))
	case InvalidValue:
		return fmt.Sprintf("invalid value for encryption configuration property %s: %v", strings.Join(e.Keys, ", "), e.Cause)
	default:
		return "invalid encryption configuration"
	}
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// Is reports whether target is the sentinel for this error's kind.
func (e *ConfigError) Is(target error) bool {
	switch e.Kind {
	case MissingCredentials:
		return target == ErrMissingCredentials
	case MissingRequired:
		return target == ErrMissingRequired
	case InvalidValue:
		return target == ErrInvalidValue
	}
	return false
}
