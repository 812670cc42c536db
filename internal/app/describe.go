package app

import (
	"fmt"

	"jasypt-go/internal/jasypt"
)

// maskedValue replaces secrets in descriptions.
const maskedValue = "********"

// Field is one line of an EncryptorDescription. Unset is true when the
// property has no value and no default.
type Field struct {
	Key   string
	Value string
	Unset bool
}

// EncryptorDescription is a printable view of a resolved encryptor config.
// Secrets are masked.
type EncryptorDescription struct {
	Mode   jasypt.Mode
	Fields []Field
}

// DescribeEncryptor resolves the encryptor config and describes it with the
// password and private key string masked.
func (a *JasyptApp) DescribeEncryptor() (*EncryptorDescription, error) {
	resolved, err := a.ResolvedConfig()
	if err != nil {
		return nil, err
	}
	return describe(resolved, a.prefix)
}

func describe(resolved jasypt.ResolvedConfig, prefix string) (*EncryptorDescription, error) {
	field := func(suffix, value string) Field {
		return Field{Key: prefix + suffix, Value: value, Unset: value == ""}
	}
	secret := func(suffix, value string) Field {
		f := field(suffix, value)
		if !f.Unset {
			f.Value = maskedValue
		}
		return f
	}

	switch c := resolved.(type) {
	case jasypt.PasswordBasedConfig:
		return &EncryptorDescription{
			Mode: c.Mode(),
			Fields: []Field{
				secret(jasypt.KeyPassword, c.Password),
				field(jasypt.KeyAlgorithm, c.Algorithm),
				field(jasypt.KeyKeyObtentionIterations, c.KeyObtentionIterations),
				field(jasypt.KeyPoolSize, c.PoolSize),
				field(jasypt.KeyProviderName, c.ProviderName),
				field(jasypt.KeyProviderClassName, c.ProviderClassName),
				field(jasypt.KeySaltGeneratorClassName, c.SaltGeneratorClassName),
				field(jasypt.KeyIVGeneratorClassName, c.IVGeneratorClassName),
				field(jasypt.KeyStringOutputType, c.StringOutputType),
			},
		}, nil
	case jasypt.AsymmetricConfig:
		return &EncryptorDescription{
			Mode: c.Mode(),
			Fields: []Field{
				secret(jasypt.KeyPrivateKeyString, c.PrivateKey),
				field(jasypt.KeyPrivateKeyLocation, c.PrivateKeyLocation),
				field(jasypt.KeyPrivateKeyFormat, string(c.PrivateKeyFormat)),
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown encryptor config: %T", resolved)
	}
}
