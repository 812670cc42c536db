package jasypt

import (
	"fmt"
	"strings"
)

// DefaultPrefix is the property prefix used when none is configured.
const DefaultPrefix = "jasypt.encryptor"

// Property key suffixes, appended to the configured prefix.
const (
	KeyPassword               = ".password"
	KeyAlgorithm              = ".algorithm"
	KeyKeyObtentionIterations = ".key-obtention-iterations"
	KeyPoolSize               = ".pool-size"
	KeyProviderName           = ".provider-name"
	KeyProviderClassName      = ".provider-class-name"
	KeySaltGeneratorClassName = ".salt-generator-classname"
	KeyIVGeneratorClassName   = ".iv-generator-classname"
	KeyStringOutputType       = ".string-output-type"
	KeyPrivateKeyString       = ".private-key-string"
	KeyPrivateKeyLocation     = ".private-key-location"
	KeyPrivateKeyFormat       = ".private-key-format"
	KeyPropertyPrefix         = ".property.prefix"
	KeyPropertySuffix         = ".property.suffix"
)

// Defaults applied to unset optional fields.
const (
	DefaultAlgorithm              = "PBEWITHHMACSHA512ANDAES_256"
	DefaultKeyObtentionIterations = "1000"
	DefaultPoolSize               = "1"
	DefaultSaltGeneratorClassName = "org.jasypt.salt.RandomSaltGenerator"
	DefaultIVGeneratorClassName   = "org.jasypt.iv.RandomIvGenerator"
	DefaultStringOutputType       = "base64"
	DefaultPrivateKeyFormat       = KeyFormatDER
	DefaultPropertyPrefix         = "ENC("
	DefaultPropertySuffix         = ")"
)

// ResolvedConfig is the result of resolution: either a PasswordBasedConfig or
// an AsymmetricConfig. The interface is sealed; no other implementations exist.
type ResolvedConfig interface {
	// Mode names the selected encryption mode.
	Mode() Mode
	resolvedConfig()
}

// Mode identifies which variant of ResolvedConfig was produced.
type Mode string

const (
	ModePasswordBased Mode = "password-based"
	ModeAsymmetric    Mode = "asymmetric"
)

// PasswordBasedConfig parameterizes a password-based (PBE) string encryptor.
// Numeric fields are kept as the strings supplied by the property source;
// parsing them belongs to the encryptor that consumes this config.
// Empty ProviderName and ProviderClassName mean unset.
type PasswordBasedConfig struct {
	Password               string
	Algorithm              string
	KeyObtentionIterations string
	PoolSize               string
	ProviderName           string
	ProviderClassName      string
	SaltGeneratorClassName string
	IVGeneratorClassName   string
	StringOutputType       string
}

func (PasswordBasedConfig) Mode() Mode      { return ModePasswordBased }
func (PasswordBasedConfig) resolvedConfig() {}

// AsymmetricConfig parameterizes an RSA private-key string encryptor.
// At least one of PrivateKey and PrivateKeyLocation is set.
type AsymmetricConfig struct {
	PrivateKey         string
	PrivateKeyLocation string
	PrivateKeyFormat   KeyFormat
}

func (AsymmetricConfig) Mode() Mode      { return ModeAsymmetric }
func (AsymmetricConfig) resolvedConfig() {}

var (
	_ ResolvedConfig = PasswordBasedConfig{}
	_ ResolvedConfig = AsymmetricConfig{}
)

// KeyFormat is the encoding of private key material.
type KeyFormat string

const (
	KeyFormatDER KeyFormat = "DER"
	KeyFormatPEM KeyFormat = "PEM"
)

// ParseKeyFormat parses a key format name case-insensitively.
func ParseKeyFormat(s string) (KeyFormat, error) {
	switch f := KeyFormat(strings.ToUpper(strings.TrimSpace(s))); f {
	case KeyFormatDER, KeyFormatPEM:
		return f, nil
	default:
		return "", fmt.Errorf("unknown key format %q (want DER or PEM)", s)
	}
}
