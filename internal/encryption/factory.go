package encryption

import (
	"context"
	"fmt"

	"jasypt-go/internal/jasypt"
)

// NewEncryptorFromConfig creates a StringEncryptor for the resolved config
// variant. loader is only consulted for asymmetric configs with a key location.
func NewEncryptorFromConfig(ctx context.Context, cfg jasypt.ResolvedConfig, loader jasypt.ResourceLoader, logger jasypt.Logger) (jasypt.StringEncryptor, error) {
	if logger == nil {
		logger = jasypt.NewNopLogger()
	}

	switch c := cfg.(type) {
	case jasypt.PasswordBasedConfig:
		if c.ProviderName != "" || c.ProviderClassName != "" {
			logger.Warn("security provider settings have no effect", "provider_name", c.ProviderName, "provider_class_name", c.ProviderClassName)
		}
		enc, err := NewPooledPBEEncryptor(c)
		if err != nil {
			return nil, fmt.Errorf("creating password-based encryptor: %w", err)
		}
		logger.Debug("created password-based encryptor", "algorithm", c.Algorithm, "pool_size", enc.Size())
		return enc, nil
	case jasypt.AsymmetricConfig:
		enc, err := NewAsymmetricEncryptor(ctx, c, loader)
		if err != nil {
			return nil, fmt.Errorf("creating asymmetric encryptor: %w", err)
		}
		logger.Debug("created asymmetric encryptor", "format", string(c.PrivateKeyFormat))
		return enc, nil
	default:
		return nil, fmt.Errorf("unknown encryptor config: %T", cfg)
	}
}
