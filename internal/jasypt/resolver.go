package jasypt

// Resolver turns a PropertySource into a ResolvedConfig. It holds no state
// between calls apart from its logger.
type Resolver struct {
	logger Logger
}

// NewResolver creates a Resolver that reports defaulted fields to logger.
// A nil logger discards the events.
func NewResolver(logger Logger) *Resolver {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Resolver{logger: logger}
}

// Resolve resolves src with a resolver that does not log.
func Resolve(src PropertySource, prefix string) (ResolvedConfig, error) {
	return NewResolver(nil).Resolve(src, prefix)
}

// Resolve selects the encryption mode for the properties under prefix, fills
// in defaults and validates required fields.
//
// Password-based mode wins when "<prefix>.password" is set. Otherwise either
// "<prefix>.private-key-string" or "<prefix>.private-key-location" selects
// asymmetric mode. With none of the three set resolution fails with
// ErrMissingCredentials.
func (r *Resolver) Resolve(src PropertySource, prefix string) (ResolvedConfig, error) {
	switch {
	case isSet(src, prefix+KeyPassword):
		return r.resolvePasswordBased(src, prefix)
	case isSet(src, prefix+KeyPrivateKeyString) || isSet(src, prefix+KeyPrivateKeyLocation):
		return r.resolveAsymmetric(src, prefix)
	default:
		return nil, &ConfigError{
			Kind: MissingCredentials,
			Keys: []string{prefix + KeyPassword, prefix + KeyPrivateKeyString, prefix + KeyPrivateKeyLocation},
		}
	}
}

func (r *Resolver) resolvePasswordBased(src PropertySource, prefix string) (ResolvedConfig, error) {
	password, err := getRequired(src, prefix+KeyPassword)
	if err != nil {
		return nil, err
	}
	return PasswordBasedConfig{
		Password:               password,
		Algorithm:              r.get(src, prefix+KeyAlgorithm, DefaultAlgorithm),
		KeyObtentionIterations: r.get(src, prefix+KeyKeyObtentionIterations, DefaultKeyObtentionIterations),
		PoolSize:               r.get(src, prefix+KeyPoolSize, DefaultPoolSize),
		ProviderName:           r.get(src, prefix+KeyProviderName, ""),
		ProviderClassName:      r.get(src, prefix+KeyProviderClassName, ""),
		SaltGeneratorClassName: r.get(src, prefix+KeySaltGeneratorClassName, DefaultSaltGeneratorClassName),
		IVGeneratorClassName:   r.get(src, prefix+KeyIVGeneratorClassName, DefaultIVGeneratorClassName),
		StringOutputType:       r.get(src, prefix+KeyStringOutputType, DefaultStringOutputType),
	}, nil
}

func (r *Resolver) resolveAsymmetric(src PropertySource, prefix string) (ResolvedConfig, error) {
	formatKey := prefix + KeyPrivateKeyFormat
	format, err := ParseKeyFormat(r.get(src, formatKey, string(DefaultPrivateKeyFormat)))
	if err != nil {
		return nil, &ConfigError{Kind: InvalidValue, Keys: []string{formatKey}, Cause: err}
	}
	return AsymmetricConfig{
		PrivateKey:         r.get(src, prefix+KeyPrivateKeyString, ""),
		PrivateKeyLocation: r.get(src, prefix+KeyPrivateKeyLocation, ""),
		PrivateKeyFormat:   format,
	}, nil
}

// get is GetWithDefault plus the default-used event.
func (r *Resolver) get(src PropertySource, key, def string) string {
	value, defaulted := GetWithDefault(src, key, def)
	if defaulted {
		r.logger.Info("encryptor config not found for property, using default value", "key", key, "default", def)
	}
	return value
}

// GetWithDefault returns the value of key, or def when the key is unset.
// defaulted reports whether def was used.
func GetWithDefault(src PropertySource, key, def string) (value string, defaulted bool) {
	if v, ok := lookup(src, key); ok {
		return v, false
	}
	return def, true
}

func getRequired(src PropertySource, key string) (string, error) {
	v, ok := lookup(src, key)
	if !ok {
		return "", &ConfigError{Kind: MissingRequired, Keys: []string{key}}
	}
	return v, nil
}

func isSet(src PropertySource, key string) bool {
	_, ok := lookup(src, key)
	return ok
}

// lookup treats an empty value the same as an absent key.
func lookup(src PropertySource, key string) (string, bool) {
	if src == nil {
		return "", false
	}
	v, ok := src.Lookup(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
