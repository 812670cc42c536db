package jasypt

// StringEncryptor encrypts and decrypts configuration values.
// Implementations are safe for concurrent use.
type StringEncryptor interface {
	// Encrypt returns the encoded ciphertext for message.
	Encrypt(message string) (string, error)

	// Decrypt reverses Encrypt. It fails if the input was not produced with
	// the same key material and parameters.
	Decrypt(encrypted string) (string, error)
}
