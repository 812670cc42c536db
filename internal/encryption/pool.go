package encryption

import (
	"fmt"

	"jasypt-go/internal/jasypt"
)

// PooledEncryptor spreads operations over a fixed set of encryptors. Each
// member handles one operation at a time, so the pool size bounds how many
// key derivations run concurrently.
type PooledEncryptor struct {
	members chan jasypt.StringEncryptor
	size    int
}

var _ jasypt.StringEncryptor = (*PooledEncryptor)(nil)

// NewPooledPBEEncryptor builds cfg.PoolSize independent PBE encryptors.
func NewPooledPBEEncryptor(cfg jasypt.PasswordBasedConfig) (*PooledEncryptor, error) {
	size, err := parsePositive("pool size", cfg.PoolSize)
	if err != nil {
		return nil, err
	}
	members := make([]jasypt.StringEncryptor, 0, size)
	for i := 0; i < size; i++ {
		e, err := NewPBEEncryptor(cfg)
		if err != nil {
			return nil, err
		}
		members = append(members, e)
	}
	return NewPooledEncryptor(members...)
}

// NewPooledEncryptor pools the given encryptors.
func NewPooledEncryptor(members ...jasypt.StringEncryptor) (*PooledEncryptor, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("pool needs at least one encryptor")
	}
	p := &PooledEncryptor{
		members: make(chan jasypt.StringEncryptor, len(members)),
		size:    len(members),
	}
	for _, m := range members {
		p.members <- m
	}
	return p, nil
}

// Size returns the number of pooled encryptors.
func (p *PooledEncryptor) Size() int { return p.size }

func (p *PooledEncryptor) Encrypt(message string) (string, error) {
	e := <-p.members
	defer func() { p.members <- e }()
	return e.Encrypt(message)
}

func (p *PooledEncryptor) Decrypt(encrypted string) (string, error) {
	e := <-p.members
	defer func() { p.members <- e }()
	return e.Decrypt(encrypted)
}
