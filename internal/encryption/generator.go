package encryption

import (
	"crypto/rand"
	"fmt"
	"io"
)

// Generator class names recognized in salt-generator-classname and
// iv-generator-classname.
const (
	RandomSaltGeneratorClass = "org.jasypt.salt.RandomSaltGenerator"
	ZeroSaltGeneratorClass   = "org.jasypt.salt.ZeroSaltGenerator"
	RandomIVGeneratorClass   = "org.jasypt.iv.RandomIvGenerator"
	NoIVGeneratorClass       = "org.jasypt.iv.NoIvGenerator"
)

// byteGenerator produces salts or IVs. When embedded is true the generated
// bytes are written in front of the ciphertext and read back on decryption;
// otherwise decryption regenerates them.
type byteGenerator struct {
	name     string
	random   io.Reader // nil produces zero bytes
	embedded bool
}

func (g byteGenerator) generate(n int) ([]byte, error) {
	b := make([]byte, n)
	if g.random == nil {
		return b, nil
	}
	if _, err := io.ReadFull(g.random, b); err != nil {
		return nil, fmt.Errorf("failed to obtain %d bytes of random data: %w", n, err)
	}
	return b, nil
}

func newSaltGenerator(className string, random io.Reader) (byteGenerator, error) {
	switch className {
	case RandomSaltGeneratorClass:
		return byteGenerator{name: className, random: randomOrDefault(random), embedded: true}, nil
	case ZeroSaltGeneratorClass:
		return byteGenerator{name: className}, nil
	default:
		return byteGenerator{}, fmt.Errorf("unsupported salt generator: %q", className)
	}
}

func newIVGenerator(className string, random io.Reader) (byteGenerator, error) {
	switch className {
	case RandomIVGeneratorClass:
		return byteGenerator{name: className, random: randomOrDefault(random), embedded: true}, nil
	case NoIVGeneratorClass:
		return byteGenerator{}, fmt.Errorf("%s cannot be used with AES based algorithms", className)
	default:
		return byteGenerator{}, fmt.Errorf("unsupported iv generator: %q", className)
	}
}

func randomOrDefault(r io.Reader) io.Reader {
	if r == nil {
		return rand.Reader
	}
	return r
}
