package encryption

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"strings"
)

// ErrUnsupportedAlgorithm is returned for PBE algorithm names this package
// cannot implement, such as the legacy PBEWITHMD5ANDDES family.
var ErrUnsupportedAlgorithm = errors.New("unsupported PBE algorithm")

// pbeAlgorithm is a PBES2 scheme: PBKDF2 with an HMAC over hash, deriving a
// keyLen byte AES key.
type pbeAlgorithm struct {
	name   string
	hash   func() hash.Hash
	keyLen int
}

var pbeHashes = map[string]func() hash.Hash{
	"SHA1":   sha1.New,
	"SHA224": sha256.New224,
	"SHA256": sha256.New,
	"SHA384": sha512.New384,
	"SHA512": sha512.New,
}

var aesKeyLens = map[string]int{
	"AES_128": 16,
	"AES_256": 32,
}

// parseAlgorithm parses names of the form PBEWITHHMAC<hash>AND<cipher>,
// for example PBEWITHHMACSHA512ANDAES_256. Matching is case-insensitive.
func parseAlgorithm(name string) (pbeAlgorithm, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	rest, ok := strings.CutPrefix(upper, "PBEWITHHMAC")
	if !ok {
		return pbeAlgorithm{}, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, name)
	}
	hashName, cipherName, ok := strings.Cut(rest, "AND")
	if !ok {
		return pbeAlgorithm{}, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, name)
	}
	h, ok := pbeHashes[hashName]
	if !ok {
		return pbeAlgorithm{}, fmt.Errorf("%w: %s (unknown hash %s)", ErrUnsupportedAlgorithm, name, hashName)
	}
	keyLen, ok := aesKeyLens[cipherName]
	if !ok {
		return pbeAlgorithm{}, fmt.Errorf("%w: %s (unknown cipher %s)", ErrUnsupportedAlgorithm, name, cipherName)
	}
	return pbeAlgorithm{name: upper, hash: h, keyLen: keyLen}, nil
}
