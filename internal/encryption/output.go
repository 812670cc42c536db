package encryption

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// Output types accepted in string-output-type.
const (
	OutputBase64      = "base64"
	OutputHexadecimal = "hexadecimal"
)

// codec converts ciphertext bytes to and from text.
type codec interface {
	encode([]byte) string
	decode(string) ([]byte, error)
}

func newCodec(outputType string) (codec, error) {
	switch strings.ToLower(strings.TrimSpace(outputType)) {
	case OutputBase64:
		return base64Codec{}, nil
	case OutputHexadecimal:
		return hexCodec{}, nil
	default:
		return nil, fmt.Errorf("unsupported string output type: %q (want %s or %s)", outputType, OutputBase64, OutputHexadecimal)
	}
}

type base64Codec struct{}

func (base64Codec) encode(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

func (base64Codec) decode(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(strings.TrimSpace(s))
}

// hexCodec writes uppercase hex and reads either case.
type hexCodec struct{}

func (hexCodec) encode(b []byte) string { return strings.ToUpper(hex.EncodeToString(b)) }

func (hexCodec) decode(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimSpace(s))
}
