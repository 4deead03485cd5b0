// Package obfuscate lightly obscures JSON payloads exchanged with the browser
// so they cannot be casually inspected or tampered with in dev tools. It is
// deliberately not a security boundary: a single process-lifetime key and IV
// are reused for every message.
package obfuscate

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"

	"github.com/glatasks/backend/domain"
)

// KeySize is the AES-128 key and IV length in bytes.
const KeySize = 16

// Codec performs symmetric AES-CBC encode/decode with PKCS#7 padding.
type Codec struct {
	block cipher.Block
	iv    []byte
}

// New builds a codec from fixed key material. Key and IV must both be
// KeySize bytes and are expected to be loaded exactly once per process.
func New(key, iv []byte) (*Codec, error) {
	if len(key) != KeySize || len(iv) != KeySize {
		return nil, domain.NewError(domain.ErrCodeInternal, "obfuscation key material must be 16 bytes")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "init cipher", err)
	}
	return &Codec{block: block, iv: append([]byte(nil), iv...)}, nil
}

// NewRandom builds a codec with key material generated for this process only.
func NewRandom() (*Codec, error) {
	material := make([]byte, KeySize*2)
	if _, err := rand.Read(material); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "generate key material", err)
	}
	return New(material[:KeySize], material[KeySize:])
}

// EncodeString encodes arbitrary UTF-8 text to a base64 ciphertext.
func (c *Codec) EncodeString(s string) string {
	padded := pad([]byte(s), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, c.iv).CryptBlocks(out, padded)
	return base64.StdEncoding.EncodeToString(out)
}

// EncodeObject JSON-encodes a structured value and then encodes it.
func (c *Codec) EncodeObject(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeInternal, "encode payload", err)
	}
	return c.EncodeString(string(raw)), nil
}

// DecodeString reverses EncodeString.
func (c *Codec) DecodeString(s string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeInvalid, "payload is not valid base64", err)
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return "", domain.NewError(domain.ErrCodeInvalid, "payload length is not a whole number of blocks")
	}
	out := make([]byte, len(raw))
	cipher.NewCBCDecrypter(c.block, c.iv).CryptBlocks(out, raw)
	plain, err := unpad(out, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, domain.NewError(domain.ErrCodeInvalid, "malformed padded payload")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, domain.NewError(domain.ErrCodeInvalid, "malformed padding")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, domain.NewError(domain.ErrCodeInvalid, "malformed padding")
		}
	}
	return data[:len(data)-n], nil
}
