package filecrypt

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Codec encrypts original filenames into opaque stored names and back.
// Stored names carry no trace of the uploaded name.
type Codec struct {
	key []byte
}

// NewCodec expects a hex-encoded 32-byte key.
func NewCodec(hexKey string) (*Codec, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("filename key is not valid hex: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("filename key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return &Codec{key: key}, nil
}

// Obfuscate encrypts name into a URL-safe token.
func (c *Codec) Obfuscate(name string) (string, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := aead.Seal(nonce, nonce, []byte(name), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Reveal decrypts a token produced by Obfuscate.
func (c *Codec) Reveal(token string) (string, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("malformed stored name: %w", err)
	}
	if len(sealed) < chacha20poly1305.NonceSizeX {
		return "", fmt.Errorf("stored name too short")
	}

	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}

	nonce, ciphertext := sealed[:chacha20poly1305.NonceSizeX], sealed[chacha20poly1305.NonceSizeX:]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("stored name does not decrypt: %w", err)
	}
	return string(plain), nil
}
