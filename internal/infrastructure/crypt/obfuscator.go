package crypt

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

const prefix = "obf1:"

// Obfuscator encrypts identifiers before they are written to the license
// sheet so that sheet contents never carry plaintext emails.
type Obfuscator struct {
	key []byte
}

// New derives an obfuscation key from the configured secret.
func New(secret string) (*Obfuscator, error) {
	if secret == "" {
		return nil, fmt.Errorf("obfuscation secret must not be empty")
	}
	sum := sha256.Sum256([]byte(secret))
	return &Obfuscator{key: sum[:]}, nil
}

// Obfuscate seals the plaintext and returns a sheet-safe token.
func (o *Obfuscator) Obfuscate(plain string) (string, error) {
	aead, err := chacha20poly1305.NewX(o.key)
	if err != nil {
		return "", fmt.Errorf("failed to build cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plain), nil)
	return prefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Reveal reverses Obfuscate. Tokens produced with a different key or without
// the expected prefix fail.
func (o *Obfuscator) Reveal(token string) (string, error) {
	if !strings.HasPrefix(token, prefix) {
		return "", fmt.Errorf("unrecognized token format")
	}

	sealed, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(token, prefix))
	if err != nil {
		return "", fmt.Errorf("malformed token: %w", err)
	}

	aead, err := chacha20poly1305.NewX(o.key)
	if err != nil {
		return "", fmt.Errorf("failed to build cipher: %w", err)
	}
	if len(sealed) < aead.NonceSize() {
		return "", fmt.Errorf("malformed token: too short")
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to reveal token: %w", err)
	}
	return string(plain), nil
}
