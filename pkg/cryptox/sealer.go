package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// sealInfo binds derived keys to this use so the same master material can
// safely serve other purposes later.
const sealInfo = "lobby/credstore/v1"

var (
	// ErrNoMasterKey is returned when neither a key file nor key material was supplied.
	ErrNoMasterKey = errors.New("cryptox: no master key configured")

	// ErrCiphertext reports a sealed value that is truncated or was tampered with.
	ErrCiphertext = errors.New("cryptox: invalid ciphertext")
)

// Sealer encrypts small values (tokens, profile records) at rest with
// XChaCha20-Poly1305. Output layout: [24-byte nonce][ciphertext][16-byte tag].
type Sealer struct {
	key []byte
}

// NewSealer derives a 256-bit key from material using HKDF-SHA256.
func NewSealer(material []byte) (*Sealer, error) {
	if len(material) == 0 {
		return nil, ErrNoMasterKey
	}

	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, material, nil, []byte(sealInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("cryptox: derive key: %w", err)
	}

	return &Sealer{key: key}, nil
}

// LoadSealer reads master key material from path when set, otherwise uses
// envMaterial. Returns ErrNoMasterKey when both are empty.
func LoadSealer(path, envMaterial string) (*Sealer, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cryptox: read master key file: %w", err)
		}
		return NewSealer([]byte(strings.TrimSpace(string(data))))
	}
	return NewSealer([]byte(envMaterial))
}

// Seal encrypts plaintext. additional is authenticated but not encrypted;
// callers pass the storage key so a value cannot be swapped between keys.
func (s *Sealer) Seal(plaintext, additional []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("cryptox: init aead: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("cryptox: generate nonce: %w", err)
	}

	return aead.Seal(nonce, nonce, plaintext, additional), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed, additional []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("cryptox: init aead: %w", err)
	}

	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrCiphertext
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, additional)
	if err != nil {
		return nil, ErrCiphertext
	}

	return plaintext, nil
}
