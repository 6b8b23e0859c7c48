// Package security seals server secrets stored in the database.
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/bitswalk/bazaar/src/common/paths"
)

const (
	// encryptedPrefix marks sealed values
	encryptedPrefix = "enc:v1:"
	masterKeySize   = 32
)

// SecretManager encrypts values with AES-256-GCM under a master key kept on disk
type SecretManager struct {
	masterKey []byte
}

// NewSecretManager loads the master key at keyPath, creating a random one
// with 0600 permissions when the file is missing or has the wrong size.
func NewSecretManager(keyPath string) (*SecretManager, error) {
	keyPath = paths.Expand(keyPath)

	key, err := os.ReadFile(keyPath)
	if err == nil && len(key) == masterKeySize {
		return &SecretManager{masterKey: key}, nil
	}

	key = make([]byte, masterKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate master key: %w", err)
	}
	if err := paths.EnsureDir(keyPath); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(keyPath, key, 0600); err != nil {
		return nil, fmt.Errorf("failed to write master key: %w", err)
	}

	return &SecretManager{masterKey: key}, nil
}

// NewSecretManagerFromKey builds a SecretManager around an in-memory key
func NewSecretManagerFromKey(key []byte) (*SecretManager, error) {
	if len(key) != masterKeySize {
		return nil, fmt.Errorf("master key must be %d bytes, got %d", masterKeySize, len(key))
	}
	return &SecretManager{masterKey: append([]byte(nil), key...)}, nil
}

func (sm *SecretManager) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(sm.masterKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// Encrypt seals plaintext and returns "enc:v1:" followed by base64(nonce||ciphertext).
// The empty string stays empty.
func (sm *SecretManager) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	gcm, err := sm.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return encryptedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a sealed value. Values without the prefix are returned unchanged.
func (sm *SecretManager) Decrypt(value string) (string, error) {
	if !sm.IsEncrypted(value) {
		return value, nil
	}

	sealed, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, encryptedPrefix))
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	gcm, err := sm.gcm()
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(sealed) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	plaintext, err := gcm.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}
	return string(plaintext), nil
}

// IsEncrypted reports whether value carries the sealed prefix
func (sm *SecretManager) IsEncrypted(value string) bool {
	return strings.HasPrefix(value, encryptedPrefix)
}
