package auth

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	stderrors "errors"
	"fmt"
)

// SecretSettingKey is the settings key holding the generated signing secret
const SecretSettingKey = "auth.jwt_secret"

// SettingsStore reads and writes persistent server settings
type SettingsStore interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

// SecretSealer encrypts values before they are written to settings
type SecretSealer interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(value string) (string, error)
}

// LoadOrCreateSecret returns the persisted signing secret, generating and
// storing a new 256-bit one on first start. Used only when no secret is
// configured explicitly.
func LoadOrCreateSecret(settings SettingsStore, sealer SecretSealer) ([]byte, error) {
	stored, err := settings.GetSetting(SecretSettingKey)
	if err != nil && !stderrors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to read signing secret: %w", err)
	}

	if stored != "" {
		secret, err := sealer.Decrypt(stored)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt signing secret: %w", err)
		}
		return []byte(secret), nil
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate signing secret: %w", err)
	}
	secret := hex.EncodeToString(buf)

	sealed, err := sealer.Encrypt(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt signing secret: %w", err)
	}
	if err := settings.SetSetting(SecretSettingKey, sealed); err != nil {
		return nil, fmt.Errorf("failed to persist signing secret: %w", err)
	}

	log.Info("Generated new token signing secret")
	return []byte(secret), nil
}
