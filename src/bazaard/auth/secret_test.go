package auth

import (
	"bytes"
	"database/sql"
	stderrors "errors"
	"testing"

	"github.com/bitswalk/bazaar/src/bazaard/security"
)

type memorySettings struct {
	values map[string]string
	getErr error
}

func (m *memorySettings) GetSetting(key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.values[key]
	if !ok {
		return "", sql.ErrNoRows
	}
	return v, nil
}

func (m *memorySettings) SetSetting(key, value string) error {
	m.values[key] = value
	return nil
}

func testSealer(t *testing.T) *security.SecretManager {
	t.Helper()
	sm, err := security.NewSecretManagerFromKey(bytes.Repeat([]byte{0x42}, 32))
	if err != nil {
		t.Fatalf("NewSecretManagerFromKey failed: %v", err)
	}
	return sm
}

func TestLoadOrCreateSecret(t *testing.T) {
	settings := &memorySettings{values: map[string]string{}}
	sealer := testSealer(t)

	first, err := LoadOrCreateSecret(settings, sealer)
	if err != nil {
		t.Fatalf("LoadOrCreateSecret failed: %v", err)
	}
	if len(first) != 64 {
		t.Fatalf("generated secret length = %d, want 64 hex chars", len(first))
	}

	stored := settings.values[SecretSettingKey]
	if !sealer.IsEncrypted(stored) {
		t.Fatalf("persisted secret %q is not sealed", stored)
	}

	second, err := LoadOrCreateSecret(settings, sealer)
	if err != nil {
		t.Fatalf("second LoadOrCreateSecret failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("secret changed between starts")
	}
}

func TestLoadOrCreateSecretReadFailure(t *testing.T) {
	settings := &memorySettings{values: map[string]string{}, getErr: stderrors.New("database is locked")}
	if _, err := LoadOrCreateSecret(settings, testSealer(t)); err == nil {
		t.Fatal("expected error when settings cannot be read")
	}
	if len(settings.values) != 0 {
		t.Fatal("no secret should be written when the read failed")
	}
}
