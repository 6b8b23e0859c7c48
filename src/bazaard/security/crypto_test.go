package security

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func newTestManager(t *testing.T) *SecretManager {
	t.Helper()
	sm, err := NewSecretManager(filepath.Join(t.TempDir(), "master.key"))
	if err != nil {
		t.Fatalf("NewSecretManager failed: %v", err)
	}
	return sm
}

func TestSealOpenSigningSecret(t *testing.T) {
	sm := newTestManager(t)

	secret := "3f1c0e8d5b7a49f2a6c1d0e9b8f7a6c5d4e3f2a1b0c9d8e7f6a5b4c3d2e1f0a9"
	sealed, err := sm.Encrypt(secret)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if !sm.IsEncrypted(sealed) || sealed == secret {
		t.Fatalf("sealed value %q is not in sealed form", sealed)
	}

	opened, err := sm.Decrypt(sealed)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if opened != secret {
		t.Fatalf("Decrypt = %q, want %q", opened, secret)
	}
}

func TestEncryptEmptyStaysEmpty(t *testing.T) {
	sm := newTestManager(t)
	sealed, err := sm.Encrypt("")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if sealed != "" {
		t.Fatalf("Encrypt(\"\") = %q, want empty", sealed)
	}
}

func TestDecryptPlaintextPassthrough(t *testing.T) {
	sm := newTestManager(t)
	got, err := sm.Decrypt("legacy-plain-secret")
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if got != "legacy-plain-secret" {
		t.Fatalf("Decrypt = %q, want passthrough", got)
	}
}

func TestDecryptWithOtherKeyFails(t *testing.T) {
	sm1 := newTestManager(t)
	sm2, err := NewSecretManagerFromKey(bytes.Repeat([]byte{7}, masterKeySize))
	if err != nil {
		t.Fatalf("NewSecretManagerFromKey failed: %v", err)
	}

	sealed, err := sm1.Encrypt("secret")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if _, err := sm2.Decrypt(sealed); err == nil {
		t.Fatal("decrypting with a different key should fail")
	}
}

func TestNewSecretManagerFromKeyRejectsBadSize(t *testing.T) {
	if _, err := NewSecretManagerFromKey([]byte("short")); err == nil {
		t.Fatal("expected error for a short key")
	}
}

func TestMasterKeyPersisted(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "nested", "master.key")

	sm, err := NewSecretManager(keyPath)
	if err != nil {
		t.Fatalf("NewSecretManager failed: %v", err)
	}

	info, err := os.Stat(keyPath)
	if err != nil {
		t.Fatalf("key file not created: %v", err)
	}
	if info.Size() != masterKeySize {
		t.Fatalf("key size = %d, want %d", info.Size(), masterKeySize)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("key permissions = %o, want 0600", info.Mode().Perm())
	}

	reopened, err := NewSecretManager(keyPath)
	if err != nil {
		t.Fatalf("NewSecretManager (reuse) failed: %v", err)
	}
	sealed, _ := sm.Encrypt("value")
	opened, err := reopened.Decrypt(sealed)
	if err != nil || opened != "value" {
		t.Fatalf("reopened Decrypt = %q, %v", opened, err)
	}
}
