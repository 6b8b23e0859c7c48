package core

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

// setConfig overrides viper keys for the duration of the test
func setConfig(t *testing.T, values map[string]any) {
	t.Helper()
	for key, value := range values {
		previous := viper.Get(key)
		viper.Set(key, value)
		t.Cleanup(func() { viper.Set(key, previous) })
	}
}

func TestTokenConfigDefaults(t *testing.T) {
	cfg, err := tokenConfig([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("tokenConfig failed: %v", err)
	}
	if cfg.Algorithm != "HS256" || cfg.Issuer != "bazaard" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.AccessTTL != 30*time.Minute || cfg.RefreshTTL != 7*24*time.Hour {
		t.Fatalf("ttl = %s/%s, want 30m/168h", cfg.AccessTTL, cfg.RefreshTTL)
	}
}

func TestTokenConfigOverrides(t *testing.T) {
	setConfig(t, map[string]any{
		"auth.issuer":      "market",
		"auth.access_ttl":  "5m",
		"auth.refresh_ttl": "24h",
	})

	cfg, err := tokenConfig([]byte("secret"))
	if err != nil {
		t.Fatalf("tokenConfig failed: %v", err)
	}
	if cfg.Issuer != "market" || cfg.AccessTTL != 5*time.Minute || cfg.RefreshTTL != 24*time.Hour {
		t.Fatalf("overrides not applied: %+v", cfg)
	}

	setConfig(t, map[string]any{"auth.access_ttl": "-1m"})
	if _, err := tokenConfig([]byte("secret")); err == nil {
		t.Fatal("expected error for negative lifetime")
	}
}

func TestSigningSecretIsStable(t *testing.T) {
	database := newTestDatabase(t)
	setConfig(t, map[string]any{
		"auth.secret_key":          "",
		"security.master_key_path": t.TempDir() + "/master.key",
	})

	first, err := signingSecret(database)
	if err != nil {
		t.Fatalf("signingSecret failed: %v", err)
	}
	second, err := signingSecret(database)
	if err != nil {
		t.Fatalf("second signingSecret failed: %v", err)
	}
	if len(first) == 0 || string(first) != string(second) {
		t.Fatalf("generated secret changed between calls")
	}

	setConfig(t, map[string]any{"auth.secret_key": "configured-secret-configured-secret"})
	configured, err := signingSecret(database)
	if err != nil || string(configured) != "configured-secret-configured-secret" {
		t.Fatalf("configured secret = %q, %v", configured, err)
	}
}

func TestStorageConfigSelectsS3ForEndpoint(t *testing.T) {
	if cfg := storageConfig(); cfg.Type != "local" {
		t.Fatalf("default storage type = %q, want local", cfg.Type)
	}

	setConfig(t, map[string]any{"storage.s3.endpoint": "http://minio:9000"})
	cfg := storageConfig()
	if cfg.Type != "s3" || cfg.S3.Bucket != "bazaar-images" || !cfg.S3.UsePathStyle {
		t.Fatalf("unexpected s3 config %+v", cfg)
	}
}

func TestRateLimitConfig(t *testing.T) {
	setConfig(t, map[string]any{
		"security.rate_limit.enabled":      false,
		"security.rate_limit.auth_per_min": 3,
	})

	cfg := rateLimitConfig()
	if cfg.Enabled || cfg.AuthRequestsPerMin != 3 || cfg.APIRequestsPerMin != 120 {
		t.Fatalf("unexpected rate limit config %+v", cfg)
	}
}
