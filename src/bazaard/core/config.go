package core

import (
	"fmt"

	"github.com/bitswalk/bazaar/src/bazaard/api"
	"github.com/bitswalk/bazaar/src/bazaard/auth"
	"github.com/bitswalk/bazaar/src/bazaard/db"
	"github.com/bitswalk/bazaar/src/bazaard/security"
	"github.com/bitswalk/bazaar/src/bazaard/storage"
	"github.com/spf13/viper"
)

// tokenConfig builds the token settings from the auth.* keys around secret
func tokenConfig(secret []byte) (auth.Config, error) {
	cfg := auth.DefaultConfig()
	cfg.SecretKey = secret

	if alg := viper.GetString("auth.algorithm"); alg != "" {
		cfg.Algorithm = alg
	}
	if issuer := viper.GetString("auth.issuer"); issuer != "" {
		cfg.Issuer = issuer
	}
	if ttl := viper.GetDuration("auth.access_ttl"); ttl != 0 {
		cfg.AccessTTL = ttl
	}
	if ttl := viper.GetDuration("auth.refresh_ttl"); ttl != 0 {
		cfg.RefreshTTL = ttl
	}
	if cfg.AccessTTL < 0 || cfg.RefreshTTL < 0 {
		return cfg, fmt.Errorf("token lifetimes must be positive")
	}
	if cfg.AccessTTL >= cfg.RefreshTTL {
		log.Warn("Access tokens outlive refresh tokens", "access_ttl", cfg.AccessTTL, "refresh_ttl", cfg.RefreshTTL)
	}
	return cfg, nil
}

// signingSecret returns auth.secret_key when set. Otherwise the secret is
// generated once and kept in the settings table, sealed with the master key.
func signingSecret(database *db.Database) ([]byte, error) {
	if secret := viper.GetString("auth.secret_key"); secret != "" {
		if len(secret) < 32 {
			log.Warn("Configured token secret is shorter than 32 bytes")
		}
		return []byte(secret), nil
	}

	sealer, err := security.NewSecretManager(viper.GetString("security.master_key_path"))
	if err != nil {
		return nil, fmt.Errorf("failed to load master key: %w", err)
	}
	return auth.LoadOrCreateSecret(database, sealer)
}

func rateLimitConfig() api.RateLimitConfig {
	cfg := api.DefaultRateLimitConfig()
	cfg.Enabled = viper.GetBool("security.rate_limit.enabled")
	if n := viper.GetInt("security.rate_limit.auth_per_min"); n > 0 {
		cfg.AuthRequestsPerMin = n
	}
	if n := viper.GetInt("security.rate_limit.api_per_min"); n > 0 {
		cfg.APIRequestsPerMin = n
	}
	return cfg
}

// storageConfig reads storage.*; an S3 endpoint selects the s3 backend
// regardless of storage.type
func storageConfig() storage.Config {
	cfg := storage.Config{
		Type: viper.GetString("storage.type"),
		Local: storage.LocalConfig{
			BasePath: viper.GetString("storage.local.path"),
		},
		S3: storage.S3Config{
			Endpoint:        viper.GetString("storage.s3.endpoint"),
			Region:          viper.GetString("storage.s3.region"),
			Bucket:          viper.GetString("storage.s3.bucket"),
			AccessKeyID:     viper.GetString("storage.s3.access_key"),
			SecretAccessKey: viper.GetString("storage.s3.secret_key"),
			UsePathStyle:    viper.GetBool("storage.s3.path_style"),
		},
	}
	if cfg.S3.Endpoint != "" {
		cfg.Type = "s3"
	}
	return cfg
}
