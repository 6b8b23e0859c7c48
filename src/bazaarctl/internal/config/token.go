// Package config stores bazaarctl credentials between invocations.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bitswalk/bazaar/src/common/paths"
)

const tokenFileName = "token.json"

// TokenData holds the stored authentication tokens
type TokenData struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ServerURL    string    `json:"server_url"`
	Email        string    `json:"email"`
	SavedAt      time.Time `json:"saved_at"`
}

// TokenFilePath returns the location of the token file
func TokenFilePath() string {
	return paths.Expand("~/.bazaarctl/" + tokenFileName)
}

// SaveToken writes the token data to disk, readable only by the owner
func SaveToken(data *TokenData) error {
	path := TokenFilePath()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if data.SavedAt.IsZero() {
		data.SavedAt = time.Now().UTC()
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// LoadToken reads the token data from disk
func LoadToken() (*TokenData, error) {
	data, err := os.ReadFile(TokenFilePath())
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var tokenData TokenData
	if err := json.Unmarshal(data, &tokenData); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}

	return &tokenData, nil
}

// ClearToken removes the token file from disk
func ClearToken() error {
	if err := os.Remove(TokenFilePath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
