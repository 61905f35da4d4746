package config

import (
	"encoding/hex"
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/kanohealth/vitalvault/internal/crypt"
)

type Config struct {
	SourceURL   string `env:"SOURCE_URL" envDefault:"https://api.vitalsource.health"`
	SourceToken string `env:"SOURCE_TOKEN"`

	VaultURL    string `env:"VAULT_URL" envDefault:"https://vault.kanohealth.dev"`
	VaultAPIKey string `env:"VAULT_API_KEY"`

	AttestURL    string `env:"ATTEST_URL" envDefault:"https://attest.kanohealth.dev"`
	AttestAPIKey string `env:"ATTEST_API_KEY"`

	// WalletAddress identifies the signing identity supplied by the wallet
	// capability. Key management itself lives outside this module.
	WalletAddress string `env:"WALLET_ADDRESS"`
	// EncryptionKey is the hex-encoded 32-byte payload key supplied by the
	// wallet capability.
	EncryptionKey string `env:"ENCRYPTION_KEY"`

	SyncWindowDays int `env:"SYNC_WINDOW_DAYS" envDefault:"90"`
}

func Read() (Config, error) {
	return env.ParseAs[Config]()
}

// EncryptionKeyBytes decodes the configured payload key. An empty or
// malformed key is an error here rather than later in the pipeline, so the
// failure points at the capability that must be reconnected.
func (c Config) EncryptionKeyBytes() ([]byte, error) {
	if c.EncryptionKey == "" {
		return nil, fmt.Errorf("no encryption key configured")
	}
	key, err := hex.DecodeString(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("decoding encryption key: %w", err)
	}
	if len(key) != crypt.KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", crypt.KeySize, len(key))
	}
	return key, nil
}
