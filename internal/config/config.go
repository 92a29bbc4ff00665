// Package config loads daemon settings from the environment, with an
// optional .env file for development setups.
package config

import (
	"crypto/sha256"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DataDir     string
	BackupDir   string
	HTTPPort    string
	TCPPort     string
	JwtSecret   string
	SecretsKey  []byte
	DisableTLS  bool
	TLSCertFile string
	TLSKeyFile  string
}

// Load reads configuration from the environment. Every setting has a
// development default; production setups override JWT and secrets keys.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		DataDir:     getEnv("ATTEND_DATA_DIR", "./data"),
		BackupDir:   getEnv("ATTEND_BACKUP_DIR", "./data/backups"),
		HTTPPort:    getEnv("ATTEND_HTTP_PORT", "7102"),
		TCPPort:     getEnv("ATTEND_TCP_PORT", "7101"),
		JwtSecret:   getEnv("ATTEND_JWT_SECRET", "dev-only-secret"),
		SecretsKey:  deriveKey(getEnv("ATTEND_SECRETS_KEY", "dev-only-secrets-key")),
		DisableTLS:  getEnvBool("ATTEND_DISABLE_TLS", true),
		TLSCertFile: os.Getenv("ATTEND_TLS_CERT"),
		TLSKeyFile:  os.Getenv("ATTEND_TLS_KEY"),
	}
}

// deriveKey stretches an arbitrary passphrase into the 32 bytes AES-256
// wants.
func deriveKey(passphrase string) []byte {
	sum := sha256.Sum256([]byte(passphrase))
	return sum[:]
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
