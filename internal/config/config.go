package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"

	"github.com/jdelaire/welcomebot/internal/keychain"
)

const (
	TokenEnv         = "TELEGRAM_BOT_TOKEN"
	TokenKeychainEnv = "TELEGRAM_BOT_TOKEN_KEYCHAIN"
	PortEnv          = "PORT"
	LogLevelEnv      = "LOG_LEVEL"

	DefaultPort = "10000"
)

// Config is resolved once at startup and never changes afterwards.
type Config struct {
	BotToken string
	Port     string
	LogLevel slog.Level
}

// TokenSet reports whether a bot token was configured.
func (c Config) TokenSet() bool {
	return c.BotToken != ""
}

// ListenAddr is the address the webhook server binds to.
func (c Config) ListenAddr() string {
	return ":" + c.Port
}

// Load reads envFile (when it exists) into the environment and builds a
// Config from it. Variables already set in the environment take precedence
// over the file. A missing token is not an error: the webhook reports it.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := Config{
		BotToken: os.Getenv(TokenEnv),
		Port:     getEnv(PortEnv, DefaultPort),
		LogLevel: slog.LevelInfo,
	}

	if cfg.BotToken == "" {
		token, err := tokenFromKeychain()
		if err != nil {
			return Config{}, err
		}
		cfg.BotToken = token
	}

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		return Config{}, fmt.Errorf("invalid %s %q", PortEnv, cfg.Port)
	}

	if v := os.Getenv(LogLevelEnv); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", LogLevelEnv, err)
		}
	}

	return cfg, nil
}

func tokenFromKeychain() (string, error) {
	account := os.Getenv(TokenKeychainEnv)
	if account == "" {
		return "", nil
	}
	token, err := keychain.Get(account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token from keychain: %w", err)
	}
	return token, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
