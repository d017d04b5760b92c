// Package config holds the runtime configuration and the tunable constants
// of the whitelist bot. Values come from the environment (a .env file is
// loaded in cmd/main.go before this package is consulted).
package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	// Nickname validation
	NickMinLen = 3
	NickMaxLen = 16

	// Application body: nick, license, age, source, activity, reason
	ApplicationLines = 6
	// Report body: target nick, reason
	ReportLines = 2

	// Marker in the license line that selects the easywhitelist sub-protocol
	PirateMarker = "пират"

	// Build artifact extension served by the "сборка" command
	ArtifactExt = ".mrpack"
)

// Config is the full runtime configuration of the bot process.
type Config struct {
	BotToken  string
	ChatID    int64
	MainAdmin string

	DataDir string

	RconAddr     string
	RconPassword string

	// Optional: when set the player map and admin set live in Redis
	// instead of JSON files under DataDir.
	RedisAddr string

	// Optional: Postgres DSN for the audit trail. Empty disables auditing.
	AuditDSN string

	HTTPAddr  string
	APISecret string

	// TrustApplication keeps the player-map write on approve even when the
	// RCON call returned no response. On by default, matching the historical
	// behavior where the control protocol is advisory.
	TrustApplication bool

	SiteURL string
}

// Load reads the configuration from the environment. BotToken, ChatID and
// RconAddr are mandatory; everything else has a default or is optional.
func Load() (*Config, error) {
	cfg := &Config{
		BotToken:         os.Getenv("TELEGRAM_BOT_TOKEN"),
		MainAdmin:        getEnv("MAIN_ADMIN", "Errnick"),
		DataDir:          getEnv("DATA_DIR", "BotFile"),
		RconAddr:         os.Getenv("RCON_ADDR"),
		RconPassword:     os.Getenv("RCON_PASSWORD"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		AuditDSN:         os.Getenv("AUDIT_DSN"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		APISecret:        os.Getenv("API_SECRET"),
		SiteURL:          getEnv("SITE_URL", "https://errnicraft.cdonate.ru/#shop"),
		TrustApplication: getEnv("TRUST_APPLICATION", "1") == "1",
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}
	if cfg.RconAddr == "" {
		return nil, fmt.Errorf("RCON_ADDR is not set")
	}

	chatID, err := strconv.ParseInt(os.Getenv("CHAT_ID"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("CHAT_ID must be a numeric chat id: %w", err)
	}
	cfg.ChatID = chatID

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
