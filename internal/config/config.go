package config

import (
	"fmt"
	"os"
)

// Config holds everything read from the environment at process start.
type Config struct {
	// OAChannelID identifies the official-account messaging channel whose
	// access token is used to push receipt messages.
	OAChannelID string
	// LiffChannelID is passed to the LINE verify endpoint as client_id.
	LiffChannelID string
	// LiffID builds the "open the member card" link in receipt messages.
	LiffID string

	LoggerLevel string

	MembersTable  string
	ProductsTable string
	TokensTable   string

	// Port is only used by the local development server.
	Port string
}

// Load reads the configuration from environment variables. Table names and
// the port fall back to defaults; the channel ids are required.
func Load() (*Config, error) {
	cfg := &Config{
		OAChannelID:   os.Getenv("OA_CHANNEL_ID"),
		LiffChannelID: os.Getenv("LIFF_CHANNEL_ID"),
		LiffID:        os.Getenv("LIFF_ID"),
		LoggerLevel:   os.Getenv("LOGGER_LEVEL"),
		MembersTable:  getEnv("MEMBERS_INFO_DB", "MembersCardUserInfo"),
		ProductsTable: getEnv("PRODUCT_INFO_DB", "MembersCardProductInfo"),
		TokensTable:   getEnv("CHANNEL_ACCESS_TOKEN_DB", "LINEChannelAccessToken"),
		Port:          getEnv("PORT", "3333"),
	}

	if cfg.OAChannelID == "" {
		return nil, fmt.Errorf("OA_CHANNEL_ID environment variable is not set")
	}
	if cfg.LiffChannelID == "" {
		return nil, fmt.Errorf("LIFF_CHANNEL_ID environment variable is not set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
