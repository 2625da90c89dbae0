package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const defaultUserAgent = "chess-roundrobin/1.0 (+https://github.com/mauv0809/chess-roundrobin)"

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	cfg, err := FromEnv(os.LookupEnv)
	if err != nil {
		log.Fatalf("Error: %s", err)
	}
	return cfg
}

// FromEnv builds a Config from the given lookup function.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	getEnv := func(key, fallback string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		return fallback
	}

	secret, ok := lookup("ADMIN_SECRET")
	if !ok || secret == "" {
		return Config{}, fmt.Errorf("required environment variable ADMIN_SECRET is not set")
	}

	roster, err := ParseRoster(getEnv("ROSTER", ""))
	if err != nil {
		return Config{}, err
	}
	interval, err := time.ParseDuration(getEnv("SYNC_INTERVAL", "5m"))
	if err != nil || interval <= 0 {
		return Config{}, fmt.Errorf("invalid SYNC_INTERVAL %q", getEnv("SYNC_INTERVAL", ""))
	}
	onStart, err := strconv.ParseBool(getEnv("SYNC_ON_START", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SYNC_ON_START: %w", err)
	}
	maxParallel, err := strconv.Atoi(getEnv("SYNC_MAX_PARALLEL", "4"))
	if err != nil || maxParallel < 1 {
		return Config{}, fmt.Errorf("invalid SYNC_MAX_PARALLEL %q", getEnv("SYNC_MAX_PARALLEL", ""))
	}
	timeout, err := time.ParseDuration(getEnv("CHESSCOM_TIMEOUT", "10s"))
	if err != nil || timeout <= 0 {
		return Config{}, fmt.Errorf("invalid CHESSCOM_TIMEOUT %q", getEnv("CHESSCOM_TIMEOUT", ""))
	}
	rps, err := strconv.ParseFloat(getEnv("CHESSCOM_RPS", "3"), 64)
	if err != nil || rps <= 0 {
		return Config{}, fmt.Errorf("invalid CHESSCOM_RPS %q", getEnv("CHESSCOM_RPS", ""))
	}
	lookback, err := strconv.Atoi(getEnv("CHESSCOM_LOOKBACK_MONTHS", "1"))
	if err != nil || lookback < 1 {
		return Config{}, fmt.Errorf("invalid CHESSCOM_LOOKBACK_MONTHS %q", getEnv("CHESSCOM_LOOKBACK_MONTHS", ""))
	}

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		AdminSecret: secret,
		DBName:      getEnv("DB_NAME", ":memory:"),
		Roster:      roster,
		Sync: SyncConfig{
			Interval:    interval,
			OnStart:     onStart,
			MaxParallel: maxParallel,
		},
		ChessCom: ChessComConfig{
			BaseURL:           strings.TrimRight(getEnv("CHESSCOM_BASE_URL", "https://api.chess.com"), "/"),
			Timeout:           timeout,
			RequestsPerSecond: rps,
			UserAgent:         getEnv("CHESSCOM_USER_AGENT", defaultUserAgent),
			LookbackMonths:    lookback,
		},
		Slack: SlackConfig{
			Token:         getEnv("SLACK_BOT_TOKEN", ""),
			ChannelID:     getEnv("SLACK_CHANNEL_ID", ""),
			SigningSecret: getEnv("SLACK_SIGNING_SECRET", ""),
		},
		ProjectID: getEnv("GCP_PROJECT", ""),
	}
	return cfg, nil
}

// ParseRoster parses "Name:username" entries separated by commas.
func ParseRoster(raw string) ([]RosterEntry, error) {
	var entries []RosterEntry
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, username, ok := strings.Cut(part, ":")
		name, username = strings.TrimSpace(name), strings.TrimSpace(username)
		if !ok || name == "" || username == "" {
			return nil, fmt.Errorf("invalid roster entry %q, expected Name:username", part)
		}
		entries = append(entries, RosterEntry{Name: name, Username: username})
	}
	return entries, nil
}
