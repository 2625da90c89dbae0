package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	Port        string
	AdminSecret string
	DBName      string
	Roster      []RosterEntry
	Sync        SyncConfig
	ChessCom    ChessComConfig
	Slack       SlackConfig
	ProjectID   string
}

type RosterEntry struct {
	Name     string
	Username string
}

type SyncConfig struct {
	Interval    time.Duration
	OnStart     bool
	MaxParallel int
}

type ChessComConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	UserAgent         string
	LookbackMonths    int
}

type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
}

// Enabled reports whether enough Slack settings are present to post messages.
func (s SlackConfig) Enabled() bool {
	return s.Token != "" && s.ChannelID != ""
}
