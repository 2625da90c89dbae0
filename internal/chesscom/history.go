package chesscom

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/chess-roundrobin/internal/metrics"
)

// History adapts a ChessComClient to the never-failing HistorySource contract.
type History struct {
	client  ChessComClient
	metrics metrics.Metrics

	// Lookback is the number of monthly archives to read, ending with the requested one.
	Lookback int
}

var _ HistorySource = (*History)(nil)

// NewHistory creates a History reading lookback months of archives.
func NewHistory(client ChessComClient, metrics metrics.Metrics, lookback int) *History {
	if lookback < 1 {
		lookback = 1
	}
	return &History{client: client, metrics: metrics, Lookback: lookback}
}

// Fetch returns the games username played in period (and the preceding
// Lookback-1 months). Failures are logged and yield no games for that month.
func (h *History) Fetch(ctx context.Context, username string, period Period) []Game {
	if strings.TrimSpace(username) == "" {
		return []Game{}
	}
	games := []Game{}
	for i := 0; i < h.Lookback; i++ {
		p := period.Previous(i)
		monthly, err := h.client.GetMonthlyGames(ctx, username, p)
		if err != nil {
			h.metrics.IncFetchFailures()
			log.Error("Failed to fetch game history", "username", username, "period", p.String(), "error", err)
			continue
		}
		games = append(games, monthly...)
	}
	return games
}
