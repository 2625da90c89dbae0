package chesscom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gregjones/httpcache"
	"golang.org/x/time/rate"
)

// APIClient is a chess.com public API client that implements the ChessComClient interface.
type APIClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	BaseURL    string
}

// Options configure an APIClient.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	UserAgent         string
}

// NewClient creates a new chess.com client. Responses are held in an in-memory
// HTTP cache so unchanged archives are revalidated instead of re-downloaded.
func NewClient(opts Options) *APIClient {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.chess.com"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 3
	}
	transport := httpcache.NewMemoryCacheTransport()
	return &APIClient{
		httpClient: &http.Client{Transport: transport, Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		userAgent:  opts.UserAgent,
		BaseURL:    strings.TrimRight(opts.BaseURL, "/"),
	}
}

// Ensure APIClient implements the ChessComClient interface.
var _ ChessComClient = (*APIClient)(nil)

// GetMonthlyGames fetches the games username finished during period.
func (c *APIClient) GetMonthlyGames(ctx context.Context, username string, period Period) ([]Game, error) {
	if strings.TrimSpace(username) == "" {
		return nil, errors.New("username must not be empty")
	}
	endpoint := fmt.Sprintf("%s/pub/player/%s/games/%04d/%02d",
		c.BaseURL, url.PathEscape(strings.ToLower(username)), period.Year, int(period.Month))

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	log.Debug("Requesting monthly games from chess.com", "url", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Debug("Received non-OK HTTP status from chess.com", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("received non-OK HTTP status: %d", resp.StatusCode)
	}

	var archive monthlyGamesResponse
	if err := json.NewDecoder(resp.Body).Decode(&archive); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	games := make([]Game, 0, len(archive.Games))
	for _, g := range archive.Games {
		game, ok := toGame(g)
		if !ok {
			log.Warn("Dropping malformed game record", "username", username, "period", period.String(), "url", g.URL)
			continue
		}
		games = append(games, game)
	}
	log.Debug("Fetched monthly games", "username", username, "period", period.String(), "count", len(games))
	return games, nil
}

func toGame(g gameResponse) (Game, bool) {
	id := g.UUID
	if id == "" {
		id = g.URL
	}
	if id == "" || g.EndTime <= 0 || g.White.Username == "" || g.Black.Username == "" {
		return Game{}, false
	}
	return Game{
		ID:  id,
		URL: g.URL,
		White: Side{
			Username: g.White.Username,
			Result:   ResultTag(strings.ToLower(g.White.Result)),
			Rating:   g.White.Rating,
		},
		Black: Side{
			Username: g.Black.Username,
			Result:   ResultTag(strings.ToLower(g.Black.Result)),
			Rating:   g.Black.Rating,
		},
		EndTime:     time.Unix(g.EndTime, 0).UTC(),
		TimeClass:   g.TimeClass,
		TimeControl: g.TimeControl,
		Rules:       g.Rules,
		Rated:       g.Rated,
	}, true
}
