package chesscom

import (
	"context"
	"strings"
	"sync"
)

// MockClient is a mock implementation of the ChessComClient interface for testing.
// It is safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	GetMonthlyGamesFunc func(ctx context.Context, username string, period Period) ([]Game, error)

	GetMonthlyGamesCalls []GetMonthlyGamesCall
}

// GetMonthlyGamesCall holds the arguments for a call to GetMonthlyGames.
type GetMonthlyGamesCall struct {
	Username string
	Period   Period
}

// NewMockClient creates a new mock instance.
func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) GetMonthlyGames(ctx context.Context, username string, period Period) ([]Game, error) {
	m.mu.Lock()
	m.GetMonthlyGamesCalls = append(m.GetMonthlyGamesCalls, GetMonthlyGamesCall{Username: username, Period: period})
	fn := m.GetMonthlyGamesFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, username, period)
	}
	return []Game{}, nil
}

// MockHistory is an in-memory HistorySource keyed by lower-cased username.
// It is safe for concurrent use.
type MockHistory struct {
	mu    sync.Mutex
	games map[string][]Game
	calls []string
	hook  func(ctx context.Context, username string)
}

// NewMockHistory creates an empty MockHistory.
func NewMockHistory() *MockHistory {
	return &MockHistory{games: make(map[string][]Game)}
}

// SetGames replaces the history returned for username.
func (m *MockHistory) SetGames(username string, games ...Game) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[strings.ToLower(username)] = games
}

// OnFetch installs a hook invoked at the start of every Fetch, outside the lock.
func (m *MockHistory) OnFetch(hook func(ctx context.Context, username string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hook = hook
}

func (m *MockHistory) Fetch(ctx context.Context, username string, period Period) []Game {
	m.mu.Lock()
	m.calls = append(m.calls, username)
	hook := m.hook
	m.mu.Unlock()
	if hook != nil {
		hook(ctx, username)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Game(nil), m.games[strings.ToLower(username)]...)
}

// Calls returns the usernames fetched so far.
func (m *MockHistory) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
