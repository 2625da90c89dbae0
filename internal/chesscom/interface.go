package chesscom

import "context"

// ChessComClient defines the interface for interacting with the chess.com public API.
// This allows for mock implementations to be used in tests.
type ChessComClient interface {
	GetMonthlyGames(ctx context.Context, username string, period Period) ([]Game, error)
}

// HistorySource is the game history contract used by the synchronization engine.
// Implementations never fail: any problem degrades to an empty result.
type HistorySource interface {
	Fetch(ctx context.Context, username string, period Period) []Game
}
