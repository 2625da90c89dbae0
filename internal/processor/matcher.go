package processor

import (
	"strings"

	"github.com/mauv0809/chess-roundrobin/internal/chesscom"
)

// Match finds the game played between a and b that appears in both histories.
// When several qualify, the one that ended last wins, then the smallest id.
func Match(recordsA, recordsB []chesscom.Game, a, b string) (chesscom.Game, bool) {
	inB := make(map[string]struct{}, len(recordsB))
	for _, g := range recordsB {
		inB[strings.ToLower(g.ID)] = struct{}{}
	}

	var best chesscom.Game
	found := false
	for _, g := range recordsA {
		if _, ok := inB[strings.ToLower(g.ID)]; !ok {
			continue
		}
		if !g.HasParticipants(a, b) {
			continue
		}
		if !found || newer(g, best) {
			best = g
			found = true
		}
	}
	return best, found
}

func newer(g, than chesscom.Game) bool {
	if !g.EndTime.Equal(than.EndTime) {
		return g.EndTime.After(than.EndTime)
	}
	return g.ID < than.ID
}
