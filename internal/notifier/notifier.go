package notifier

import (
	"strconv"
	"strings"
	"time"

	"github.com/mauv0809/chess-roundrobin/internal/tournament"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For pairings that just received an outcome
	SendResultNotification(notice ResultNotice, dryRun bool) (string, error)
	// For the standings table, on demand
	SendStandings(standings []tournament.Standing, lastSync *time.Time, dryRun bool) error
}

// ResultNotice describes one applied result together with the players' updated scores.
type ResultNotice struct {
	PairingID string
	PlayerA   tournament.Player
	PlayerB   tournament.Player
	Outcome   tournament.Outcome
	Evidence  string
	Source    tournament.Source
}

// NewResultNotice builds a notice for r from the state it was applied to.
func NewResultNotice(state tournament.State, r tournament.Result) (ResultNotice, bool) {
	p, ok := state.Pairing(r.PairingID)
	if !ok {
		return ResultNotice{}, false
	}
	a, okA := state.Player(p.PlayerA)
	b, okB := state.Player(p.PlayerB)
	if !okA || !okB {
		return ResultNotice{}, false
	}
	return ResultNotice{
		PairingID: r.PairingID,
		PlayerA:   a,
		PlayerB:   b,
		Outcome:   r.Outcome,
		Evidence:  r.Evidence,
		Source:    r.Source,
	}, true
}

// NewResultNotices builds notices for results applied in order, ending in
// state. Each notice carries the scores right after its own result, so a player
// with two results in one run is shown with an intermediate score first.
// Results whose pairing is no longer in state are left out.
func NewResultNotices(state tournament.State, applied []tournament.Result) []ResultNotice {
	built := make([]ResultNotice, len(applied))
	ok := make([]bool, len(applied))
	later := make(map[string]int)
	for i := len(applied) - 1; i >= 0; i-- {
		r := applied[i]
		notice, found := NewResultNotice(state, r)
		if !found {
			continue
		}
		keyA, keyB := strings.ToLower(notice.PlayerA.Username), strings.ToLower(notice.PlayerB.Username)
		notice.PlayerA.HalfPoints -= later[keyA]
		notice.PlayerB.HalfPoints -= later[keyB]
		halfA, halfB := r.Outcome.HalfPoints()
		later[keyA] += halfA
		later[keyB] += halfB
		built[i], ok[i] = notice, true
	}

	notices := make([]ResultNotice, 0, len(applied))
	for i, n := range built {
		if ok[i] {
			notices = append(notices, n)
		}
	}
	return notices
}

// Headline renders the notice as a single line, e.g. "Alice (1) beat Bob (0)".
func (n ResultNotice) Headline() string {
	a := n.PlayerA.Name + " (" + FormatScore(n.PlayerA.Score()) + ")"
	b := n.PlayerB.Name + " (" + FormatScore(n.PlayerB.Score()) + ")"
	switch n.Outcome {
	case tournament.OutcomeAWin:
		return a + " beat " + b
	case tournament.OutcomeBWin:
		return b + " beat " + a
	default:
		return a + " drew with " + b
	}
}

// FormatScore prints a half-point score without trailing zeros: 1, 1.5, 0.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
