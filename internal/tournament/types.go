// Package tournament models a round-robin tournament as an immutable State value.
// Every operation returns a new State and leaves its receiver untouched.
package tournament

import (
	"fmt"
	"strings"
	"time"
)

// Outcome is the terminal result of a pairing, relative to its A and B players.
type Outcome string

const (
	OutcomeAWin Outcome = "a"
	OutcomeBWin Outcome = "b"
	OutcomeDraw Outcome = "draw"
)

// Valid reports whether o is one of the terminal outcomes.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeAWin, OutcomeBWin, OutcomeDraw:
		return true
	}
	return false
}

// HalfPoints returns the half-points awarded to A and B.
func (o Outcome) HalfPoints() (int, int) {
	switch o {
	case OutcomeAWin:
		return 2, 0
	case OutcomeBWin:
		return 0, 2
	case OutcomeDraw:
		return 1, 1
	}
	return 0, 0
}

// ParseOutcome accepts "a", "b" and "draw" (and the p1/p2 spellings).
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a", "p1":
		return OutcomeAWin, nil
	case "b", "p2":
		return OutcomeBWin, nil
	case "draw", "d":
		return OutcomeDraw, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOutcome, s)
}

// Source records where an outcome came from.
type Source string

const (
	SourceChessCom Source = "chesscom"
	SourceManual   Source = "manual"
)

// RosterEntry is a player as supplied by the roster collaborator.
type RosterEntry struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

// Player is a roster member with a cumulative score.
type Player struct {
	Name       string `json:"name"`
	Username   string `json:"username"`
	HalfPoints int    `json:"half_points"` // score in units of 0.5
}

// Score returns the player's score in points.
func (p Player) Score() float64 {
	return float64(p.HalfPoints) / 2
}

// Pairing is one unordered matchup of the round robin.
type Pairing struct {
	ID          string     `json:"id"`
	PlayerA     string     `json:"player_a"`
	PlayerB     string     `json:"player_b"`
	Outcome     *Outcome   `json:"outcome,omitempty"`
	Evidence    string     `json:"evidence,omitempty"`
	LastChecked *time.Time `json:"last_checked,omitempty"`
	Source      Source     `json:"source,omitempty"`
}

// Resolved reports whether the pairing has a terminal outcome.
func (p Pairing) Resolved() bool {
	return p.Outcome != nil
}

// Involves reports whether username plays in this pairing.
func (p Pairing) Involves(username string) bool {
	return strings.EqualFold(p.PlayerA, username) || strings.EqualFold(p.PlayerB, username)
}

// Result is an outcome ready to be applied to a pairing.
type Result struct {
	PairingID string    `json:"pairing_id" msgpack:"pairing_id"`
	Outcome   Outcome   `json:"outcome" msgpack:"outcome"`
	Evidence  string    `json:"evidence,omitempty" msgpack:"evidence"`
	CheckedAt time.Time `json:"checked_at" msgpack:"checked_at"`
	Source    Source    `json:"source" msgpack:"source"`
}

// State is the whole tournament: roster, pairings and the last sync time.
// Epoch changes whenever the roster is edited or the tournament is reset.
type State struct {
	Epoch    uint64     `json:"epoch"`
	Players  []Player   `json:"players"`
	Pairings []Pairing  `json:"pairings"`
	LastSync *time.Time `json:"last_sync,omitempty"`
}
