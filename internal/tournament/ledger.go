package tournament

import (
	"fmt"
	"strings"
	"time"
)

// Player looks a player up by username, case-insensitively.
func (s State) Player(username string) (Player, bool) {
	for _, p := range s.Players {
		if strings.EqualFold(p.Username, username) {
			return p, true
		}
	}
	return Player{}, false
}

// Pairing looks a pairing up by id.
func (s State) Pairing(id string) (Pairing, bool) {
	for _, p := range s.Pairings {
		if p.ID == id {
			return p.clone(), true
		}
	}
	return Pairing{}, false
}

// Open returns the pairings that still await an outcome.
func (s State) Open() []Pairing {
	var open []Pairing
	for _, p := range s.Pairings {
		if !p.Resolved() {
			open = append(open, p.clone())
		}
	}
	return open
}

// ResolvedCount returns the number of pairings with an outcome.
func (s State) ResolvedCount() int {
	n := 0
	for _, p := range s.Pairings {
		if p.Resolved() {
			n++
		}
	}
	return n
}

// TotalHalfPoints returns the sum of all players' scores in half-points.
// It always equals 2*ResolvedCount().
func (s State) TotalHalfPoints() int {
	total := 0
	for _, p := range s.Players {
		total += p.HalfPoints
	}
	return total
}

// ApplyOutcome records r on its pairing and credits the players. A pairing
// moves from open to resolved exactly once.
func (s State) ApplyOutcome(r Result) (State, error) {
	if !r.Outcome.Valid() {
		return s, fmt.Errorf("%w: %q", ErrInvalidOutcome, r.Outcome)
	}
	idx := -1
	for i, p := range s.Pairings {
		if p.ID == r.PairingID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s, fmt.Errorf("%w: %s", ErrPairingNotFound, r.PairingID)
	}
	if s.Pairings[idx].Resolved() {
		return s, fmt.Errorf("%w: %s", ErrAlreadyResolved, r.PairingID)
	}

	next := s.clone()
	p := &next.Pairings[idx]
	halfA, halfB := r.Outcome.HalfPoints()
	ia, ib := next.playerIndex(p.PlayerA), next.playerIndex(p.PlayerB)
	if ia < 0 || ib < 0 {
		return s, fmt.Errorf("%w: pairing %s", ErrPlayerNotFound, r.PairingID)
	}
	next.Players[ia].HalfPoints += halfA
	next.Players[ib].HalfPoints += halfB

	outcome := r.Outcome
	checked := r.CheckedAt
	p.Outcome = &outcome
	p.Evidence = r.Evidence
	p.LastChecked = &checked
	p.Source = r.Source
	return next, nil
}

// ApplyManualResult records an outcome entered by an administrator. It is
// rejected with ErrAlreadyResolved if the pairing already has a result.
func (s State) ApplyManualResult(pairingID string, outcome Outcome, at time.Time) (State, error) {
	return s.ApplyOutcome(Result{
		PairingID: pairingID,
		Outcome:   outcome,
		CheckedAt: at,
		Source:    SourceManual,
	})
}

// Reset zeroes every score and reopens every pairing. It is the only
// operation that lowers a score.
func (s State) Reset() State {
	next := s.clone()
	next.Epoch++
	for i := range next.Players {
		next.Players[i].HalfPoints = 0
	}
	for i := range next.Pairings {
		next.Pairings[i].Outcome = nil
		next.Pairings[i].Evidence = ""
		next.Pairings[i].LastChecked = nil
		next.Pairings[i].Source = ""
	}
	return next
}

// WithLastSync stamps the time of the last synchronization run.
func (s State) WithLastSync(t time.Time) State {
	next := s.clone()
	next.LastSync = &t
	return next
}

func (s State) playerIndex(username string) int {
	for i, p := range s.Players {
		if strings.EqualFold(p.Username, username) {
			return i
		}
	}
	return -1
}

func (s State) clone() State {
	next := State{
		Epoch:    s.Epoch,
		Players:  append([]Player(nil), s.Players...),
		Pairings: make([]Pairing, len(s.Pairings)),
		LastSync: copyTime(s.LastSync),
	}
	for i, p := range s.Pairings {
		next.Pairings[i] = p.clone()
	}
	return next
}

func (p Pairing) clone() Pairing {
	if p.Outcome != nil {
		o := *p.Outcome
		p.Outcome = &o
	}
	p.LastChecked = copyTime(p.LastChecked)
	return p
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
