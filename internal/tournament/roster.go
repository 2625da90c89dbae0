package tournament

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// pairingNamespace scopes the name-based UUIDs used as pairing ids.
var pairingNamespace = uuid.MustParse("5d0f2c8e-3c1b-4f7a-9a43-2b8f0c6e7d21")

// PairingID returns the id of the pairing between two usernames. It does not
// depend on argument order or letter case.
func PairingID(a, b string) string {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if b < a {
		a, b = b, a
	}
	return uuid.NewSHA1(pairingNamespace, []byte(a+"|"+b)).String()
}

// New builds a tournament for the given roster with every pairing open.
func New(entries []RosterEntry) (State, error) {
	return State{}.WithRoster(entries)
}

// WithRoster replaces the roster. Players and pairings that survive keep their
// scores and outcomes, new pairings start open, and pairings of removed players
// are dropped together with the points they had awarded.
func (s State) WithRoster(entries []RosterEntry) (State, error) {
	if err := validateRoster(entries); err != nil {
		return s, err
	}

	next := State{
		Epoch:    s.Epoch + 1,
		Players:  make([]Player, 0, len(entries)),
		Pairings: make([]Pairing, 0, len(entries)*(len(entries)-1)/2),
		LastSync: copyTime(s.LastSync),
	}
	for _, e := range entries {
		p := Player{Name: e.Name, Username: e.Username}
		if existing, ok := s.Player(e.Username); ok {
			p.HalfPoints = existing.HalfPoints
			p.Username = existing.Username
		}
		next.Players = append(next.Players, p)
	}

	kept := make(map[string]bool, len(s.Pairings))
	for i := 0; i < len(next.Players); i++ {
		for j := i + 1; j < len(next.Players); j++ {
			a, b := next.Players[i].Username, next.Players[j].Username
			id := PairingID(a, b)
			if existing, ok := s.Pairing(id); ok {
				next.Pairings = append(next.Pairings, existing.clone())
				kept[id] = true
				continue
			}
			next.Pairings = append(next.Pairings, Pairing{ID: id, PlayerA: a, PlayerB: b})
		}
	}

	for _, dropped := range s.Pairings {
		if kept[dropped.ID] || !dropped.Resolved() {
			continue
		}
		halfA, halfB := dropped.Outcome.HalfPoints()
		next.withdraw(dropped.PlayerA, halfA)
		next.withdraw(dropped.PlayerB, halfB)
	}
	return next, nil
}

// AddPlayer appends a player to the roster.
func (s State) AddPlayer(name, username string) (State, error) {
	entries := s.roster()
	entries = append(entries, RosterEntry{Name: name, Username: username})
	return s.WithRoster(entries)
}

// RemovePlayer drops the player with the given name. A username is accepted
// when no player has that name. Exactly one player is removed.
func (s State) RemovePlayer(name string) (State, error) {
	idx := -1
	for i, p := range s.Players {
		if p.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		for i, p := range s.Players {
			if strings.EqualFold(p.Username, name) {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return s, fmt.Errorf("%w: %q", ErrPlayerNotFound, name)
	}

	entries := make([]RosterEntry, 0, len(s.Players)-1)
	for i, p := range s.Players {
		if i != idx {
			entries = append(entries, RosterEntry{Name: p.Name, Username: p.Username})
		}
	}
	return s.WithRoster(entries)
}

func (s State) roster() []RosterEntry {
	entries := make([]RosterEntry, 0, len(s.Players)+1)
	for _, p := range s.Players {
		entries = append(entries, RosterEntry{Name: p.Name, Username: p.Username})
	}
	return entries
}

// withdraw removes points awarded by a dropped pairing from a surviving player.
// It is only called on a freshly built State.
func (s *State) withdraw(username string, half int) {
	if half == 0 {
		return
	}
	for i := range s.Players {
		if strings.EqualFold(s.Players[i].Username, username) {
			s.Players[i].HalfPoints -= half
			if s.Players[i].HalfPoints < 0 {
				s.Players[i].HalfPoints = 0
			}
			return
		}
	}
}

func validateRoster(entries []RosterEntry) error {
	names := make(map[string]bool, len(entries))
	usernames := make(map[string]bool, len(entries))
	for _, e := range entries {
		name, username := strings.TrimSpace(e.Name), strings.TrimSpace(e.Username)
		if name == "" || username == "" || name != e.Name || username != e.Username {
			return fmt.Errorf("%w: %q/%q", ErrInvalidPlayer, e.Name, e.Username)
		}
		if names[strings.ToLower(name)] {
			return fmt.Errorf("%w: name %q", ErrDuplicatePlayer, name)
		}
		if usernames[strings.ToLower(username)] {
			return fmt.Errorf("%w: username %q", ErrDuplicatePlayer, username)
		}
		names[strings.ToLower(name)] = true
		usernames[strings.ToLower(username)] = true
	}
	return nil
}
