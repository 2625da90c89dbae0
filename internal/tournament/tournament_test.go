package tournament

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roster(names ...string) []RosterEntry {
	entries := make([]RosterEntry, 0, len(names))
	for _, n := range names {
		entries = append(entries, RosterEntry{Name: n, Username: n + "_cc"})
	}
	return entries
}

func mustNew(t *testing.T, names ...string) State {
	t.Helper()
	s, err := New(roster(names...))
	require.NoError(t, err)
	return s
}

func assertScoreInvariant(t *testing.T, s State) {
	t.Helper()
	assert.Equal(t, 2*s.ResolvedCount(), s.TotalHalfPoints(), "score sum must equal the number of resolved pairings")
}

func TestPairingID(t *testing.T) {
	assert.Equal(t, PairingID("alice", "bob"), PairingID("bob", "alice"))
	assert.Equal(t, PairingID("Alice", "BOB"), PairingID("alice", "bob"))
	assert.NotEqual(t, PairingID("alice", "bob"), PairingID("alice", "carol"))
}

func TestNew(t *testing.T) {
	s := mustNew(t, "A", "B", "C", "D")

	assert.Len(t, s.Players, 4)
	assert.Len(t, s.Pairings, 6, "one pairing per unordered pair")
	assert.Len(t, s.Open(), 6)
	assert.Equal(t, uint64(1), s.Epoch)

	seen := map[string]bool{}
	for _, p := range s.Pairings {
		assert.False(t, seen[p.ID])
		seen[p.ID] = true
	}
}

func TestNew_InvalidRoster(t *testing.T) {
	tests := map[string][]RosterEntry{
		"empty name":         {{Name: "", Username: "a"}},
		"empty username":     {{Name: "A", Username: ""}},
		"duplicate name":     {{Name: "A", Username: "a"}, {Name: "a", Username: "b"}},
		"duplicate username": {{Name: "A", Username: "alice"}, {Name: "B", Username: "ALICE"}},
	}
	for name, entries := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := New(entries)
			assert.Error(t, err)
		})
	}
}

func TestApplyOutcome(t *testing.T) {
	s := mustNew(t, "A", "B")
	id := PairingID("A_cc", "B_cc")
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	next, err := s.ApplyOutcome(Result{PairingID: id, Outcome: OutcomeAWin, Evidence: "https://x/1", CheckedAt: at, Source: SourceChessCom})
	require.NoError(t, err)

	a, _ := next.Player("a_cc")
	b, _ := next.Player("b_cc")
	assert.Equal(t, 1.0, a.Score())
	assert.Equal(t, 0.0, b.Score())

	p, ok := next.Pairing(id)
	require.True(t, ok)
	require.NotNil(t, p.Outcome)
	assert.Equal(t, OutcomeAWin, *p.Outcome)
	assert.Equal(t, "https://x/1", p.Evidence)
	assert.Equal(t, at, *p.LastChecked)
	assertScoreInvariant(t, next)

	// The receiver is left untouched.
	orig, _ := s.Pairing(id)
	assert.False(t, orig.Resolved())
	assert.Equal(t, 0, s.TotalHalfPoints())

	_, err = next.ApplyOutcome(Result{PairingID: id, Outcome: OutcomeBWin, CheckedAt: at})
	assert.ErrorIs(t, err, ErrAlreadyResolved)

	_, err = next.ApplyOutcome(Result{PairingID: "missing", Outcome: OutcomeDraw})
	assert.ErrorIs(t, err, ErrPairingNotFound)

	_, err = s.ApplyOutcome(Result{PairingID: id, Outcome: Outcome("x")})
	assert.ErrorIs(t, err, ErrInvalidOutcome)
}

func TestApplyManualResult(t *testing.T) {
	s := mustNew(t, "A", "B", "C")
	id := PairingID("B_cc", "C_cc")
	at := time.Now().UTC()

	next, err := s.ApplyManualResult(id, OutcomeDraw, at)
	require.NoError(t, err)

	b, _ := next.Player("B_cc")
	c, _ := next.Player("C_cc")
	assert.Equal(t, 0.5, b.Score())
	assert.Equal(t, 0.5, c.Score())
	p, _ := next.Pairing(id)
	assert.Equal(t, SourceManual, p.Source)
	assertScoreInvariant(t, next)

	again, err := next.ApplyManualResult(id, OutcomeAWin, at)
	assert.ErrorIs(t, err, ErrAlreadyResolved)
	assert.Equal(t, next, again, "a rejected override changes nothing")
}

func TestReset(t *testing.T) {
	s := mustNew(t, "A", "B", "C")
	s, err := s.ApplyManualResult(PairingID("A_cc", "B_cc"), OutcomeAWin, time.Now())
	require.NoError(t, err)
	s = s.WithLastSync(time.Now())
	epoch := s.Epoch

	reset := s.Reset()

	assert.Equal(t, epoch+1, reset.Epoch)
	assert.Equal(t, 0, reset.TotalHalfPoints())
	assert.Equal(t, 0, reset.ResolvedCount())
	for _, p := range reset.Pairings {
		assert.Nil(t, p.Outcome)
		assert.Nil(t, p.LastChecked)
		assert.Empty(t, p.Evidence)
	}
	assert.Equal(t, 1, s.ResolvedCount(), "reset does not mutate its receiver")
}

func TestRemovePlayer_RemovesExactlyOne(t *testing.T) {
	// Bob's display name is Carol's username.
	s, err := New([]RosterEntry{
		{Name: "Alice", Username: "alice"},
		{Name: "carol", Username: "bob"},
		{Name: "Caroline", Username: "carol"},
	})
	require.NoError(t, err)

	next, err := s.RemovePlayer("carol")
	require.NoError(t, err)
	require.Len(t, next.Players, 2)
	_, ok := next.Player("bob")
	assert.False(t, ok, "the name match wins")
	_, ok = next.Player("carol")
	assert.True(t, ok)
	assertScoreInvariant(t, next)
}

func TestWithRoster_PreservesSurvivingOutcomes(t *testing.T) {
	s := mustNew(t, "A", "B", "C")
	ab := PairingID("A_cc", "B_cc")
	ac := PairingID("A_cc", "C_cc")
	s, err := s.ApplyManualResult(ab, OutcomeAWin, time.Now())
	require.NoError(t, err)
	s, err = s.ApplyManualResult(ac, OutcomeDraw, time.Now())
	require.NoError(t, err)

	t.Run("adding a player keeps every result", func(t *testing.T) {
		next, err := s.AddPlayer("D", "D_cc")
		require.NoError(t, err)

		assert.Len(t, next.Pairings, 6)
		p, _ := next.Pairing(ab)
		assert.True(t, p.Resolved())
		a, _ := next.Player("A_cc")
		assert.Equal(t, 1.5, a.Score())
		assert.Len(t, next.Open(), 4)
		assertScoreInvariant(t, next)
	})

	t.Run("removing a player voids their results", func(t *testing.T) {
		next, err := s.RemovePlayer("C")
		require.NoError(t, err)

		require.Len(t, next.Pairings, 1)
		assert.Equal(t, ab, next.Pairings[0].ID)
		a, _ := next.Player("A_cc")
		assert.Equal(t, 1.0, a.Score(), "the draw against C is withdrawn")
		assertScoreInvariant(t, next)
	})

	t.Run("removing an unknown player fails", func(t *testing.T) {
		_, err := s.RemovePlayer("Z")
		assert.ErrorIs(t, err, ErrPlayerNotFound)
	})

	t.Run("removing by username", func(t *testing.T) {
		next, err := s.RemovePlayer("c_cc")
		require.NoError(t, err)
		assert.Len(t, next.Players, 2)
		_, ok := next.Player("C_cc")
		assert.False(t, ok)
	})

	t.Run("renaming keeps the score", func(t *testing.T) {
		next, err := s.WithRoster([]RosterEntry{{Name: "Alice", Username: "a_cc"}, {Name: "B", Username: "B_cc"}, {Name: "C", Username: "C_cc"}})
		require.NoError(t, err)
		a, _ := next.Player("A_cc")
		assert.Equal(t, "Alice", a.Name)
		assert.Equal(t, 1.5, a.Score())
		assert.Equal(t, s.Epoch+1, next.Epoch)
	})
}

func TestStandings(t *testing.T) {
	s := mustNew(t, "Carol", "Alice", "Bob", "Dave")
	var err error
	s, err = s.ApplyManualResult(PairingID("Alice_cc", "Bob_cc"), OutcomeDraw, time.Now())
	require.NoError(t, err)
	s, err = s.ApplyManualResult(PairingID("Carol_cc", "Dave_cc"), OutcomeAWin, time.Now())
	require.NoError(t, err)

	rows := s.Standings()
	require.Len(t, rows, 4)

	assert.Equal(t, "Carol", rows[0].Name)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, 1, rows[0].Won)

	assert.Equal(t, "Alice", rows[1].Name)
	assert.Equal(t, 2, rows[1].Rank)
	assert.Equal(t, "Bob", rows[2].Name)
	assert.Equal(t, 2, rows[2].Rank, "tied scores share a rank")
	assert.Equal(t, 1, rows[2].Drawn)

	assert.Equal(t, "Dave", rows[3].Name)
	assert.Equal(t, 4, rows[3].Rank)
	assert.Equal(t, 1, rows[3].Lost)
}

func TestParseOutcome(t *testing.T) {
	for in, want := range map[string]Outcome{"a": OutcomeAWin, "P1": OutcomeAWin, "b": OutcomeBWin, "p2": OutcomeBWin, "Draw": OutcomeDraw} {
		got, err := ParseOutcome(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseOutcome("white")
	assert.ErrorIs(t, err, ErrInvalidOutcome)
}
