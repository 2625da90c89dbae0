package processor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mauv0809/chess-roundrobin/internal/chesscom"
	"github.com/mauv0809/chess-roundrobin/internal/club"
	"github.com/mauv0809/chess-roundrobin/internal/database"
	"github.com/mauv0809/chess-roundrobin/internal/metrics"
	"github.com/mauv0809/chess-roundrobin/internal/notifier"
	"github.com/mauv0809/chess-roundrobin/internal/pubsub"
	"github.com/mauv0809/chess-roundrobin/internal/tournament"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store    club.ClubStore
	history  *chesscom.MockHistory
	notifier *notifier.Mock
	metrics  *metrics.Mock
	pubsub   *pubsub.MockPubSubClient
	proc     *Processor
}

func setupProcessor(t *testing.T, names ...string) *testEnv {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(teardown)

	entries := make([]tournament.RosterEntry, 0, len(names))
	for _, n := range names {
		entries = append(entries, tournament.RosterEntry{Name: n, Username: n})
	}
	state, err := tournament.New(entries)
	require.NoError(t, err)

	env := &testEnv{
		store:    club.New(db, state),
		history:  chesscom.NewMockHistory(),
		notifier: notifier.NewMock(),
		metrics:  metrics.NewMock(),
		pubsub:   pubsub.NewMock(),
	}
	env.proc = New(env.store, env.history, env.notifier, env.metrics, env.pubsub, 4)
	return env
}

func assertScoreInvariant(t *testing.T, s tournament.State) {
	t.Helper()
	assert.Equal(t, 2*s.ResolvedCount(), s.TotalHalfPoints(), "score sum must equal resolved pairings")
}

func TestSynchronize_EndToEnd(t *testing.T) {
	env := setupProcessor(t, "alice", "bob")
	g1 := game("g1", "alice", "win", "bob", "checkmated", t0)
	env.history.SetGames("alice", g1)
	env.history.SetGames("bob", g1)

	report, err := env.proc.Synchronize(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, 1, report.Matched)
	require.Len(t, report.Applied, 1)

	s := env.store.Snapshot()
	p, ok := s.Pairing(tournament.PairingID("alice", "bob"))
	require.True(t, ok)
	require.NotNil(t, p.Outcome)
	assert.Equal(t, tournament.OutcomeAWin, *p.Outcome)
	assert.Equal(t, g1.URL, p.Evidence)
	require.NotNil(t, p.LastChecked)
	assert.True(t, t0.Equal(*p.LastChecked))

	alice, _ := s.Player("alice")
	bob, _ := s.Player("bob")
	assert.Equal(t, 1.0, alice.Score())
	assert.Equal(t, 0.0, bob.Score())
	require.NotNil(t, s.LastSync)
	assertScoreInvariant(t, s)

	assert.Equal(t, 1, env.metrics.PairingsResolved(string(tournament.SourceChessCom)))
	assert.Equal(t, 1, env.metrics.SyncRuns())
	require.Len(t, env.notifier.ResultNotifications(), 1)
	assert.Equal(t, "alice (1) beat bob (0)", env.notifier.ResultNotifications()[0].Notice.Headline())
	assert.Len(t, env.pubsub.Messages(pubsub.EventPairingResolved), 1)
	assert.Len(t, env.pubsub.Messages(pubsub.EventTournamentSynced), 1)

	// A second run with unchanged history leaves the tournament untouched.
	before := env.store.Snapshot()
	report, err = env.proc.Synchronize(context.Background(), false)
	require.NoError(t, err)
	assert.Zero(t, report.Checked)
	assert.Empty(t, report.Applied)
	after := env.store.Snapshot()
	assert.Equal(t, before.Players, after.Players)
	assert.Equal(t, before.Pairings, after.Pairings)
	assert.Len(t, env.notifier.ResultNotifications(), 1)
}

func TestSynchronize_NoticesShowScoreAfterEachResult(t *testing.T) {
	env := setupProcessor(t, "alice", "bob", "carol")
	ab := game("g1", "alice", "win", "bob", "resigned", t0)
	ac := game("g2", "carol", "timeout", "alice", "win", t0.Add(time.Hour))
	env.history.SetGames("alice", ab, ac)
	env.history.SetGames("bob", ab)
	env.history.SetGames("carol", ac)

	report, err := env.proc.Synchronize(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, report.Applied, 2)

	sent := env.notifier.ResultNotifications()
	require.Len(t, sent, 2)
	assert.Equal(t, "alice (1) beat bob (0)", sent[0].Notice.Headline())
	assert.Equal(t, "alice (2) beat carol (0)", sent[1].Notice.Headline())
}

func TestSynchronize_FetchesEachPlayerOnce(t *testing.T) {
	env := setupProcessor(t, "alice", "bob", "carol", "dave")
	env.history.SetGames("alice", game("g1", "alice", "agreed", "bob", "agreed", t0))

	_, err := env.proc.Synchronize(context.Background(), false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob", "carol", "dave"}, env.history.Calls())
}

func TestSynchronize_RoundRobin(t *testing.T) {
	env := setupProcessor(t, "alice", "bob", "carol")
	ab := game("ab", "alice", "win", "bob", "resigned", t0)
	bc := game("bc", "bob", "stalemate", "carol", "stalemate", t0.Add(time.Hour))
	ca := game("ca", "carol", "win", "alice", "timeout", t0.Add(2*time.Hour))
	odd := game("x1", "alice", "mystery", "carol", "mystery", t0.Add(-time.Hour))
	env.history.SetGames("alice", ab, ca)
	env.history.SetGames("bob", ab, bc)
	env.history.SetGames("carol", bc, ca, odd)

	report, err := env.proc.Synchronize(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, report.Applied, 3)

	s := env.store.Snapshot()
	assertScoreInvariant(t, s)
	standings := s.Standings()
	assert.Equal(t, 1.5, standings[0].Score)
	assert.Equal(t, "carol", standings[0].Name)
	assert.Empty(t, s.Open())
}

func TestSynchronize_UnresolvedGameIsRetried(t *testing.T) {
	env := setupProcessor(t, "alice", "bob")
	g := game("g1", "alice", "mystery", "bob", "mystery", t0)
	env.history.SetGames("alice", g)
	env.history.SetGames("bob", g)

	report, err := env.proc.Synchronize(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Unresolved)
	assert.Empty(t, report.Applied)
	assert.Equal(t, 1, env.metrics.UnresolvedGames())
	assert.Len(t, env.store.Snapshot().Open(), 1)
	assert.NotNil(t, env.store.Snapshot().LastSync, "sync time is stamped even when nothing changed")

	resolved := game("g1", "alice", "resigned", "bob", "win", t0)
	env.history.SetGames("alice", resolved)
	env.history.SetGames("bob", resolved)

	report, err = env.proc.Synchronize(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, report.Applied, 1)
	assert.Equal(t, tournament.OutcomeBWin, report.Applied[0].Outcome)
}

func TestSynchronize_ManuallyResolvedPairingIsSkipped(t *testing.T) {
	env := setupProcessor(t, "alice", "bob")
	_, err := env.store.ApplyManualResult(tournament.PairingID("alice", "bob"), tournament.OutcomeDraw)
	require.NoError(t, err)
	g := game("g1", "alice", "win", "bob", "resigned", t0)
	env.history.SetGames("alice", g)
	env.history.SetGames("bob", g)

	report, err := env.proc.Synchronize(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, report.Applied)
	assert.Empty(t, env.history.Calls(), "resolved pairings need no history")

	alice, _ := env.store.Snapshot().Player("alice")
	assert.Equal(t, 0.5, alice.Score())
}

func TestSynchronize_DryRun(t *testing.T) {
	env := setupProcessor(t, "alice", "bob")
	g := game("g1", "alice", "win", "bob", "resigned", t0)
	env.history.SetGames("alice", g)
	env.history.SetGames("bob", g)

	report, err := env.proc.Synchronize(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	require.Len(t, report.Applied, 1)

	s := env.store.Snapshot()
	assert.Zero(t, s.ResolvedCount())
	assert.Nil(t, s.LastSync)
	assert.Empty(t, env.pubsub.SendMessageCalls)
	assert.Empty(t, env.notifier.ResultNotifications())
}

func TestSynchronize_RejectsConcurrentRun(t *testing.T) {
	env := setupProcessor(t, "alice", "bob")
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	env.history.OnFetch(func(ctx context.Context, username string) {
		once.Do(func() { close(entered) })
		<-release
	})

	done := make(chan error, 1)
	go func() {
		_, err := env.proc.Synchronize(context.Background(), false)
		done <- err
	}()

	<-entered
	assert.True(t, env.proc.Running())
	_, err := env.proc.Synchronize(context.Background(), false)
	assert.ErrorIs(t, err, ErrSyncInProgress)
	assert.Equal(t, 1, env.metrics.SyncSkipped())

	close(release)
	require.NoError(t, <-done)
	assert.False(t, env.proc.Running())
}

func TestSynchronize_CancelledRunCommitsNothing(t *testing.T) {
	env := setupProcessor(t, "alice", "bob")
	g := game("g1", "alice", "win", "bob", "resigned", t0)
	env.history.SetGames("alice", g)
	env.history.SetGames("bob", g)
	env.history.OnFetch(func(ctx context.Context, username string) {
		env.proc.CancelRun()
	})

	_, err := env.proc.Synchronize(context.Background(), false)
	assert.ErrorIs(t, err, context.Canceled)

	s := env.store.Snapshot()
	assert.Zero(t, s.ResolvedCount())
	assert.Nil(t, s.LastSync)
	assert.Zero(t, env.metrics.SyncRuns())
}

func TestSynchronize_RosterChangeDuringRun(t *testing.T) {
	env := setupProcessor(t, "alice", "bob")
	g := game("g1", "alice", "win", "bob", "resigned", t0)
	env.history.SetGames("alice", g)
	env.history.SetGames("bob", g)
	var once sync.Once
	env.history.OnFetch(func(ctx context.Context, username string) {
		once.Do(func() {
			_, err := env.store.AddPlayer("carol", "carol")
			assert.NoError(t, err)
		})
	})

	_, err := env.proc.Synchronize(context.Background(), false)
	assert.True(t, errors.Is(err, club.ErrStaleSnapshot))

	s := env.store.Snapshot()
	assert.Zero(t, s.ResolvedCount())
	assert.Len(t, s.Pairings, 3)

	env.history.OnFetch(nil)
	report, err := env.proc.Synchronize(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, report.Applied, 1)
}

func TestSynchronize_AfterResetWithoutHistory(t *testing.T) {
	env := setupProcessor(t, "alice", "bob", "carol", "dave")
	_, err := env.store.ApplyManualResult(tournament.PairingID("alice", "bob"), tournament.OutcomeAWin)
	require.NoError(t, err)
	require.NoError(t, env.store.Reset())

	report, err := env.proc.Synchronize(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 6, report.Checked)

	s := env.store.Snapshot()
	for _, p := range s.Pairings {
		assert.Nil(t, p.Outcome)
	}
	for _, p := range s.Players {
		assert.Zero(t, p.HalfPoints)
	}
}

func TestSynchronize_NotifierFailureDoesNotFailRun(t *testing.T) {
	env := setupProcessor(t, "alice", "bob")
	env.notifier.SendResultNotificationFunc = func(notifier.ResultNotice, bool) (string, error) {
		return "", errors.New("slack down")
	}
	env.pubsub.SendMessageFunc = func(pubsub.EventType, any) error {
		return errors.New("pubsub down")
	}
	g := game("g1", "alice", "repetition", "bob", "repetition", t0)
	env.history.SetGames("alice", g)
	env.history.SetGames("bob", g)

	report, err := env.proc.Synchronize(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, report.Applied, 1)
	assert.Equal(t, tournament.OutcomeDraw, report.Applied[0].Outcome)
}
