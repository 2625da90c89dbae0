package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/mauv0809/chess-roundrobin/internal/tournament"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestNew_WithoutProjectIsDisabled(t *testing.T) {
	c, err := New(context.Background(), "")
	require.NoError(t, err)
	assert.IsType(t, Disabled{}, c)
	assert.NoError(t, c.SendMessage(EventTournamentSynced, TournamentSyncedEvent{RunID: "r1"}))
	assert.NoError(t, c.Close())
}

func TestPairingResolvedEvent_InlinesResult(t *testing.T) {
	checked := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	event := PairingResolvedEvent{
		Result: tournament.Result{
			PairingID: "p1",
			Outcome:   tournament.OutcomeDraw,
			Evidence:  "https://www.chess.com/game/live/1",
			CheckedAt: checked,
			Source:    tournament.SourceChessCom,
		},
		PlayerA: "alice",
		PlayerB: "bob",
	}
	data, err := msgpack.Marshal(event)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, msgpack.Unmarshal(data, &fields))
	assert.Equal(t, "p1", fields["pairing_id"])
	assert.Equal(t, "draw", fields["outcome"])
	assert.NotContains(t, fields, "Result")
}

func TestMock_RecordsByTopic(t *testing.T) {
	m := NewMock()
	require.NoError(t, m.SendMessage(EventPairingResolved, "a"))
	require.NoError(t, m.SendMessage(EventTournamentSynced, "b"))
	require.NoError(t, m.SendMessage(EventPairingResolved, "c"))

	resolved := m.Messages(EventPairingResolved)
	require.Len(t, resolved, 2)
	assert.Equal(t, "c", resolved[1].Data)
	m.Reset()
	assert.Empty(t, m.Messages(EventPairingResolved))
}
