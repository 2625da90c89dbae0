package pubsub

import (
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/mauv0809/chess-roundrobin/internal/tournament"
)

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
// It doubles as the topic name.
type EventType string

const (
	EventPairingResolved  EventType = "pairing-resolved"
	EventTournamentSynced EventType = "tournament-synced"
	EventTournamentReset  EventType = "tournament-reset"
)

// PairingResolvedEvent is published once for every applied result.
type PairingResolvedEvent struct {
	tournament.Result `msgpack:",inline"`
	PlayerA           string `msgpack:"player_a"`
	PlayerB           string `msgpack:"player_b"`
}

// TournamentSyncedEvent is published at the end of every committed sync run.
type TournamentSyncedEvent struct {
	RunID      string    `msgpack:"run_id"`
	FinishedAt time.Time `msgpack:"finished_at"`
	Checked    int       `msgpack:"checked"`
	Resolved   int       `msgpack:"resolved"`
}

// TournamentResetEvent is published after an administrator resets the tournament.
type TournamentResetEvent struct {
	Epoch uint64    `msgpack:"epoch"`
	At    time.Time `msgpack:"at"`
}
