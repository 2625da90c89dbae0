package processor

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/chess-roundrobin/internal/chesscom"
	"github.com/mauv0809/chess-roundrobin/internal/club"
	"github.com/mauv0809/chess-roundrobin/internal/metrics"
	"github.com/mauv0809/chess-roundrobin/internal/notifier"
	"github.com/mauv0809/chess-roundrobin/internal/pubsub"
	"github.com/mauv0809/chess-roundrobin/internal/tournament"
	"golang.org/x/sync/errgroup"
)

// New creates a new Processor. maxParallel bounds concurrent history fetches.
func New(store Store, history chesscom.HistorySource, notifier Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient, maxParallel int) *Processor {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &Processor{
		store:       store,
		history:     history,
		pubsub:      pubsub,
		notifier:    notifier,
		metrics:     metrics,
		maxParallel: maxParallel,
		now:         time.Now,
	}
}

// Running reports whether a run is in progress.
func (p *Processor) Running() bool {
	return p.running.Load()
}

// CancelRun aborts the run in progress, if any. A cancelled run commits nothing.
func (p *Processor) CancelRun() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		log.Info("Cancelling synchronization run in progress")
		p.cancel()
	}
}

// Synchronize checks every open pairing against both players' game history and
// commits the outcomes it can resolve. Only one run is active at a time; a
// concurrent call returns ErrSyncInProgress.
func (p *Processor) Synchronize(ctx context.Context, dryRun bool) (Report, error) {
	if !p.running.CompareAndSwap(false, true) {
		p.metrics.IncSyncSkipped()
		log.Warn("Synchronization already in progress, skipping trigger")
		return Report{}, ErrSyncInProgress
	}
	defer p.running.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.cancel = nil
		p.mu.Unlock()
		cancel()
	}()

	report := Report{
		RunID:     uuid.NewString(),
		StartedAt: p.now().UTC(),
		DryRun:    dryRun,
	}
	snapshot := p.store.Snapshot()
	open := snapshot.Open()
	report.Checked = len(open)
	log.Info("Starting synchronization run", "runID", report.RunID, "openPairings", len(open), "dryRun", dryRun)

	histories := p.fetchHistories(ctx, open, chesscom.PeriodOf(report.StartedAt))
	if err := ctx.Err(); err != nil {
		log.Warn("Synchronization run cancelled while fetching", "runID", report.RunID, "error", err)
		return report, err
	}

	results := make([]tournament.Result, 0)
	for _, pairing := range open {
		r, ok := p.checkPairing(pairing, histories, &report)
		if ok {
			results = append(results, r)
		}
	}

	if err := ctx.Err(); err != nil {
		log.Warn("Synchronization run cancelled before commit", "runID", report.RunID, "error", err)
		return report, err
	}
	report.FinishedAt = p.now().UTC()

	if dryRun {
		report.Applied = results
		log.Info("[Dry Run] Synchronization run finished without committing", "runID", report.RunID, "wouldApply", len(results))
		p.finish(report)
		return report, nil
	}

	applied, err := p.store.CommitSync(club.SyncRun{
		RunID:           report.RunID,
		Epoch:           snapshot.Epoch,
		StartedAt:       report.StartedAt,
		FinishedAt:      report.FinishedAt,
		PairingsChecked: report.Checked,
	}, results)
	if err != nil {
		log.Error("Failed to commit synchronization run", "runID", report.RunID, "error", err)
		return report, err
	}
	report.Applied = applied

	for range applied {
		p.metrics.IncPairingsResolved(string(tournament.SourceChessCom))
	}
	p.announce(report)
	p.finish(report)
	return report, nil
}

// fetchHistories reads every distinct username of the open pairings once.
func (p *Processor) fetchHistories(ctx context.Context, open []tournament.Pairing, period chesscom.Period) map[string][]chesscom.Game {
	usernames := make(map[string]string)
	for _, pairing := range open {
		for _, u := range []string{pairing.PlayerA, pairing.PlayerB} {
			usernames[strings.ToLower(u)] = u
		}
	}

	var mu sync.Mutex
	histories := make(map[string][]chesscom.Game, len(usernames))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxParallel)
	for key, username := range usernames {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			games := p.history.Fetch(gctx, username, period)
			log.Debug("Fetched game history", "username", username, "period", period, "games", len(games))
			mu.Lock()
			histories[key] = games
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return histories
}

func (p *Processor) checkPairing(pairing tournament.Pairing, histories map[string][]chesscom.Game, report *Report) (tournament.Result, bool) {
	game, ok := Match(histories[strings.ToLower(pairing.PlayerA)], histories[strings.ToLower(pairing.PlayerB)], pairing.PlayerA, pairing.PlayerB)
	if !ok {
		log.Debug("No shared game yet", "pairingID", pairing.ID, "playerA", pairing.PlayerA, "playerB", pairing.PlayerB)
		return tournament.Result{}, false
	}
	report.Matched++

	if pairing.LastChecked != nil && !game.EndTime.After(*pairing.LastChecked) {
		log.Debug("Matched game is not newer than the last check", "pairingID", pairing.ID, "gameID", game.ID)
		return tournament.Result{}, false
	}

	resolution := Resolve(game, pairing.PlayerA, pairing.PlayerB)
	outcome, ok := resolution.Outcome()
	if !ok {
		report.Unresolved++
		p.metrics.IncUnresolvedGames()
		white, black := game.White.Result, game.Black.Result
		log.Warn("Could not resolve game outcome, will retry", "pairingID", pairing.ID, "gameID", game.ID, "white", white, "black", black)
		return tournament.Result{}, false
	}

	log.Info("Resolved pairing", "pairingID", pairing.ID, "gameID", game.ID, "resolution", resolution)
	return tournament.Result{
		PairingID: pairing.ID,
		Outcome:   outcome,
		Evidence:  game.URL,
		CheckedAt: game.EndTime.UTC(),
		Source:    tournament.SourceChessCom,
	}, true
}

// announce notifies about every applied result and publishes the domain events.
func (p *Processor) announce(report Report) {
	state := p.store.Snapshot()
	for _, notice := range notifier.NewResultNotices(state, report.Applied) {
		if _, err := p.notifier.SendResultNotification(notice, report.DryRun); err != nil {
			log.Error("Failed to send result notification", "pairingID", notice.PairingID, "error", err)
		}
	}
	for _, r := range report.Applied {
		pairing, ok := state.Pairing(r.PairingID)
		if !ok {
			continue
		}
		event := pubsub.PairingResolvedEvent{Result: r, PlayerA: pairing.PlayerA, PlayerB: pairing.PlayerB}
		if err := p.pubsub.SendMessage(pubsub.EventPairingResolved, event); err != nil {
			log.Error("Failed to publish pairing result", "pairingID", r.PairingID, "error", err)
		}
	}
	synced := pubsub.TournamentSyncedEvent{
		RunID:      report.RunID,
		FinishedAt: report.FinishedAt,
		Checked:    report.Checked,
		Resolved:   len(report.Applied),
	}
	if err := p.pubsub.SendMessage(pubsub.EventTournamentSynced, synced); err != nil {
		log.Error("Failed to publish sync event", "runID", report.RunID, "error", err)
	}
}

func (p *Processor) finish(report Report) {
	p.metrics.IncSyncRuns()
	p.metrics.ObserveSyncDuration(report.FinishedAt.Sub(report.StartedAt).Seconds())
	log.Info("Synchronization run finished", "runID", report.RunID, "checked", report.Checked, "matched", report.Matched, "unresolved", report.Unresolved, "applied", len(report.Applied), "dryRun", report.DryRun)
}
