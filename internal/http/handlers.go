package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/chess-roundrobin/internal/chesscom"
	"github.com/mauv0809/chess-roundrobin/internal/club"
	"github.com/mauv0809/chess-roundrobin/internal/notifier"
	slacknotifier "github.com/mauv0809/chess-roundrobin/internal/notifier/slack"
	"github.com/mauv0809/chess-roundrobin/internal/processor"
	"github.com/mauv0809/chess-roundrobin/internal/pubsub"
	"github.com/mauv0809/chess-roundrobin/internal/tournament"
	"github.com/slack-go/slack"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) StandingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := s.Store.Snapshot()
		respondWithJSON(w, http.StatusOK, standingsResponse{
			Standings: state.Standings(),
			LastSync:  state.LastSync,
		})
	}
}

// ListPairingsHandler lists every pairing. ?open=true restricts it to pairings without an outcome.
func (s *Server) ListPairingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := s.Store.Snapshot()
		pairings := state.Pairings
		if r.URL.Query().Get("open") == "true" {
			pairings = state.Open()
		}

		views := make([]pairingView, 0, len(pairings))
		for _, p := range pairings {
			a, _ := state.Player(p.PlayerA)
			b, _ := state.Player(p.PlayerB)
			view := pairingView{Pairing: p, PlayerAName: a.Name, PlayerBName: b.Name}
			if !p.Resolved() {
				view.ChallengeURL = chesscom.ChallengeURL(p.PlayerB)
			}
			views = append(views, view)
		}
		respondWithJSON(w, http.StatusOK, views)
	}
}

func (s *Server) ResultLogHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := s.Store.ResultLog()
		if err != nil {
			log.Error("Failed to read result log", "error", err)
			http.Error(w, "Failed to read result log", http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []club.JournalEntry{}
		}
		respondWithJSON(w, http.StatusOK, entries)
	}
}

func (s *Server) SyncStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runs, err := s.Store.SyncRuns(10)
		if err != nil {
			log.Error("Failed to read sync runs", "error", err)
			http.Error(w, "Failed to read sync runs", http.StatusInternalServerError)
			return
		}
		if runs == nil {
			runs = []club.SyncRun{}
		}
		respondWithJSON(w, http.StatusOK, syncStatusResponse{
			Running:          s.Processor.Running(),
			SchedulerEnabled: s.Scheduler.Enabled(),
			Interval:         s.Scheduler.Interval().String(),
			LastSync:         s.Store.Snapshot().LastSync,
			RecentRuns:       runs,
		})
	}
}

// SyncHandler runs one synchronization and returns its report.
func (s *Server) SyncHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isDryRun := isDryRunFromContext(r)
		report, err := s.Scheduler.RunOnce(r.Context(), isDryRun)
		switch {
		case err == nil:
			respondWithJSON(w, http.StatusOK, report)
		case errors.Is(err, processor.ErrSyncInProgress):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, club.ErrStaleSnapshot), errors.Is(err, context.Canceled):
			http.Error(w, "Synchronization aborted, the tournament changed during the run", http.StatusConflict)
		default:
			log.Error("Synchronization failed", "error", err)
			http.Error(w, "Synchronization failed", http.StatusInternalServerError)
		}
	}
}

// ManualResultHandler records an administrator's result for an open pairing.
func (s *Server) ManualResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isDryRun := isDryRunFromContext(r)
		pairingID := r.PathValue("id")

		var req manualResultRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		outcome, err := tournament.ParseOutcome(req.Outcome)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if isDryRun {
			now := time.Now().UTC()
			if _, err := s.Store.Snapshot().ApplyManualResult(pairingID, outcome, now); err != nil {
				respondWithDomainError(w, err)
				return
			}
			log.Info("[Dry Run] Would apply manual result", "pairingID", pairingID, "outcome", outcome)
			respondWithJSON(w, http.StatusOK, tournament.Result{PairingID: pairingID, Outcome: outcome, CheckedAt: now, Source: tournament.SourceManual})
			return
		}

		result, err := s.Store.ApplyManualResult(pairingID, outcome)
		if err != nil {
			log.Warn("Rejected manual result", "pairingID", pairingID, "outcome", outcome, "error", err)
			respondWithDomainError(w, err)
			return
		}
		s.Metrics.IncPairingsResolved(string(tournament.SourceManual))

		state := s.Store.Snapshot()
		if notice, ok := notifier.NewResultNotice(state, result); ok {
			if _, err := s.Notifier.SendResultNotification(notice, false); err != nil {
				log.Error("Failed to send result notification", "pairingID", pairingID, "error", err)
			}
			event := pubsub.PairingResolvedEvent{Result: result, PlayerA: notice.PlayerA.Username, PlayerB: notice.PlayerB.Username}
			if err := s.pubsub.SendMessage(pubsub.EventPairingResolved, event); err != nil {
				log.Error("Failed to publish pairing result", "pairingID", pairingID, "error", err)
			}
		}
		respondWithJSON(w, http.StatusOK, result)
	}
}

// ResetHandler zeroes all scores and reopens all pairings.
func (s *Server) ResetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if isDryRunFromContext(r) {
			state := s.Store.Snapshot()
			log.Info("[Dry Run] Would reset tournament", "resolved", state.ResolvedCount())
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, "Would reset %d resolved pairings", state.ResolvedCount())
			return
		}

		s.Processor.CancelRun()
		if err := s.Store.Reset(); err != nil {
			log.Error("Failed to reset tournament", "error", err)
			http.Error(w, "Failed to reset tournament", http.StatusInternalServerError)
			return
		}
		event := pubsub.TournamentResetEvent{Epoch: s.Store.Snapshot().Epoch, At: time.Now().UTC()}
		if err := s.pubsub.SendMessage(pubsub.EventTournamentReset, event); err != nil {
			log.Error("Failed to publish reset event", "error", err)
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Tournament reset!")
	}
}

func (s *Server) AddPlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rosterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		s.Processor.CancelRun()
		state, err := s.Store.AddPlayer(req.Name, req.Username)
		if err != nil {
			log.Warn("Rejected roster addition", "name", req.Name, "username", req.Username, "error", err)
			respondWithDomainError(w, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, state.Players)
	}
}

func (s *Server) ReplaceRosterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rosterReplaceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		s.Processor.CancelRun()
		state, err := s.Store.SetRoster(req.Players)
		if err != nil {
			log.Warn("Rejected roster", "error", err)
			respondWithDomainError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, state.Players)
	}
}

func (s *Server) RemovePlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		s.Processor.CancelRun()
		state, err := s.Store.RemovePlayer(name)
		if err != nil {
			log.Warn("Rejected roster removal", "name", name, "error", err)
			respondWithDomainError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, state.Players)
	}
}

func (s *Server) EnableSchedulerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.Scheduler.Enable(s.ctx) {
			fmt.Fprint(w, "Scheduler already enabled")
			return
		}
		fmt.Fprintf(w, "Scheduler enabled, running every %s", s.Scheduler.Interval())
	}
}

func (s *Server) DisableSchedulerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.Scheduler.Disable() {
			fmt.Fprint(w, "Scheduler already disabled")
			return
		}
		fmt.Fprint(w, "Scheduler disabled")
	}
}

// AnnounceStandingsHandler posts the current standings to the notifier.
func (s *Server) AnnounceStandingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := s.Store.Snapshot()
		if err := s.Notifier.SendStandings(state.Standings(), state.LastSync, isDryRunFromContext(r)); err != nil {
			log.Error("Failed to announce standings", "error", err)
			http.Error(w, "Failed to announce standings", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, "Standings announced")
	}
}

// StandingsCommandHandler answers the /standings slash command. "/standings public"
// posts the table to the channel instead of only to the caller.
func (s *Server) StandingsCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, err := slack.SlashCommandParse(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		log.Info("Received Slack command", "command", cmd.Command, "user", cmd.UserName)

		state := s.Store.Snapshot()
		msg := slacknotifier.StandingsMessage(state.Standings(), state.LastSync)
		msg.ResponseType = slack.ResponseTypeEphemeral
		if strings.EqualFold(strings.TrimSpace(cmd.Text), "public") {
			msg.ResponseType = slack.ResponseTypeInChannel
		}
		respondWithJSON(w, http.StatusOK, msg)
	}
}

func respondWithJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

// respondWithDomainError maps tournament errors to HTTP status codes.
func respondWithDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tournament.ErrPairingNotFound), errors.Is(err, tournament.ErrPlayerNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, tournament.ErrAlreadyResolved), errors.Is(err, tournament.ErrDuplicatePlayer):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, tournament.ErrInvalidOutcome), errors.Is(err, tournament.ErrInvalidPlayer):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Error("Unexpected error", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
