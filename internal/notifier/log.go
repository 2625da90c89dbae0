package notifier

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/chess-roundrobin/internal/tournament"
)

// LogNotifier writes notifications to the application log. It is used when
// no chat integration is configured.
type LogNotifier struct{}

var _ Notifier = LogNotifier{}

func (LogNotifier) SendResultNotification(notice ResultNotice, dryRun bool) (string, error) {
	log.Info("Result", "pairingID", notice.PairingID, "result", notice.Headline(), "evidence", notice.Evidence, "dryRun", dryRun)
	return "", nil
}

func (LogNotifier) SendStandings(standings []tournament.Standing, lastSync *time.Time, dryRun bool) error {
	for _, s := range standings {
		log.Info("Standing", "rank", s.Rank, "name", s.Name, "score", FormatScore(s.Score), "dryRun", dryRun)
	}
	return nil
}
