package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/chess-roundrobin/internal/chesscom"
	"github.com/mauv0809/chess-roundrobin/internal/metrics"
	"github.com/mauv0809/chess-roundrobin/internal/notifier"
	"github.com/mauv0809/chess-roundrobin/internal/tournament"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	return NewNotifierWithAPI(slack.New(token), channelID, metrics)
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-channel", "dry-run-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendResultNotification(notice notifier.ResultNotice, dryRun bool) (string, error) {
	_, ts, err := s.sendMessage(formatResultNotification(notice), dryRun)
	return ts, err
}

func (s *Notifier) SendStandings(standings []tournament.Standing, lastSync *time.Time, dryRun bool) error {
	_, _, err := s.sendMessage(formatStandings(standings, lastSync), dryRun)
	return err
}

// StandingsMessage renders the standings table as a Block Kit message, e.g. for
// a slash command response.
func StandingsMessage(standings []tournament.Standing, lastSync *time.Time) slack.Message {
	return formatStandings(standings, lastSync)
}

// formatResultNotification creates the Slack message for a newly resolved pairing using Block Kit.
func formatResultNotification(n notifier.ResultNotice) slack.Message {
	blocks := make([]slack.Block, 0, 4)

	headerText := slack.NewTextBlockObject("plain_text", ":chess_pawn: Round robin result", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", "*"+n.Headline()+"*", false, false), nil, nil))

	var elements []slack.MixedElement
	if n.Evidence != "" {
		elements = append(elements, slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("<%s|View game>", n.Evidence), false, false))
	}
	if n.Source == tournament.SourceManual {
		elements = append(elements, slack.NewTextBlockObject("mrkdwn", "Entered manually", false, false))
	}
	if len(elements) > 0 {
		blocks = append(blocks, slack.NewContextBlock("", elements...))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatStandings creates a Slack message to display the standings table.
func formatStandings(standings []tournament.Standing, lastSync *time.Time) slack.Message {
	blocks := make([]slack.Block, 0, len(standings)+3)

	headerText := slack.NewTextBlockObject("plain_text", ":trophy: Standings :trophy:", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(standings) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No players on the roster yet.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for _, st := range standings {
		var medal string
		switch st.Rank {
		case 1:
			medal = ":first_place_medal: "
		case 2:
			medal = ":second_place_medal: "
		case 3:
			medal = ":third_place_medal: "
		}
		text := fmt.Sprintf("%d. %s*%s* %s pts\n> W %d | D %d | L %d | <%s|Challenge>",
			st.Rank,
			medal,
			st.Name,
			notifier.FormatScore(st.Score),
			st.Won,
			st.Drawn,
			st.Lost,
			chesscom.ChallengeURL(st.Username),
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil))
	}

	synced := "Not synced yet"
	if lastSync != nil {
		synced = "Last synced " + lastSync.UTC().Format(time.RFC1123)
	}
	blocks = append(blocks, slack.NewDividerBlock())
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", synced, false, false)))

	return slack.NewBlockMessage(blocks...)
}
