package chesscom

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Period identifies one monthly game archive.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the archive period containing t. Archives are keyed by UTC month.
func PeriodOf(t time.Time) Period {
	u := t.UTC()
	return Period{Year: u.Year(), Month: u.Month()}
}

// Previous returns the period n months before p.
func (p Period) Previous(n int) Period {
	t := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -n, 0)
	return Period{Year: t.Year(), Month: t.Month()}
}

func (p Period) String() string {
	return fmt.Sprintf("%04d/%02d", p.Year, int(p.Month))
}

// ResultTag is the per-side result code reported by chess.com.
type ResultTag string

const (
	ResultWin                 ResultTag = "win"
	ResultCheckmated          ResultTag = "checkmated"
	ResultResigned            ResultTag = "resigned"
	ResultTimeout             ResultTag = "timeout"
	ResultLose                ResultTag = "lose"
	ResultAbandoned           ResultTag = "abandoned"
	ResultKingOfTheHill       ResultTag = "kingofthehill"
	ResultThreeCheck          ResultTag = "threecheck"
	ResultBughousePartnerLose ResultTag = "bughousepartnerlose"
	ResultAgreed              ResultTag = "agreed"
	ResultRepetition          ResultTag = "repetition"
	ResultStalemate           ResultTag = "stalemate"
	ResultInsufficient        ResultTag = "insufficient"
	ResultFiftyMove           ResultTag = "50move"
	ResultTimeVsInsufficient  ResultTag = "timevsinsufficient"
)

// Color is the side a participant played.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Side is one participant of a game.
type Side struct {
	Username string    `json:"username"`
	Result   ResultTag `json:"result"`
	Rating   int       `json:"rating"`
}

// Game is a played game as reported in a monthly archive.
type Game struct {
	// ID is the shared identifier present in both participants' archives.
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	White       Side      `json:"white"`
	Black       Side      `json:"black"`
	EndTime     time.Time `json:"end_time"`
	TimeClass   string    `json:"time_class"`
	TimeControl string    `json:"time_control"`
	Rules       string    `json:"rules"`
	Rated       bool      `json:"rated"`
}

// SideOf returns the side played by username, compared case-insensitively.
func (g Game) SideOf(username string) (Side, Color, bool) {
	switch {
	case strings.EqualFold(g.White.Username, username):
		return g.White, White, true
	case strings.EqualFold(g.Black.Username, username):
		return g.Black, Black, true
	}
	return Side{}, "", false
}

// HasParticipants reports whether the game was played exactly between a and b.
func (g Game) HasParticipants(a, b string) bool {
	if strings.EqualFold(a, b) {
		return false
	}
	_, ca, okA := g.SideOf(a)
	_, cb, okB := g.SideOf(b)
	return okA && okB && ca != cb
}

// ChallengeURL returns the live-challenge link for an opponent.
func ChallengeURL(opponent string) string {
	return "https://www.chess.com/live#r=custom&opponent=" + url.QueryEscape(opponent)
}

// monthlyGamesResponse mirrors GET /pub/player/{username}/games/{YYYY}/{MM}.
type monthlyGamesResponse struct {
	Games []gameResponse `json:"games"`
}

type gameResponse struct {
	URL         string       `json:"url"`
	UUID        string       `json:"uuid"`
	EndTime     int64        `json:"end_time"`
	TimeClass   string       `json:"time_class"`
	TimeControl string       `json:"time_control"`
	Rules       string       `json:"rules"`
	Rated       bool         `json:"rated"`
	White       sideResponse `json:"white"`
	Black       sideResponse `json:"black"`
}

type sideResponse struct {
	Username string `json:"username"`
	Rating   int    `json:"rating"`
	Result   string `json:"result"`
}
