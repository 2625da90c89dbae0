package tournament

import (
	"sort"
	"strings"
)

// Standing is one row of the standings table.
type Standing struct {
	Rank     int     `json:"rank"`
	Name     string  `json:"name"`
	Username string  `json:"username"`
	Score    float64 `json:"score"`
	Played   int     `json:"played"`
	Won      int     `json:"won"`
	Drawn    int     `json:"drawn"`
	Lost     int     `json:"lost"`
}

// Standings ranks players by score, then by name. Tied scores share a rank.
func (s State) Standings() []Standing {
	rows := make([]Standing, 0, len(s.Players))
	index := make(map[string]int, len(s.Players))
	for _, p := range s.Players {
		index[strings.ToLower(p.Username)] = len(rows)
		rows = append(rows, Standing{Name: p.Name, Username: p.Username, Score: p.Score()})
	}

	for _, p := range s.Pairings {
		if !p.Resolved() {
			continue
		}
		ia, okA := index[strings.ToLower(p.PlayerA)]
		ib, okB := index[strings.ToLower(p.PlayerB)]
		if !okA || !okB {
			continue
		}
		rows[ia].Played++
		rows[ib].Played++
		switch *p.Outcome {
		case OutcomeAWin:
			rows[ia].Won++
			rows[ib].Lost++
		case OutcomeBWin:
			rows[ib].Won++
			rows[ia].Lost++
		case OutcomeDraw:
			rows[ia].Drawn++
			rows[ib].Drawn++
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Score == rows[j].Score {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].Score > rows[j].Score
	})
	for i := range rows {
		if i > 0 && rows[i].Score == rows[i-1].Score {
			rows[i].Rank = rows[i-1].Rank
			continue
		}
		rows[i].Rank = i + 1
	}
	return rows
}
