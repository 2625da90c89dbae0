package processor

import "github.com/mauv0809/chess-roundrobin/internal/chesscom"

type tagClass int

const (
	classUnknown tagClass = iota
	classWin
	classDraw
	classLoss
)

var tagClasses = map[chesscom.ResultTag]tagClass{
	chesscom.ResultWin:                 classWin,
	chesscom.ResultAgreed:              classDraw,
	chesscom.ResultRepetition:          classDraw,
	chesscom.ResultStalemate:           classDraw,
	chesscom.ResultInsufficient:        classDraw,
	chesscom.ResultFiftyMove:           classDraw,
	chesscom.ResultTimeVsInsufficient:  classDraw,
	chesscom.ResultCheckmated:          classLoss,
	chesscom.ResultResigned:            classLoss,
	chesscom.ResultTimeout:             classLoss,
	chesscom.ResultLose:                classLoss,
	chesscom.ResultAbandoned:           classLoss,
	chesscom.ResultKingOfTheHill:       classLoss,
	chesscom.ResultThreeCheck:          classLoss,
	chesscom.ResultBughousePartnerLose: classLoss,
}

func classify(tag chesscom.ResultTag) tagClass {
	return tagClasses[tag]
}

// Resolve maps a matched game to an outcome for the pairing (a, b).
// A side tagged "win" wins unless the other side also claims a win or a draw.
// A draw-class tag without a winner is a draw. Anything else is Unresolved.
func Resolve(game chesscom.Game, a, b string) Resolution {
	if !game.HasParticipants(a, b) {
		return Unresolved
	}
	sideA, _, _ := game.SideOf(a)
	sideB, _, _ := game.SideOf(b)
	ca, cb := classify(sideA.Result), classify(sideB.Result)

	switch {
	case ca == classWin && cb != classWin && cb != classDraw:
		return AWin
	case cb == classWin && ca != classWin && ca != classDraw:
		return BWin
	case ca != classWin && cb != classWin && (ca == classDraw || cb == classDraw):
		return Draw
	}
	return Unresolved
}
