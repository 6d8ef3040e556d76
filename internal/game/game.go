package game

import "slices"

// Side is one of the two competing colors. Blue always moves first.
type Side string

const (
	SideBlue Side = "Blue"
	SideRed  Side = "Red"
)

// Rows is the fixed number of board rows.
const Rows = 4

// BoardSizes lists the column counts a session may be created with.
var BoardSizes = []int{7, 9, 11, 13, 15}

func ValidSize(size int) bool {
	return slices.Contains(BoardSizes, size)
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideBlue {
		return SideRed
	}
	return SideBlue
}

// HomeRow is the row a side's pieces start on.
func (s Side) HomeRow() int {
	if s == SideBlue {
		return 0
	}
	return Rows - 1
}

// FarRow is the opponent's home row.
func (s Side) FarRow() int {
	return s.Opponent().HomeRow()
}

type Piece struct {
	Side       Side `json:"color"`
	InMotion   bool `json:"inMotion"`
	ReachedFar bool `json:"reachedLastRow"`
}

type GameResult struct {
	Winner string
	Loser  string
	Reason string
}

const (
	ReasonCaptured = "captured_all"
	ReasonForfeit  = "opponent_left"
)
