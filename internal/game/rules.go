package game

// Move is a single from/to pair.
type Move struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// MoveOutcome describes what ApplyMove did to the board.
type MoveOutcome struct {
	Move
	Captured     bool
	CapturedSide Side
	ReachedFar   bool
}

// Selectable reports whether the piece at cell belongs to side and may move
// under the current dice value. Unmoved pieces need a Tab (1).
func Selectable(b Board, cell int, side Side, diceValue int) error {
	if !b.InRange(cell) {
		return ErrInvalidCell
	}
	p := b[cell]
	if p == nil || p.Side != side {
		return ErrInvalidPiece
	}
	if !p.InMotion && diceValue != 1 {
		return ErrNeedTab
	}
	return nil
}

// LegalTarget returns the single destination for the piece at from, if any.
// A destination held by the same side is blocked; one held by the other side
// is a capture.
func LegalTarget(b Board, from int, side Side, diceValue int) (int, bool) {
	if Selectable(b, from, side, diceValue) != nil {
		return 0, false
	}
	row, col := b.Position(from)
	to, ok := TargetCell(b.Size(), row, col, diceValue, side)
	if !ok {
		return 0, false
	}
	if dst := b[to]; dst != nil && dst.Side == side {
		return 0, false
	}
	return to, true
}

// ApplyMove moves the piece at from onto to, removing anything it lands on.
// Callers validate with LegalTarget first.
func ApplyMove(b Board, from, to int) MoveOutcome {
	out := MoveOutcome{Move: Move{From: from, To: to}}
	p := b[from]
	if dst := b[to]; dst != nil {
		out.Captured = true
		out.CapturedSide = dst.Side
	}
	b[from] = nil
	p.InMotion = true
	if row, _ := b.Position(to); row == p.Side.FarRow() {
		p.ReachedFar = true
	}
	out.ReachedFar = p.ReachedFar
	b[to] = p
	return out
}

// LegalMoves lists every playable move for side.
func LegalMoves(b Board, side Side, diceValue int) []Move {
	var moves []Move
	for i, p := range b {
		if p == nil || p.Side != side {
			continue
		}
		if to, ok := LegalTarget(b, i, side, diceValue); ok {
			moves = append(moves, Move{From: i, To: to})
		}
	}
	return moves
}

func CanAnyPieceMove(b Board, side Side, diceValue int) bool {
	for i, p := range b {
		if p == nil || p.Side != side {
			continue
		}
		if _, ok := LegalTarget(b, i, side, diceValue); ok {
			return true
		}
	}
	return false
}
