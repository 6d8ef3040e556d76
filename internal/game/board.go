package game

// Board is the flat cell sequence, row*size+col. Nil cells are empty.
type Board []*Piece

// NewBoard places size Blue pieces on row 0 and size Red pieces on row 3.
func NewBoard(size int) Board {
	b := make(Board, Rows*size)
	for i := 0; i < size; i++ {
		b[i] = &Piece{Side: SideBlue}
	}
	for i := 0; i < size; i++ {
		b[(Rows-1)*size+(size-1-i)] = &Piece{Side: SideRed}
	}
	return b
}

// Size returns the column count.
func (b Board) Size() int { return len(b) / Rows }

func (b Board) Position(cell int) (row, col int) {
	size := b.Size()
	return cell / size, cell % size
}

func (b Board) InRange(cell int) bool {
	return cell >= 0 && cell < len(b)
}

// Count returns how many pieces of side are left.
func (b Board) Count(side Side) int {
	n := 0
	for _, p := range b {
		if p != nil && p.Side == side {
			n++
		}
	}
	return n
}

// Clone deep-copies the board so the copy can leave the session lock.
func (b Board) Clone() Board {
	out := make(Board, len(b))
	for i, p := range b {
		if p != nil {
			cp := *p
			out[i] = &cp
		}
	}
	return out
}

// TargetCell walks steps cells along side's snake path from (row, col).
// ok is false when the walk leaves the board.
//
// Blue runs row 0 right, row 1 left, row 2 right, row 3 left and exits past
// the left end of row 3. Red runs the mirror: row 3 left, row 2 right, row 1
// left, row 0 right, exiting past the right end of row 0.
func TargetCell(size, row, col, steps int, side Side) (int, bool) {
	r, c := row, col
	for i := 0; i < steps; i++ {
		if side == SideBlue {
			if r == 0 || r == 2 {
				c++
				if c >= size {
					r++
					c = size - 1
				}
			} else {
				c--
				if c < 0 {
					if r == 3 {
						return 0, false
					}
					r++
					c = 0
				}
			}
		} else {
			if r == 3 || r == 1 {
				c--
				if c < 0 {
					r--
					c = 0
				}
			} else {
				c++
				if c >= size {
					if r == 0 {
						return 0, false
					}
					r--
					c = size - 1
				}
			}
		}
		if r < 0 || r >= Rows {
			return 0, false
		}
	}
	return r*size + c, true
}
