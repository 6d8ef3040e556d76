package game

import (
	"maps"
	"time"
)

type State string

const (
	StateWaiting  State = "waiting"
	StatePlaying  State = "playing"
	StateFinished State = "finished"
)

// Step is the selection phase inside a turn.
type Step string

const (
	StepFrom Step = "from"
	StepTo   Step = "to"
)

// Delta is a sparse set of changed session fields as sent to subscribers.
type Delta map[string]any

const (
	KeyPieces   = "pieces"
	KeyPlayers  = "players"
	KeyTurn     = "turn"
	KeyInitial  = "initial"
	KeyStep     = "step"
	KeyDice     = "dice"
	KeySelected = "selected"
	KeyMustPass = "mustPass"
	KeyWinner   = "winner"
)

// Session is one game. It is not safe for concurrent use; the owning room
// serializes every call.
type Session struct {
	ID        string
	Group     int
	Size      int
	Host      string
	CreatedAt time.Time

	State    State
	Board    Board
	Players  map[string]Side
	Turn     string
	Initial  string
	Step     Step
	Selected int
	Dice     *DiceOutcome
	MustPass bool
	Winner   string

	result *GameResult
}

func NewSession(id string, group, size int, host string) (*Session, error) {
	if !ValidSize(size) {
		return nil, ErrInvalidSize
	}
	return &Session{
		ID:        id,
		Group:     group,
		Size:      size,
		Host:      host,
		CreatedAt: time.Now(),
		State:     StateWaiting,
		Board:     NewBoard(size),
		Players:   make(map[string]Side, 2),
		Step:      StepFrom,
		Selected:  -1,
	}, nil
}

// Pair seats guest against the host and starts the game. hostIsBlue is the
// result of the caller's coin flip; Blue moves first.
func (s *Session) Pair(guest string, hostIsBlue bool) (Delta, error) {
	if s.State != StateWaiting {
		return nil, ErrAlreadyPaired
	}
	if guest == s.Host {
		return nil, ErrSamePlayer
	}

	blue, red := s.Host, guest
	if !hostIsBlue {
		blue, red = guest, s.Host
	}
	s.Players[blue] = SideBlue
	s.Players[red] = SideRed
	s.Turn = blue
	s.Initial = blue
	s.State = StatePlaying
	s.resetSelection()

	return s.Snapshot(), nil
}

// IsMember reports whether nick may observe this session.
func (s *Session) IsMember(nick string) bool {
	if _, ok := s.Players[nick]; ok {
		return true
	}
	return s.State == StateWaiting && nick == s.Host
}

func (s *Session) SideOf(nick string) (Side, bool) {
	side, ok := s.Players[nick]
	return side, ok
}

// Opponent returns the other seated nickname, or "" before pairing.
func (s *Session) Opponent(nick string) string {
	for n := range s.Players {
		if n != nick {
			return n
		}
	}
	return ""
}

func (s *Session) Result() *GameResult { return s.result }

func (s *Session) checkTurn(nick string) error {
	switch s.State {
	case StateWaiting:
		return ErrNotStarted
	case StateFinished:
		return ErrGameOver
	}
	if _, ok := s.Players[nick]; !ok {
		return ErrNotPlayer
	}
	if s.Turn != nick {
		return ErrNotYourTurn
	}
	return nil
}

// Roll stores a throw for the player on turn and works out whether any piece
// can use it.
func (s *Session) Roll(nick string, out DiceOutcome) (Delta, error) {
	if err := s.checkTurn(nick); err != nil {
		return nil, err
	}
	if s.Dice != nil {
		return nil, ErrAlreadyRolled
	}

	s.Dice = &out
	s.MustPass = !CanAnyPieceMove(s.Board, s.Players[nick], out.Value)

	return Delta{
		KeyDice:     out,
		KeyTurn:     s.Turn,
		KeyMustPass: s.MustPass,
	}, nil
}

// Pass hands the turn over when the current throw cannot be used.
func (s *Session) Pass(nick string) (Delta, error) {
	if err := s.checkTurn(nick); err != nil {
		return nil, err
	}
	if s.Dice == nil {
		return nil, ErrNoDice
	}
	if !s.MustPass {
		return nil, ErrCannotPass
	}

	s.Turn = s.Opponent(nick)
	s.clearDice()

	return s.turnDelta(false), nil
}

// Notify handles a click on cell. Depending on the step it selects a piece,
// cancels or changes the selection, or plays the move. The outcome is nil
// unless a piece actually moved.
func (s *Session) Notify(nick string, cell int) (Delta, *MoveOutcome, error) {
	if err := s.checkTurn(nick); err != nil {
		return nil, nil, err
	}
	if s.Dice == nil {
		return nil, nil, ErrNoDice
	}
	if !s.Board.InRange(cell) {
		return nil, nil, ErrInvalidCell
	}
	side := s.Players[nick]

	if s.Step == StepFrom {
		if err := Selectable(s.Board, cell, side, s.Dice.Value); err != nil {
			return nil, nil, err
		}
		s.Selected = cell
		s.Step = StepTo
		return s.selectionDelta(), nil, nil
	}

	if cell == s.Selected {
		s.resetSelection()
		return s.selectionDelta(), nil, nil
	}

	if p := s.Board[cell]; p != nil && p.Side == side {
		if err := Selectable(s.Board, cell, side, s.Dice.Value); err != nil {
			return nil, nil, err
		}
		s.Selected = cell
		return s.selectionDelta(), nil, nil
	}

	to, ok := LegalTarget(s.Board, s.Selected, side, s.Dice.Value)
	if !ok || to != cell {
		return nil, nil, ErrInvalidTarget
	}

	out := ApplyMove(s.Board, s.Selected, to)

	if s.Board.Count(side.Opponent()) == 0 {
		s.finish(nick, s.Opponent(nick), ReasonCaptured)
		return Delta{
			KeyPieces: s.Board.Clone(),
			KeyWinner: s.Winner,
		}, &out, nil
	}

	if !s.Dice.ExtraTurn {
		s.Turn = s.Opponent(nick)
	}
	s.clearDice()

	return s.turnDelta(true), &out, nil
}

// Forfeit ends a running game in the opponent's favour.
func (s *Session) Forfeit(nick string) (Delta, error) {
	switch s.State {
	case StateWaiting:
		return nil, ErrNotStarted
	case StateFinished:
		return nil, ErrGameOver
	}
	if _, ok := s.Players[nick]; !ok {
		return nil, ErrNotPlayer
	}

	s.finish(s.Opponent(nick), nick, ReasonForfeit)
	return Delta{KeyWinner: s.Winner}, nil
}

// Cancel withdraws the host from a session nobody has joined yet. No winner
// is recorded.
func (s *Session) Cancel(nick string) error {
	if s.State != StateWaiting {
		return ErrAlreadyPaired
	}
	if nick != s.Host {
		return ErrNotPlayer
	}
	s.State = StateFinished
	return nil
}

// LegalMoves lists what nick could play with the pending throw.
func (s *Session) LegalMoves(nick string) []Move {
	side, ok := s.Players[nick]
	if !ok || s.Dice == nil {
		return nil
	}
	return LegalMoves(s.Board, side, s.Dice.Value)
}

// Snapshot is the full resync delta.
func (s *Session) Snapshot() Delta {
	d := Delta{
		KeyPieces:  s.Board.Clone(),
		KeyPlayers: maps.Clone(s.Players),
		KeyTurn:    s.Turn,
		KeyInitial: s.Initial,
		KeyStep:    s.Step,
	}
	if s.Dice != nil {
		d[KeyDice] = *s.Dice
		d[KeyMustPass] = s.MustPass
	}
	if s.Step == StepTo {
		d[KeySelected] = []int{s.Selected}
	}
	if s.Winner != "" {
		d[KeyWinner] = s.Winner
	}
	return d
}

func (s *Session) finish(winner, loser, reason string) {
	s.Winner = winner
	s.State = StateFinished
	s.clearDice()
	s.result = &GameResult{Winner: winner, Loser: loser, Reason: reason}
}

func (s *Session) clearDice() {
	s.Dice = nil
	s.MustPass = false
	s.resetSelection()
}

func (s *Session) resetSelection() {
	s.Step = StepFrom
	s.Selected = -1
}

func (s *Session) selectionDelta() Delta {
	selected := []int{}
	if s.Step == StepTo {
		selected = []int{s.Selected}
	}
	return Delta{
		KeySelected: selected,
		KeyStep:     s.Step,
	}
}

func (s *Session) turnDelta(withPieces bool) Delta {
	d := Delta{
		KeyTurn:     s.Turn,
		KeyStep:     s.Step,
		KeyDice:     nil,
		KeySelected: []int{},
	}
	if withPieces {
		d[KeyPieces] = s.Board.Clone()
	}
	return d
}
