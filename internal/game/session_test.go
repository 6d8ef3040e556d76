package game

import (
	"errors"
	"testing"
)

func newPlayingSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession("g1", 3, 7, "alice")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, err := s.Pair("bob", true); err != nil {
		t.Fatalf("pair: %v", err)
	}
	return s
}

func TestNewSessionInvalidSize(t *testing.T) {
	if _, err := NewSession("g", 1, 8, "alice"); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("err = %v; want ErrInvalidSize", err)
	}
}

func TestPair(t *testing.T) {
	s, _ := NewSession("g", 1, 9, "alice")
	if _, err := s.Roll("alice", OutcomeFor(1)); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("roll while waiting: err = %v", err)
	}
	if _, err := s.Pair("alice", true); !errors.Is(err, ErrSamePlayer) {
		t.Fatalf("self pairing: err = %v", err)
	}

	d, err := s.Pair("bob", false)
	if err != nil {
		t.Fatalf("pair: %v", err)
	}
	if s.State != StatePlaying {
		t.Fatalf("state = %s; want playing", s.State)
	}
	if s.Players["bob"] != SideBlue || s.Players["alice"] != SideRed {
		t.Fatalf("players = %v", s.Players)
	}
	if s.Turn != "bob" || s.Initial != "bob" {
		t.Fatalf("turn/initial = %s/%s; want bob", s.Turn, s.Initial)
	}
	for _, k := range []string{KeyPieces, KeyPlayers, KeyTurn, KeyInitial, KeyStep} {
		if _, ok := d[k]; !ok {
			t.Fatalf("pairing delta missing %q", k)
		}
	}
	if _, err := s.Pair("carol", true); !errors.Is(err, ErrAlreadyPaired) {
		t.Fatalf("third player: err = %v", err)
	}
}

func TestRollPreconditions(t *testing.T) {
	s := newPlayingSession(t)

	if _, err := s.Roll("bob", OutcomeFor(1)); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("bob out of turn: err = %v", err)
	}
	if _, err := s.Roll("mallory", OutcomeFor(1)); !errors.Is(err, ErrNotPlayer) {
		t.Fatalf("stranger: err = %v", err)
	}

	d, err := s.Roll("alice", OutcomeFor(1))
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if d[KeyMustPass] != false || d[KeyTurn] != "alice" {
		t.Fatalf("roll delta = %v", d)
	}
	if _, err := s.Roll("alice", OutcomeFor(2)); !errors.Is(err, ErrAlreadyRolled) {
		t.Fatalf("second roll: err = %v", err)
	}
	if !errors.Is(ErrAlreadyRolled, ErrRejected) {
		t.Fatalf("rejections must match ErrRejected")
	}
}

func TestMustPassAndPass(t *testing.T) {
	s := newPlayingSession(t)

	if _, err := s.Pass("alice"); !errors.Is(err, ErrNoDice) {
		t.Fatalf("pass before roll: err = %v", err)
	}
	d, err := s.Roll("alice", OutcomeFor(2))
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if d[KeyMustPass] != true {
		t.Fatalf("no piece in motion, mustPass should be set")
	}
	if _, _, err := s.Notify("alice", 0); !errors.Is(err, ErrNeedTab) {
		t.Fatalf("select fresh piece with 2: err = %v", err)
	}

	d, err = s.Pass("alice")
	if err != nil {
		t.Fatalf("pass: %v", err)
	}
	if s.Turn != "bob" || s.Dice != nil || s.MustPass {
		t.Fatalf("after pass: turn=%s dice=%v mustPass=%v", s.Turn, s.Dice, s.MustPass)
	}
	if v, ok := d[KeyDice]; !ok || v != nil {
		t.Fatalf("pass delta must carry explicit null dice: %v", d)
	}

	if _, err := s.Roll("bob", OutcomeFor(1)); err != nil {
		t.Fatalf("bob roll: %v", err)
	}
	if _, err := s.Pass("bob"); !errors.Is(err, ErrCannotPass) {
		t.Fatalf("pass with a move available: err = %v", err)
	}
}

func TestSelectCancelAndMove(t *testing.T) {
	s := newPlayingSession(t)

	if _, _, err := s.Notify("alice", 6); !errors.Is(err, ErrNoDice) {
		t.Fatalf("notify before roll: err = %v", err)
	}
	if _, err := s.Roll("alice", OutcomeFor(1)); err != nil {
		t.Fatalf("roll: %v", err)
	}

	if _, _, err := s.Notify("alice", 0); err != nil {
		t.Fatalf("select 0: %v", err)
	}
	if s.Step != StepTo || s.Selected != 0 {
		t.Fatalf("step=%s selected=%d", s.Step, s.Selected)
	}

	// re-select another own piece
	d, _, err := s.Notify("alice", 6)
	if err != nil {
		t.Fatalf("reselect 6: %v", err)
	}
	if sel, _ := d[KeySelected].([]int); len(sel) != 1 || sel[0] != 6 {
		t.Fatalf("selected delta = %v", d[KeySelected])
	}

	// click again cancels
	if _, _, err := s.Notify("alice", 6); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if s.Step != StepFrom || s.Selected != -1 {
		t.Fatalf("cancel left step=%s selected=%d", s.Step, s.Selected)
	}

	if _, _, err := s.Notify("alice", 6); err != nil {
		t.Fatalf("select 6: %v", err)
	}
	if _, _, err := s.Notify("alice", 20); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("wrong target: err = %v", err)
	}
	if s.Step != StepTo || s.Selected != 6 {
		t.Fatalf("rejected move changed selection")
	}

	d, out, err := s.Notify("alice", 13)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if out == nil || out.From != 6 || out.To != 13 {
		t.Fatalf("outcome = %+v", out)
	}
	// a 1 grants another throw
	if s.Turn != "alice" {
		t.Fatalf("turn = %s; want alice after extra-turn value", s.Turn)
	}
	if s.Dice != nil || s.Step != StepFrom {
		t.Fatalf("dice or step not reset after move")
	}
	if _, ok := d[KeyPieces]; !ok {
		t.Fatalf("move delta missing pieces")
	}
}

func TestTurnPassesWithoutExtraTurn(t *testing.T) {
	s := newPlayingSession(t)
	s.Board[6].InMotion = true

	if _, err := s.Roll("alice", OutcomeFor(2)); err != nil {
		t.Fatalf("roll: %v", err)
	}
	if s.MustPass {
		t.Fatalf("piece in motion at 6 can move 2")
	}
	if _, _, err := s.Notify("alice", 6); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, _, err := s.Notify("alice", 12); err != nil {
		t.Fatalf("move: %v", err)
	}
	if s.Turn != "bob" {
		t.Fatalf("turn = %s; want bob", s.Turn)
	}
}

func TestWinByCapture(t *testing.T) {
	s := newPlayingSession(t)
	s.Board = emptyBoard(7)
	s.Board[0] = &Piece{Side: SideBlue, InMotion: true}
	s.Board[2] = &Piece{Side: SideRed, InMotion: true}

	if _, err := s.Roll("alice", OutcomeFor(2)); err != nil {
		t.Fatalf("roll: %v", err)
	}
	if _, _, err := s.Notify("alice", 0); err != nil {
		t.Fatalf("select: %v", err)
	}
	d, out, err := s.Notify("alice", 2)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if !out.Captured {
		t.Fatalf("expected capture")
	}
	if d[KeyWinner] != "alice" || s.State != StateFinished {
		t.Fatalf("winner=%v state=%s", d[KeyWinner], s.State)
	}
	res := s.Result()
	if res == nil || res.Winner != "alice" || res.Loser != "bob" || res.Reason != ReasonCaptured {
		t.Fatalf("result = %+v", res)
	}

	if _, err := s.Roll("bob", OutcomeFor(1)); !errors.Is(err, ErrGameOver) {
		t.Fatalf("roll after finish: err = %v", err)
	}
	if _, err := s.Forfeit("bob"); !errors.Is(err, ErrGameOver) {
		t.Fatalf("leave after finish: err = %v", err)
	}
}

func TestForfeit(t *testing.T) {
	s := newPlayingSession(t)
	if _, err := s.Forfeit("mallory"); !errors.Is(err, ErrNotPlayer) {
		t.Fatalf("stranger forfeit: err = %v", err)
	}
	d, err := s.Forfeit("bob")
	if err != nil {
		t.Fatalf("forfeit: %v", err)
	}
	if d[KeyWinner] != "alice" {
		t.Fatalf("winner = %v; want alice", d[KeyWinner])
	}
	if res := s.Result(); res == nil || res.Loser != "bob" || res.Reason != ReasonForfeit {
		t.Fatalf("result = %+v", res)
	}
}

func TestCancelWaiting(t *testing.T) {
	s, _ := NewSession("g", 1, 7, "alice")
	if err := s.Cancel("bob"); !errors.Is(err, ErrNotPlayer) {
		t.Fatalf("cancel by stranger: err = %v", err)
	}
	if err := s.Cancel("alice"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if s.State != StateFinished || s.Result() != nil {
		t.Fatalf("cancelled session: state=%s result=%+v", s.State, s.Result())
	}
	if _, err := s.Pair("bob", true); !errors.Is(err, ErrAlreadyPaired) {
		t.Fatalf("pairing a cancelled session: err = %v", err)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	s := newPlayingSession(t)
	if _, err := s.Roll("alice", OutcomeFor(1)); err != nil {
		t.Fatalf("roll: %v", err)
	}
	if _, _, err := s.Notify("alice", 6); err != nil {
		t.Fatalf("select: %v", err)
	}

	snap := s.Snapshot()
	if _, ok := snap[KeyDice]; !ok {
		t.Fatalf("snapshot missing pending dice")
	}
	if sel, _ := snap[KeySelected].([]int); len(sel) != 1 || sel[0] != 6 {
		t.Fatalf("snapshot selected = %v", snap[KeySelected])
	}
	pieces := snap[KeyPieces].(Board)
	pieces[6] = nil
	if s.Board[6] == nil {
		t.Fatalf("snapshot shares the board")
	}
}

// Random play with the bot picker must never break board invariants.
func TestRandomPlayInvariants(t *testing.T) {
	src := NewSeededSource(7)
	dice := NewDice(src)

	for _, size := range BoardSizes {
		s, _ := NewSession("g", 1, size, "alice")
		if _, err := s.Pair("bob", src.CoinFlip()); err != nil {
			t.Fatalf("pair: %v", err)
		}

		prev := map[Side]int{SideBlue: size, SideRed: size}
		for i := 0; i < 2000 && s.State == StatePlaying; i++ {
			nick := s.Turn
			if _, err := s.Roll(nick, dice.Roll()); err != nil {
				t.Fatalf("roll: %v", err)
			}
			if s.MustPass {
				if _, err := s.Pass(nick); err != nil {
					t.Fatalf("pass: %v", err)
				}
				continue
			}
			m, ok := ChooseMove(BotHard, s.Board, s.LegalMoves(nick), src)
			if !ok {
				t.Fatalf("mustPass false but no legal move")
			}
			if _, _, err := s.Notify(nick, m.From); err != nil {
				t.Fatalf("select %d: %v", m.From, err)
			}
			if _, _, err := s.Notify(nick, m.To); err != nil {
				t.Fatalf("move %v: %v", m, err)
			}

			for _, side := range []Side{SideBlue, SideRed} {
				n := s.Board.Count(side)
				if n > prev[side] {
					t.Fatalf("%s piece count grew from %d to %d", side, prev[side], n)
				}
				prev[side] = n
			}
			if len(s.Board) != Rows*size {
				t.Fatalf("board resized")
			}
			if s.State == StatePlaying {
				if _, ok := s.Players[s.Turn]; !ok {
					t.Fatalf("turn %q is not a player", s.Turn)
				}
			}
		}
	}
}
