package game

import (
	"errors"
	"testing"
)

func TestChooseMoveHardCaptures(t *testing.T) {
	b := emptyBoard(7)
	b[0] = &Piece{Side: SideBlue, InMotion: true}
	b[4] = &Piece{Side: SideBlue, InMotion: true}
	b[6] = &Piece{Side: SideRed, InMotion: true}

	moves := LegalMoves(b, SideBlue, 2)
	if len(moves) != 2 {
		t.Fatalf("moves = %v", moves)
	}
	src := NewSeededSource(3)
	for i := 0; i < 50; i++ {
		m, ok := ChooseMove(BotHard, b, moves, src)
		if !ok || m.To != 6 {
			t.Fatalf("hard bot picked %v; want the capture on 6", m)
		}
	}
}

func TestChooseMoveEmpty(t *testing.T) {
	if _, ok := ChooseMove(BotEasy, emptyBoard(7), nil, NewSeededSource(1)); ok {
		t.Fatalf("no moves must report ok=false")
	}
}

func TestParseBotLevel(t *testing.T) {
	cases := map[string]BotLevel{"": BotEasy, "easy": BotEasy, "medium": BotMedium, "hard": BotHard}
	for in, want := range cases {
		got, err := ParseBotLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseBotLevel(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := ParseBotLevel("godlike"); !errors.Is(err, ErrRejected) {
		t.Fatalf("unknown level: err = %v", err)
	}
}
