package game

import "fmt"

type BotLevel string

const (
	BotEasy   BotLevel = "easy"
	BotMedium BotLevel = "medium"
	BotHard   BotLevel = "hard"
)

func ParseBotLevel(s string) (BotLevel, error) {
	switch BotLevel(s) {
	case BotEasy, BotMedium, BotHard:
		return BotLevel(s), nil
	case "":
		return BotEasy, nil
	}
	return "", rejected(fmt.Sprintf("unknown bot level %q", s))
}

// ChooseMove picks one of moves for a bot of the given level. Captures are
// preferred always on hard and half the time on medium. ok is false when
// moves is empty.
func ChooseMove(level BotLevel, b Board, moves []Move, src *Source) (Move, bool) {
	if len(moves) == 0 {
		return Move{}, false
	}

	preferCapture := level == BotHard || (level == BotMedium && src.CoinFlip())
	if preferCapture {
		var captures []Move
		for _, m := range moves {
			if b[m.To] != nil {
				captures = append(captures, m)
			}
		}
		if len(captures) > 0 {
			return captures[src.IntN(len(captures))], true
		}
	}
	return moves[src.IntN(len(moves))], true
}
