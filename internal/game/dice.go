package game

const (
	// Sticks is the number of two-faced throwing sticks.
	Sticks = 4

	// DiceAllDark is the value of a throw with no lit sticks.
	DiceAllDark = 6
)

// lightWeights are binomial(4, 1/2) counts out of 16 for 0..4 lit sticks.
var lightWeights = [Sticks + 1]int{1, 4, 6, 4, 1}

// DiceOutcome is one throw of the four sticks.
type DiceOutcome struct {
	Sticks    [Sticks]bool `json:"stickValues"`
	Value     int          `json:"value"`
	ExtraTurn bool         `json:"keepPlaying"`
}

// Dice throws sticks using an injected random source.
type Dice struct {
	src *Source
}

func NewDice(src *Source) *Dice {
	return &Dice{src: src}
}

// Roll performs one throw.
func (d *Dice) Roll() DiceOutcome {
	lit := d.lightCount()

	var out DiceOutcome
	for _, idx := range d.src.Perm(Sticks)[:lit] {
		out.Sticks[idx] = true
	}
	out.Value = DiceValue(lit)
	out.ExtraTurn = GrantsExtraTurn(out.Value)
	return out
}

func (d *Dice) lightCount() int {
	n := d.src.IntN(16)
	for count, w := range lightWeights {
		if n < w {
			return count
		}
		n -= w
	}
	return Sticks
}

// DiceValue maps a lit-stick count to the move distance. All dark is worth 6.
func DiceValue(lit int) int {
	if lit == 0 {
		return DiceAllDark
	}
	return lit
}

// GrantsExtraTurn reports whether value lets the thrower act again.
func GrantsExtraTurn(value int) bool {
	return value == 1 || value == 4 || value == 6
}

// OutcomeFor builds the outcome with the first value sticks lit. Used by the
// bot and tests that need a specific throw.
func OutcomeFor(value int) DiceOutcome {
	var out DiceOutcome
	lit := value
	if value == DiceAllDark {
		lit = 0
	}
	for i := 0; i < lit && i < Sticks; i++ {
		out.Sticks[i] = true
	}
	out.Value = value
	out.ExtraTurn = GrantsExtraTurn(value)
	return out
}
