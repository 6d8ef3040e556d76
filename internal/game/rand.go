package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

// Source is a goroutine-safe random generator shared by every session.
type Source struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSource seeds a ChaCha8 generator from crypto/rand.
func NewSource() *Source {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return &Source{r: rand.New(rand.NewChaCha8(seed))}
}

// NewSeededSource returns a deterministic generator for tests and replays.
func NewSeededSource(seed uint64) *Source {
	var b [32]byte
	binary.LittleEndian.PutUint64(b[:], seed)
	return &Source{r: rand.New(rand.NewChaCha8(b))}
}

func (s *Source) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

func (s *Source) Perm(n int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Perm(n)
}

func (s *Source) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// CoinFlip is an unbiased boolean.
func (s *Source) CoinFlip() bool {
	return s.IntN(2) == 0
}
