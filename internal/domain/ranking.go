package domain

import (
	"fmt"
	"sort"
)

// RankingKey selects one ranking table.
type RankingKey struct {
	Group int
	Size  int
}

func (k RankingKey) String() string {
	return fmt.Sprintf("%d-%d", k.Group, k.Size)
}

func ParseRankingKey(s string) (RankingKey, error) {
	var k RankingKey
	if _, err := fmt.Sscanf(s, "%d-%d", &k.Group, &k.Size); err != nil {
		return RankingKey{}, fmt.Errorf("parse ranking key %q: %w", s, err)
	}
	return k, nil
}

type RankingEntry struct {
	Nick      string `db:"nick" json:"nick"`
	Games     int    `db:"games" json:"games"`
	Victories int    `db:"victories" json:"victories"`
}

// SortRanking orders entries by victories descending, then games ascending.
func SortRanking(entries []RankingEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Victories != entries[j].Victories {
			return entries[i].Victories > entries[j].Victories
		}
		return entries[i].Games < entries[j].Games
	})
}
