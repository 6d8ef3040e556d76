package domain

import "time"

// GameRecord is a finished, ranked session.
type GameRecord struct {
	ID         int64     `db:"id" json:"id"`
	SessionID  string    `db:"session_id" json:"game"`
	Group      int       `db:"group_id" json:"group"`
	Size       int       `db:"size" json:"size"`
	Winner     string    `db:"winner" json:"winner"`
	Loser      string    `db:"loser" json:"loser"`
	Reason     string    `db:"reason" json:"reason"`
	FinishedAt time.Time `db:"finished_at" json:"finishedAt"`
}
