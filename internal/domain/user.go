package domain

import "time"

// User is a registered nickname with its password hash.
type User struct {
	Nick         string    `db:"nick" json:"nick"`
	PasswordHash string    `db:"password_hash" json:"passwordHash"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
