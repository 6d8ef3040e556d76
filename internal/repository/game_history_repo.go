package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ktz03/tab-game/internal/domain"
)

type GameHistoryRepository struct {
	db *pgxpool.Pool
}

func NewGameHistoryRepository(db *pgxpool.Pool) *GameHistoryRepository {
	return &GameHistoryRepository{db: db}
}

// SaveGame stores a finished session.
func (r *GameHistoryRepository) SaveGame(ctx context.Context, g *domain.GameRecord) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO game_history
			(session_id, group_id, size, winner, loser, reason, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		g.SessionID,
		g.Group,
		g.Size,
		g.Winner,
		g.Loser,
		g.Reason,
		g.FinishedAt,
	).Scan(&g.ID)
}

// GamesByNick returns the latest games nick took part in, newest first.
func (r *GameHistoryRepository) GamesByNick(ctx context.Context, nick string, limit int) ([]domain.GameRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, session_id, group_id, size, winner, loser, reason, finished_at
		 FROM game_history
		 WHERE winner = $1 OR loser = $1
		 ORDER BY finished_at DESC
		 LIMIT $2`,
		nick, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []domain.GameRecord
	for rows.Next() {
		var g domain.GameRecord
		if err := rows.Scan(
			&g.ID,
			&g.SessionID,
			&g.Group,
			&g.Size,
			&g.Winner,
			&g.Loser,
			&g.Reason,
			&g.FinishedAt,
		); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}
