package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ktz03/tab-game/internal/domain"
)

type RankingRepository struct {
	db *pgxpool.Pool
}

func NewRankingRepository(db *pgxpool.Pool) *RankingRepository {
	return &RankingRepository{db: db}
}

func (r *RankingRepository) LoadRankings(ctx context.Context) (map[domain.RankingKey][]domain.RankingEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT group_id, size, nick, games, victories
		 FROM rankings
		 ORDER BY group_id, size, victories DESC, games ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[domain.RankingKey][]domain.RankingEntry)
	for rows.Next() {
		var k domain.RankingKey
		var e domain.RankingEntry
		if err := rows.Scan(&k.Group, &k.Size, &e.Nick, &e.Games, &e.Victories); err != nil {
			return nil, err
		}
		out[k] = append(out[k], e)
	}
	return out, rows.Err()
}

// SaveRanking replaces the stored table for key with entries.
func (r *RankingRepository) SaveRanking(ctx context.Context, key domain.RankingKey, entries []domain.RankingEntry) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		_, err := tx.Exec(ctx,
			`INSERT INTO rankings (group_id, size, nick, games, victories, updated_at)
			 VALUES ($1, $2, $3, $4, $5, now())
			 ON CONFLICT (group_id, size, nick)
			 DO UPDATE SET games = EXCLUDED.games, victories = EXCLUDED.victories, updated_at = now()`,
			key.Group, key.Size, e.Nick, e.Games, e.Victories,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
