package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jose-valero/guildrules-bot/internal/domain"
)

type EmojiRepo struct{ db *sql.DB }

func NewEmojiRepo(db *sql.DB) *EmojiRepo { return &EmojiRepo{db: db} }

// Increment suma uno al contador (lo crea en 1 si no existía).
func (r *EmojiRepo) Increment(ctx context.Context, guildID, name string, at time.Time) (domain.EmojiUsage, error) {
	var e domain.EmojiUsage
	err := r.db.QueryRowContext(ctx, `
INSERT INTO emoji_usage (guild_id, name, count, last_usage)
VALUES ($1, $2, 1, $3)
ON CONFLICT (guild_id, name) DO UPDATE SET
  count      = emoji_usage.count + 1,
  last_usage = GREATEST(emoji_usage.last_usage, EXCLUDED.last_usage)
RETURNING guild_id, name, count, last_usage
`, guildID, name, at).Scan(&e.GuildID, &e.Name, &e.Count, &e.LastUsage)
	return e, err
}

func (r *EmojiRepo) Get(ctx context.Context, guildID, name string) (domain.EmojiUsage, error) {
	var e domain.EmojiUsage
	err := r.db.QueryRowContext(ctx, `
SELECT guild_id, name, count, last_usage
  FROM emoji_usage
 WHERE guild_id = $1 AND name = $2
`, guildID, name).Scan(&e.GuildID, &e.Name, &e.Count, &e.LastUsage)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.EmojiUsage{}, ErrNotFound
	}
	return e, err
}

func (r *EmojiRepo) Top(ctx context.Context, guildID string, limit int) ([]domain.EmojiUsage, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT guild_id, name, count, last_usage
  FROM emoji_usage
 WHERE guild_id = $1
 ORDER BY count DESC, name ASC
 LIMIT $2
`, guildID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.EmojiUsage
	for rows.Next() {
		var e domain.EmojiUsage
		if err := rows.Scan(&e.GuildID, &e.Name, &e.Count, &e.LastUsage); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
