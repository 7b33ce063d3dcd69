package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	pq "github.com/lib/pq"

	"github.com/jose-valero/guildrules-bot/internal/domain"
)

type AutoPollRepo struct{ db *sql.DB }

func NewAutoPollRepo(db *sql.DB) *AutoPollRepo { return &AutoPollRepo{db: db} }

func (r *AutoPollRepo) ListForGuild(ctx context.Context, guildID string) ([]domain.AutoPoll, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, guild_id, channels, roles, mode, emojis, created_at
  FROM auto_polls
 WHERE guild_id = $1
 ORDER BY seq ASC
`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AutoPoll
	for rows.Next() {
		var (
			a    domain.AutoPoll
			mode string
		)
		if err := rows.Scan(&a.ID, &a.GuildID, pq.Array(&a.Channels), pq.Array(&a.Roles), &mode, pq.Array(&a.Emojis), &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Mode = domain.PollMode(mode)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AutoPollRepo) Create(ctx context.Context, a domain.AutoPoll) (domain.AutoPoll, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Mode == "" {
		a.Mode = domain.PollModeAny
	}
	a.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO auto_polls (id, guild_id, channels, roles, mode, emojis, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, a.ID, a.GuildID, pq.Array(nonNil(a.Channels)), pq.Array(nonNil(a.Roles)), string(a.Mode), pq.Array(nonNil(a.Emojis)), a.CreatedAt)
	if err != nil {
		return domain.AutoPoll{}, err
	}
	return a, nil
}

func (r *AutoPollRepo) Delete(ctx context.Context, guildID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM auto_polls WHERE id = $1 AND guild_id = $2`, id, guildID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// pq.Array(nil) manda NULL y la columna es NOT NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
