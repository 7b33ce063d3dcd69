package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/jose-valero/guildrules-bot/internal/domain"
)

type AutoPingRepo struct{ db *sql.DB }

func NewAutoPingRepo(db *sql.DB) *AutoPingRepo { return &AutoPingRepo{db: db} }

const autoPingCols = `id, guild_id, forum_id, tag, role_id, target_channel_id, created_at`

func (r *AutoPingRepo) ListForForum(ctx context.Context, guildID, forumID string) ([]domain.AutoPing, error) {
	return r.query(ctx, `
SELECT `+autoPingCols+`
  FROM auto_pings
 WHERE guild_id = $1 AND forum_id = $2
 ORDER BY seq ASC
`, guildID, forumID)
}

func (r *AutoPingRepo) ListForGuild(ctx context.Context, guildID string) ([]domain.AutoPing, error) {
	return r.query(ctx, `
SELECT `+autoPingCols+`
  FROM auto_pings
 WHERE guild_id = $1
 ORDER BY seq ASC
`, guildID)
}

func (r *AutoPingRepo) query(ctx context.Context, q string, args ...any) ([]domain.AutoPing, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AutoPing
	for rows.Next() {
		var a domain.AutoPing
		if err := rows.Scan(&a.ID, &a.GuildID, &a.ForumID, &a.Tag, &a.RoleID, &a.TargetChannelID, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AutoPingRepo) Create(ctx context.Context, a domain.AutoPing) (domain.AutoPing, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO auto_pings (`+autoPingCols+`)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, a.ID, a.GuildID, a.ForumID, a.Tag, a.RoleID, a.TargetChannelID, a.CreatedAt)
	if err != nil {
		return domain.AutoPing{}, err
	}
	return a, nil
}

func (r *AutoPingRepo) Delete(ctx context.Context, guildID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM auto_pings WHERE id = $1 AND guild_id = $2`, id, guildID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
