package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/jose-valero/guildrules-bot/internal/domain"
)

type PhraseRepo struct{ db *sql.DB }

func NewPhraseRepo(db *sql.DB) *PhraseRepo { return &PhraseRepo{db: db} }

// ListForGuild devuelve las reglas globales y las del guild, en orden de alta.
func (r *PhraseRepo) ListForGuild(ctx context.Context, guildID string) ([]domain.PhraseMatcher, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, COALESCE(guild_id, ''), phrase, match_threshold, log_channel_id, created_at
  FROM phrase_matchers
 WHERE guild_id = $1 OR guild_id IS NULL
 ORDER BY seq ASC
`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PhraseMatcher
	for rows.Next() {
		var p domain.PhraseMatcher
		if err := rows.Scan(&p.ID, &p.GuildID, &p.Phrase, &p.MatchThreshold, &p.LogChannelID, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PhraseRepo) Create(ctx context.Context, p domain.PhraseMatcher) (domain.PhraseMatcher, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO phrase_matchers (id, guild_id, phrase, match_threshold, log_channel_id, created_at)
VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6)
`, p.ID, p.GuildID, p.Phrase, p.MatchThreshold, p.LogChannelID, p.CreatedAt)
	if err != nil {
		return domain.PhraseMatcher{}, err
	}
	return p, nil
}

// Delete borra una regla del guild. Las globales no se borran desde un guild.
func (r *PhraseRepo) Delete(ctx context.Context, guildID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM phrase_matchers
 WHERE id = $1 AND guild_id = $2
`, id, guildID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
