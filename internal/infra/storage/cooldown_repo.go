package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jose-valero/guildrules-bot/internal/domain"
)

type CooldownRepo struct{ db *sql.DB }

func NewCooldownRepo(db *sql.DB) *CooldownRepo { return &CooldownRepo{db: db} }

// TryAcquire escribe now como último uso si no hay registro o si el último
// uso es de hace window o más. Es un solo statement: ON CONFLICT bloquea la
// fila y reevalúa el WHERE, así que dos llamadas concurrentes no pueden ser
// admitidas ambas dentro de la misma ventana.
func (r *CooldownRepo) TryAcquire(ctx context.Context, key domain.ScopeKey, now time.Time, window time.Duration) (bool, error) {
	var lastUse time.Time
	err := r.db.QueryRowContext(ctx, `
INSERT INTO command_cooldowns (kind, command_id, guild_id, user_id, last_use)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (kind, command_id, guild_id, user_id) DO UPDATE SET
  last_use = EXCLUDED.last_use
WHERE command_cooldowns.last_use <= $6
RETURNING last_use
`, string(key.Kind), key.ID, key.GuildID, key.ActorID, now, now.Add(-window)).Scan(&lastUse)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *CooldownRepo) Get(ctx context.Context, key domain.ScopeKey) (domain.CommandCooldown, error) {
	c := domain.CommandCooldown{Key: key}
	err := r.db.QueryRowContext(ctx, `
SELECT last_use
  FROM command_cooldowns
 WHERE kind = $1 AND command_id = $2 AND guild_id = $3 AND user_id = $4
`, string(key.Kind), key.ID, key.GuildID, key.ActorID).Scan(&c.LastUse)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CommandCooldown{}, ErrNotFound
	}
	return c, err
}
