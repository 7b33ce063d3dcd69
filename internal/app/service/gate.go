package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jose-valero/guildrules-bot/internal/domain"
)

// Gate admite una acción a lo sumo una vez por ventana y por ScopeKey.
// La atomicidad la da el store (upsert condicional o mutex).
type Gate struct {
	store CooldownRepo
	now   func() time.Time
}

func NewGate(store CooldownRepo) *Gate {
	return &Gate{store: store, now: time.Now}
}

// Admit devuelve true si la acción puede seguir. Con window <= 0 siempre admite
// y no toca el store.
func (g *Gate) Admit(ctx context.Context, key domain.ScopeKey, window time.Duration) (bool, error) {
	if window <= 0 {
		return true, nil
	}
	ok, err := g.store.TryAcquire(ctx, key, g.now().UTC(), window)
	if err != nil {
		return false, fmt.Errorf("%w: cooldown %s: %w", domain.ErrStoreUnavailable, key, err)
	}
	if !ok {
		gateRejectCount.WithLabelValues(string(key.Kind)).Inc()
	}
	return ok, nil
}
