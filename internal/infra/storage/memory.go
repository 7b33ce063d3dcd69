package storage

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jose-valero/guildrules-bot/internal/domain"
)

// Memory agrupa implementaciones en memoria de los cinco repos. Sirve para
// tests y para correr el bot sin Postgres (un solo proceso dueño de todo).
type Memory struct {
	Phrases   *MemPhraseRepo
	AutoPings *MemAutoPingRepo
	AutoPolls *MemAutoPollRepo
	Emojis    *MemEmojiRepo
	Cooldowns *MemCooldownRepo
}

func NewMemory() *Memory {
	return &Memory{
		Phrases:   &MemPhraseRepo{},
		AutoPings: &MemAutoPingRepo{},
		AutoPolls: &MemAutoPollRepo{},
		Emojis:    &MemEmojiRepo{},
		Cooldowns: &MemCooldownRepo{},
	}
}

// ---------- phrases ----------

type MemPhraseRepo struct {
	mu    sync.RWMutex
	rules []domain.PhraseMatcher
}

func (r *MemPhraseRepo) ListForGuild(_ context.Context, guildID string) ([]domain.PhraseMatcher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.PhraseMatcher
	for _, p := range r.rules {
		if p.GuildID == "" || p.GuildID == guildID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *MemPhraseRepo) Create(_ context.Context, p domain.PhraseMatcher) (domain.PhraseMatcher, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()
	r.mu.Lock()
	r.rules = append(r.rules, p)
	r.mu.Unlock()
	return p, nil
}

func (r *MemPhraseRepo) Delete(_ context.Context, guildID, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.rules)
	r.rules = slices.DeleteFunc(r.rules, func(p domain.PhraseMatcher) bool {
		return p.ID == id && p.GuildID == guildID && guildID != ""
	})
	return len(r.rules) < n, nil
}

// ---------- auto-ping ----------

type MemAutoPingRepo struct {
	mu    sync.RWMutex
	rules []domain.AutoPing
}

func (r *MemAutoPingRepo) ListForForum(_ context.Context, guildID, forumID string) ([]domain.AutoPing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.AutoPing
	for _, a := range r.rules {
		if a.GuildID == guildID && a.ForumID == forumID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *MemAutoPingRepo) ListForGuild(_ context.Context, guildID string) ([]domain.AutoPing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.AutoPing
	for _, a := range r.rules {
		if a.GuildID == guildID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *MemAutoPingRepo) Create(_ context.Context, a domain.AutoPing) (domain.AutoPing, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now().UTC()
	r.mu.Lock()
	r.rules = append(r.rules, a)
	r.mu.Unlock()
	return a, nil
}

func (r *MemAutoPingRepo) Delete(_ context.Context, guildID, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.rules)
	r.rules = slices.DeleteFunc(r.rules, func(a domain.AutoPing) bool {
		return a.ID == id && a.GuildID == guildID
	})
	return len(r.rules) < n, nil
}

// ---------- auto-poll ----------

type MemAutoPollRepo struct {
	mu    sync.RWMutex
	rules []domain.AutoPoll
}

func (r *MemAutoPollRepo) ListForGuild(_ context.Context, guildID string) ([]domain.AutoPoll, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.AutoPoll
	for _, a := range r.rules {
		if a.GuildID == guildID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *MemAutoPollRepo) Create(_ context.Context, a domain.AutoPoll) (domain.AutoPoll, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Mode == "" {
		a.Mode = domain.PollModeAny
	}
	a.CreatedAt = time.Now().UTC()
	r.mu.Lock()
	r.rules = append(r.rules, a)
	r.mu.Unlock()
	return a, nil
}

func (r *MemAutoPollRepo) Delete(_ context.Context, guildID, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.rules)
	r.rules = slices.DeleteFunc(r.rules, func(a domain.AutoPoll) bool {
		return a.ID == id && a.GuildID == guildID
	})
	return len(r.rules) < n, nil
}

// ---------- emoji ----------

type emojiKey struct{ guildID, name string }

type MemEmojiRepo struct {
	mu     sync.Mutex
	counts map[emojiKey]domain.EmojiUsage
}

func (r *MemEmojiRepo) Increment(_ context.Context, guildID, name string, at time.Time) (domain.EmojiUsage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[emojiKey]domain.EmojiUsage{}
	}
	k := emojiKey{guildID, name}
	e, ok := r.counts[k]
	if !ok {
		e = domain.EmojiUsage{GuildID: guildID, Name: name}
	}
	e.Count++
	if at.After(e.LastUsage) {
		e.LastUsage = at
	}
	r.counts[k] = e
	return e, nil
}

func (r *MemEmojiRepo) Get(_ context.Context, guildID, name string) (domain.EmojiUsage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.counts[emojiKey{guildID, name}]
	if !ok {
		return domain.EmojiUsage{}, ErrNotFound
	}
	return e, nil
}

func (r *MemEmojiRepo) Top(_ context.Context, guildID string, limit int) ([]domain.EmojiUsage, error) {
	r.mu.Lock()
	var out []domain.EmojiUsage
	for k, e := range r.counts {
		if k.guildID == guildID {
			out = append(out, e)
		}
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return strings.Compare(out[i].Name, out[j].Name) < 0
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---------- cooldowns ----------

// MemCooldownRepo guarda el último uso por ScopeKey. El chequeo y la
// escritura ocurren bajo el mismo lock.
type MemCooldownRepo struct {
	mu   sync.Mutex
	last map[domain.ScopeKey]time.Time
}

func (r *MemCooldownRepo) TryAcquire(_ context.Context, key domain.ScopeKey, now time.Time, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if last, ok := r.last[key]; ok && now.Sub(last) < window {
		return false, nil
	}
	if r.last == nil {
		r.last = map[domain.ScopeKey]time.Time{}
	}
	r.last[key] = now
	return true, nil
}

func (r *MemCooldownRepo) Get(_ context.Context, key domain.ScopeKey) (domain.CommandCooldown, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	last, ok := r.last[key]
	if !ok {
		return domain.CommandCooldown{}, ErrNotFound
	}
	return domain.CommandCooldown{Key: key, LastUse: last}, nil
}
