package storage

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/guildrules-bot/internal/domain"
)

func TestMemPhraseRepo(t *testing.T) {
	ctx := context.Background()
	r := NewMemory().Phrases

	g, err := r.Create(ctx, domain.PhraseMatcher{Phrase: "global", LogChannelID: "C"})
	require.NoError(t, err)
	assert.NotEmpty(t, g.ID)
	assert.False(t, g.CreatedAt.IsZero())
	p1, _ := r.Create(ctx, domain.PhraseMatcher{GuildID: "G1", Phrase: "one", LogChannelID: "C"})
	_, _ = r.Create(ctx, domain.PhraseMatcher{GuildID: "G2", Phrase: "two", LogChannelID: "C"})

	got, err := r.ListForGuild(ctx, "G1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "global", got[0].Phrase)
	assert.Equal(t, "one", got[1].Phrase)

	ok, err := r.Delete(ctx, "G2", p1.ID)
	require.NoError(t, err)
	assert.False(t, ok, "other guild cannot delete")

	ok, _ = r.Delete(ctx, "G1", g.ID)
	assert.False(t, ok, "global rules are not deleted from a guild")

	ok, _ = r.Delete(ctx, "G1", p1.ID)
	assert.True(t, ok)
	got, _ = r.ListForGuild(ctx, "G1")
	assert.Len(t, got, 1)
}

func TestMemAutoPingRepo(t *testing.T) {
	ctx := context.Background()
	r := NewMemory().AutoPings
	a, _ := r.Create(ctx, domain.AutoPing{GuildID: "G1", ForumID: "F1", Tag: "bug"})
	_, _ = r.Create(ctx, domain.AutoPing{GuildID: "G1", ForumID: "F1", Tag: "bug"})
	_, _ = r.Create(ctx, domain.AutoPing{GuildID: "G1", ForumID: "F2", Tag: "bug"})

	got, _ := r.ListForForum(ctx, "G1", "F1")
	assert.Len(t, got, 2, "duplicates are kept")
	got, _ = r.ListForGuild(ctx, "G1")
	assert.Len(t, got, 3)

	ok, _ := r.Delete(ctx, "G1", a.ID)
	assert.True(t, ok)
}

func TestMemEmojiRepo(t *testing.T) {
	ctx := context.Background()
	r := NewMemory().Emojis
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := r.Get(ctx, "G1", "🔥")
	assert.ErrorIs(t, err, ErrNotFound)

	e, _ := r.Increment(ctx, "G1", "🔥", t0.Add(time.Minute))
	assert.EqualValues(t, 1, e.Count)
	e, _ = r.Increment(ctx, "G1", "🔥", t0)
	assert.EqualValues(t, 2, e.Count)
	assert.Equal(t, t0.Add(time.Minute), e.LastUsage, "last usage never goes back")

	_, _ = r.Increment(ctx, "G1", "a", t0)
	_, _ = r.Increment(ctx, "G2", "🔥", t0)
	top, _ := r.Top(ctx, "G1", 10)
	require.Len(t, top, 2)
	assert.Equal(t, "🔥", top[0].Name)
}

func TestMemEmojiRepo_ConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	r := NewMemory().Emojis
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.Increment(ctx, "G1", "👍", time.Now())
		}()
	}
	wg.Wait()
	e, err := r.Get(ctx, "G1", "👍")
	require.NoError(t, err)
	assert.EqualValues(t, 100, e.Count)
}

func TestMemCooldownRepo(t *testing.T) {
	ctx := context.Background()
	r := NewMemory().Cooldowns
	key := domain.ScopeKey{Kind: domain.KindCommand, ID: "ping", GuildID: "G1", ActorID: "U1"}
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	ok, _ := r.TryAcquire(ctx, key, t0, 10*time.Second)
	assert.True(t, ok)
	ok, _ = r.TryAcquire(ctx, key, t0.Add(2*time.Second), 10*time.Second)
	assert.False(t, ok)
	ok, _ = r.TryAcquire(ctx, key, t0.Add(10*time.Second), 10*time.Second)
	assert.True(t, ok, "exactly one window later")

	c, err := r.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(10*time.Second), c.LastUse)

	var admitted atomic.Int32
	var wg sync.WaitGroup
	now := t0.Add(time.Hour)
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := r.TryAcquire(ctx, key, now, time.Minute); ok {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, admitted.Load())
}

func TestMemRepos_ZeroValueUsable(t *testing.T) {
	ctx := context.Background()

	var e MemEmojiRepo
	u, err := e.Increment(ctx, "G1", "🔥", time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, u.Count)

	var c MemCooldownRepo
	key := domain.ScopeKey{Kind: domain.KindCommand, ID: "ping", GuildID: "G1", ActorID: "U1"}
	ok, err := c.TryAcquire(ctx, key, time.Now(), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = c.TryAcquire(ctx, key, time.Now(), time.Minute)
	assert.False(t, ok)
}
