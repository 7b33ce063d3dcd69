package storage

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/guildrules-bot/internal/domain"
)

// testDB abre TEST_DATABASE_URL y migra; sin la variable el test se salta.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := Open(context.Background(), url, 8)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestPostgres_Phrases(t *testing.T) {
	ctx := context.Background()
	pg := NewPostgres(testDB(t))
	guild := uuid.NewString()

	p, err := pg.Phrases.Create(ctx, domain.PhraseMatcher{GuildID: guild, Phrase: "giveaway scam", MatchThreshold: 80, LogChannelID: "C1"})
	require.NoError(t, err)

	got, err := pg.Phrases.ListForGuild(ctx, guild)
	require.NoError(t, err)
	var found bool
	for _, r := range got {
		if r.ID == p.ID {
			found = true
			assert.Equal(t, guild, r.GuildID)
			assert.Equal(t, 80, r.MatchThreshold)
		}
	}
	assert.True(t, found)

	ok, err := pg.Phrases.Delete(ctx, guild, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPostgres_AutoPollArrays(t *testing.T) {
	ctx := context.Background()
	pg := NewPostgres(testDB(t))
	guild := uuid.NewString()

	_, err := pg.AutoPolls.Create(ctx, domain.AutoPoll{GuildID: guild, Channels: []string{"1", "2"}, Mode: domain.PollModeAny})
	require.NoError(t, err)
	got, err := pg.AutoPolls.ListForGuild(ctx, guild)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"1", "2"}, got[0].Channels)
	assert.Empty(t, got[0].Roles)
}

func TestPostgres_AutoPingOrder(t *testing.T) {
	ctx := context.Background()
	pg := NewPostgres(testDB(t))
	guild := uuid.NewString()

	a, err := pg.AutoPings.Create(ctx, domain.AutoPing{GuildID: guild, ForumID: "F", Tag: "bug", RoleID: "R1", TargetChannelID: "C"})
	require.NoError(t, err)
	b, err := pg.AutoPings.Create(ctx, domain.AutoPing{GuildID: guild, ForumID: "F", Tag: "bug", RoleID: "R2", TargetChannelID: "C"})
	require.NoError(t, err)

	got, err := pg.AutoPings.ListForForum(ctx, guild, "F")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, b.ID, got[1].ID)
}

func TestPostgres_EmojiIncrement(t *testing.T) {
	ctx := context.Background()
	pg := NewPostgres(testDB(t))
	guild := uuid.NewString()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := pg.Emojis.Increment(ctx, guild, "🔥", time.Now().UTC())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	e, err := pg.Emojis.Get(ctx, guild, "🔥")
	require.NoError(t, err)
	assert.EqualValues(t, 20, e.Count)

	_, err = pg.Emojis.Get(ctx, guild, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgres_CooldownIsAtomic(t *testing.T) {
	ctx := context.Background()
	pg := NewPostgres(testDB(t))
	key := domain.ScopeKey{Kind: domain.KindCommand, ID: "ping", GuildID: uuid.NewString(), ActorID: "U1"}
	now := time.Now().UTC().Truncate(time.Microsecond)

	var admitted atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := pg.Cooldowns.TryAcquire(ctx, key, now, 10*time.Second)
			assert.NoError(t, err)
			if ok {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, admitted.Load())

	ok, err := pg.Cooldowns.TryAcquire(ctx, key, now.Add(2*time.Second), 10*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = pg.Cooldowns.TryAcquire(ctx, key, now.Add(11*time.Second), 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}
