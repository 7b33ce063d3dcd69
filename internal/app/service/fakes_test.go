package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jose-valero/guildrules-bot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type platformCall struct {
	Method    string
	ChannelID string
	RoleID    string
	MessageID string
	Content   string
	Emojis    []string
}

// FakePlatform registra las llamadas; los Func permiten forzar errores.
type FakePlatform struct {
	mu    sync.Mutex
	Calls []platformCall

	SendMessageFunc  func(ctx context.Context, channelID, content string) error
	PingRoleFunc     func(ctx context.Context, channelID, roleID, content string) error
	AddReactionsFunc func(ctx context.Context, channelID, messageID string, emojis []string) error
}

func (f *FakePlatform) record(c platformCall) {
	f.mu.Lock()
	f.Calls = append(f.Calls, c)
	f.mu.Unlock()
}

func (f *FakePlatform) calls() []platformCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]platformCall(nil), f.Calls...)
}

func (f *FakePlatform) SendMessage(ctx context.Context, channelID, content string) error {
	f.record(platformCall{Method: "SendMessage", ChannelID: channelID, Content: content})
	if f.SendMessageFunc != nil {
		return f.SendMessageFunc(ctx, channelID, content)
	}
	return nil
}

func (f *FakePlatform) PingRole(ctx context.Context, channelID, roleID, content string) error {
	f.record(platformCall{Method: "PingRole", ChannelID: channelID, RoleID: roleID, Content: content})
	if f.PingRoleFunc != nil {
		return f.PingRoleFunc(ctx, channelID, roleID, content)
	}
	return nil
}

func (f *FakePlatform) AddReactions(ctx context.Context, channelID, messageID string, emojis []string) error {
	f.record(platformCall{Method: "AddReactions", ChannelID: channelID, MessageID: messageID, Emojis: emojis})
	if f.AddReactionsFunc != nil {
		return f.AddReactionsFunc(ctx, channelID, messageID, emojis)
	}
	return nil
}

type FakeAuthorizer struct {
	LevelFunc func(ctx context.Context, guildID, userID string, roleIDs []string) (domain.Level, error)
}

func (f FakeAuthorizer) Level(ctx context.Context, guildID, userID string, roleIDs []string) (domain.Level, error) {
	if f.LevelFunc != nil {
		return f.LevelFunc(ctx, guildID, userID, roleIDs)
	}
	return domain.LevelUser, nil
}

func fixedLevel(l domain.Level) FakeAuthorizer {
	return FakeAuthorizer{LevelFunc: func(context.Context, string, string, []string) (domain.Level, error) { return l, nil }}
}

type FakeReplier struct {
	mu      sync.Mutex
	Replies []string
}

func (f *FakeReplier) Reply(_ context.Context, content string) error {
	f.mu.Lock()
	f.Replies = append(f.Replies, content)
	f.mu.Unlock()
	return nil
}

// FakePhraseRepo falla todas las lecturas con Err.
type FakePhraseRepo struct {
	PhraseRepo
	Err error
}

func (f FakePhraseRepo) ListForGuild(context.Context, string) ([]domain.PhraseMatcher, error) {
	return nil, f.Err
}

type FakeCooldownRepo struct {
	TryAcquireFunc func(ctx context.Context, key domain.ScopeKey, now time.Time, window time.Duration) (bool, error)
}

func (f FakeCooldownRepo) TryAcquire(ctx context.Context, key domain.ScopeKey, now time.Time, window time.Duration) (bool, error) {
	return f.TryAcquireFunc(ctx, key, now, window)
}

// clock es un reloj manual para el gate.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock { return &clock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
