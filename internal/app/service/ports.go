package service

import (
	"context"
	"time"

	"github.com/jose-valero/guildrules-bot/internal/domain"
)

// Lo implementan internal/infra/storage.PhraseRepo y MemPhraseRepo
type PhraseRepo interface {
	ListForGuild(ctx context.Context, guildID string) ([]domain.PhraseMatcher, error)
	Create(ctx context.Context, p domain.PhraseMatcher) (domain.PhraseMatcher, error)
	Delete(ctx context.Context, guildID, id string) (bool, error)
}

type AutoPingRepo interface {
	ListForForum(ctx context.Context, guildID, forumID string) ([]domain.AutoPing, error)
	ListForGuild(ctx context.Context, guildID string) ([]domain.AutoPing, error)
	Create(ctx context.Context, a domain.AutoPing) (domain.AutoPing, error)
	Delete(ctx context.Context, guildID, id string) (bool, error)
}

type AutoPollRepo interface {
	ListForGuild(ctx context.Context, guildID string) ([]domain.AutoPoll, error)
	Create(ctx context.Context, a domain.AutoPoll) (domain.AutoPoll, error)
	Delete(ctx context.Context, guildID, id string) (bool, error)
}

type EmojiRepo interface {
	Increment(ctx context.Context, guildID, name string, at time.Time) (domain.EmojiUsage, error)
	Top(ctx context.Context, guildID string, limit int) ([]domain.EmojiUsage, error)
}

type CooldownRepo interface {
	TryAcquire(ctx context.Context, key domain.ScopeKey, now time.Time, window time.Duration) (bool, error)
}

// Lo implementa internal/adapters/discord.Platform
type Platform interface {
	SendMessage(ctx context.Context, channelID, content string) error
	PingRole(ctx context.Context, channelID, roleID, content string) error
	AddReactions(ctx context.Context, channelID, messageID string, emojis []string) error
}

// Authorizer resuelve el nivel efectivo de un actor a partir de sus roles.
type Authorizer interface {
	Level(ctx context.Context, guildID, userID string, roleIDs []string) (domain.Level, error)
}

// Replier responde al actor que invocó un comando.
type Replier interface {
	Reply(ctx context.Context, content string) error
}
