package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jose-valero/guildrules-bot/internal/domain"
)

// Matcher decide qué reglas disparan para un evento. No guarda copias de las
// reglas entre eventos: cada Match lee el store.
type Matcher struct {
	log     *slog.Logger
	phrases PhraseRepo
	pings   AutoPingRepo
	polls   AutoPollRepo
}

func NewMatcher(log *slog.Logger, phrases PhraseRepo, pings AutoPingRepo, polls AutoPollRepo) *Matcher {
	return &Matcher{log: log, phrases: phrases, pings: pings, polls: polls}
}

// Match devuelve cero o más intents. Que no haya reglas no es un error.
func (m *Matcher) Match(ctx context.Context, ev domain.Event) ([]domain.Match, error) {
	var (
		out []domain.Match
		err error
	)
	switch e := ev.(type) {
	case domain.MessageEvent:
		out, err = m.matchPhrases(ctx, e)
		if err != nil {
			return nil, err
		}
		polls, err := m.matchPolls(ctx, e)
		if err != nil {
			return nil, err
		}
		out = append(out, polls...)
	case domain.ForumThreadEvent:
		out, err = m.matchPings(ctx, e)
		if err != nil {
			return nil, err
		}
	case domain.ReactionEvent:
		out = []domain.Match{{
			Rule:   domain.EmojiUsage{GuildID: e.GuildID, Name: e.Emoji},
			Intent: domain.EmojiIncrementIntent{GuildID: e.GuildID, Name: e.Emoji},
		}}
	case domain.CommandInvocation:
		// los comandos van por el framework de comandos
		return nil, nil
	default:
		return nil, fmt.Errorf("matcher: unsupported event %T", ev)
	}

	for _, mt := range out {
		ruleMatchCount.WithLabelValues(string(mt.Rule.Kind())).Inc()
	}
	return out, nil
}

func (m *Matcher) matchPhrases(ctx context.Context, e domain.MessageEvent) ([]domain.Match, error) {
	if strings.TrimSpace(e.Content) == "" {
		return nil, nil
	}
	rules, err := m.phrases.ListForGuild(ctx, e.GuildID)
	if err != nil {
		return nil, fmt.Errorf("%w: phrase rules guild=%s: %w", domain.ErrStoreUnavailable, e.GuildID, err)
	}

	var out []domain.Match
	for _, r := range rules {
		score := Similarity(r.Phrase, e.Content)
		if score < r.Threshold() {
			continue
		}
		m.log.Debug("phrase matched", "rule", r.ID, "guild", e.GuildID, "score", score, "threshold", r.Threshold())
		out = append(out, domain.Match{
			Rule: r,
			Intent: domain.LogIntent{
				ChannelID: r.LogChannelID,
				Content:   phraseAlert(r, e, score),
			},
		})
	}
	return out, nil
}

func (m *Matcher) matchPolls(ctx context.Context, e domain.MessageEvent) ([]domain.Match, error) {
	rules, err := m.polls.ListForGuild(ctx, e.GuildID)
	if err != nil {
		return nil, fmt.Errorf("%w: autopoll rules guild=%s: %w", domain.ErrStoreUnavailable, e.GuildID, err)
	}

	var out []domain.Match
	for _, r := range rules {
		if !r.Applies(e.ChannelID, e.AuthorRoles) {
			continue
		}
		out = append(out, domain.Match{
			Rule: r,
			Intent: domain.PollIntent{
				ChannelID: e.ChannelID,
				MessageID: e.MessageID,
				Emojis:    r.PollEmojis(),
			},
		})
	}
	return out, nil
}

func (m *Matcher) matchPings(ctx context.Context, e domain.ForumThreadEvent) ([]domain.Match, error) {
	rules, err := m.pings.ListForForum(ctx, e.GuildID, e.ForumID)
	if err != nil {
		return nil, fmt.Errorf("%w: autoping rules guild=%s forum=%s: %w", domain.ErrStoreUnavailable, e.GuildID, e.ForumID, err)
	}

	var out []domain.Match
	for _, r := range rules {
		if !hasTag(e.Tags, r.Tag) {
			continue
		}
		out = append(out, domain.Match{
			Rule: r,
			Intent: domain.PingIntent{
				ChannelID: r.TargetChannelID,
				RoleID:    r.RoleID,
				Content:   fmt.Sprintf("<@&%s> nuevo hilo **%s** en <#%s>: <#%s>", r.RoleID, e.Name, e.ForumID, e.ThreadID),
			},
		})
	}
	return out, nil
}

func hasTag(tags []string, want string) bool {
	want = strings.TrimSpace(want)
	for _, t := range tags {
		if strings.EqualFold(strings.TrimSpace(t), want) {
			return true
		}
	}
	return false
}

func phraseAlert(r domain.PhraseMatcher, e domain.MessageEvent, score int) string {
	excerpt := e.Content
	if rs := []rune(excerpt); len(rs) > 300 {
		excerpt = string(rs[:300]) + "…"
	}
	return fmt.Sprintf(
		"🚨 Frase `%s` detectada (score %d ≥ %d)\n**Autor:** <@%s> en <#%s>\n**Mensaje:** https://discord.com/channels/%s/%s/%s\n> %s",
		r.Phrase, score, r.Threshold(), e.AuthorID, e.ChannelID, e.GuildID, e.ChannelID, e.MessageID,
		strings.ReplaceAll(excerpt, "\n", "\n> "),
	)
}
