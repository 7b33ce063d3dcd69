package discord

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/guildrules-bot/internal/domain"
)

const DefaultPrefix = "!"

// ChannelLookup resuelve un canal (state primero, REST después).
type ChannelLookup func(channelID string) (*discordgo.Channel, error)

// Normalizer convierte eventos del gateway en domain.Event. Lo que no aplica
// (DMs, bots, hilos que no son de foro) se descarta.
type Normalizer struct {
	log     *slog.Logger
	prefix  string
	channel ChannelLookup
}

func NewNormalizer(log *slog.Logger, prefix string, channel ChannelLookup) *Normalizer {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Normalizer{log: log, prefix: prefix, channel: channel}
}

func (n *Normalizer) Normalize(raw any) (domain.Event, bool) {
	switch e := raw.(type) {
	case *discordgo.MessageCreate:
		return n.message(e)
	case *discordgo.ThreadCreate:
		return n.thread(e)
	case *discordgo.MessageReactionAdd:
		return n.reaction(e)
	case *discordgo.InteractionCreate:
		return n.interaction(e)
	}
	n.log.Debug("event ignored", "type", fmt.Sprintf("%T", raw))
	return nil, false
}

func (n *Normalizer) message(m *discordgo.MessageCreate) (domain.Event, bool) {
	if m == nil || m.Message == nil || m.Author == nil {
		return nil, false
	}
	if m.GuildID == "" || m.Author.Bot {
		n.log.Debug("message dropped", "guild", m.GuildID, "bot", m.Author.Bot)
		return nil, false
	}
	scope := domain.EventScope{GuildID: m.GuildID, ChannelID: m.ChannelID, AuthorID: m.Author.ID}
	var roles []string
	if m.Member != nil {
		roles = m.Member.Roles
	}
	at := m.Timestamp
	if at.IsZero() {
		at = time.Now()
	}

	if body, ok := strings.CutPrefix(m.Content, n.prefix); ok {
		fields := strings.Fields(body)
		if len(fields) > 0 {
			return domain.CommandInvocation{
				EventScope:  scope,
				Name:        strings.ToLower(fields[0]),
				Args:        fields[1:],
				AuthorRoles: roles,
				At:          at,
			}, true
		}
	}

	return domain.MessageEvent{
		EventScope:  scope,
		MessageID:   m.ID,
		Content:     m.Content,
		AuthorRoles: roles,
		At:          at,
	}, true
}

func (n *Normalizer) thread(t *discordgo.ThreadCreate) (domain.Event, bool) {
	if t == nil || t.Channel == nil || t.GuildID == "" {
		return nil, false
	}
	if !t.NewlyCreated {
		n.log.Debug("thread dropped: not newly created", "thread", t.ID)
		return nil, false
	}
	parent, err := n.channel(t.ParentID)
	if err != nil || parent == nil {
		n.log.Debug("thread dropped: parent unavailable", "thread", t.ID, "parent", t.ParentID, "err", err)
		return nil, false
	}
	if parent.Type != discordgo.ChannelTypeGuildForum {
		n.log.Debug("thread dropped: parent is not a forum", "thread", t.ID, "parent", t.ParentID)
		return nil, false
	}

	// ids y nombres: una regla puede referirse al tag por cualquiera de los dos
	tags := make([]string, 0, 2*len(t.AppliedTags))
	for _, id := range t.AppliedTags {
		tags = append(tags, id)
		for _, ft := range parent.AvailableTags {
			if ft.ID == id {
				tags = append(tags, ft.Name)
				break
			}
		}
	}

	return domain.ForumThreadEvent{
		EventScope: domain.EventScope{GuildID: t.GuildID, ChannelID: t.ID, AuthorID: t.OwnerID},
		ThreadID:   t.ID,
		ForumID:    t.ParentID,
		Name:       t.Name,
		Tags:       tags,
	}, true
}

func (n *Normalizer) reaction(r *discordgo.MessageReactionAdd) (domain.Event, bool) {
	if r == nil || r.MessageReaction == nil || r.GuildID == "" {
		return nil, false
	}
	if r.Member != nil && r.Member.User != nil && r.Member.User.Bot {
		return nil, false
	}
	name := r.Emoji.APIName()
	if name == "" {
		return nil, false
	}
	return domain.ReactionEvent{
		EventScope: domain.EventScope{GuildID: r.GuildID, ChannelID: r.ChannelID, AuthorID: r.UserID},
		MessageID:  r.MessageID,
		Emoji:      name,
		At:         time.Now(),
	}, true
}

func (n *Normalizer) interaction(ic *discordgo.InteractionCreate) (domain.Event, bool) {
	if ic == nil || ic.Interaction == nil || ic.Type != discordgo.InteractionApplicationCommand {
		return nil, false
	}
	if ic.GuildID == "" || ic.Member == nil || ic.Member.User == nil {
		n.log.Debug("interaction dropped: outside a guild")
		return nil, false
	}
	data := ic.ApplicationCommandData()
	args, opts := flattenOptions(data.Options)
	return domain.CommandInvocation{
		EventScope:  domain.EventScope{GuildID: ic.GuildID, ChannelID: ic.ChannelID, AuthorID: ic.Member.User.ID},
		Name:        strings.ToLower(data.Name),
		Args:        args,
		Options:     opts,
		AuthorRoles: ic.Member.Roles,
		At:          time.Now(),
	}, true
}
