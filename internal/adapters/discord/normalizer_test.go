package discord

import (
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/guildrules-bot/internal/domain"
)

func channels(chs ...*discordgo.Channel) ChannelLookup {
	return func(id string) (*discordgo.Channel, error) {
		for _, c := range chs {
			if c.ID == id {
				return c, nil
			}
		}
		return nil, errors.New("unknown channel")
	}
}

var forum = &discordgo.Channel{
	ID:   "F1",
	Type: discordgo.ChannelTypeGuildForum,
	AvailableTags: []discordgo.ForumTag{
		{ID: "T1", Name: "bug"},
		{ID: "T2", Name: "help"},
	},
}

func newTestNormalizer() *Normalizer {
	text := &discordgo.Channel{ID: "TXT", Type: discordgo.ChannelTypeGuildText}
	return NewNormalizer(testLogger(), "", channels(forum, text))
}

func msg(guild, content string, bot bool) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "M1",
		ChannelID: "C1",
		GuildID:   guild,
		Content:   content,
		Author:    &discordgo.User{ID: "U1", Bot: bot},
		Member:    &discordgo.Member{Roles: []string{"R1"}},
		Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}}
}

func TestNormalize_Message(t *testing.T) {
	n := newTestNormalizer()

	ev, ok := n.Normalize(msg("G1", "this is a GIVEAWAY SCAM!!", false))
	require.True(t, ok)
	me, ok := ev.(domain.MessageEvent)
	require.True(t, ok)
	assert.Equal(t, domain.EventScope{GuildID: "G1", ChannelID: "C1", AuthorID: "U1"}, me.Scope())
	assert.Equal(t, "M1", me.MessageID)
	assert.Equal(t, []string{"R1"}, me.AuthorRoles)

	_, ok = n.Normalize(msg("", "dm", false))
	assert.False(t, ok, "DMs are dropped")
	_, ok = n.Normalize(msg("G1", "beep", true))
	assert.False(t, ok, "bots are dropped")
}

func TestNormalize_PrefixedMessageIsCommand(t *testing.T) {
	n := newTestNormalizer()

	ev, ok := n.Normalize(msg("G1", "!Phrase add 80 <#5> giveaway scam", false))
	require.True(t, ok)
	inv, ok := ev.(domain.CommandInvocation)
	require.True(t, ok)
	assert.Equal(t, "phrase", inv.Name)
	assert.Equal(t, []string{"add", "80", "<#5>", "giveaway", "scam"}, inv.Args)
	assert.Equal(t, []string{"R1"}, inv.AuthorRoles)

	ev, ok = n.Normalize(msg("G1", "!", false))
	require.True(t, ok)
	assert.IsType(t, domain.MessageEvent{}, ev)
}

func TestNormalize_ForumThread(t *testing.T) {
	n := newTestNormalizer()
	thread := func(parent string, newly bool, tags ...string) *discordgo.ThreadCreate {
		return &discordgo.ThreadCreate{
			Channel: &discordgo.Channel{
				ID:          "TH1",
				GuildID:     "G1",
				ParentID:    parent,
				OwnerID:     "U1",
				Name:        "crash on start",
				AppliedTags: tags,
			},
			NewlyCreated: newly,
		}
	}

	ev, ok := n.Normalize(thread("F1", true, "T1", "T2"))
	require.True(t, ok)
	ft := ev.(domain.ForumThreadEvent)
	assert.Equal(t, "F1", ft.ForumID)
	assert.Equal(t, "TH1", ft.ThreadID)
	assert.Equal(t, "U1", ft.AuthorID)
	assert.Equal(t, []string{"T1", "bug", "T2", "help"}, ft.Tags)

	_, ok = n.Normalize(thread("F1", false, "T1"))
	assert.False(t, ok, "only newly created threads")
	_, ok = n.Normalize(thread("TXT", true))
	assert.False(t, ok, "parent must be a forum")
	_, ok = n.Normalize(thread("GONE", true))
	assert.False(t, ok, "unknown parent")
}

func TestNormalize_Reaction(t *testing.T) {
	n := newTestNormalizer()
	reaction := func(emoji discordgo.Emoji, bot bool) *discordgo.MessageReactionAdd {
		return &discordgo.MessageReactionAdd{
			MessageReaction: &discordgo.MessageReaction{UserID: "U1", MessageID: "M1", ChannelID: "C1", GuildID: "G1", Emoji: emoji},
			Member:          &discordgo.Member{User: &discordgo.User{ID: "U1", Bot: bot}},
		}
	}

	ev, ok := n.Normalize(reaction(discordgo.Emoji{Name: "🔥"}, false))
	require.True(t, ok)
	assert.Equal(t, "🔥", ev.(domain.ReactionEvent).Emoji)

	ev, ok = n.Normalize(reaction(discordgo.Emoji{Name: "party", ID: "123"}, false))
	require.True(t, ok)
	assert.Equal(t, "party:123", ev.(domain.ReactionEvent).Emoji)

	_, ok = n.Normalize(reaction(discordgo.Emoji{Name: "🔥"}, true))
	assert.False(t, ok, "bot reactions are not counted")
}

func TestNormalize_Interaction(t *testing.T) {
	n := newTestNormalizer()
	ic := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   "G1",
		ChannelID: "C1",
		Member:    &discordgo.Member{User: &discordgo.User{ID: "U1"}, Roles: []string{"R1"}},
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "phrase",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{{
				Name: "add",
				Type: discordgo.ApplicationCommandOptionSubCommand,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{Name: "threshold", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(80)},
					{Name: "channel", Type: discordgo.ApplicationCommandOptionChannel, Value: "555"},
					{Name: "phrase", Type: discordgo.ApplicationCommandOptionString, Value: "giveaway scam"},
				},
			}},
		},
	}}

	ev, ok := n.Normalize(ic)
	require.True(t, ok)
	inv := ev.(domain.CommandInvocation)
	assert.Equal(t, "phrase", inv.Name)
	assert.Equal(t, []string{"add"}, inv.Args)
	assert.Equal(t, map[string]string{"threshold": "80", "channel": "555", "phrase": "giveaway scam"}, inv.Options)
	assert.Equal(t, []string{"R1"}, inv.AuthorRoles)

	ic.GuildID = ""
	ic.Member = nil
	_, ok = n.Normalize(ic)
	assert.False(t, ok, "DM interactions are dropped")
}

func TestNormalize_UnknownEvent(t *testing.T) {
	_, ok := newTestNormalizer().Normalize(&discordgo.Ready{})
	assert.False(t, ok)
}
