package discord

import (
	"errors"
	"io"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// FakeSession implementa RESTClient, GuildClient e InteractionClient.
type FakeSession struct {
	ChannelMessageSendComplexFunc func(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactionAddFunc        func(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	GuildFunc                     func(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	GuildRolesFunc                func(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	InteractionRespondFunc        func(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreateFunc     func(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var errNotStubbed = errors.New("not stubbed")

func (f *FakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.ChannelMessageSendComplexFunc == nil {
		return nil, errNotStubbed
	}
	return f.ChannelMessageSendComplexFunc(channelID, data, options...)
}

func (f *FakeSession) MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error {
	if f.MessageReactionAddFunc == nil {
		return errNotStubbed
	}
	return f.MessageReactionAddFunc(channelID, messageID, emojiID, options...)
}

func (f *FakeSession) Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error) {
	if f.GuildFunc == nil {
		return nil, errNotStubbed
	}
	return f.GuildFunc(guildID, options...)
}

func (f *FakeSession) GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	if f.GuildRolesFunc == nil {
		return nil, errNotStubbed
	}
	return f.GuildRolesFunc(guildID, options...)
}

func (f *FakeSession) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	if f.InteractionRespondFunc == nil {
		return errNotStubbed
	}
	return f.InteractionRespondFunc(interaction, resp, options...)
}

func (f *FakeSession) FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.FollowupMessageCreateFunc == nil {
		return nil, errNotStubbed
	}
	return f.FollowupMessageCreateFunc(interaction, wait, data, options...)
}
