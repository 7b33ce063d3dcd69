package discord

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatform_SendMessageSuppressesMentions(t *testing.T) {
	var got *discordgo.MessageSend
	fs := &FakeSession{ChannelMessageSendComplexFunc: func(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
		assert.Equal(t, "LOG", channelID)
		assert.Len(t, options, 1, "request bound to ctx")
		got = data
		return &discordgo.Message{}, nil
	}}

	require.NoError(t, NewPlatform(fs).SendMessage(context.Background(), "LOG", "@everyone hi"))
	require.NotNil(t, got.AllowedMentions)
	assert.Empty(t, got.AllowedMentions.Parse)
	assert.Empty(t, got.AllowedMentions.Roles)
}

func TestPlatform_PingRoleAllowsOnlyThatRole(t *testing.T) {
	var got *discordgo.MessageSend
	fs := &FakeSession{ChannelMessageSendComplexFunc: func(_ string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
		got = data
		return &discordgo.Message{}, nil
	}}

	require.NoError(t, NewPlatform(fs).PingRole(context.Background(), "C2", "R1", "<@&R1> nuevo hilo"))
	assert.Equal(t, []string{"R1"}, got.AllowedMentions.Roles)
	assert.Equal(t, "<@&R1> nuevo hilo", got.Content)
}

func TestPlatform_AddReactionsStopsOnError(t *testing.T) {
	var added []string
	fs := &FakeSession{MessageReactionAddFunc: func(_, messageID, emojiID string, _ ...discordgo.RequestOption) error {
		assert.Equal(t, "M1", messageID)
		added = append(added, emojiID)
		if emojiID == "👎" {
			return errors.New("unknown emoji")
		}
		return nil
	}}

	err := NewPlatform(fs).AddReactions(context.Background(), "C", "M1", []string{"👍", "👎", "🤷"})
	require.Error(t, err)
	assert.Equal(t, []string{"👍", "👎"}, added)
}
