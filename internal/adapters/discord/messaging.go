package discord

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
)

// InteractionClient es el subconjunto de *discordgo.Session para responder
// interacciones.
type InteractionClient interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Defer efímero (para trabajos >3s)
func DeferEphemeral(ctx context.Context, c InteractionClient, in *discordgo.Interaction) error {
	return c.InteractionRespond(in, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}, discordgo.WithContext(ctx))
}

// ReplyEphemeral manda el followup de una interacción ya diferida.
func ReplyEphemeral(ctx context.Context, c InteractionClient, in *discordgo.Interaction, content string) error {
	_, err := c.FollowupMessageCreate(in, true, &discordgo.WebhookParams{
		Content:         content,
		Flags:           discordgo.MessageFlagsEphemeral,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}, discordgo.WithContext(ctx))
	if err == nil {
		return nil
	}

	// Fallback sólo si todavía no hay respuesta (webhook desconocido)
	var reqErr *discordgo.RESTError
	if errors.As(err, &reqErr) && reqErr.Message != nil && reqErr.Message.Code == discordgo.ErrCodeUnknownWebhook {
		return c.InteractionRespond(in, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: content,
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		}, discordgo.WithContext(ctx))
	}
	return err
}

type interactionReplier struct {
	client InteractionClient
	in     *discordgo.Interaction
}

func (r interactionReplier) Reply(ctx context.Context, content string) error {
	return ReplyEphemeral(ctx, r.client, r.in, content)
}

// messageReplier responde a un comando de texto citando el mensaje original.
type messageReplier struct {
	rest      RESTClient
	channelID string
	ref       *discordgo.MessageReference
}

func (r messageReplier) Reply(ctx context.Context, content string) error {
	_, err := r.rest.ChannelMessageSendComplex(r.channelID, &discordgo.MessageSend{
		Content:         content,
		Reference:       r.ref,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}, discordgo.WithContext(ctx))
	return err
}
