package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// RESTClient es el subconjunto de *discordgo.Session que usa Platform.
type RESTClient interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
}

// Platform implementa service.Platform sobre la API REST de Discord.
// El ctx de cada llamada acota la request HTTP.
type Platform struct {
	rest RESTClient
}

func NewPlatform(rest RESTClient) *Platform { return &Platform{rest: rest} }

// SendMessage publica sin permitir menciones: el texto de una alerta cita
// mensajes ajenos que podrían traer @everyone.
func (p *Platform) SendMessage(ctx context.Context, channelID, content string) error {
	_, err := p.rest.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:         content,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}, discordgo.WithContext(ctx))
	return err
}

// PingRole publica content habilitando sólo la mención a roleID.
func (p *Platform) PingRole(ctx context.Context, channelID, roleID, content string) error {
	_, err := p.rest.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:         content,
		AllowedMentions: &discordgo.MessageAllowedMentions{Roles: []string{roleID}},
	}, discordgo.WithContext(ctx))
	return err
}

// AddReactions agrega las reacciones en orden y corta en el primer error.
func (p *Platform) AddReactions(ctx context.Context, channelID, messageID string, emojis []string) error {
	for _, e := range emojis {
		if err := p.rest.MessageReactionAdd(channelID, messageID, e, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("reaction %s: %w", e, err)
		}
	}
	return nil
}
