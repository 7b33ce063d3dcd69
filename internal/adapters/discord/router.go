package discord

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/guildrules-bot/internal/app/service"
	"github.com/jose-valero/guildrules-bot/internal/domain"
)

const defaultEventTimeout = 12 * time.Second

// Router conecta la sesión de discordgo con el engine. discordgo ya corre
// cada handler en su propia goroutine.
type Router struct {
	log      *slog.Logger
	s        *discordgo.Session
	guildIDs []string
	norm     *Normalizer
	engine   *service.Engine
	timeout  time.Duration
}

func NewRouter(log *slog.Logger, s *discordgo.Session, guildIDs []string, prefix string, engine *service.Engine, timeout time.Duration) *Router {
	if timeout <= 0 {
		timeout = defaultEventTimeout
	}
	r := &Router{
		log:      log,
		s:        s,
		guildIDs: guildIDs,
		engine:   engine,
		timeout:  timeout,
	}
	r.norm = NewNormalizer(log, prefix, r.safeGetChannel)
	return r
}

// Register crea los slash commands en cada guild configurado.
func (r *Router) Register() error {
	appID := r.s.State.User.ID
	for _, gid := range r.guildIDs {
		for _, cmd := range Commands {
			if _, err := r.s.ApplicationCommandCreate(appID, gid, cmd); err != nil {
				return fmt.Errorf("register /%s guild=%s: %w", cmd.Name, gid, err)
			}
		}
	}
	return nil
}

func (r *Router) Handlers() {
	r.s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentMessageContent

	r.s.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) { r.dispatch(s, m) })
	r.s.AddHandler(func(s *discordgo.Session, t *discordgo.ThreadCreate) { r.dispatch(s, t) })
	r.s.AddHandler(func(s *discordgo.Session, e *discordgo.MessageReactionAdd) { r.dispatch(s, e) })
	r.s.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) { r.dispatch(s, ic) })
}

func (r *Router) dispatch(s *discordgo.Session, raw any) {
	label := fmt.Sprintf("%T", raw)
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("panic in handler", "event", label, "panic", rec)
		}
	}()

	ev, ok := r.norm.Normalize(raw)
	if !ok {
		return
	}
	defer step(r.log, label)()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	inv, isCmd := ev.(domain.CommandInvocation)
	if !isCmd {
		// el engine ya loguea los errores del evento
		_ = r.engine.Handle(ctx, ev)
		return
	}

	var reply service.Replier
	switch e := raw.(type) {
	case *discordgo.InteractionCreate:
		if err := DeferEphemeral(ctx, s, e.Interaction); err != nil {
			r.log.Warn("defer interaction failed", "cmd", inv.Name, "err", err)
		}
		reply = interactionReplier{client: s, in: e.Interaction}
	case *discordgo.MessageCreate:
		if _, known := r.engine.Commands().Lookup(inv.Name); !known {
			// "!algo" que no es comando: sigue siendo un mensaje normal
			_ = r.engine.Handle(ctx, domain.MessageEvent{
				EventScope:  inv.EventScope,
				MessageID:   e.ID,
				Content:     e.Content,
				AuthorRoles: inv.AuthorRoles,
				At:          inv.At,
			})
			return
		}
		reply = messageReplier{rest: s, channelID: e.ChannelID, ref: e.Reference()}
	}

	res := r.engine.Invoke(ctx, inv, reply)
	r.log.Info("command", "cmd", inv.Name, "guild", inv.GuildID, "user", inv.AuthorID, "state", res.State)
}

func (r *Router) safeGetChannel(id string) (*discordgo.Channel, error) {
	if ch, err := r.s.State.Channel(id); err == nil && ch != nil {
		return ch, nil
	}
	ch, err := r.s.Channel(id)
	if err != nil {
		return nil, err
	}
	_ = r.s.State.ChannelAdd(ch) // ChannelAdd devuelve solo error
	return ch, nil
}
