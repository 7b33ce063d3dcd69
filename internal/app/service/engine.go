package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jose-valero/guildrules-bot/internal/domain"
)

// Engine corre un evento normalizado de punta a punta:
// matcher → gate (si aplica) → dispatcher. Los comandos van a Commands.
type Engine struct {
	log        *slog.Logger
	matcher    *Matcher
	gate       *Gate
	dispatcher *Dispatcher
	commands   *Commands

	// ventana de dedup de alertas por (frase, autor); 0 = sin gate
	phraseCooldown time.Duration
}

func NewEngine(log *slog.Logger, matcher *Matcher, gate *Gate, dispatcher *Dispatcher, commands *Commands, phraseCooldown time.Duration) *Engine {
	return &Engine{
		log:            log,
		matcher:        matcher,
		gate:           gate,
		dispatcher:     dispatcher,
		commands:       commands,
		phraseCooldown: phraseCooldown,
	}
}

// Handle procesa un evento. Las fallas de plataforma no cortan el resto de
// los intents; una falla del store abandona el evento. Nunca entra en pánico.
func (e *Engine) Handle(ctx context.Context, ev domain.Event) (err error) {
	typ := eventType(ev)
	start := time.Now()
	eventProcessCount.WithLabelValues(typ).Inc()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic handling %s: %v", typ, rec)
		}
		if err != nil {
			eventErrorCount.WithLabelValues(typ).Inc()
			var sc domain.EventScope
			if ev != nil {
				sc = ev.Scope()
			}
			e.log.Warn("event processed with errors", "type", typ, "guild", sc.GuildID, "channel", sc.ChannelID, "err", err)
		}
		eventProcessDuration.WithLabelValues(typ).Observe(time.Since(start).Seconds())
	}()

	if inv, ok := ev.(domain.CommandInvocation); ok {
		res := e.commands.Invoke(ctx, inv, nil)
		if res.State == StateFailed {
			return res.Err
		}
		return nil
	}

	matches, err := e.matcher.Match(ctx, ev)
	if err != nil {
		return err
	}

	var errs []error
	for _, m := range matches {
		if key, gated := e.gateKey(ev, m); gated {
			admitted, err := e.gate.Admit(ctx, key, e.phraseCooldown)
			if err != nil {
				return errors.Join(append(errs, err)...)
			}
			if !admitted {
				e.log.Debug("alert suppressed by cooldown", "rule", m.Rule.RuleID(), "scope", key.String())
				continue
			}
		}

		out := e.dispatcher.Execute(ctx, m)
		if out.Err == nil {
			continue
		}
		errs = append(errs, out.Err)
		if errors.Is(out.Err, domain.ErrStoreUnavailable) {
			break
		}
	}
	return errors.Join(errs...)
}

// Invoke corre un comando con un replier. Es la entrada del router.
func (e *Engine) Invoke(ctx context.Context, inv domain.CommandInvocation, reply Replier) CommandResult {
	eventProcessCount.WithLabelValues("command").Inc()
	return e.commands.Invoke(ctx, inv, reply)
}

func (e *Engine) Commands() *Commands { return e.commands }

// gateKey decide si un match pasa por el gate. Sólo las alertas de frases, y
// sólo con cooldown configurado.
func (e *Engine) gateKey(ev domain.Event, m domain.Match) (domain.ScopeKey, bool) {
	if e.phraseCooldown <= 0 {
		return domain.ScopeKey{}, false
	}
	p, ok := m.Rule.(domain.PhraseMatcher)
	if !ok {
		return domain.ScopeKey{}, false
	}
	sc := ev.Scope()
	return domain.ScopeKey{Kind: domain.KindPhrase, ID: p.ID, GuildID: sc.GuildID, ActorID: sc.AuthorID}, true
}

func eventType(ev domain.Event) string {
	switch ev.(type) {
	case domain.MessageEvent:
		return "message"
	case domain.ForumThreadEvent:
		return "forum_thread"
	case domain.ReactionEvent:
		return "reaction"
	case domain.CommandInvocation:
		return "command"
	}
	return "unknown"
}
