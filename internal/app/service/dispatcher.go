package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/jose-valero/guildrules-bot/internal/domain"
)

const DefaultDispatchTimeout = 5 * time.Second

// Outcome es el resultado de ejecutar un intent. Err nil = éxito.
type Outcome struct {
	Intent   domain.Intent
	RuleID   string
	Err      error
	Duration time.Duration
}

type DispatcherOptions struct {
	Timeout           time.Duration
	OperatorChannelID string
	// reportes al canal de operador: como mucho uno cada ReportEvery
	ReportEvery time.Duration
}

// Dispatcher ejecuta intents contra la plataforma. Sin reintentos ni rollback.
type Dispatcher struct {
	log      *slog.Logger
	platform Platform
	emojis   EmojiRepo

	timeout    time.Duration
	operatorCh string
	reports    *rate.Limiter
	now        func() time.Time
}

func NewDispatcher(log *slog.Logger, platform Platform, emojis EmojiRepo, opts DispatcherOptions) *Dispatcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultDispatchTimeout
	}
	if opts.ReportEvery <= 0 {
		opts.ReportEvery = time.Minute
	}
	return &Dispatcher{
		log:        log,
		platform:   platform,
		emojis:     emojis,
		timeout:    opts.Timeout,
		operatorCh: opts.OperatorChannelID,
		reports:    rate.NewLimiter(rate.Every(opts.ReportEvery), 1),
		now:        time.Now,
	}
}

func (d *Dispatcher) Execute(ctx context.Context, m domain.Match) Outcome {
	start := time.Now()
	out := Outcome{Intent: m.Intent}
	if m.Rule != nil {
		out.RuleID = m.Rule.RuleID()
	}

	out.Err = d.execute(ctx, m.Intent)
	out.Duration = time.Since(start)

	kind := "unknown"
	if m.Intent != nil {
		kind = m.Intent.IntentKind()
	}
	if out.Err == nil {
		dispatchCount.WithLabelValues(kind, "ok").Inc()
		return out
	}

	dispatchCount.WithLabelValues(kind, "error").Inc()
	d.log.Warn("dispatch failed", "intent", kind, "rule", out.RuleID, "err", out.Err)
	d.report(ctx, kind, out)
	return out
}

func (d *Dispatcher) execute(ctx context.Context, in domain.Intent) error {
	switch it := in.(type) {
	case domain.LogIntent:
		return d.call(ctx, "send log", func(ctx context.Context) error {
			return d.platform.SendMessage(ctx, it.ChannelID, it.Content)
		})
	case domain.PingIntent:
		return d.call(ctx, "ping role", func(ctx context.Context) error {
			return d.platform.PingRole(ctx, it.ChannelID, it.RoleID, it.Content)
		})
	case domain.PollIntent:
		return d.call(ctx, "add poll", func(ctx context.Context) error {
			return d.platform.AddReactions(ctx, it.ChannelID, it.MessageID, it.Emojis)
		})
	case domain.EmojiIncrementIntent:
		if _, err := d.emojis.Increment(ctx, it.GuildID, it.Name, d.now().UTC()); err != nil {
			return fmt.Errorf("%w: emoji %s/%s: %w", domain.ErrStoreUnavailable, it.GuildID, it.Name, err)
		}
		return nil
	case nil:
		return errors.New("dispatch: nil intent")
	}
	return fmt.Errorf("dispatch: unsupported intent %T", in)
}

func (d *Dispatcher) call(ctx context.Context, what string, fn func(context.Context) error) error {
	cctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	if err := fn(cctx); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrPlatformCallFailed, what, err)
	}
	return nil
}

func (d *Dispatcher) report(ctx context.Context, kind string, out Outcome) {
	if d.operatorCh == "" || !d.reports.Allow() {
		return
	}
	msg := fmt.Sprintf("⚠️ Falló una acción `%s` (regla `%s`): %v", kind, out.RuleID, out.Err)
	cctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	if err := d.platform.SendMessage(cctx, d.operatorCh, msg); err != nil {
		d.log.Warn("operator report failed", "err", err)
	}
}
