package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jose-valero/guildrules-bot/internal/domain"
)

// CommandState es el estado final de una invocación.
type CommandState string

const (
	StateUnresolved  CommandState = "unresolved"
	StateForbidden   CommandState = "forbidden"
	StateRateLimited CommandState = "rate_limited"
	StateExecuted    CommandState = "executed"
	StateFailed      CommandState = "failed"
)

const (
	replyForbidden   = "🔒 No tienes permisos para esta acción."
	replyRateLimited = "⏳ Espera un momento antes de volver a usar `%s`."
	replyFailed      = "❌ Ocurrió un error inesperado procesando el comando. Contacta con un administrador."
)

type CommandHandler func(ctx context.Context, c *CommandCtx) (string, error)

type Command struct {
	Name        string
	Description string
	// nivel mínimo para pasar el chequeo de permisos
	Level domain.Level
	// nivel por subcomando (primer argumento) cuando es más alto que Level
	SubLevels map[string]domain.Level
	// ventana por (comando, guild, usuario); 0 = sin cooldown
	Cooldown time.Duration
	Handler  CommandHandler
}

// CommandCtx es lo que recibe el cuerpo de un comando.
type CommandCtx struct {
	Log        *slog.Logger
	Invocation domain.CommandInvocation
	// nivel efectivo del actor, para chequeos por subcomando
	Level domain.Level
}

// Sub devuelve el subcomando (primer argumento) en minúsculas.
func (c *CommandCtx) Sub() string {
	if len(c.Invocation.Args) == 0 {
		return ""
	}
	return strings.ToLower(c.Invocation.Args[0])
}

// Param busca una opción por nombre (slash) y si no, el argumento posicional pos.
func (c *CommandCtx) Param(name string, pos int) string {
	if v, ok := c.Invocation.Options[name]; ok {
		return strings.TrimSpace(v)
	}
	if pos >= 0 && pos < len(c.Invocation.Args) {
		return strings.TrimSpace(c.Invocation.Args[pos])
	}
	return ""
}

// Rest es como Param pero une todos los argumentos desde pos.
func (c *CommandCtx) Rest(name string, pos int) string {
	if v, ok := c.Invocation.Options[name]; ok {
		return strings.TrimSpace(v)
	}
	if pos >= 0 && pos < len(c.Invocation.Args) {
		return strings.Join(c.Invocation.Args[pos:], " ")
	}
	return ""
}

type CommandResult struct {
	Command string
	State   CommandState
	Reply   string
	Err     error
}

// Commands es el registro de comandos y la máquina de estados de invocación:
// resolver, permisos, cooldown, ejecutar.
type Commands struct {
	log  *slog.Logger
	auth Authorizer
	gate *Gate
	cmds map[string]Command
}

func NewCommands(log *slog.Logger, auth Authorizer, gate *Gate) *Commands {
	return &Commands{log: log, auth: auth, gate: gate, cmds: map[string]Command{}}
}

func (c *Commands) Register(cmd Command) error {
	name := strings.ToLower(strings.TrimSpace(cmd.Name))
	if name == "" || cmd.Handler == nil {
		return fmt.Errorf("command %q: name and handler required", cmd.Name)
	}
	if _, dup := c.cmds[name]; dup {
		return fmt.Errorf("command %q already registered", name)
	}
	cmd.Name = name
	c.cmds[name] = cmd
	return nil
}

func (c *Commands) Lookup(name string) (Command, bool) {
	cmd, ok := c.cmds[strings.ToLower(strings.TrimSpace(name))]
	return cmd, ok
}

// All devuelve los comandos ordenados por nombre.
func (c *Commands) All() []Command {
	out := make([]Command, 0, len(c.cmds))
	for _, cmd := range c.cmds {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Invoke corre una invocación hasta un estado terminal. reply puede ser nil.
func (c *Commands) Invoke(ctx context.Context, inv domain.CommandInvocation, reply Replier) (res CommandResult) {
	res.Command = strings.ToLower(inv.Name)
	defer func() {
		if res.State != StateUnresolved {
			commandOutcomeCount.WithLabelValues(res.Command, string(res.State)).Inc()
		}
		if res.Reply != "" && reply != nil {
			if err := reply.Reply(ctx, res.Reply); err != nil {
				c.log.Warn("command reply failed", "cmd", res.Command, "err", err)
			}
		}
	}()

	cmd, ok := c.Lookup(inv.Name)
	if !ok {
		c.log.Debug("unknown command ignored", "cmd", inv.Name, "guild", inv.GuildID)
		res.State = StateUnresolved
		return res
	}

	level, err := c.auth.Level(ctx, inv.GuildID, inv.AuthorID, inv.AuthorRoles)
	if err != nil {
		c.log.Warn("authorizer failed, falling back to user", "cmd", cmd.Name, "user", inv.AuthorID, "err", err)
		level = domain.LevelUser
	}
	if !level.AtLeast(cmd.requiredLevel(inv)) {
		return forbidden(res)
	}

	key := domain.ScopeKey{Kind: domain.KindCommand, ID: cmd.Name, GuildID: inv.GuildID, ActorID: inv.AuthorID}
	admitted, err := c.gate.Admit(ctx, key, cmd.Cooldown)
	if err != nil {
		c.log.Error("cooldown check failed", "cmd", cmd.Name, "err", err)
		res.State, res.Err, res.Reply = StateFailed, err, replyFailed
		return res
	}
	if !admitted {
		res.State, res.Err = StateRateLimited, domain.ErrCooldownActive
		res.Reply = fmt.Sprintf(replyRateLimited, cmd.Name)
		return res
	}

	msg, err := c.run(ctx, cmd, &CommandCtx{Log: c.log.With("cmd", cmd.Name), Invocation: inv, Level: level})
	switch {
	case errors.Is(err, domain.ErrPermissionDenied):
		return forbidden(res)
	case err != nil:
		c.log.Error("command failed", "cmd", cmd.Name, "guild", inv.GuildID, "user", inv.AuthorID, "err", err)
		res.State, res.Err, res.Reply = StateFailed, err, replyFailed
		return res
	}
	res.State, res.Reply = StateExecuted, msg
	return res
}

func (cmd Command) requiredLevel(inv domain.CommandInvocation) domain.Level {
	if len(inv.Args) == 0 {
		return cmd.Level
	}
	if l, ok := cmd.SubLevels[strings.ToLower(inv.Args[0])]; ok && l.AtLeast(cmd.Level) {
		return l
	}
	return cmd.Level
}

func (c *Commands) run(ctx context.Context, cmd Command, cc *CommandCtx) (msg string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in command %s: %v", cmd.Name, rec)
		}
	}()
	return cmd.Handler(ctx, cc)
}

func forbidden(res CommandResult) CommandResult {
	res.State, res.Err, res.Reply = StateForbidden, domain.ErrPermissionDenied, replyForbidden
	return res
}
