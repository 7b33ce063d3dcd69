package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jose-valero/guildrules-bot/internal/domain"
)

const (
	defaultEmojiTop = 10
	maxEmojiTop     = 25
)

// Builtins son los comandos que trae el bot: ping, stats de emojis y la
// administración de reglas.
type Builtins struct {
	Phrases   PhraseRepo
	AutoPings AutoPingRepo
	AutoPolls AutoPollRepo
	Emojis    EmojiRepo
}

func (b Builtins) Commands() []Command {
	return []Command{
		{Name: "ping", Description: "Responde pong", Level: domain.LevelUser, Cooldown: 10 * time.Second, Handler: b.ping},
		{Name: "emojis", Description: "Emojis más usados del servidor", Level: domain.LevelUser, Cooldown: 30 * time.Second, Handler: b.emojis},
		{
			Name:        "phrase",
			Description: "Alertas por frases (mods/admins)",
			Level:       domain.LevelModerator,
			SubLevels:   map[string]domain.Level{"add": domain.LevelAdmin, "remove": domain.LevelAdmin},
			Cooldown:    3 * time.Second,
			Handler:     b.phrase,
		},
		{Name: "autoping", Description: "Pings por tag de foro (admins)", Level: domain.LevelAdmin, Cooldown: 3 * time.Second, Handler: b.autoping},
		{Name: "autopoll", Description: "Encuestas automáticas (admins)", Level: domain.LevelAdmin, Cooldown: 3 * time.Second, Handler: b.autopoll},
	}
}

func (b Builtins) Register(c *Commands) error {
	for _, cmd := range b.Commands() {
		if err := c.Register(cmd); err != nil {
			return err
		}
	}
	return nil
}

func (b Builtins) ping(context.Context, *CommandCtx) (string, error) {
	return "🏓 Pong!", nil
}

func (b Builtins) emojis(ctx context.Context, c *CommandCtx) (string, error) {
	limit := defaultEmojiTop
	if raw := c.Param("limit", 0); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return "Uso: `emojis [limite]` (1-25)", nil
		}
		limit = min(n, maxEmojiTop)
	}
	top, err := b.Emojis.Top(ctx, c.Invocation.GuildID, limit)
	if err != nil {
		return "", fmt.Errorf("emoji top: %w", err)
	}
	if len(top) == 0 {
		return "Todavía no hay reacciones registradas.", nil
	}
	var sb strings.Builder
	sb.WriteString("**Emojis más usados**\n")
	for i, e := range top {
		fmt.Fprintf(&sb, "`%2d.` %s · %d\n", i+1, emojiDisplay(e.Name), e.Count)
	}
	return sb.String(), nil
}

// ---------- phrase ----------

func (b Builtins) phrase(ctx context.Context, c *CommandCtx) (string, error) {
	guildID := c.Invocation.GuildID
	switch c.Sub() {
	case "list":
		rules, err := b.Phrases.ListForGuild(ctx, guildID)
		if err != nil {
			return "", err
		}
		if len(rules) == 0 {
			return "No hay frases configuradas.", nil
		}
		var sb strings.Builder
		for _, r := range rules {
			scope := ""
			if r.IsGlobal() {
				scope = " 🌐"
			}
			fmt.Fprintf(&sb, "`%s` \"%s\" ≥ %d → <#%s>%s\n", r.ID, r.Phrase, r.Threshold(), r.LogChannelID, scope)
		}
		return sb.String(), nil

	case "add":
		th, err := strconv.Atoi(c.Param("threshold", 1))
		if err != nil {
			return "Uso: `phrase add <umbral 0-100> <#canal> <frase…>`", nil
		}
		p := domain.PhraseMatcher{
			GuildID:        guildID,
			MatchThreshold: th,
			LogChannelID:   parseID(c.Param("channel", 2)),
			Phrase:         c.Rest("phrase", 3),
		}
		if err := p.Validate(); err != nil {
			return "⚠️ " + err.Error(), nil
		}
		p, err = b.Phrases.Create(ctx, p)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("✅ Frase `%s` creada (umbral %d).", p.ID, p.Threshold()), nil

	case "remove":
		return removeRule(ctx, b.Phrases.Delete, guildID, c.Param("id", 1))
	}
	return "Usa `phrase add`, `phrase list` o `phrase remove`.", nil
}

// ---------- autoping ----------

func (b Builtins) autoping(ctx context.Context, c *CommandCtx) (string, error) {
	guildID := c.Invocation.GuildID
	switch c.Sub() {
	case "list":
		rules, err := b.AutoPings.ListForGuild(ctx, guildID)
		if err != nil {
			return "", err
		}
		if len(rules) == 0 {
			return "No hay auto-pings configurados.", nil
		}
		var sb strings.Builder
		for _, r := range rules {
			fmt.Fprintf(&sb, "`%s` <#%s> tag `%s` → <@&%s> en <#%s>\n", r.ID, r.ForumID, r.Tag, r.RoleID, r.TargetChannelID)
		}
		return sb.String(), nil

	case "add":
		a := domain.AutoPing{
			GuildID:         guildID,
			ForumID:         parseID(c.Param("forum", 1)),
			Tag:             c.Param("tag", 2),
			RoleID:          parseID(c.Param("role", 3)),
			TargetChannelID: parseID(c.Param("channel", 4)),
		}
		if err := a.Validate(); err != nil {
			return "⚠️ " + err.Error() + "\nUso: `autoping add <#foro> <tag> <@rol> <#canal>`", nil
		}
		a, err := b.AutoPings.Create(ctx, a)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("✅ Auto-ping `%s` creado.", a.ID), nil

	case "remove":
		return removeRule(ctx, b.AutoPings.Delete, guildID, c.Param("id", 1))
	}
	return "Usa `autoping add`, `autoping list` o `autoping remove`.", nil
}

// ---------- autopoll ----------

func (b Builtins) autopoll(ctx context.Context, c *CommandCtx) (string, error) {
	guildID := c.Invocation.GuildID
	switch c.Sub() {
	case "list":
		rules, err := b.AutoPolls.ListForGuild(ctx, guildID)
		if err != nil {
			return "", err
		}
		if len(rules) == 0 {
			return "No hay auto-polls configurados.", nil
		}
		var sb strings.Builder
		for _, r := range rules {
			fmt.Fprintf(&sb, "`%s` modo %s canales [%s] roles [%s] %s\n",
				r.ID, r.Mode, mentionList("<#%s>", r.Channels), mentionList("<@&%s>", r.Roles), strings.Join(r.PollEmojis(), " "))
		}
		return sb.String(), nil

	case "add":
		a := domain.AutoPoll{
			GuildID:  guildID,
			Mode:     domain.PollMode(strings.ToLower(c.Param("mode", 1))),
			Channels: parseIDList(c.Param("channels", 2)),
			Roles:    parseIDList(c.Param("roles", 3)),
		}
		if e := c.Param("emojis", 4); e != "" {
			a.Emojis = splitList(e)
		}
		if a.Mode == "" {
			a.Mode = domain.PollModeAny
		}
		if err := a.Validate(); err != nil {
			return "⚠️ " + err.Error() + "\nUso: `autopoll add <any|all> <#canal,…|-> <@rol,…|-> [emojis]`", nil
		}
		a, err := b.AutoPolls.Create(ctx, a)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("✅ Auto-poll `%s` creado.", a.ID), nil

	case "remove":
		return removeRule(ctx, b.AutoPolls.Delete, guildID, c.Param("id", 1))
	}
	return "Usa `autopoll add`, `autopoll list` o `autopoll remove`.", nil
}

// ---------- helpers ----------

func removeRule(ctx context.Context, del func(context.Context, string, string) (bool, error), guildID, id string) (string, error) {
	if id == "" {
		return "Falta el id de la regla.", nil
	}
	ok, err := del(ctx, guildID, id)
	if err != nil {
		return "", err
	}
	if !ok {
		return fmt.Sprintf("No existe la regla `%s` en este servidor.", id), nil
	}
	return fmt.Sprintf("🗑️ Regla `%s` eliminada.", id), nil
}

var reSnowflake = regexp.MustCompile(`^<(?:#|@&|@!?)(\d+)>$`)

// parseID acepta menciones (<#id>, <@&id>, <@id>) o el id pelado.
func parseID(raw string) string {
	raw = strings.TrimSpace(raw)
	if m := reSnowflake.FindStringSubmatch(raw); len(m) == 2 {
		return m[1]
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return raw
}

// parseIDList parsea "a,b c"; "-" es la lista vacía.
func parseIDList(raw string) []string {
	ids := []string{}
	for _, tok := range splitList(raw) {
		if id := parseID(tok); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func splitList(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

func mentionList(format string, ids []string) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf(format, id))
	}
	return strings.Join(parts, ", ")
}

// emojiDisplay muestra los emojis custom ("name:id") como <:name:id>.
func emojiDisplay(name string) string {
	if strings.Contains(name, ":") {
		return "<:" + name + ">"
	}
	return name
}
