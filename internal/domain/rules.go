package domain

import (
	"slices"
	"time"
)

// RuleKind identifica la familia de una regla. El conjunto es cerrado.
type RuleKind string

const (
	KindPhrase   RuleKind = "phrase"
	KindAutoPing RuleKind = "autoping"
	KindAutoPoll RuleKind = "autopoll"
	KindEmoji    RuleKind = "emoji"
	KindCommand  RuleKind = "command"
)

// Rule es la unión de reglas que el matcher sabe evaluar.
type Rule interface {
	Kind() RuleKind
	RuleID() string
	isRule()
}

const DefaultMatchThreshold = 100

// MaxPhraseRunes acota el largo de una frase; el scoring es cuadrático en él.
const MaxPhraseRunes = 200

// PhraseMatcher alerta cuando el texto de un mensaje se parece a Phrase.
// GuildID vacío = regla global.
type PhraseMatcher struct {
	ID             string
	GuildID        string
	Phrase         string
	MatchThreshold int
	LogChannelID   string
	CreatedAt      time.Time
}

func (PhraseMatcher) Kind() RuleKind     { return KindPhrase }
func (p PhraseMatcher) RuleID() string   { return p.ID }
func (PhraseMatcher) isRule()            {}
func (p PhraseMatcher) IsGlobal() bool   { return p.GuildID == "" }
func (p PhraseMatcher) Threshold() int {
	switch {
	case p.MatchThreshold <= 0:
		return 0
	case p.MatchThreshold > 100:
		return 100
	}
	return p.MatchThreshold
}

// AutoPing menciona RoleID en TargetChannelID cuando un hilo nuevo del foro
// ForumID lleva el tag Tag.
type AutoPing struct {
	ID              string
	GuildID         string
	ForumID         string
	Tag             string
	RoleID          string
	TargetChannelID string
	CreatedAt       time.Time
}

func (AutoPing) Kind() RuleKind   { return KindAutoPing }
func (a AutoPing) RuleID() string { return a.ID }
func (AutoPing) isRule()          {}

type PollMode string

const (
	PollModeAny PollMode = "any"
	PollModeAll PollMode = "all"
)

var DefaultPollEmojis = []string{"👍", "👎"}

// AutoPoll agrega una encuesta (reacciones) a los mensajes de ciertos canales
// o de autores con ciertos roles. Conjuntos vacíos no aplican a nada.
type AutoPoll struct {
	ID        string
	GuildID   string
	Channels  []string
	Roles     []string
	Mode      PollMode
	Emojis    []string
	CreatedAt time.Time
}

func (AutoPoll) Kind() RuleKind   { return KindAutoPoll }
func (a AutoPoll) RuleID() string { return a.ID }
func (AutoPoll) isRule()          {}

// Applies evalúa el alcance de la regla para un canal y los roles del autor.
func (a AutoPoll) Applies(channelID string, roleIDs []string) bool {
	inChannel := slices.Contains(a.Channels, channelID)
	hasRole := false
	for _, r := range roleIDs {
		if slices.Contains(a.Roles, r) {
			hasRole = true
			break
		}
	}
	if a.Mode == PollModeAll {
		return inChannel && hasRole
	}
	return inChannel || hasRole
}

func (a AutoPoll) PollEmojis() []string {
	if len(a.Emojis) == 0 {
		return DefaultPollEmojis
	}
	return a.Emojis
}

// EmojiUsage es el contador de uso de un emoji en un guild.
type EmojiUsage struct {
	GuildID   string
	Name      string
	Count     int64
	LastUsage time.Time
}

func (EmojiUsage) Kind() RuleKind   { return KindEmoji }
func (e EmojiUsage) RuleID() string { return e.GuildID + "/" + e.Name }
func (EmojiUsage) isRule()          {}

// CommandCooldown es el último uso registrado para una ScopeKey.
type CommandCooldown struct {
	Key     ScopeKey
	LastUse time.Time
}

// ScopeKey identifica (tipo, regla o comando, guild, actor) para el gate.
type ScopeKey struct {
	Kind    RuleKind
	ID      string
	GuildID string
	ActorID string
}

func (k ScopeKey) String() string {
	return string(k.Kind) + ":" + k.ID + ":" + k.GuildID + ":" + k.ActorID
}
