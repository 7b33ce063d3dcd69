package domain

// Intent describe un efecto todavía no ejecutado sobre la plataforma.
type Intent interface {
	IntentKind() string
	isIntent()
}

// LogIntent publica una alerta en el canal de log de una regla.
type LogIntent struct {
	ChannelID string
	Content   string
}

// PingIntent menciona un rol en un canal.
type PingIntent struct {
	ChannelID string
	RoleID    string
	Content   string
}

// PollIntent agrega la encuesta de reacciones a un mensaje.
type PollIntent struct {
	ChannelID string
	MessageID string
	Emojis    []string
}

// EmojiIncrementIntent suma uno al contador del emoji.
type EmojiIncrementIntent struct {
	GuildID string
	Name    string
}

func (LogIntent) IntentKind() string            { return "log" }
func (PingIntent) IntentKind() string           { return "ping" }
func (PollIntent) IntentKind() string           { return "poll" }
func (EmojiIncrementIntent) IntentKind() string { return "emoji_increment" }

func (LogIntent) isIntent()            {}
func (PingIntent) isIntent()           {}
func (PollIntent) isIntent()           {}
func (EmojiIncrementIntent) isIntent() {}

// Match es una regla que disparó junto con lo que hay que hacer.
type Match struct {
	Rule   Rule
	Intent Intent
}
