package discord

import "github.com/bwmarrin/discordgo"

func ptr[T any](v T) *T { return &v }

var (
	minThreshold = ptr(0.0)
	maxThreshold = 100.0
)

// Commands es el catálogo de slash commands; los nombres coinciden con los
// comandos registrados en service.Builtins.
var Commands = []*discordgo.ApplicationCommand{
	{
		Name:        "ping",
		Description: "Responde pong",
	},
	{
		Name:        "emojis",
		Description: "Emojis más usados del servidor",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "limit",
			Description: "Cuántos mostrar (1-25)",
		}},
	},
	{
		Name:        "phrase",
		Description: "Alertas por frases (mods/admins)",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "add",
				Description: "Agregar una frase",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "threshold", Description: "Umbral de similitud (100 = exacta)", Required: true, MinValue: minThreshold, MaxValue: maxThreshold},
					{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "Canal de log", Required: true},
					{Type: discordgo.ApplicationCommandOptionString, Name: "phrase", Description: "Frase a detectar", Required: true},
				},
			},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "list", Description: "Ver frases"},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "remove",
				Description: "Borrar una frase",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "id", Description: "Id de la regla", Required: true},
				},
			},
		},
	},
	{
		Name:        "autoping",
		Description: "Pings por tag de foro (admins)",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "add",
				Description: "Mencionar un rol cuando un hilo nuevo lleva un tag",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionChannel, Name: "forum", Description: "Foro", Required: true, ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildForum}},
					{Type: discordgo.ApplicationCommandOptionString, Name: "tag", Description: "Nombre o id del tag", Required: true},
					{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Rol a mencionar", Required: true},
					{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "Canal donde avisar", Required: true},
				},
			},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "list", Description: "Ver auto-pings"},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "remove",
				Description: "Borrar un auto-ping",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "id", Description: "Id de la regla", Required: true},
				},
			},
		},
	},
	{
		Name:        "autopoll",
		Description: "Encuestas automáticas (admins)",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "add",
				Description: "Agregar reacciones de encuesta a mensajes",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type: discordgo.ApplicationCommandOptionString, Name: "mode", Description: "any = canal o rol, all = ambos", Required: true,
						Choices: []*discordgo.ApplicationCommandOptionChoice{{Name: "any", Value: "any"}, {Name: "all", Value: "all"}},
					},
					{Type: discordgo.ApplicationCommandOptionString, Name: "channels", Description: "Canales (#a,#b o -)", Required: true},
					{Type: discordgo.ApplicationCommandOptionString, Name: "roles", Description: "Roles (@a,@b o -)", Required: true},
					{Type: discordgo.ApplicationCommandOptionString, Name: "emojis", Description: "Emojis (por defecto 👍 👎)"},
				},
			},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "list", Description: "Ver auto-polls"},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "remove",
				Description: "Borrar un auto-poll",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "id", Description: "Id de la regla", Required: true},
				},
			},
		},
	},
}
