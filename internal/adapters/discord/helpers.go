package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// flattenOptions aplana las opciones de un slash command: el subcomando (si
// hay) va en args[0] y los valores quedan por nombre.
func flattenOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) ([]string, map[string]string) {
	args := []string{}
	vals := map[string]string{}
	for _, o := range opts {
		if o.Type == discordgo.ApplicationCommandOptionSubCommand {
			args = append(args, o.Name)
			for _, so := range o.Options {
				vals[so.Name] = optionString(so)
			}
			continue
		}
		vals[o.Name] = optionString(o)
	}
	return args, vals
}

func optionString(o *discordgo.ApplicationCommandInteractionDataOption) string {
	switch o.Type {
	case discordgo.ApplicationCommandOptionInteger:
		return fmt.Sprint(o.IntValue())
	case discordgo.ApplicationCommandOptionBoolean:
		return fmt.Sprint(o.BoolValue())
	}
	if o.Value == nil {
		return ""
	}
	return fmt.Sprint(o.Value)
}
