package discord

import (
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

// truncate shortens s to at most limit bytes without splitting a rune, marking
// the cut with an ellipsis.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	const ellipsis = "…"
	cut := limit - len(ellipsis)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + ellipsis
}

// CleanMentions removes mentions of the given users from a message
func CleanMentions(content string, mentions []*discordgo.User) string {
	for _, user := range mentions {
		content = strings.ReplaceAll(content, "<@"+user.ID+">", "")
		content = strings.ReplaceAll(content, "<@!"+user.ID+">", "")
	}
	return strings.TrimSpace(content)
}

// HelpText lists the slash commands with their options, one per line.
func HelpText(withAsk bool) string {
	defs := append([]*discordgo.ApplicationCommand{}, commands...)
	if withAsk {
		defs = append(defs, askCommand)
	}

	var sb strings.Builder
	for _, cmd := range defs {
		sb.WriteString("/" + cmd.Name)
		for _, opt := range cmd.Options {
			sb.WriteString(" <" + opt.Name + ">")
		}
		sb.WriteString("\n    " + cmd.Description + "\n")
	}
	return sb.String()
}
