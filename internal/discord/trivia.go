package discord

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"

	"github.com/hunterjsb/k9/internal/logger"
	"github.com/hunterjsb/k9/internal/trivia"
)

// authorID is the user id trivia replies must target. CLIENT_ID wins over the
// session user so a bot can run under an application id it was configured with.
func (b *DiscordBot) authorID() string {
	if b.Config != nil && b.Config.ClientID != "" {
		return b.Config.ClientID
	}
	return b.BotUserID
}

// triviaReply converts a message into a trivia reply. It reports false for
// messages that do not reply to something the bot wrote.
func (b *DiscordBot) triviaReply(m *discordgo.MessageCreate) (trivia.Reply, bool) {
	if m.Author == nil || m.Author.Bot {
		return trivia.Reply{}, false
	}

	ref := m.ReferencedMessage
	if ref == nil || ref.Author == nil || ref.Author.ID != b.authorID() {
		return trivia.Reply{}, false
	}

	return trivia.Reply{
		ChannelID:           m.ChannelID,
		GuildID:             m.GuildID,
		UserID:              m.Author.ID,
		Content:             CleanMentions(m.Content, m.Mentions),
		ReferencedMessageID: ref.ID,
		ReferencedContent:   ref.Content,
	}, true
}

// messageHandler routes replies to the bot into the trivia engine
func (b *DiscordBot) messageHandler(s *discordgo.Session, m *discordgo.MessageCreate) {
	reply, ok := b.triviaReply(m)
	if !ok {
		return
	}

	outcome, err := b.Trivia.HandleReply(context.Background(), reply)
	switch {
	case errors.Is(err, trivia.ErrCorrelation):
		logger.Debug("Reply is not a trivia answer", "channel", m.ChannelID, "message", m.ID)
	case err != nil:
		logger.Error("Failed to handle trivia answer", "channel", m.ChannelID, "user", reply.UserID, "error", err)
		if _, sendErr := s.ChannelMessageSendReply(m.ChannelID, "Affirmative, but I couldn't record your point.", m.Reference()); sendErr != nil {
			logger.Warn("Error sending ledger failure notice", "error", sendErr)
		}
	case outcome.Correct:
		logger.Info("Trivia answered", "channel", m.ChannelID, "user", reply.UserID, "score", outcome.Score, "awarded", outcome.Awarded)
	}
}

// guildCreateHandler starts a round in every trivia channel of a guild once its
// channel list is known
func (b *DiscordBot) guildCreateHandler(s *discordgo.Session, g *discordgo.GuildCreate) {
	for _, channelID := range triviaChannels(g.Guild, b.Config.TriviaChannel) {
		go b.startRound(channelID, g.ID)
	}
}

func (b *DiscordBot) startRound(channelID, guildID string) {
	round, err := b.Trivia.Publish(context.Background(), channelID, guildID)
	switch {
	case errors.Is(err, trivia.ErrRoundActive):
		logger.Debug("Trivia round already running", "channel", channelID)
	case err != nil:
		logger.Warn("Could not start trivia round", "channel", channelID, "guild", guildID, "error", err)
	default:
		logger.Info("Trivia round started", "channel", channelID, "guild", guildID, "round", round.ID)
	}
}

// triviaChannels returns the ids of text channels called name.
func triviaChannels(g *discordgo.Guild, name string) []string {
	if g == nil || name == "" {
		return nil
	}

	var ids []string
	for _, ch := range g.Channels {
		if ch.Type == discordgo.ChannelTypeGuildText && ch.Name == name {
			ids = append(ids, ch.ID)
		}
	}
	return ids
}

// handleTriviaCommand handles the /trivia slash command
func (b *DiscordBot) handleTriviaCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.deferResponse(s, i, discordgo.MessageFlagsEphemeral) {
		return
	}

	_, err := b.Trivia.Publish(context.Background(), i.ChannelID, i.GuildID)
	var content string
	switch {
	case errors.Is(err, trivia.ErrRoundActive):
		content = "A trivia question is already waiting for an answer here. Reply to it!"
	case errors.Is(err, trivia.ErrEmptySet):
		b.sendError(s, i, "No Trivia", "I have no trivia questions loaded.")
		return
	case err != nil:
		logger.Error("Failed to publish trivia question", "channel", i.ChannelID, "error", err)
		b.sendError(s, i, "Error", "I could not post a trivia question in this channel.")
		return
	default:
		content = "Trivia question posted. Reply to it with your answer."
	}

	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	}); err != nil {
		logger.Warn("Error editing trivia response", "error", err)
	}
}
