package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// sessionMessenger posts trivia messages through the bot session.
type sessionMessenger struct {
	session *discordgo.Session
}

func (m *sessionMessenger) Post(ctx context.Context, channelID, content string) (string, error) {
	msg, err := m.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (m *sessionMessenger) Edit(ctx context.Context, channelID, messageID, content string) error {
	_, err := m.session.ChannelMessageEdit(channelID, messageID, content, discordgo.WithContext(ctx))
	return err
}
