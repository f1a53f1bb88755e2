package discord

import (
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunterjsb/k9/internal/config"
	"github.com/hunterjsb/k9/internal/episodes"
	"github.com/hunterjsb/k9/internal/ledger"
	"github.com/hunterjsb/k9/internal/quotes"
	"github.com/hunterjsb/k9/internal/rapidapi"
)

func TestFormatQuote(t *testing.T) {
	bot := &DiscordBot{}

	embed := bot.formatQuote(quotes.Quote{Quote: "Affirmative, master.", Author: "K9"})
	assert.Equal(t, "K9", embed.Title)
	assert.Equal(t, "Affirmative, master.", embed.Description)

	embed = bot.formatQuote(quotes.Fallback)
	assert.Equal(t, "author_not_found", embed.Title)
	assert.Equal(t, "quote_not_found", embed.Description)
}

func TestDoctorOrdinal(t *testing.T) {
	tests := []struct {
		n    int64
		want string
		ok   bool
	}{
		{1, "first", true},
		{8, "eighth", true},
		{12, "twelfth", true},
		{14, "fourteenth", true},
		{0, "", false},
		{15, "", false},
		{-3, "", false},
	}

	for _, tt := range tests {
		got, ok := doctorOrdinal(tt.n)
		assert.Equal(t, tt.ok, ok, "n=%d", tt.n)
		assert.Equal(t, tt.want, got, "n=%d", tt.n)
	}
}

func TestFormatDoctor(t *testing.T) {
	bot := &DiscordBot{}

	assert.Equal(t, "doctor who tenth doctor", doctorQuery("tenth"))

	content, embed := bot.formatDoctor("tenth", "https://example.com/tennant.png")
	assert.Equal(t, "Here's a picture of the tenth doctor", content)
	require.NotNil(t, embed.Image)
	assert.Equal(t, "https://example.com/tennant.png", embed.Image.URL)

	content, embed = bot.formatDoctor("first", "")
	assert.Equal(t, "No image found for the first doctor", content)
	require.NotNil(t, embed.Image)
	assert.Equal(t, placeholderImage, embed.Image.URL)
}

func TestDoctorCommandBounds(t *testing.T) {
	var doctor *discordgo.ApplicationCommand
	for _, cmd := range commands {
		if cmd.Name == "doctor" {
			doctor = cmd
		}
	}
	require.NotNil(t, doctor)
	require.Len(t, doctor.Options, 1)

	opt := doctor.Options[0]
	assert.Equal(t, discordgo.ApplicationCommandOptionInteger, opt.Type)
	assert.True(t, opt.Required)
	require.NotNil(t, opt.MinValue)
	assert.Equal(t, 1.0, *opt.MinValue)
	assert.Equal(t, 14.0, opt.MaxValue)
}

func TestCommandDefinitions(t *testing.T) {
	bot := &DiscordBot{}
	names := func(defs []*discordgo.ApplicationCommand) []string {
		var out []string
		for _, d := range defs {
			out = append(out, d.Name)
		}
		return out
	}

	assert.Equal(t, []string{"quote", "doctor", "episode", "points", "trivia"}, names(bot.commandDefinitions()))

	bot.OpenAI = NewOpenAIClient("sk-test", 150, 0.7)
	assert.Equal(t, []string{"quote", "doctor", "episode", "points", "trivia", "ask"}, names(bot.commandDefinitions()))
}

func TestFormatEpisodes(t *testing.T) {
	bot := &DiscordBot{}

	results := []episodeResult{
		{
			Episode: episodes.Episode{ID: "tt0563001", Title: "Rose", Season: 1, Episode: 1},
			Release: &rapidapi.ReleaseDate{Year: 2005, Month: 3, Day: 26},
		},
		{
			Episode: episodes.Episode{ID: "tt0562992", Title: "The End of the World", Season: 1, Episode: 2},
		},
	}

	want := "## Here are the episodes that match your search:" +
		"\n__Rose__:  2005-3-26    **(1x1)**" +
		"\n__The End of the World__:  [no data found]    **(1x2)**"
	assert.Equal(t, want, bot.formatEpisodes(results))
}

func TestFormatEpisodes_NoResults(t *testing.T) {
	bot := &DiscordBot{}
	got := bot.formatEpisodes(nil)
	assert.NotContains(t, got, "## Here are the episodes")
	assert.NotEmpty(t, got)
}

func TestFormatLeaderboard(t *testing.T) {
	bot := &DiscordBot{}

	got := bot.formatLeaderboard([]ledger.ScoreEntry{
		{UserID: "111", GuildID: "g", Score: 5},
		{UserID: "222", GuildID: "g", Score: 2},
	})
	assert.Equal(t, "## Leaderboard\n<@111>: 5\n<@222>: 2", got)
	assert.Equal(t, "## Leaderboard", bot.formatLeaderboard(nil))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))

	long := strings.Repeat("a", 2500)
	got := truncate(long, messageLimit)
	assert.LessOrEqual(t, len(got), messageLimit)
	assert.True(t, strings.HasSuffix(got, "…"))

	// never split a multi-byte rune
	runes := strings.Repeat("é", 10)
	got = truncate(runes, 8)
	assert.LessOrEqual(t, len(got), 8)
	assert.True(t, strings.HasPrefix(runes, strings.TrimSuffix(got, "…")))
}

func TestCleanMentions(t *testing.T) {
	users := []*discordgo.User{{ID: "42"}}
	assert.Equal(t, "Gallifrey", CleanMentions("<@42> Gallifrey", users))
	assert.Equal(t, "Gallifrey", CleanMentions("Gallifrey <@!42>", users))
	assert.Equal(t, "<@7> Skaro", CleanMentions("<@7> Skaro", users))
}

func TestTriviaReply(t *testing.T) {
	bot := &DiscordBot{BotUserID: "bot", Config: &config.Config{}}

	question := &discordgo.Message{
		ID:      "q1",
		Content: "Who plays the Doctor?",
		Author:  &discordgo.User{ID: "bot", Bot: true},
	}
	msg := &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:                "m1",
		ChannelID:         "c1",
		GuildID:           "g1",
		Content:           "Tom Baker",
		Author:            &discordgo.User{ID: "u1"},
		ReferencedMessage: question,
	}}

	reply, ok := bot.triviaReply(msg)
	require.True(t, ok)
	assert.Equal(t, "c1", reply.ChannelID)
	assert.Equal(t, "g1", reply.GuildID)
	assert.Equal(t, "u1", reply.UserID)
	assert.Equal(t, "Tom Baker", reply.Content)
	assert.Equal(t, "q1", reply.ReferencedMessageID)
	assert.Equal(t, "Who plays the Doctor?", reply.ReferencedContent)

	t.Run("bot authors are ignored", func(t *testing.T) {
		m := *msg.Message
		m.Author = &discordgo.User{ID: "other-bot", Bot: true}
		_, ok := bot.triviaReply(&discordgo.MessageCreate{Message: &m})
		assert.False(t, ok)
	})

	t.Run("plain messages are ignored", func(t *testing.T) {
		m := *msg.Message
		m.ReferencedMessage = nil
		_, ok := bot.triviaReply(&discordgo.MessageCreate{Message: &m})
		assert.False(t, ok)
	})

	t.Run("replies to other users are ignored", func(t *testing.T) {
		m := *msg.Message
		m.ReferencedMessage = &discordgo.Message{ID: "x", Author: &discordgo.User{ID: "u2"}}
		_, ok := bot.triviaReply(&discordgo.MessageCreate{Message: &m})
		assert.False(t, ok)
	})

	t.Run("configured client id wins", func(t *testing.T) {
		configured := &DiscordBot{BotUserID: "session-user", Config: &config.Config{ClientID: "bot"}}
		_, ok := configured.triviaReply(msg)
		assert.True(t, ok)
	})
}

func TestTriviaChannels(t *testing.T) {
	guild := &discordgo.Guild{
		ID: "g1",
		Channels: []*discordgo.Channel{
			{ID: "1", Name: "general", Type: discordgo.ChannelTypeGuildText},
			{ID: "2", Name: "general", Type: discordgo.ChannelTypeGuildVoice},
			{ID: "3", Name: "random", Type: discordgo.ChannelTypeGuildText},
			{ID: "4", Name: "general", Type: discordgo.ChannelTypeGuildText},
		},
	}

	assert.Equal(t, []string{"1", "4"}, triviaChannels(guild, "general"))
	assert.Empty(t, triviaChannels(guild, "trivia"))
	assert.Empty(t, triviaChannels(nil, "general"))
}

func TestInteractionUserID(t *testing.T) {
	guild := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Member: &discordgo.Member{User: &discordgo.User{ID: "member"}},
	}}
	dm := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		User: &discordgo.User{ID: "dm-user"},
	}}

	assert.Equal(t, "member", interactionUserID(guild))
	assert.Equal(t, "dm-user", interactionUserID(dm))
	assert.Equal(t, "", interactionUserID(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}}))
}

func TestHelpText(t *testing.T) {
	help := HelpText(false)
	assert.Contains(t, help, "/doctor <n>\n    Sends a picture of the n-th doctor\n")
	assert.Contains(t, help, "/episode <name>")
	assert.NotContains(t, help, "/ask")

	assert.Contains(t, HelpText(true), "/ask <prompt>")
}
