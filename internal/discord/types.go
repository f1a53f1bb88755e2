package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/sashabaranov/go-openai"

	"github.com/hunterjsb/k9/internal/config"
	"github.com/hunterjsb/k9/internal/episodes"
	"github.com/hunterjsb/k9/internal/ledger"
	"github.com/hunterjsb/k9/internal/metrics"
	"github.com/hunterjsb/k9/internal/quotes"
	"github.com/hunterjsb/k9/internal/rapidapi"
	"github.com/hunterjsb/k9/internal/trivia"
)

// DiscordBot represents the K9 Discord bot
type DiscordBot struct {
	Session         *discordgo.Session
	Config          *config.Config
	Trivia          *trivia.Engine
	Ledger          *ledger.Ledger
	Episodes        *episodes.Store
	Quotes          *quotes.Book
	RapidAPI        *rapidapi.Client
	OpenAI          *OpenAIClient
	Metrics         *metrics.Metrics
	BotUserID       string
	Commands        []*discordgo.ApplicationCommand
	CommandHandlers map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
}

// Services are the components the bot answers commands with
type Services struct {
	Questions *trivia.QuestionStore
	Ledger    *ledger.Ledger
	Episodes  *episodes.Store
	Quotes    *quotes.Book
	RapidAPI  *rapidapi.Client
	Metrics   *metrics.Metrics
}

// OpenAIClient wraps the OpenAI API client
type OpenAIClient struct {
	client      *openai.Client
	maxTokens   int
	temperature float32
}
