package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/hunterjsb/k9/internal/config"
	"github.com/hunterjsb/k9/internal/logger"
	"github.com/hunterjsb/k9/internal/trivia"
)

var doctorMinValue = 1.0

// Command definitions
var commands = []*discordgo.ApplicationCommand{
	{
		Name:        "quote",
		Description: "Sends a Dr. Who quote",
	},
	{
		Name:        "doctor",
		Description: "Sends a picture of the n-th doctor",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "n",
				Description: "The number of the doctor",
				Required:    true,
				MinValue:    &doctorMinValue,
				MaxValue:    float64(len(doctorOrdinals)),
			},
		},
	},
	{
		Name:        "episode",
		Description: "Search for a specific Doctor Who episode",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "name",
				Description: "Title of the episode",
				Required:    true,
			},
		},
	},
	{
		Name:        "points",
		Description: "Shows the trivia points users have on this guild",
	},
	{
		Name:        "trivia",
		Description: "Starts a trivia round in this channel",
	},
}

// askCommand is only registered when an OpenAI key is configured
var askCommand = &discordgo.ApplicationCommand{
	Name:        "ask",
	Description: "Ask K9 anything",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "prompt",
			Description: "Your question for K9",
			Required:    true,
		},
	},
}

// NewDiscordBot creates a new Discord bot with the provided configuration
func NewDiscordBot(config *config.Config, services Services) (*DiscordBot, error) {
	session, err := discordgo.New("Bot " + config.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	bot := &DiscordBot{
		Session:         session,
		Config:          config,
		Ledger:          services.Ledger,
		Episodes:        services.Episodes,
		Quotes:          services.Quotes,
		RapidAPI:        services.RapidAPI,
		Metrics:         services.Metrics,
		CommandHandlers: make(map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)),
	}

	bot.Trivia = trivia.NewEngine(
		services.Questions,
		services.Ledger,
		&sessionMessenger{session: session},
		trivia.WithRevealDelay(config.TriviaRevealDelay),
		trivia.WithMetrics(services.Metrics),
	)

	if config.OpenAIToken != "" {
		bot.OpenAI = NewOpenAIClient(config.OpenAIToken, config.MaxTokens, config.Temperature)
	}

	// Set up command handlers
	bot.CommandHandlers["quote"] = bot.handleQuoteCommand
	bot.CommandHandlers["doctor"] = bot.handleDoctorCommand
	bot.CommandHandlers["episode"] = bot.handleEpisodeCommand
	bot.CommandHandlers["points"] = bot.handlePointsCommand
	bot.CommandHandlers["trivia"] = bot.handleTriviaCommand
	if bot.OpenAI != nil {
		bot.CommandHandlers["ask"] = bot.handleAskCommand
	}

	return bot, nil
}

// Start starts the Discord bot
func (b *DiscordBot) Start() error {
	// Get bot user ID
	user, err := b.Session.User("@me")
	if err != nil {
		return fmt.Errorf("error getting bot user: %w", err)
	}
	b.BotUserID = user.ID

	// Register event handlers
	b.Session.AddHandler(b.readyHandler)
	b.Session.AddHandler(b.guildCreateHandler)
	b.Session.AddHandler(b.messageHandler)
	b.Session.AddHandler(b.interactionHandler)

	// Open a websocket connection to Discord
	err = b.Session.Open()
	if err != nil {
		return fmt.Errorf("error opening Discord session: %w", err)
	}

	// Register commands
	registeredCommands, err := b.registerCommands()
	if err != nil {
		return fmt.Errorf("error registering commands: %w", err)
	}
	b.Commands = registeredCommands

	logger.Info("Bot is now running with slash commands registered", "commands", len(registeredCommands))
	return nil
}

// Stop removes commands if configured to do so, closes the session and then
// stops pending trivia rounds
func (b *DiscordBot) Stop() error {
	if b.Config.RemoveCommands {
		logger.Info("Removing commands...")
		for _, cmd := range b.Commands {
			err := b.Session.ApplicationCommandDelete(b.Session.State.User.ID, b.Config.GuildID, cmd.ID)
			if err != nil {
				logger.Warn("Error removing command", "command", cmd.Name, "error", err)
			}
		}
	}

	err := b.Session.Close()
	b.Trivia.Close()
	return err
}

// commandDefinitions returns the slash commands this bot serves
func (b *DiscordBot) commandDefinitions() []*discordgo.ApplicationCommand {
	defs := make([]*discordgo.ApplicationCommand, 0, len(commands)+1)
	defs = append(defs, commands...)
	if b.OpenAI != nil {
		defs = append(defs, askCommand)
	}
	return defs
}

// registerCommands registers the defined slash commands
func (b *DiscordBot) registerCommands() ([]*discordgo.ApplicationCommand, error) {
	defs := b.commandDefinitions()
	registeredCommands := make([]*discordgo.ApplicationCommand, len(defs))

	for i, cmd := range defs {
		registered, err := b.Session.ApplicationCommandCreate(b.Session.State.User.ID, b.Config.GuildID, cmd)
		if err != nil {
			return nil, fmt.Errorf("error creating command '%s': %w", cmd.Name, err)
		}
		registeredCommands[i] = registered
	}

	return registeredCommands, nil
}

// interactionHandler handles Discord interaction events
func (b *DiscordBot) interactionHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	// Check if it's a command interaction
	if i.Type == discordgo.InteractionApplicationCommand {
		// Get command name
		commandName := i.ApplicationCommandData().Name

		// Check if there's a handler for this command
		if handler, ok := b.CommandHandlers[commandName]; ok {
			b.Metrics.CommandReceived(commandName)
			handler(s, i)
		}
	}
}

// readyHandler logs the connected identity
func (b *DiscordBot) readyHandler(s *discordgo.Session, r *discordgo.Ready) {
	logger.Info("K9 is connected", "user", r.User.Username, "guilds", len(r.Guilds))
}

// sendError sends an error embed
func (b *DiscordBot) sendError(s *discordgo.Session, i *discordgo.InteractionCreate, title, description string) {
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       0xff0000,
	}

	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	}); err != nil {
		logger.Warn("Error editing error response", "error", err)
	}
}

// respond sends an immediate response to an interaction
func (b *DiscordBot) respond(s *discordgo.Session, i *discordgo.InteractionCreate, data *discordgo.InteractionResponseData) {
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}); err != nil {
		logger.Warn("Error responding to interaction", "command", i.ApplicationCommandData().Name, "error", err)
	}
}

// deferResponse acknowledges an interaction that needs more than three seconds to answer
func (b *DiscordBot) deferResponse(s *discordgo.Session, i *discordgo.InteractionCreate, flags discordgo.MessageFlags) bool {
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: flags},
	}); err != nil {
		logger.Warn("Error acknowledging interaction", "command", i.ApplicationCommandData().Name, "error", err)
		return false
	}
	return true
}

// interactionUserID returns the invoking user for guild and DM interactions
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
