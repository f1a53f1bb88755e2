package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds K9 configuration. It is built once at startup and passed to every component.
type Config struct {
	// Discord
	DiscordToken   string
	ClientID       string
	GuildID        string
	RemoveCommands bool

	// Third-party APIs
	RapidAPIKey string
	RapidAPIRPS float64
	OpenAIToken string
	MaxTokens   int
	Temperature float64

	// Storage and data files
	DatabasePath  string
	QuestionsPath string
	EpisodesPath  string
	QuotesPath    string

	// Trivia
	TriviaChannel     string
	TriviaRevealDelay time.Duration

	// Application
	MetricsAddr string
	LogLevel    string
	AppEnv      string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		ClientID:       os.Getenv("CLIENT_ID"),
		GuildID:        os.Getenv("GUILD_ID"),
		RemoveCommands: getEnvBool("REMOVE_COMMANDS", false),

		RapidAPIKey: os.Getenv("RAPID_API"),
		RapidAPIRPS: getEnvFloat("RAPID_API_RPS", 2),
		OpenAIToken: os.Getenv("OPENAI_API_KEY"),
		MaxTokens:   getEnvInt("MAX_TOKENS", 150),
		Temperature: getEnvFloat("TEMPERATURE", 0.7),

		DatabasePath:  getEnv("DB_PATH", "k9.db"),
		QuestionsPath: getEnv("QUESTIONS_PATH", "questions.json"),
		EpisodesPath:  getEnv("EPISODES_PATH", "episodes.json"),
		QuotesPath:    getEnv("QUOTES_PATH", "quotes.json"),

		TriviaChannel: getEnv("TRIVIA_CHANNEL", "general"),

		MetricsAddr: os.Getenv("METRICS_ADDR"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		AppEnv:      getEnv("APP_ENV", "production"),
	}

	delay, err := time.ParseDuration(getEnv("TRIVIA_REVEAL_DELAY", "3s"))
	if err != nil {
		return nil, fmt.Errorf("invalid TRIVIA_REVEAL_DELAY: %w", err)
	}
	if delay < 0 {
		return nil, errors.New("TRIVIA_REVEAL_DELAY must not be negative")
	}
	cfg.TriviaRevealDelay = delay

	return cfg, nil
}

// Validate reports every missing required value at once.
func (c *Config) Validate() error {
	var errs []error
	if c.DiscordToken == "" {
		errs = append(errs, errors.New("DISCORD_TOKEN is required"))
	}
	if c.RapidAPIKey == "" {
		errs = append(errs, errors.New("RAPID_API is required"))
	}
	if c.RapidAPIRPS <= 0 {
		errs = append(errs, errors.New("RAPID_API_RPS must be positive"))
	}
	return errors.Join(errs...)
}

// Development reports whether the app runs in a development environment.
func (c *Config) Development() bool {
	return c.AppEnv == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
