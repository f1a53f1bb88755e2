package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"

	"github.com/hunterjsb/k9/internal/config"
	"github.com/hunterjsb/k9/internal/database"
	"github.com/hunterjsb/k9/internal/dataset"
	"github.com/hunterjsb/k9/internal/discord"
	"github.com/hunterjsb/k9/internal/episodes"
	"github.com/hunterjsb/k9/internal/ledger"
	"github.com/hunterjsb/k9/internal/logger"
	"github.com/hunterjsb/k9/internal/metrics"
	"github.com/hunterjsb/k9/internal/quotes"
	"github.com/hunterjsb/k9/internal/rapidapi"
	"github.com/hunterjsb/k9/internal/report"
	"github.com/hunterjsb/k9/internal/trivia"
)

func main() {
	if dataset.Exists(".env") {
		if err := godotenv.Load(); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
			fmt.Println("Continuing with environment variables from system...")
		}
	}

	app := &cli.App{
		Name:   "k9",
		Usage:  "Doctor Who trivia bot for Discord",
		Action: runDiscordBot,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "start the Discord bot",
				Action: runDiscordBot,
			},
			{
				Name:  "help-bot",
				Usage: "print the bot's slash commands",
				Action: func(c *cli.Context) error {
					cfg, err := config.LoadConfig()
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					printHelp(c.App.Writer, cfg)
					return nil
				},
			},
			{
				Name:  "verify",
				Usage: "check environment variables and data files",
				Action: func(c *cli.Context) error {
					cfg, err := config.LoadConfig()
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					if problems := verify(c.App.Writer, cfg); problems > 0 {
						return cli.Exit(fmt.Sprintf("%d problem(s) found", problems), 1)
					}
					return nil
				},
			},
			{
				Name:  "export",
				Usage: "write a guild leaderboard to an .xlsx workbook",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "guild", Usage: "guild id", Required: true},
					&cli.StringFlag{Name: "out", Usage: "output file", Value: "leaderboard.xlsx"},
				},
				Action: exportLeaderboard,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func runDiscordBot(c *cli.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	logger.Init(cfg.LogLevel, cfg.Development())
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	episodeStore := episodes.NewStore(db)
	if n, err := episodeStore.LoadFile(ctx, cfg.EpisodesPath); err != nil {
		logger.Warn("Failed to load episodes", "path", cfg.EpisodesPath, "error", err)
	} else {
		logger.Info("Loaded episodes", "count", n, "path", cfg.EpisodesPath)
	}

	points, err := ledger.New(ctx, db)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(registry)
	if err != nil {
		return fmt.Errorf("error registering metrics: %w", err)
	}
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, registry); err != nil {
				logger.Error("Metrics server failed", "addr", cfg.MetricsAddr, "error", err)
			}
		}()
	}

	cache := rapidapi.NewDefaultCache()
	stopJanitor := cache.StartJanitor(10 * time.Minute)
	defer stopJanitor()

	bot, err := discord.NewDiscordBot(cfg, discord.Services{
		Questions: trivia.LoadQuestions(cfg.QuestionsPath),
		Ledger:    points,
		Episodes:  episodeStore,
		Quotes:    quotes.Load(cfg.QuotesPath),
		RapidAPI:  rapidapi.NewClient(cfg.RapidAPIKey, cfg.RapidAPIRPS, rapidapi.WithCache(cache), rapidapi.WithMetrics(m)),
		Metrics:   m,
	})
	if err != nil {
		return err
	}

	logger.Info("Starting Discord bot...")
	if err := bot.Start(); err != nil {
		return err
	}

	logger.Info("Bot is now running. Press CTRL-C to exit.")
	<-ctx.Done()

	logger.Info("Shutting down bot...")
	return bot.Stop()
}

// printHelp lists the slash commands the bot would register with cfg.
func printHelp(w io.Writer, cfg *config.Config) {
	fmt.Fprint(w, discord.HelpText(cfg.OpenAIToken != ""))
}

// verify prints one line per check and returns the number of failed checks.
func verify(w io.Writer, cfg *config.Config) int {
	problems := 0
	check := func(ok bool, good, bad string) {
		if ok {
			fmt.Fprintf(w, "✅ %s\n", good)
			return
		}
		problems++
		fmt.Fprintf(w, "❌ %s\n", bad)
	}

	check(cfg.DiscordToken != "", "DISCORD_TOKEN is set", "DISCORD_TOKEN is missing")
	check(cfg.RapidAPIKey != "", "RAPID_API is set", "RAPID_API is missing")
	check(cfg.ClientID != "", "CLIENT_ID is set", "CLIENT_ID is missing")

	files := []struct{ name, path string }{
		{"questions", cfg.QuestionsPath},
		{"episodes", cfg.EpisodesPath},
		{"quotes", cfg.QuotesPath},
	}
	for _, f := range files {
		check(dataset.Exists(f.path),
			fmt.Sprintf("%s file %s is readable", f.name, f.path),
			fmt.Sprintf("%s file %s cannot be read", f.name, f.path))
	}

	return problems
}

func exportLeaderboard(c *cli.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	db, err := database.Open(c.Context, cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	points, err := ledger.New(c.Context, db)
	if err != nil {
		return err
	}

	guildID := c.String("guild")
	entries, err := points.Leaderboard(c.Context, guildID)
	if err != nil {
		return err
	}

	out, err := os.Create(c.String("out"))
	if err != nil {
		return err
	}
	if err := report.WriteLeaderboard(out, guildID, entries); err != nil {
		return errors.Join(err, out.Close())
	}
	if err := out.Close(); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Wrote %d entries to %s\n", len(entries), c.String("out"))
	return nil
}
