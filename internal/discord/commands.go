package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/hunterjsb/k9/internal/episodes"
	"github.com/hunterjsb/k9/internal/ledger"
	"github.com/hunterjsb/k9/internal/logger"
	"github.com/hunterjsb/k9/internal/quotes"
	"github.com/hunterjsb/k9/internal/rapidapi"
)

const (
	maxEpisodeResults = 10
	commandTimeout    = 15 * time.Second
	messageLimit      = 2000

	placeholderImage = "https://upload.wikimedia.org/wikipedia/commons/thumb/a/ac/No_image_available.svg/480px-No_image_available.svg.png"
)

var doctorOrdinals = []string{
	"first", "second", "third", "fourth", "fifth", "sixth", "seventh",
	"eighth", "ninth", "tenth", "eleventh", "twelfth", "thirteenth", "fourteenth",
}

// doctorOrdinal returns the spelled ordinal of the n-th doctor.
func doctorOrdinal(n int64) (string, bool) {
	if n < 1 || n > int64(len(doctorOrdinals)) {
		return "", false
	}
	return doctorOrdinals[n-1], true
}

// handleQuoteCommand handles the /quote slash command
func (b *DiscordBot) handleQuoteCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	quote := quotes.Fallback
	if b.Quotes != nil {
		quote = b.Quotes.Random()
	}

	b.respond(s, i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{b.formatQuote(quote)},
	})
}

func (b *DiscordBot) formatQuote(q quotes.Quote) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       q.Author,
		Description: q.Quote,
		Color:       0x003b6f,
	}
}

// handleDoctorCommand handles the /doctor slash command
func (b *DiscordBot) handleDoctorCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	var n int64
	for _, opt := range options {
		if opt.Name == "n" {
			n = opt.IntValue()
		}
	}

	ordinal, ok := doctorOrdinal(n)
	if !ok {
		b.respond(s, i, &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("There have only been %d doctors so far.", len(doctorOrdinals)),
			Flags:   discordgo.MessageFlagsEphemeral,
		})
		return
	}

	if !b.deferResponse(s, i, 0) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var image string
	if b.RapidAPI != nil {
		var err error
		image, err = b.RapidAPI.SearchImage(ctx, doctorQuery(ordinal))
		if err != nil && !errors.Is(err, rapidapi.ErrNoImage) {
			logger.Warn("Image search failed", "doctor", n, "error", err)
		}
	}

	content, embed := b.formatDoctor(ordinal, image)
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
		Embeds:  &[]*discordgo.MessageEmbed{embed},
	}); err != nil {
		logger.Warn("Error editing doctor response", "error", err)
	}
}

func doctorQuery(ordinal string) string {
	return fmt.Sprintf("doctor who %s doctor", ordinal)
}

// formatDoctor builds the reply for an image lookup. An empty image means the
// lookup failed.
func (b *DiscordBot) formatDoctor(ordinal, image string) (string, *discordgo.MessageEmbed) {
	if image == "" {
		return fmt.Sprintf("No image found for the %s doctor", ordinal),
			&discordgo.MessageEmbed{Image: &discordgo.MessageEmbedImage{URL: placeholderImage}}
	}
	return fmt.Sprintf("Here's a picture of the %s doctor", ordinal),
		&discordgo.MessageEmbed{Image: &discordgo.MessageEmbedImage{URL: image}}
}

// episodeResult is an episode with its release date, nil when unknown
type episodeResult struct {
	Episode episodes.Episode
	Release *rapidapi.ReleaseDate
}

// handleEpisodeCommand handles the /episode slash command
func (b *DiscordBot) handleEpisodeCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var name string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "name" {
			name = opt.StringValue()
		}
	}

	if !b.deferResponse(s, i, 0) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	found, err := b.Episodes.Search(ctx, name, maxEpisodeResults)
	if err != nil {
		logger.Error("Episode search failed", "query", name, "error", err)
		b.sendError(s, i, "Error", "Failed to search episodes")
		return
	}

	results := b.releaseDates(ctx, found)
	content := truncate(b.formatEpisodes(results), messageLimit)
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	}); err != nil {
		logger.Warn("Error editing episode response", "error", err)
	}
}

// releaseDates looks up each episode's release date concurrently. Lookup
// failures leave Release nil.
func (b *DiscordBot) releaseDates(ctx context.Context, found []episodes.Episode) []episodeResult {
	results := make([]episodeResult, len(found))
	var wg sync.WaitGroup
	for idx, ep := range found {
		results[idx].Episode = ep
		if b.RapidAPI == nil {
			continue
		}
		wg.Add(1)
		go func(idx int, id string) {
			defer wg.Done()
			date, err := b.RapidAPI.GetReleaseDate(ctx, id)
			if err != nil {
				logger.Warn("Release date lookup failed", "episode", id, "error", err)
				return
			}
			results[idx].Release = date
		}(idx, ep.ID)
	}
	wg.Wait()
	return results
}

func (b *DiscordBot) formatEpisodes(results []episodeResult) string {
	if len(results) == 0 {
		return "I could not find any episodes matching your search."
	}

	var sb strings.Builder
	sb.WriteString("## Here are the episodes that match your search:")
	for _, r := range results {
		date := "[no data found]"
		if r.Release != nil {
			date = r.Release.String()
		}
		fmt.Fprintf(&sb, "\n__%s__:  %s    **(%dx%d)**", r.Episode.Title, date, r.Episode.Season, r.Episode.Episode)
	}
	return sb.String()
}

// handlePointsCommand handles the /points slash command
func (b *DiscordBot) handlePointsCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		b.respond(s, i, &discordgo.InteractionResponseData{Content: "Command was not run in guild"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	entries, err := b.Ledger.Leaderboard(ctx, i.GuildID)
	if err != nil {
		logger.Error("Failed to load leaderboard", "guild", i.GuildID, "error", err)
		b.respond(s, i, &discordgo.InteractionResponseData{
			Content: "I could not read the leaderboard right now.",
			Flags:   discordgo.MessageFlagsEphemeral,
		})
		return
	}

	b.respond(s, i, &discordgo.InteractionResponseData{
		Content:         truncate(b.formatLeaderboard(entries), messageLimit),
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
}

func (b *DiscordBot) formatLeaderboard(entries []ledger.ScoreEntry) string {
	var sb strings.Builder
	sb.WriteString("## Leaderboard")
	for _, e := range entries {
		fmt.Fprintf(&sb, "\n<@%s>: %d", e.UserID, e.Score)
	}
	return sb.String()
}

// handleAskCommand handles the /ask slash command
func (b *DiscordBot) handleAskCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var prompt string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "prompt" {
			prompt = opt.StringValue()
		}
	}

	if !b.deferResponse(s, i, 0) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	answer, err := b.OpenAI.GenerateResponse(ctx, prompt)
	if err != nil {
		logger.Error("OpenAI request failed", "user", interactionUserID(i), "error", err)
		b.sendError(s, i, "Error", "Negative. My language circuits are unavailable.")
		return
	}

	content := truncate(answer, messageLimit)
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	}); err != nil {
		logger.Warn("Error editing ask response", "error", err)
	}
}
