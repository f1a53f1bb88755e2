package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunterjsb/k9/internal/config"
)

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	questions := filepath.Join(dir, "questions.json")
	require.NoError(t, os.WriteFile(questions, []byte(`[]`), 0o644))

	cfg := &config.Config{
		DiscordToken:  "token",
		RapidAPIKey:   "",
		ClientID:      "123",
		QuestionsPath: questions,
		EpisodesPath:  filepath.Join(dir, "episodes.json"),
		QuotesPath:    filepath.Join(dir, "quotes.json"),
	}

	var out bytes.Buffer
	problems := verify(&out, cfg)

	assert.Equal(t, 3, problems)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "✅ DISCORD_TOKEN is set", lines[0])
	assert.Equal(t, "❌ RAPID_API is missing", lines[1])
	assert.Equal(t, "✅ CLIENT_ID is set", lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "✅ questions file"))
	assert.True(t, strings.HasPrefix(lines[4], "❌ episodes file"))
	assert.True(t, strings.HasPrefix(lines[5], "❌ quotes file"))
}

func TestVerify_AllGood(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 3)
	for i, name := range []string{"questions.json", "episodes.json", "quotes.yaml"} {
		paths[i] = filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(paths[i], []byte(`[]`), 0o644))
	}

	cfg := &config.Config{
		DiscordToken:  "token",
		RapidAPIKey:   "key",
		ClientID:      "123",
		QuestionsPath: paths[0],
		EpisodesPath:  paths[1],
		QuotesPath:    paths[2],
	}

	var out bytes.Buffer
	assert.Zero(t, verify(&out, cfg))
	assert.NotContains(t, out.String(), "❌")
}

func TestPrintHelp(t *testing.T) {
	var out bytes.Buffer
	printHelp(&out, &config.Config{})
	assert.Contains(t, out.String(), "/trivia")
	assert.NotContains(t, out.String(), "/ask")

	out.Reset()
	printHelp(&out, &config.Config{OpenAIToken: "sk-test"})
	assert.Contains(t, out.String(), "/ask <prompt>")
}
