// Package ledger stores trivia points per (user, guild).
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	// ErrStorage wraps every failure of the backing store. The ledger state for the
	// failed operation is unknown; callers must not blindly retry an increment.
	ErrStorage = errors.New("ledger storage error")

	// ErrNoGuild is returned when an operation is attempted without a guild.
	ErrNoGuild = errors.New("ledger requires a guild id")
)

// ScoreEntry is one user's score in one guild.
type ScoreEntry struct {
	UserID  string
	GuildID string
	Score   int
}

// Ledger is the SQLite-backed point ledger.
type Ledger struct {
	db *sql.DB
}

// New creates the points table if needed and returns a Ledger over db.
func New(ctx context.Context, db *sql.DB) (*Ledger, error) {
	if err := createTables(ctx, db); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return &Ledger{db: db}, nil
}

// createTables creates the points table. id keeps first-seen order for tie breaks.
func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS points (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			guild_id TEXT NOT NULL,
			score INTEGER NOT NULL CHECK (score >= 0),
			UNIQUE (user_id, guild_id)
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS points_guild_score ON points (guild_id, score DESC)`)
	return err
}

// Increment adds one point for userID in guildID, creating the entry with a score
// of 1 if it does not exist, and returns the new score.
func (l *Ledger) Increment(ctx context.Context, userID, guildID string) (int, error) {
	if guildID == "" {
		return 0, ErrNoGuild
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin: %w", ErrStorage, err)
	}
	defer func() { _ = tx.Rollback() }()

	var score int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO points (user_id, guild_id, score) VALUES (?, ?, 1)
		ON CONFLICT (user_id, guild_id) DO UPDATE SET score = score + 1
		RETURNING score`,
		userID, guildID,
	).Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("%w: increment: %w", ErrStorage, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit: %w", ErrStorage, err)
	}

	return score, nil
}

// Score returns the current score for userID in guildID, or 0 if there is none.
func (l *Ledger) Score(ctx context.Context, userID, guildID string) (int, error) {
	if guildID == "" {
		return 0, ErrNoGuild
	}

	var score int
	err := l.db.QueryRowContext(ctx,
		"SELECT score FROM points WHERE user_id = ? AND guild_id = ?",
		userID, guildID,
	).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: score: %w", ErrStorage, err)
	}

	return score, nil
}

// Leaderboard returns the entries of guildID ordered by score descending; ties keep
// first-seen order.
func (l *Ledger) Leaderboard(ctx context.Context, guildID string) ([]ScoreEntry, error) {
	if guildID == "" {
		return nil, ErrNoGuild
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT user_id, guild_id, score
		FROM points
		WHERE guild_id = ?
		ORDER BY score DESC, id ASC`,
		guildID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: leaderboard: %w", ErrStorage, err)
	}
	defer rows.Close()

	entries := []ScoreEntry{}
	for rows.Next() {
		var e ScoreEntry
		if err := rows.Scan(&e.UserID, &e.GuildID, &e.Score); err != nil {
			return nil, fmt.Errorf("%w: leaderboard scan: %w", ErrStorage, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: leaderboard rows: %w", ErrStorage, err)
	}

	return entries, nil
}
