// Package episodes keeps the Doctor Who episode catalogue in SQLite.
package episodes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hunterjsb/k9/internal/dataset"
)

// Episode is one catalogue entry. ID is the movies-database title id.
type Episode struct {
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Season  int    `json:"season" yaml:"season"`
	Episode int    `json:"episode" yaml:"episode"`
}

// Store searches the episodes table.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// LoadFile rebuilds the catalogue from a JSON or YAML file and returns the number of
// episodes stored. An unreadable file leaves an empty catalogue and returns the
// load error.
func (s *Store) LoadFile(ctx context.Context, path string) (int, error) {
	eps, err := dataset.Load[Episode](path)
	if err != nil {
		if rebuildErr := s.Rebuild(ctx, nil); rebuildErr != nil {
			return 0, errors.Join(err, rebuildErr)
		}
		return 0, err
	}
	if err := s.Rebuild(ctx, eps); err != nil {
		return 0, err
	}
	return len(eps), nil
}

// Rebuild replaces the catalogue with eps.
func (s *Store) Rebuild(ctx context.Context, eps []Episode) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS episodes"); err != nil {
		return fmt.Errorf("failed to drop episodes: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		CREATE TABLE episodes (
			id TEXT NOT NULL,
			title TEXT NOT NULL,
			season INTEGER NOT NULL,
			episode INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create episodes: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO episodes (id, title, season, episode) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ep := range eps {
		if _, err := stmt.ExecContext(ctx, ep.ID, ep.Title, ep.Season, ep.Episode); err != nil {
			return fmt.Errorf("failed to insert episode %s: %w", ep.ID, err)
		}
	}

	return tx.Commit()
}

// Search returns up to limit episodes whose title contains name, in broadcast order.
// LIKE wildcards in name are matched literally.
func (s *Store) Search(ctx context.Context, name string, limit int) ([]Episode, error) {
	pattern := "%" + escapeLike(cleanQuery(name)) + "%"

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT id, title, season, episode
		FROM episodes
		WHERE title LIKE ? ESCAPE '\'
		ORDER BY season, episode
		LIMIT ?`,
		pattern, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Episode
	for rows.Next() {
		var ep Episode
		if err := rows.Scan(&ep.ID, &ep.Title, &ep.Season, &ep.Episode); err != nil {
			return nil, err
		}
		result = append(result, ep)
	}

	return result, rows.Err()
}

// cleanQuery drops control whitespace users paste into slash command options.
func cleanQuery(s string) string {
	return strings.TrimSpace(strings.NewReplacer("\n", "", "\r", "", "\t", "").Replace(s))
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
