package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"Fediview/internal/core/emoji"
)

type postgresEmojiRepo struct {
	db *sql.DB
}

// NewEmojiRepository creates a new PostgreSQL custom emoji store
func NewEmojiRepository(db *sql.DB) emoji.Repository {
	return &postgresEmojiRepo{db: db}
}

// AddAll upserts emojis for a host.
func (r *postgresEmojiRepo) AddAll(ctx context.Context, host string, emojis []emoji.WithAliases) error {
	if len(emojis) == 0 {
		return nil
	}
	query := `
		INSERT INTO custom_emojis (host, name, url, aliases)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (host, name)
		DO UPDATE SET url = EXCLUDED.url, aliases = EXCLUDED.aliases`

	for _, e := range emojis {
		if _, err := r.db.ExecContext(ctx, query, host, e.Emoji.Name, e.Emoji.URL, pq.Array(e.Aliases)); err != nil {
			return fmt.Errorf("failed to upsert emoji %s: %w", e.Emoji.Name, err)
		}
	}
	return nil
}

// DeleteAll removes the named emojis for a host.
func (r *postgresEmojiRepo) DeleteAll(ctx context.Context, host string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	query := `DELETE FROM custom_emojis WHERE host = $1 AND name = ANY($2)`
	if _, err := r.db.ExecContext(ctx, query, host, pq.Array(names)); err != nil {
		return fmt.Errorf("failed to delete emojis: %w", err)
	}
	return nil
}

// ReplaceAll swaps a host's emoji set atomically. Used by the full resync
// triggered on an "emoji added" event.
func (r *postgresEmojiRepo) ReplaceAll(ctx context.Context, host string, emojis []emoji.WithAliases) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin emoji replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM custom_emojis WHERE host = $1`, host); err != nil {
		return fmt.Errorf("failed to clear emojis for %s: %w", host, err)
	}
	query := `INSERT INTO custom_emojis (host, name, url, aliases) VALUES ($1, $2, $3, $4)`
	for _, e := range emojis {
		if _, err := tx.ExecContext(ctx, query, host, e.Emoji.Name, e.Emoji.URL, pq.Array(e.Aliases)); err != nil {
			return fmt.Errorf("failed to insert emoji %s: %w", e.Emoji.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit emoji replace: %w", err)
	}
	return nil
}

// FindByHost returns the cached emoji set for a host.
func (r *postgresEmojiRepo) FindByHost(ctx context.Context, host string) ([]emoji.WithAliases, error) {
	query := `SELECT name, url, aliases FROM custom_emojis WHERE host = $1 ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, host)
	if err != nil {
		return nil, fmt.Errorf("failed to query emojis for %s: %w", host, err)
	}
	defer rows.Close()

	var out []emoji.WithAliases
	for rows.Next() {
		var e emoji.WithAliases
		var aliases pq.StringArray
		if err := rows.Scan(&e.Emoji.Name, &e.Emoji.URL, &aliases); err != nil {
			return nil, fmt.Errorf("failed to scan emoji: %w", err)
		}
		e.Aliases = aliases
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating emojis: %w", err)
	}
	return out, nil
}
