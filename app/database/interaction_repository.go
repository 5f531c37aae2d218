package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/lysyi3m/social-rider/app/preferences"
)

// InteractionRepo is the capped interaction log.
type InteractionRepo struct {
	db *DB
}

func NewInteractionRepository(db *DB) *InteractionRepo {
	return &InteractionRepo{db: db}
}

// AddInteraction stores the interaction and trims the log to the newest
// MaxInteractions rows in the same transaction. A missing id is assigned.
func (r *InteractionRepo) AddInteraction(ctx context.Context, interaction preferences.Interaction) (preferences.Interaction, error) {
	if interaction.ID == "" {
		interaction.ID = ulid.Make().String()
	}

	var content sql.NullString
	if interaction.Content != nil {
		data, err := json.Marshal(interaction.Content)
		if err != nil {
			return preferences.Interaction{}, fmt.Errorf("failed to encode interaction content: %w", err)
		}
		content = sql.NullString{String: string(data), Valid: true}
	}

	var duration sql.NullInt64
	if interaction.Duration != nil {
		duration = sql.NullInt64{Int64: *interaction.Duration, Valid: true}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return preferences.Interaction{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO interactions (id, post_id, action, duration_ms, timestamp, content)
		VALUES (?, ?, ?, ?, ?, ?)
	`, interaction.ID, interaction.PostID, string(interaction.Action), duration, interaction.Timestamp, content)
	if err != nil {
		return preferences.Interaction{}, fmt.Errorf("failed to insert interaction: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM interactions
		WHERE id NOT IN (
			SELECT id FROM interactions
			ORDER BY timestamp DESC, id DESC
			LIMIT ?
		)
	`, MaxInteractions)
	if err != nil {
		return preferences.Interaction{}, fmt.Errorf("failed to trim interactions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return preferences.Interaction{}, fmt.Errorf("failed to commit interaction: %w", err)
	}

	return interaction, nil
}

// GetInteractions returns the whole log, oldest first.
func (r *InteractionRepo) GetInteractions(ctx context.Context) ([]preferences.Interaction, error) {
	return r.query(ctx, `
		SELECT id, post_id, action, duration_ms, timestamp, content
		FROM interactions
		ORDER BY timestamp ASC, id ASC
	`)
}

// GetInteractionsSince returns interactions at or after the unix millisecond
// timestamp, oldest first.
func (r *InteractionRepo) GetInteractionsSince(ctx context.Context, since int64) ([]preferences.Interaction, error) {
	return r.query(ctx, `
		SELECT id, post_id, action, duration_ms, timestamp, content
		FROM interactions
		WHERE timestamp >= ?
		ORDER BY timestamp ASC, id ASC
	`, since)
}

func (r *InteractionRepo) GetInteractionCount(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM interactions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count interactions: %w", err)
	}
	return count, nil
}

func (r *InteractionRepo) query(ctx context.Context, query string, args ...any) ([]preferences.Interaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer rows.Close()

	interactions := make([]preferences.Interaction, 0)
	for rows.Next() {
		var (
			interaction preferences.Interaction
			action      string
			duration    sql.NullInt64
			content     sql.NullString
		)
		if err := rows.Scan(&interaction.ID, &interaction.PostID, &action, &duration, &interaction.Timestamp, &content); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}

		interaction.Action = preferences.Action(action)
		if duration.Valid {
			d := duration.Int64
			interaction.Duration = &d
		}
		if content.Valid {
			var snapshot preferences.PostSnapshot
			if err := json.Unmarshal([]byte(content.String), &snapshot); err == nil {
				interaction.Content = &snapshot
			}
		}

		interactions = append(interactions, interaction)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interactions: %w", err)
	}
	return interactions, nil
}
