package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/islandtune/internal/models"
	"github.com/desertthunder/islandtune/internal/shared"
)

// PlayRepository stores playback history. Plays are never updated or deleted.
type PlayRepository struct {
	db *sql.DB
}

// NewPlayRepository creates a new PlayRepository with the given database connection
func NewPlayRepository(db *sql.DB) *PlayRepository {
	return &PlayRepository{db: db}
}

// Record inserts p with a generated ID.
func (r *PlayRepository) Record(p *models.Play) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id := shared.GenerateID()
	_, err := r.db.Exec(`
		INSERT INTO plays (id, tune_name, notation, event_count, duration_ms, played_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, p.TuneName(), p.Notation(), p.EventCount(), p.Duration().Milliseconds(), p.PlayedAt())
	if err != nil {
		return fmt.Errorf("failed to insert play: %w", err)
	}

	p.SetID(id)
	return nil
}

// Recent returns up to limit plays, newest first.
func (r *PlayRepository) Recent(limit int) ([]*models.Play, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(`
		SELECT id, tune_name, notation, event_count, duration_ms, played_at
		FROM plays
		ORDER BY played_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query plays: %w", err)
	}
	defer rows.Close()

	var plays []*models.Play
	for rows.Next() {
		var (
			id         string
			tuneName   string
			notation   string
			eventCount int
			durationMS int64
			playedAt   time.Time
		)
		if err := rows.Scan(&id, &tuneName, &notation, &eventCount, &durationMS, &playedAt); err != nil {
			return nil, fmt.Errorf("failed to scan play: %w", err)
		}

		p := models.NewPlay(tuneName, notation, eventCount, time.Duration(durationMS)*time.Millisecond)
		p.SetID(id)
		p.SetPlayedAt(playedAt)
		plays = append(plays, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return plays, nil
}
