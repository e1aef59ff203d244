package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/islandtune/internal/shared"
)

var _ Model = (*Play)(nil)

// Play records one playback. TuneName is empty for notation typed in directly.
type Play struct {
	id         string
	tuneName   string
	notation   string
	eventCount int
	duration   time.Duration
	playedAt   time.Time
}

// NewPlay creates an unsaved Play stamped with the current time.
func NewPlay(tuneName, notation string, eventCount int, duration time.Duration) *Play {
	return &Play{
		tuneName:   tuneName,
		notation:   notation,
		eventCount: eventCount,
		duration:   duration,
		playedAt:   time.Now(),
	}
}

func (p *Play) ID() string              { return p.id }
func (p *Play) TuneName() string        { return p.tuneName }
func (p *Play) Notation() string        { return p.notation }
func (p *Play) EventCount() int         { return p.eventCount }
func (p *Play) Duration() time.Duration { return p.duration }
func (p *Play) PlayedAt() time.Time     { return p.playedAt }

// Plays are immutable so both timestamps are the play time.
func (p *Play) CreatedAt() time.Time { return p.playedAt }
func (p *Play) UpdatedAt() time.Time { return p.playedAt }

func (p *Play) SetID(id string)          { p.id = id }
func (p *Play) SetPlayedAt(at time.Time) { p.playedAt = at }

// Validate rejects negative counts and durations.
func (p *Play) Validate() error {
	if p.eventCount < 0 {
		return fmt.Errorf("%w: negative event count", shared.ErrInvalidInput)
	}
	if p.duration < 0 {
		return fmt.Errorf("%w: negative duration", shared.ErrInvalidInput)
	}
	return nil
}
