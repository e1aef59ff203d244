package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/islandtune/internal/shared"
	"github.com/desertthunder/islandtune/internal/tune"
)

var _ Model = (*Tune)(nil)

// Tune is a user-saved notation string.
type Tune struct {
	id        string
	sequence  int
	name      string
	notation  string
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewTune creates an unsaved Tune. Names are trimmed.
func NewTune(sequence int, name, notation string) *Tune {
	now := time.Now()
	return &Tune{
		sequence:  sequence,
		name:      strings.TrimSpace(name),
		notation:  notation,
		createdAt: now,
		updatedAt: now,
	}
}

func (t *Tune) ID() string            { return t.id }
func (t *Tune) Sequence() int         { return t.sequence }
func (t *Tune) Name() string          { return t.name }
func (t *Tune) Notation() string      { return t.notation }
func (t *Tune) CreatedAt() time.Time  { return t.createdAt }
func (t *Tune) UpdatedAt() time.Time  { return t.updatedAt }
func (t *Tune) DeletedAt() *time.Time { return t.deletedAt }

func (t *Tune) SetID(id string)                   { t.id = id }
func (t *Tune) SetSequence(seq int)               { t.sequence = seq }
func (t *Tune) SetNotation(notation string)       { t.notation = notation }
func (t *Tune) SetCreatedAt(createdAt time.Time)  { t.createdAt = createdAt }
func (t *Tune) SetUpdatedAt(updatedAt time.Time)  { t.updatedAt = updatedAt }
func (t *Tune) SetDeletedAt(deletedAt *time.Time) { t.deletedAt = deletedAt }

// Validate requires a name and a non-empty notation made of tune characters.
func (t *Tune) Validate() error {
	if t.name == "" {
		return fmt.Errorf("%w: tune name is required", shared.ErrInvalidInput)
	}
	if t.notation == "" {
		return fmt.Errorf("%w: tune notation is required", shared.ErrInvalidInput)
	}
	if !tune.Validate(t.notation) {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, &tune.InvalidTuneError{Tune: t.notation, Alphabet: tune.Alphabet})
	}
	return nil
}
