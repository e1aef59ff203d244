package tune

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"slices"
	"strings"
	"time"
)

// Alphabet lists every character a notation string may contain.
const Alphabet = "gabcdefGABCDE-x"

const (
	// Extend lengthens the previous event by one base duration.
	Extend = '-'
	// Pause is a rest of one base duration.
	Pause = 'x'
)

// DefaultDuration is the base length of a single notation character.
const DefaultDuration = 100 * time.Millisecond

// MaxDuration caps the base length of a single notation character.
const MaxDuration = time.Minute

var lowerAlphabet = strings.ToLower(Alphabet)

// ErrInvalidTune is matched by every [InvalidTuneError].
var ErrInvalidTune = errors.New("invalid tune")

// ErrInvalidDuration is returned for base durations outside (0, [MaxDuration]) and for tunes
// whose total length cannot be represented.
var ErrInvalidDuration = errors.New("invalid duration")

// InvalidTuneError reports a notation string with characters outside [Alphabet].
type InvalidTuneError struct {
	Tune     string // Offending notation
	Alphabet string // Valid characters
}

func (e *InvalidTuneError) Error() string {
	return fmt.Sprintf("tune '%s' contains illegal characters, valid chars are '%s'", e.Tune, e.Alphabet)
}

func (e *InvalidTuneError) Unwrap() error { return ErrInvalidTune }

// Event is one resolved unit of playback.
type Event struct {
	Pitch    Pitch
	Duration time.Duration
	Offset   int // index of the character that started the event
	Span     int // characters consumed, the starting character plus its dashes
}

// Validate reports whether every character of notation, compared case-insensitively, belongs to
// [Alphabet]. The empty string is valid.
func Validate(notation string) bool {
	for _, r := range strings.ToLower(notation) {
		if !strings.ContainsRune(lowerAlphabet, r) {
			return false
		}
	}
	return true
}

// Seconds converts a duration given in (fractional) seconds. Callers handling untrusted input
// should use [ParseSeconds].
func Seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

// ParseSeconds converts s to a base duration, rejecting values that are not finite or fall
// outside (0, [MaxDuration]].
func ParseSeconds(s float64) (time.Duration, error) {
	if math.IsNaN(s) || math.IsInf(s, 0) || s <= 0 || s > MaxDuration.Seconds() {
		return 0, fmt.Errorf("%w: must be between 0 and %v seconds, got %v", ErrInvalidDuration, MaxDuration.Seconds(), s)
	}
	return Seconds(s), nil
}

// Compiler turns notation strings into events with a fixed base duration.
type Compiler struct {
	base time.Duration
}

// NewCompiler returns a [Compiler] whose single characters last base.
func NewCompiler(base time.Duration) (*Compiler, error) {
	if base <= 0 || base > MaxDuration {
		return nil, fmt.Errorf("%w: base must be between 0 and %v, got %v", ErrInvalidDuration, MaxDuration, base)
	}
	return &Compiler{base: base}, nil
}

// Base returns the length of one notation character.
func (c *Compiler) Base() time.Duration { return c.base }

// Compile validates notation and returns its events in order.
func (c *Compiler) Compile(notation string) ([]Event, error) {
	seq, err := c.Stream(notation)
	if err != nil {
		return nil, err
	}
	return slices.Collect(seq), nil
}

// Stream validates notation and returns a lazy sequence of its events.
func (c *Compiler) Stream(notation string) (iter.Seq[Event], error) {
	if !Validate(notation) {
		return nil, &InvalidTuneError{Tune: notation, Alphabet: Alphabet}
	}
	// Every event and the total are at most len(notation) bases long.
	if n := len(notation); n > 0 && c.base > time.Duration(math.MaxInt64/int64(n)) {
		return nil, fmt.Errorf("%w: %d characters of %v overflow", ErrInvalidDuration, n, c.base)
	}

	return func(yield func(Event) bool) {
		for i := 0; i < len(notation); {
			dashes := extensionRun(notation, i+1)
			ev := Event{
				Pitch:    Lookup(notation[i]),
				Duration: c.base + c.base*time.Duration(dashes),
				Offset:   i,
				Span:     1 + dashes,
			}
			if !yield(ev) {
				return
			}
			i += ev.Span
		}
	}, nil
}

// extensionRun counts consecutive dashes starting at from.
func extensionRun(notation string, from int) int {
	n := 0
	for j := from; j < len(notation) && notation[j] == Extend; j++ {
		n++
	}
	return n
}

// Compile compiles notation with base as the single character length.
func Compile(notation string, base time.Duration) ([]Event, error) {
	c, err := NewCompiler(base)
	if err != nil {
		return nil, err
	}
	return c.Compile(notation)
}

// TotalDuration sums the durations of events.
func TotalDuration(events []Event) time.Duration {
	var total time.Duration
	for _, ev := range events {
		total += ev.Duration
	}
	return total
}
