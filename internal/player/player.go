// package player drives a note-playing [Sink] through a compiled tune.
//
// Playback is strictly sequential: each event is handed to the sink in order and the sink is
// expected to return only once the event's duration has elapsed. There is no cancellation once
// a tune has started.
package player

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/islandtune/internal/shared"
	"github.com/desertthunder/islandtune/internal/tune"
)

// Sink is the external note-playing capability.
type Sink interface {
	Play(p tune.Pitch, d time.Duration) error // Sounds p for d
	Rest(d time.Duration) error               // Stays silent for d
}

// Opts configures a [Player].
type Opts struct {
	Verbose bool        // Echo the notation before playing
	Output  io.Writer   // Destination of the echo, defaults to [os.Stdout]
	Logger  *log.Logger // Defaults to [shared.NewLogger]
}

// Player feeds events to a [Sink].
type Player struct {
	sink    Sink
	verbose bool
	output  io.Writer
	logger  *log.Logger
}

// NewPlayer creates a Player writing to sink.
func NewPlayer(sink Sink, opts Opts) *Player {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Player{
		sink:    sink,
		verbose: opts.Verbose,
		output:  opts.Output,
		logger:  opts.Logger,
	}
}

// Play sends events to the sink in order, one call per event, and stops at the first sink error.
func (p *Player) Play(notation string, events []tune.Event) error {
	if p.verbose {
		if _, err := fmt.Fprintf(p.output, "Playing tune: %s\n", notation); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	for i, ev := range events {
		p.logger.Debug("event", "index", i, "pitch", ev.Pitch, "duration", ev.Duration)

		var err error
		if ev.Pitch.IsRest() {
			err = p.sink.Rest(ev.Duration)
		} else {
			err = p.sink.Play(ev.Pitch, ev.Duration)
		}
		if err != nil {
			return fmt.Errorf("%w: event %d (%s): %w", shared.ErrPlayback, i, ev.Pitch, err)
		}
	}
	return nil
}

// PlayTune compiles notation and plays it. Nothing reaches the sink when the notation is invalid.
func (p *Player) PlayTune(c *tune.Compiler, notation string) error {
	events, err := c.Compile(notation)
	if err != nil {
		return err
	}
	p.logger.Info("playing tune", "events", len(events), "length", tune.TotalDuration(events))
	return p.Play(notation, events)
}

// Sleeper is a silent [Sink] that only keeps time.
type Sleeper struct{}

func (Sleeper) Play(_ tune.Pitch, d time.Duration) error {
	time.Sleep(d)
	return nil
}

func (Sleeper) Rest(d time.Duration) error {
	time.Sleep(d)
	return nil
}
