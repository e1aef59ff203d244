// package recorder captures a played tune as a Standard MIDI File.
//
// [MIDI] is a player.Sink that never blocks: notes and rests only advance its clock, so a tune
// renders instantly with exactly the timing the speaker would give it.
package recorder

import (
	"fmt"
	"io"
	"math"
	"slices"
	"time"

	"github.com/desertthunder/islandtune/internal/tune"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Resolution in ticks per quarter note.
const Resolution = 960

// MIDI records note on/off pairs on a single channel.
type MIDI struct {
	track    smf.Track
	ticks    smf.MetricTicks
	bpm      float64
	channel  uint8
	velocity uint8
	elapsed  time.Duration
	written  uint64 // absolute tick of the last message
	notes    int
}

// NewMIDI starts a recording named name at bpm. volume (0-1) becomes the note velocity.
func NewMIDI(name string, bpm, volume float64) (*MIDI, error) {
	if bpm <= 0 {
		return nil, fmt.Errorf("bpm must be positive, got %v", bpm)
	}

	m := &MIDI{
		ticks:    smf.MetricTicks(Resolution),
		bpm:      bpm,
		velocity: Velocity(volume),
	}
	if name != "" {
		m.track.Add(0, smf.MetaTrackSequenceName(name))
	}
	m.track.Add(0, smf.MetaTempo(bpm))
	return m, nil
}

// Velocity maps a 0-1 volume onto 1-127.
func Velocity(volume float64) uint8 {
	v := math.Round(volume * 127)
	return uint8(min(max(v, 1), 127))
}

// Play records p sounding for d.
func (m *MIDI) Play(p tune.Pitch, d time.Duration) error {
	key := p.Key()
	if key == 0 {
		return m.Rest(d)
	}

	on := m.tickAt(m.elapsed)
	m.elapsed += d
	off := m.tickAt(m.elapsed)

	m.track.Add(uint32(on-m.written), midi.NoteOn(m.channel, key, m.velocity))
	m.track.Add(uint32(off-on), midi.NoteOff(m.channel, key))
	m.written = off
	m.notes++
	return nil
}

// Rest advances the clock by d.
func (m *MIDI) Rest(d time.Duration) error {
	m.elapsed += d
	return nil
}

// Notes returns the number of notes recorded.
func (m *MIDI) Notes() int { return m.notes }

// Duration returns the recorded length including trailing rests.
func (m *MIDI) Duration() time.Duration { return m.elapsed }

// SMF returns the recording as a single track file. Trailing rests are kept by delaying the
// end of track marker.
func (m *MIDI) SMF() (*smf.SMF, error) {
	tr := slices.Clone(m.track)
	tr.Close(uint32(m.tickAt(m.elapsed) - m.written))

	s := smf.New()
	s.TimeFormat = m.ticks
	if err := s.Add(tr); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}
	return s, nil
}

// WriteTo writes the recording as a Standard MIDI File.
func (m *MIDI) WriteTo(w io.Writer) (int64, error) {
	s, err := m.SMF()
	if err != nil {
		return 0, err
	}
	n, err := s.WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("failed to write midi: %w", err)
	}
	return n, nil
}

// tickAt converts an absolute time into absolute ticks at the recording tempo.
func (m *MIDI) tickAt(d time.Duration) uint64 {
	quarters := d.Seconds() * m.bpm / 60
	return uint64(math.Round(quarters * float64(m.ticks.Resolution())))
}
