// package speaker plays tunes through the system audio device with oto.
package speaker

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/islandtune/internal/audio"
	"github.com/desertthunder/islandtune/internal/shared"
	"github.com/desertthunder/islandtune/internal/tune"
	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process.
var (
	contextOnce sync.Once
	context     *oto.Context
	contextRate int
	contextErr  error
)

func otoContext(sampleRate int) (*oto.Context, error) {
	contextOnce.Do(func() {
		var ready chan struct{}
		context, ready, contextErr = oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
		})
		if contextErr == nil {
			<-ready
			contextRate = sampleRate
		}
	})
	if contextErr != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAudioUnavailable, contextErr)
	}
	if contextRate != sampleRate {
		return nil, fmt.Errorf("%w: audio already opened at %d Hz", shared.ErrAudioUnavailable, contextRate)
	}
	return context, nil
}

// Speaker is a player.Sink backed by the default audio output.
type Speaker struct {
	ctx        *oto.Context
	sampleRate int
	volume     float64
	logger     *log.Logger
}

// New opens the audio device. volume is handed to oto untouched.
func New(sampleRate int, volume float64, logger *log.Logger) (*Speaker, error) {
	if sampleRate <= 0 {
		sampleRate = audio.DefaultSampleRate
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	ctx, err := otoContext(sampleRate)
	if err != nil {
		return nil, err
	}
	return &Speaker{ctx: ctx, sampleRate: sampleRate, volume: volume, logger: logger}, nil
}

// Play sounds p for d and returns once it has finished.
func (s *Speaker) Play(p tune.Pitch, d time.Duration) error {
	pcm := audio.Tone(p.Frequency(), d, s.sampleRate)

	pl := s.ctx.NewPlayer(bytes.NewReader(pcm))
	defer pl.Close()

	pl.SetVolume(s.volume)
	pl.Play()
	time.Sleep(d)
	for pl.IsPlaying() {
		time.Sleep(time.Millisecond)
	}

	if err := pl.Err(); err != nil {
		return fmt.Errorf("failed to play %s: %w", p, err)
	}
	s.logger.Debug("played", "pitch", p, "freq", p.Frequency(), "duration", d)
	return nil
}

// Rest idles for d.
func (s *Speaker) Rest(d time.Duration) error {
	time.Sleep(d)
	return nil
}

// Close suspends the audio device.
func (s *Speaker) Close() error {
	if err := s.ctx.Suspend(); err != nil {
		return fmt.Errorf("failed to suspend audio: %w", err)
	}
	return nil
}
