// package testing contains shared testing utilities
package testing

import (
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/desertthunder/islandtune/internal/tune"
)

// Call is one invocation recorded by [RecordingSink].
type Call struct {
	Rest     bool
	Pitch    tune.Pitch
	Duration time.Duration
}

// RecordingSink is a test double for player.Sink that records calls instead of making sound.
//
// When FailAt is positive the call with that 1-based number returns Err.
type RecordingSink struct {
	Calls  []Call
	FailAt int
	Err    error
}

func (s *RecordingSink) Play(p tune.Pitch, d time.Duration) error {
	return s.record(Call{Pitch: p, Duration: d})
}

func (s *RecordingSink) Rest(d time.Duration) error {
	return s.record(Call{Rest: true, Pitch: tune.Rest, Duration: d})
}

func (s *RecordingSink) record(c Call) error {
	s.Calls = append(s.Calls, c)
	if s.FailAt > 0 && len(s.Calls) == s.FailAt {
		if s.Err == nil {
			return errors.New("sink failed")
		}
		return s.Err
	}
	return nil
}

// Elapsed returns the summed duration of every recorded call.
func (s *RecordingSink) Elapsed() time.Duration {
	var total time.Duration
	for _, c := range s.Calls {
		total += c.Duration
	}
	return total
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
