package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/islandtune/internal/player"
	"github.com/desertthunder/islandtune/internal/shared"
	tu "github.com/desertthunder/islandtune/internal/testing"
	"github.com/desertthunder/islandtune/internal/tune"
)

type harness struct {
	runner *Runner
	output *bytes.Buffer
	sink   *tu.RecordingSink
	opened int
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	h := &harness{output: &bytes.Buffer{}, sink: &tu.RecordingSink{}}
	h.runner = NewRunner(RunnerOpts{
		Config: shared.DefaultConfig(),
		Logger: shared.NewLogger(&bytes.Buffer{}),
		Output: h.output,
		DB:     db,
		NewSink: func(shared.PlaybackConfig, *log.Logger) (player.Sink, func() error, error) {
			h.opened++
			return h.sink, func() error { return nil }, nil
		},
	})
	return h
}

func (h *harness) run(args ...string) error {
	return newApp(h.runner).Run(context.Background(), append([]string{"islandtune"}, args...))
}

func (h *harness) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	h.output.Reset()
	if err := h.run(args...); err != nil {
		t.Fatalf("islandtune %s failed: %v", strings.Join(args, " "), err)
	}
	return h.output.String()
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.newSink == nil {
				t.Error("expected default sink factory")
			}
			if runner.db != nil {
				t.Error("expected the library to open lazily")
			}
		})

		t.Run("Close leaves injected databases open", func(t *testing.T) {
			h := newHarness(t)
			if err := h.runner.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}
			if err := h.runner.db.Ping(); err != nil {
				t.Errorf("expected injected database to stay open: %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes formatted text", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("Hello %s, count: %d", "World", 42); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "Hello World, count: 42" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("returns error on write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
			if err := runner.writePlain("test"); err == nil {
				t.Error("expected error when writer fails")
			}
		})

		t.Run("fails once the writer is exhausted", func(t *testing.T) {
			output := &bytes.Buffer{}
			limited := tu.NewLimitedWriter(1, 0, output)
			runner := NewRunner(RunnerOpts{Output: &limited})

			if err := runner.writePlain("first\n"); err != nil {
				t.Fatalf("expected first write to succeed, got %v", err)
			}
			if err := runner.writeBytes([]byte("second\n")); err == nil {
				t.Error("expected error after write limit")
			}
			if output.String() != "first\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})
	})

	t.Run("releaseSink logs failures", func(t *testing.T) {
		logs := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: shared.NewLogger(logs)})

		runner.releaseSink(func() error { return nil })
		if logs.Len() != 0 {
			t.Errorf("expected no log output, got %q", logs.String())
		}

		runner.releaseSink(func() error { return errors.New("device busy") })
		if !strings.Contains(logs.String(), "failed to release audio") || !strings.Contains(logs.String(), "device busy") {
			t.Errorf("expected release warning, got %q", logs.String())
		}
	})

	t.Run("writePlainHeader", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})
		runner.writePlainHeader("Test Header")

		lines := strings.Split(strings.TrimSuffix(output.String(), "\n"), "\n")
		if len(lines) != 3 || lines[1] != "Test Header" || !strings.HasPrefix(lines[0], "═") {
			t.Errorf("unexpected header %q", output.String())
		}
	})
}

func TestPlay(t *testing.T) {
	t.Run("by name", func(t *testing.T) {
		h := newHarness(t)
		h.mustRun(t, "play", "Mii")

		if len(h.sink.Calls) != 13 {
			t.Fatalf("expected 13 sink calls, got %d", len(h.sink.Calls))
		}
		if h.sink.Elapsed() != 1600*time.Millisecond {
			t.Errorf("expected 1.6s of playback, got %v", h.sink.Elapsed())
		}
	})

	t.Run("by menu number", func(t *testing.T) {
		h := newHarness(t)
		h.mustRun(t, "play", "10")

		first := h.sink.Calls[0]
		if first.Pitch != tune.A3 || first.Duration != 200*time.Millisecond {
			t.Errorf("expected X Files to start with A3 for 0.2s, got %+v", first)
		}
	})

	t.Run("raw notation", func(t *testing.T) {
		h := newHarness(t)
		h.mustRun(t, "play", "c--x")

		want := []tu.Call{
			{Pitch: tune.C4, Duration: 300 * time.Millisecond},
			{Rest: true, Pitch: tune.Rest, Duration: 100 * time.Millisecond},
		}
		if len(h.sink.Calls) != len(want) {
			t.Fatalf("expected %d calls, got %+v", len(want), h.sink.Calls)
		}
		for i, c := range want {
			if h.sink.Calls[i] != c {
				t.Errorf("call %d: expected %+v, got %+v", i, c, h.sink.Calls[i])
			}
		}
	})

	t.Run("invalid notation never opens the sink", func(t *testing.T) {
		h := newHarness(t)
		err := h.run("play", "hello")

		if !errors.Is(err, tune.ErrInvalidTune) {
			t.Errorf("expected ErrInvalidTune, got %v", err)
		}
		if !errors.Is(err, tune.ErrUnknownTune) {
			t.Errorf("expected ErrUnknownTune, got %v", err)
		}
		if h.opened != 0 || len(h.sink.Calls) != 0 {
			t.Error("expected nothing to be played")
		}
	})

	t.Run("missing argument", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("play"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("verbose echoes the tune", func(t *testing.T) {
		h := newHarness(t)
		output := h.mustRun(t, "--verbose", "play", "cde")

		if !strings.Contains(output, "Playing tune: cde") {
			t.Errorf("expected echo, got %q", output)
		}
	})

	t.Run("duration flag", func(t *testing.T) {
		h := newHarness(t)
		h.mustRun(t, "--duration", "0.25", "play", "c-")

		if got := h.sink.Calls[0].Duration; got != 500*time.Millisecond {
			t.Errorf("expected 0.5s, got %v", got)
		}
	})

	t.Run("rejects out of range flags", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("--volume", "2", "play", "cde"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
		if err := h.run("--duration", "1e9", "compile", "c----------"); !errors.Is(err, tune.ErrInvalidDuration) {
			t.Errorf("expected ErrInvalidDuration, got %v", err)
		}
	})

	t.Run("sink failure", func(t *testing.T) {
		h := newHarness(t)
		h.sink.FailAt = 2

		err := h.run("play", "cde")
		if !errors.Is(err, shared.ErrPlayback) {
			t.Errorf("expected ErrPlayback, got %v", err)
		}
		if len(h.sink.Calls) != 2 {
			t.Errorf("expected playback to stop at the failing call, got %d calls", len(h.sink.Calls))
		}

		plays, _ := h.runner.plays.Recent(10)
		if len(plays) != 0 {
			t.Errorf("expected failed plays to stay out of history, got %d", len(plays))
		}
	})
}

func TestRoot(t *testing.T) {
	t.Run("--tune", func(t *testing.T) {
		h := newHarness(t)
		h.mustRun(t, "--tune", "GAB")

		if len(h.sink.Calls) != 3 || h.sink.Calls[2].Pitch != tune.B4 {
			t.Errorf("unexpected calls %+v", h.sink.Calls)
		}
	})

	t.Run("--file is trimmed and wins over --tune", func(t *testing.T) {
		h := newHarness(t)
		path := filepath.Join(t.TempDir(), "tune.txt")
		tu.MustWriteFile(t, path, "  e-x\n")

		h.mustRun(t, "--file", path, "--tune", "cdefg")

		if len(h.sink.Calls) != 2 || h.sink.Calls[0].Pitch != tune.E4 {
			t.Errorf("unexpected calls %+v", h.sink.Calls)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("--file", filepath.Join(t.TempDir(), "nope.txt")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("explicit missing config", func(t *testing.T) {
		h := newHarness(t)
		err := h.run("--config", filepath.Join(t.TempDir(), "nope.toml"), "list")
		if !errors.Is(err, shared.ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("loads --config", func(t *testing.T) {
		h := newHarness(t)
		path := filepath.Join(t.TempDir(), "config.toml")
		tu.MustWriteFile(t, path, "[playback]\nduration = 0.05\n")

		h.mustRun(t, "--config", path, "play", "c")
		if got := h.sink.Calls[0].Duration; got != 50*time.Millisecond {
			t.Errorf("expected 50ms from config, got %v", got)
		}
	})
}

func TestCompileAndList(t *testing.T) {
	t.Run("compile prints the event table", func(t *testing.T) {
		h := newHarness(t)
		output := h.mustRun(t, "compile", "c--x")

		for _, want := range []string{"C4", "pause", "Total: 0.4s"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected %q in output:\n%s", want, output)
			}
		}
		if len(h.sink.Calls) != 0 {
			t.Error("compile should not play")
		}
	})

	t.Run("compile --csv", func(t *testing.T) {
		h := newHarness(t)
		output := h.mustRun(t, "compile", "--csv", "c--x")

		if !strings.HasPrefix(output, "Index,Pitch,Duration,Offset,Span\n") {
			t.Errorf("expected CSV output, got:\n%s", output)
		}
	})

	t.Run("list includes saved tunes", func(t *testing.T) {
		h := newHarness(t)
		h.mustRun(t, "library", "save", "A Tune", "cde")

		output := h.mustRun(t, "list")
		lines := strings.Split(strings.TrimSuffix(output, "\n"), "\n")
		if len(lines) != 11 {
			t.Fatalf("expected 11 tunes, got %d:\n%s", len(lines), output)
		}
		if lines[0] != " 1. A Tune" {
			t.Errorf("expected saved tune first, got %q", lines[0])
		}
	})
}

func TestLibrary(t *testing.T) {
	t.Run("save, list and delete", func(t *testing.T) {
		h := newHarness(t)

		if out := h.mustRun(t, "library", "save", "Zelda", "e-GD-CDEGe-GD---"); !strings.Contains(out, "Saved Zelda") {
			t.Errorf("unexpected output %q", out)
		}
		if out := h.mustRun(t, "library", "list"); !strings.Contains(out, "Zelda") {
			t.Errorf("expected Zelda in list, got:\n%s", out)
		}

		h.mustRun(t, "play", "zelda")
		if len(h.sink.Calls) == 0 {
			t.Error("expected saved tune to be playable by name")
		}

		h.mustRun(t, "library", "delete", "Zelda")
		if out := h.mustRun(t, "library", "list"); !strings.Contains(out, "No saved tunes") {
			t.Errorf("expected empty library, got:\n%s", out)
		}
	})

	t.Run("duplicate names need --replace", func(t *testing.T) {
		h := newHarness(t)
		h.mustRun(t, "library", "save", "Riff", "cde")

		if err := h.run("library", "save", "Riff", "edc"); !errors.Is(err, shared.ErrDuplicateTune) {
			t.Errorf("expected ErrDuplicateTune, got %v", err)
		}

		if out := h.mustRun(t, "library", "save", "--replace", "Riff", "edc"); !strings.Contains(out, "Replaced Riff") {
			t.Errorf("unexpected output %q", out)
		}
		saved, err := h.runner.tunes.GetByName("Riff")
		if err != nil {
			t.Fatalf("GetByName failed: %v", err)
		}
		if saved.Notation() != "edc" {
			t.Errorf("expected replaced notation, got %s", saved.Notation())
		}
	})

	t.Run("rejects invalid notation", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("library", "save", "Bad", "xyz"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("delete unknown tune", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("library", "delete", "Nope"); !errors.Is(err, shared.ErrTuneNotFound) {
			t.Errorf("expected ErrTuneNotFound, got %v", err)
		}
	})

	t.Run("export and import", func(t *testing.T) {
		src := newHarness(t)
		src.mustRun(t, "library", "save", "One", "cde")
		src.mustRun(t, "library", "save", "Two", "GAB")

		path := filepath.Join(t.TempDir(), "book.yaml")
		if out := src.mustRun(t, "library", "export", path); !strings.Contains(out, "Exported 2 tunes") {
			t.Errorf("unexpected output %q", out)
		}

		dst := newHarness(t)
		dst.mustRun(t, "library", "save", "One", "ddd")

		out := dst.mustRun(t, "library", "import", path)
		if !strings.Contains(out, "1 new, 0 replaced, 1 skipped") {
			t.Errorf("unexpected output %q", out)
		}

		out = dst.mustRun(t, "library", "import", "--replace", path)
		if !strings.Contains(out, "0 new, 2 replaced, 0 skipped") {
			t.Errorf("unexpected output %q", out)
		}
		one, _ := dst.runner.tunes.GetByName("One")
		if one.Notation() != "cde" {
			t.Errorf("expected imported notation, got %s", one.Notation())
		}
	})
}

func TestHistory(t *testing.T) {
	h := newHarness(t)

	if out := h.mustRun(t, "history"); !strings.Contains(out, "No tunes played yet") {
		t.Errorf("expected empty history, got %q", out)
	}

	h.mustRun(t, "play", "Mii")
	h.mustRun(t, "play", "cde")

	out := h.mustRun(t, "history")
	for _, want := range []string{"Mii", "1.6s", "cde", "0.3s"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in history:\n%s", want, out)
		}
	}
}

func TestExport(t *testing.T) {
	t.Run("midi", func(t *testing.T) {
		h := newHarness(t)
		path := filepath.Join(t.TempDir(), "howl.mid")

		out := h.mustRun(t, "export", "midi", "--output", path, "Howl's Theme")
		if !strings.Contains(out, "Wrote "+path) {
			t.Errorf("unexpected output %q", out)
		}
		tu.AssertFileExists(t, path)
		if len(h.sink.Calls) != 0 {
			t.Error("export should not play")
		}
	})

	t.Run("all", func(t *testing.T) {
		h := newHarness(t)
		dir := t.TempDir()

		out := h.mustRun(t, "export", "all", "--dir", dir, "--workers", "2")
		if !strings.Contains(out, "Rendered:  10/10") {
			t.Errorf("unexpected output:\n%s", out)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "mii.mid"))
	})
}

func TestRouter(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "library", "save", "A Tune", "cde")

	req := httptest.NewRequest(http.MethodGet, "/api/tunes/1", nil)
	rec := httptest.NewRecorder()
	h.runner.router(h.runner.config.Playback).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"name":"A Tune"`) {
		t.Errorf("expected saved tune, got %s", rec.Body.String())
	}
}

func TestSetup(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	out := h.mustRun(t, "--config", path, "setup")
	tu.AssertFileExists(t, path)
	if !strings.Contains(out, "Config: "+path) {
		t.Errorf("unexpected output %q", out)
	}
}
