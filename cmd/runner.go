package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/islandtune/internal/audio/speaker"
	"github.com/desertthunder/islandtune/internal/player"
	"github.com/desertthunder/islandtune/internal/repositories"
	"github.com/desertthunder/islandtune/internal/shared"
	"github.com/desertthunder/islandtune/internal/tune"
)

// SinkFactory opens the note-playing backend. The returned func releases it.
type SinkFactory func(cfg shared.PlaybackConfig, logger *log.Logger) (player.Sink, func() error, error)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	newSink    SinkFactory
	mu         sync.Mutex // guards lazy opening of db
	db         *sql.DB
	ownsDB     bool
	tunes      *repositories.TuneRepository
	plays      *repositories.PlayRepository
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	NewSink    SinkFactory // Defaults to the system speaker
	DB         *sql.DB     // Library database; opened from Config.Database when nil
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.NewSink == nil {
		opts.NewSink = speakerSink
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		newSink:    opts.NewSink,
	}
	if opts.DB != nil {
		r.useDB(opts.DB, false)
	}
	return r
}

func speakerSink(cfg shared.PlaybackConfig, logger *log.Logger) (player.Sink, func() error, error) {
	s, err := speaker.New(cfg.SampleRate, cfg.Volume, shared.WithLogger(logger, "component", "speaker"))
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

func mutedSink(shared.PlaybackConfig, *log.Logger) (player.Sink, func() error, error) {
	return player.Sleeper{}, func() error { return nil }, nil
}

// SetLogger replaces the runner's logger, e.g. with a file logger while the menu owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Close releases the library database if the runner opened it.
func (r *Runner) Close() error {
	if r.db == nil || !r.ownsDB {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) useDB(db *sql.DB, owned bool) {
	r.db = db
	r.ownsDB = owned
	r.tunes = repositories.NewTuneRepository(db)
	r.plays = repositories.NewPlayRepository(db)
}

// library opens the tune library on first use.
func (r *Runner) library() (*repositories.TuneRepository, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db == nil {
		db, err := shared.OpenLibrary(r.config.Database)
		if err != nil {
			return nil, err
		}
		r.useDB(db, true)
	}
	return r.tunes, nil
}

// catalog returns the built-in tunes merged with the library. An unavailable library is logged
// and the built-ins are used alone.
func (r *Runner) catalog() *tune.Catalog {
	builtin := tune.DefaultCatalog()

	repo, err := r.library()
	if err != nil {
		r.logger.Warn("tune library unavailable, using built-in tunes", "error", err)
		return builtin
	}

	saved, err := repo.Catalog()
	if err != nil {
		r.logger.Warn("failed to load saved tunes", "error", err)
		return builtin
	}
	return builtin.Merge(saved)
}

// releaseSink closes an opened sink, logging rather than returning a failure.
func (r *Runner) releaseSink(release func() error) {
	if err := release(); err != nil {
		r.logger.Warn("failed to release audio", "error", err)
	}
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	rule := strings.Repeat("═", 39)
	r.writePlain("%s\n%v\n%s\n", rule, title, rule)
}
