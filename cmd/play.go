package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/islandtune/internal/formatter"
	"github.com/desertthunder/islandtune/internal/models"
	"github.com/desertthunder/islandtune/internal/player"
	"github.com/desertthunder/islandtune/internal/shared"
	"github.com/desertthunder/islandtune/internal/tune"
	"github.com/urfave/cli/v3"
)

// Configure loads --config when it exists and applies the configured log level. An explicit
// --config that does not exist is an error, except for setup which creates it.
func (r *Runner) Configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	if path != r.configPath || cmd.IsSet("config") {
		if _, err := os.Stat(path); err == nil {
			config, err := shared.LoadConfig(path)
			if err != nil {
				return ctx, err
			}
			r.config = config
		} else if cmd.IsSet("config") && cmd.Args().First() != "setup" {
			return ctx, fmt.Errorf("%w: %s (run 'islandtune setup' to create it)", shared.ErrMissingConfig, path)
		}
		r.configPath = path
	}

	level, err := shared.ParseLogLevel(r.config.Log.Level)
	if err != nil {
		return ctx, err
	}
	shared.SetLogLevel(r.logger, level)
	return ctx, nil
}

// playbackConfig returns the configured playback settings with command line overrides applied.
func (r *Runner) playbackConfig(cmd *cli.Command) (shared.PlaybackConfig, error) {
	cfg := r.config.Playback
	if cmd.IsSet("duration") {
		cfg.Duration = cmd.Float("duration")
	}
	if cmd.IsSet("volume") {
		cfg.Volume = cmd.Float("volume")
	}
	if cmd.Bool("verbose") {
		cfg.Verbose = true
	}

	if _, err := tune.ParseSeconds(cfg.Duration); err != nil {
		return cfg, fmt.Errorf("%w: --duration %w", shared.ErrInvalidFlag, err)
	}
	if cfg.Volume < 0 || cfg.Volume > 1 {
		return cfg, fmt.Errorf("%w: --volume must be between 0 and 1, got %v", shared.ErrInvalidFlag, cfg.Volume)
	}
	return cfg, nil
}

func (r *Runner) compiler(cfg shared.PlaybackConfig) (*tune.Compiler, error) {
	return tune.NewCompiler(tune.Seconds(cfg.Duration))
}

// resolve finds choice in the catalog, falling back to treating it as notation.
func (r *Runner) resolve(choice string) (name, notation string, err error) {
	choice = strings.TrimSpace(choice)
	if choice == "" {
		return "", "", fmt.Errorf("%w: tune name, number or notation", shared.ErrMissingArgument)
	}

	name, notation, err = r.catalog().Resolve(choice)
	if err == nil {
		return name, notation, nil
	}
	if !tune.Validate(choice) {
		return "", "", fmt.Errorf("%w, and %w", err, &tune.InvalidTuneError{Tune: choice, Alphabet: tune.Alphabet})
	}
	return "", choice, nil
}

// Root plays --file or --tune, or opens the menu when neither is given.
func (r *Runner) Root(ctx context.Context, cmd *cli.Command) error {
	var notation string
	switch {
	case cmd.String("file") != "":
		data, err := os.ReadFile(cmd.String("file"))
		if err != nil {
			return fmt.Errorf("failed to read tune file: %w", err)
		}
		notation = strings.TrimSpace(string(data))
	case cmd.String("tune") != "":
		notation = cmd.String("tune")
	default:
		return r.Menu(ctx, cmd)
	}

	cfg, err := r.playbackConfig(cmd)
	if err != nil {
		return err
	}
	return r.playTune(cfg, cmd.Bool("mute"), "", notation)
}

// Play resolves a tune and plays it.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.playbackConfig(cmd)
	if err != nil {
		return err
	}

	name, notation, err := r.resolve(cmd.StringArg("choice"))
	if err != nil {
		return err
	}
	return r.playTune(cfg, cmd.Bool("mute"), name, notation)
}

// playTune compiles notation before opening the sink, so invalid tunes never reach it.
func (r *Runner) playTune(cfg shared.PlaybackConfig, mute bool, name, notation string) error {
	compiler, err := r.compiler(cfg)
	if err != nil {
		return err
	}
	events, err := compiler.Compile(notation)
	if err != nil {
		return err
	}

	open := r.newSink
	if mute {
		open = mutedSink
	}
	sink, release, err := open(cfg, r.logger)
	if err != nil {
		return err
	}
	defer r.releaseSink(release)

	p := player.NewPlayer(sink, player.Opts{Verbose: cfg.Verbose, Output: r.output, Logger: r.logger})
	if err := p.Play(notation, events); err != nil {
		return err
	}

	r.recordPlay(name, notation, events)
	return nil
}

// recordPlay stores a history entry. Failures only warn: history never blocks playback.
func (r *Runner) recordPlay(name, notation string, events []tune.Event) {
	if _, err := r.library(); err != nil {
		r.logger.Debug("skipping play history", "error", err)
		return
	}
	if err := r.plays.Record(models.NewPlay(name, notation, len(events), tune.TotalDuration(events))); err != nil {
		r.logger.Warn("failed to record play", "error", err)
	}
}

// Compile prints the events for a tune without playing it.
func (r *Runner) Compile(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.playbackConfig(cmd)
	if err != nil {
		return err
	}
	_, notation, err := r.resolve(cmd.StringArg("choice"))
	if err != nil {
		return err
	}

	compiler, err := r.compiler(cfg)
	if err != nil {
		return err
	}
	events, err := compiler.Compile(notation)
	if err != nil {
		return err
	}

	var data []byte
	if cmd.Bool("csv") {
		data, err = formatter.EventsToCSV(events)
	} else {
		data, err = formatter.EventsToText(notation, events)
	}
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}

// List prints the numbered catalog.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	return r.writeBytes(formatter.CatalogToText(r.catalog()))
}

// History prints recent plays.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.library(); err != nil {
		return err
	}

	plays, err := r.plays.Recent(cmd.Int("limit"))
	if err != nil {
		return err
	}
	if len(plays) == 0 {
		return r.writePlain("No tunes played yet.\n")
	}
	return r.writeBytes(formatter.PlaysToText(plays))
}
