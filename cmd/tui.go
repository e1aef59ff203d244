package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/islandtune/internal/player"
	"github.com/desertthunder/islandtune/internal/shared"
	"github.com/desertthunder/islandtune/internal/ui"
	"github.com/urfave/cli/v3"
)

// Menu launches the interactive tune menu.
func (r *Runner) Menu(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.playbackConfig(cmd)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	level, _ := shared.ParseLogLevel(r.config.Log.Level)
	shared.SetLogLevel(fileLogger, level)
	r.SetLogger(fileLogger)

	compiler, err := r.compiler(cfg)
	if err != nil {
		return err
	}

	open := r.newSink
	if cmd.Bool("mute") {
		open = mutedSink
	}
	sink, release, err := open(cfg, r.logger)
	if err != nil {
		return err
	}
	defer r.releaseSink(release)

	p := player.NewPlayer(sink, player.Opts{Output: io.Discard, Logger: r.logger})
	play := func(name, notation string) error {
		events, err := compiler.Compile(notation)
		if err != nil {
			return err
		}
		if err := p.Play(notation, events); err != nil {
			r.logger.Error("playback failed", "tune", notation, "error", err)
			return err
		}
		r.recordPlay(name, notation, events)
		return nil
	}

	model := ui.NewModel(r.catalog(), play)
	if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
