package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/desertthunder/islandtune/internal/formatter"
	"github.com/desertthunder/islandtune/internal/shared"
	"github.com/desertthunder/islandtune/internal/tasks"
	"github.com/desertthunder/islandtune/internal/tune"
	"github.com/urfave/cli/v3"
)

func (r *Runner) renderOpts(cfg shared.PlaybackConfig) tasks.RenderOpts {
	return tasks.RenderOpts{
		Duration: tune.Seconds(cfg.Duration),
		BPM:      r.config.MIDI.BPM,
		Volume:   cfg.Volume,
		Logger:   shared.WithLogger(r.logger, "component", "render"),
	}
}

// ExportMIDI writes one tune as a Standard MIDI File.
func (r *Runner) ExportMIDI(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.playbackConfig(cmd)
	if err != nil {
		return err
	}
	name, notation, err := r.resolve(cmd.StringArg("choice"))
	if err != nil {
		return err
	}

	if title := cmd.String("name"); title != "" {
		name = title
	}
	output := cmd.String("output")
	if output == "" {
		slug := shared.Slugify(name)
		if slug == "" {
			slug = "tune"
		}
		output = slug + ".mid"
	}

	res, err := tasks.WriteMIDIFile(name, notation, output, r.renderOpts(cfg))
	if err != nil {
		return err
	}

	r.logger.Info("exported midi", "path", res.Path, "notes", res.Notes)
	return r.writePlain("✓ Wrote %s (%d notes, %s)\n", res.Path, res.Notes, formatter.FormatSeconds(res.Length))
}

// ExportAll renders the whole catalog with a worker pool, printing progress as tunes finish.
func (r *Runner) ExportAll(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.playbackConfig(cmd)
	if err != nil {
		return err
	}

	opts := r.renderOpts(cfg)
	opts.OutputDir = cmd.String("dir")
	opts.NumWorkers = cmd.Int("workers")
	if opts.NumWorkers > tasks.MaxWorkers {
		r.logger.Warn("capping workers", "requested", opts.NumWorkers, "max", tasks.MaxWorkers)
	}

	c := r.catalog()
	prog := make(chan tasks.ProgressUpdate, c.Len()+2)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range prog {
			if update.Phase == tasks.Render {
				r.writePlain("%s\n", update.Message)
			} else {
				r.logger.Info(update.Message)
			}
		}
	}()

	result, err := tasks.RenderAll(ctx, c, prog, opts)
	close(prog)
	wg.Wait()
	if err != nil {
		return err
	}

	r.writePlainHeader("MIDI export")
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Rendered:  %d/%d\n", result.Succeeded, result.TotalTunes)
	r.writePlain("Manifest:  %s\n", filepath.Base(result.ManifestPath))
	if result.Failed > 0 {
		return fmt.Errorf("%d of %d tunes failed to render, see %s", result.Failed, result.TotalTunes, result.ManifestPath)
	}
	return nil
}
