package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/islandtune/internal/formatter"
	"github.com/desertthunder/islandtune/internal/models"
	"github.com/desertthunder/islandtune/internal/shared"
	"github.com/urfave/cli/v3"
)

// LibrarySave stores a named tune, or replaces it with --replace.
func (r *Runner) LibrarySave(ctx context.Context, cmd *cli.Command) error {
	name := strings.TrimSpace(cmd.StringArg("name"))
	notation := strings.TrimSpace(cmd.StringArg("notation"))
	if name == "" || notation == "" {
		return fmt.Errorf("%w: library save <name> <notation>", shared.ErrMissingArgument)
	}

	saved, err := r.saveTune(name, notation, cmd.Bool("replace"))
	if err != nil {
		return err
	}
	if saved {
		return r.writePlain("✓ Saved %s\n", name)
	}
	return r.writePlain("✓ Replaced %s\n", name)
}

// saveTune creates the tune, or updates an existing one when replace is set. It reports whether
// a new tune was created.
func (r *Runner) saveTune(name, notation string, replace bool) (bool, error) {
	repo, err := r.library()
	if err != nil {
		return false, err
	}

	t := models.NewTune(0, name, notation)
	err = repo.Create(t)
	if err == nil {
		r.logger.Debug("saved tune", "name", name, "sequence", t.Sequence())
		return true, nil
	}
	if !errors.Is(err, shared.ErrDuplicateTune) || !replace {
		return false, err
	}

	existing, err := repo.GetByName(name)
	if err != nil {
		return false, err
	}
	existing.SetNotation(notation)
	if err := repo.Update(existing); err != nil {
		return false, err
	}
	return false, nil
}

// LibraryList prints the saved tunes.
func (r *Runner) LibraryList(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.library()
	if err != nil {
		return err
	}

	tunes, err := repo.List(nil)
	if err != nil {
		return err
	}
	if len(tunes) == 0 {
		return r.writePlain("No saved tunes. Add one with 'islandtune library save <name> <notation>'.\n")
	}
	return r.writeBytes(formatter.TunesToText(tunes))
}

// LibraryDelete removes a saved tune by name.
func (r *Runner) LibraryDelete(ctx context.Context, cmd *cli.Command) error {
	name := strings.TrimSpace(cmd.StringArg("name"))
	if name == "" {
		return fmt.Errorf("%w: library delete <name>", shared.ErrMissingArgument)
	}

	repo, err := r.library()
	if err != nil {
		return err
	}

	t, err := repo.GetByName(name)
	if err != nil {
		return err
	}
	if err := repo.Delete(t.ID()); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted %s\n", name)
}

// LibraryImport saves every tune in a YAML tune book. Existing names are skipped unless --replace.
func (r *Runner) LibraryImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: library import <file.yaml>", shared.ErrMissingArgument)
	}

	entries, err := formatter.ReadYAMLImport(path)
	if err != nil {
		return err
	}

	replace := cmd.Bool("replace")
	var created, replaced, skipped int
	for _, entry := range entries {
		isNew, err := r.saveTune(entry.Name, entry.Notation, replace)
		switch {
		case errors.Is(err, shared.ErrDuplicateTune):
			skipped++
			r.logger.Warn("skipping existing tune", "name", entry.Name)
		case err != nil:
			return fmt.Errorf("failed to import %q: %w", entry.Name, err)
		case isNew:
			created++
		default:
			replaced++
		}
	}

	return r.writePlain("✓ Imported %d tunes from %s (%d new, %d replaced, %d skipped)\n",
		created+replaced, path, created, replaced, skipped)
}

// LibraryExport writes the saved tunes to a YAML tune book.
func (r *Runner) LibraryExport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: library export <file.yaml>", shared.ErrMissingArgument)
	}

	repo, err := r.library()
	if err != nil {
		return err
	}
	tunes, err := repo.List(nil)
	if err != nil {
		return err
	}

	if err := formatter.WriteYAMLExport(tunes, path); err != nil {
		return err
	}
	return r.writePlain("✓ Exported %d tunes to %s\n", len(tunes), path)
}
