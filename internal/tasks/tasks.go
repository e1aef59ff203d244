package tasks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/islandtune/internal/player"
	"github.com/desertthunder/islandtune/internal/recorder"
	"github.com/desertthunder/islandtune/internal/shared"
	"github.com/desertthunder/islandtune/internal/tune"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWorkers = 4
	MaxWorkers     = 8
	ManifestName   = "manifest.yaml"
)

// RenderOpts contains configuration for MIDI rendering.
type RenderOpts struct {
	OutputDir  string        // Output directory for [RenderAll] (default: midi_export_{epoch})
	NumWorkers int           // Concurrent workers for [RenderAll] (default: 4, max: 8)
	Duration   time.Duration // Base note duration (default: [tune.DefaultDuration])
	BPM        float64       // File tempo (default: 120)
	Volume     float64       // 0-1, mapped to note velocity
	Logger     *log.Logger
}

func (o RenderOpts) withDefaults() RenderOpts {
	if o.Duration <= 0 {
		o.Duration = tune.DefaultDuration
	}
	if o.BPM <= 0 {
		o.BPM = 120
	}
	if o.NumWorkers <= 0 {
		o.NumWorkers = DefaultWorkers
	}
	o.NumWorkers = min(o.NumWorkers, MaxWorkers)
	if o.Logger == nil {
		o.Logger = shared.NewLogger(nil)
	}
	return o
}

// RenderResult describes a single rendered tune.
type RenderResult struct {
	Name    string
	Path    string
	Events  int
	Notes   int
	Length  time.Duration
	Success bool
	Error   error
}

// RenderAllResult contains the outcome of a [RenderAll] run.
type RenderAllResult struct {
	TotalTunes      int
	Succeeded       int
	Failed          int
	OutputDirectory string
	ManifestPath    string
	Results         []RenderResult // Sorted by tune name
}

type renderJob struct {
	name     string
	notation string
	path     string
}

type manifestEntry struct {
	Name     string  `yaml:"name"`
	File     string  `yaml:"file,omitempty"`
	Events   int     `yaml:"events"`
	Seconds  float64 `yaml:"seconds"`
	Error    string  `yaml:"error,omitempty"`
	Notation string  `yaml:"notation"`
}

// RenderTune compiles notation and writes it to w as a single track MIDI file.
func RenderTune(name, notation string, w io.Writer, opts RenderOpts) (RenderResult, error) {
	opts = opts.withDefaults()
	res := RenderResult{Name: name}

	compiler, err := tune.NewCompiler(opts.Duration)
	if err != nil {
		return res, err
	}
	events, err := compiler.Compile(notation)
	if err != nil {
		return res, err
	}

	rec, err := recorder.NewMIDI(name, opts.BPM, opts.Volume)
	if err != nil {
		return res, err
	}

	p := player.NewPlayer(rec, player.Opts{Output: io.Discard, Logger: opts.Logger})
	if err := p.Play(notation, events); err != nil {
		return res, err
	}

	if _, err := rec.WriteTo(w); err != nil {
		return res, err
	}

	res.Events = len(events)
	res.Notes = rec.Notes()
	res.Length = rec.Duration()
	res.Success = true
	return res, nil
}

// WriteMIDIFile renders a tune into path. Nothing is written when the notation is invalid.
func WriteMIDIFile(name, notation, path string, opts RenderOpts) (RenderResult, error) {
	var buf bytes.Buffer
	res, err := RenderTune(name, notation, &buf, opts)
	res.Path = path
	if err != nil {
		return res, err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			res.Success = false
			return res, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		res.Success = false
		return res, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return res, nil
}

// RenderAll renders every tune in c into opts.OutputDir using a bounded worker pool.
//
// Failures are recorded per tune. A cancelled context stops dispatching new tunes and is
// returned alongside the partial result.
func RenderAll(ctx context.Context, c *tune.Catalog, prog chan<- ProgressUpdate, opts RenderOpts) (*RenderAllResult, error) {
	opts = opts.withDefaults()
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("midi_export_%d", time.Now().Unix())
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	jobs := planJobs(c, opts.OutputDir)
	result := &RenderAllResult{
		TotalTunes:      len(jobs),
		OutputDirectory: opts.OutputDir,
		Results:         make([]RenderResult, 0, len(jobs)),
	}

	sendProgress(prog, prepareUpdate(len(jobs), opts.OutputDir))

	queue := make(chan renderJob, len(jobs))
	results := make(chan RenderResult, len(jobs))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go renderWorker(ctx, &wg, queue, results, opts)
	}

	go func() {
		defer close(queue)
		for _, job := range jobs {
			select {
			case <-ctx.Done():
				return
			case queue <- job:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.Succeeded++
			sendProgress(prog, renderCompletedUpdate(completed, len(jobs), res))
		} else {
			result.Failed++
			opts.Logger.Warn("render failed", "tune", res.Name, "error", res.Error)
			sendProgress(prog, renderFailedUpdate(completed, len(jobs), res))
		}
	}

	slices.SortFunc(result.Results, func(a, b RenderResult) int { return strings.Compare(a.Name, b.Name) })

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("render cancelled after %d of %d tunes: %w", completed, len(jobs), err)
	}

	manifestPath := filepath.Join(opts.OutputDir, ManifestName)
	sendProgress(prog, manifestUpdate(manifestPath))
	if err := writeManifest(result, jobs, manifestPath); err != nil {
		return result, fmt.Errorf("render completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

func renderWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan renderJob, results chan<- RenderResult, opts RenderOpts) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := WriteMIDIFile(job.name, job.notation, job.path, opts)
		if err != nil {
			res.Success = false
			res.Error = err
		}
		results <- res
	}
}

// planJobs assigns each tune a unique file name in name order.
func planJobs(c *tune.Catalog, dir string) []renderJob {
	names := c.Names()
	jobs := make([]renderJob, 0, len(names))
	taken := make(map[string]bool, len(names))
	suffix := make(map[string]int)

	for i, name := range names {
		notation, _ := c.Get(name)

		base := shared.Slugify(name)
		if base == "" {
			base = fmt.Sprintf("tune-%d", i+1)
		}
		slug := base
		for taken[slug] {
			suffix[base]++
			slug = fmt.Sprintf("%s-%d", base, suffix[base]+1)
		}
		taken[slug] = true

		jobs = append(jobs, renderJob{
			name:     name,
			notation: notation,
			path:     filepath.Join(dir, slug+".mid"),
		})
	}
	return jobs
}

func writeManifest(result *RenderAllResult, jobs []renderJob, path string) error {
	notations := make(map[string]string, len(jobs))
	for _, j := range jobs {
		notations[j.name] = j.notation
	}

	entries := make([]manifestEntry, 0, len(result.Results))
	for _, r := range result.Results {
		entry := manifestEntry{
			Name:     r.Name,
			Events:   r.Events,
			Seconds:  r.Length.Seconds(),
			Notation: notations[r.Name],
		}
		if r.Success {
			entry.File = filepath.Base(r.Path)
		} else if r.Error != nil {
			entry.Error = r.Error.Error()
		}
		entries = append(entries, entry)
	}

	data, err := yaml.Marshal(map[string]any{"tunes": entries})
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
