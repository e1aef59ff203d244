// package formatter renders compiled tunes, catalogs and history as text, CSV and YAML tune books
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/desertthunder/islandtune/internal/models"
	"github.com/desertthunder/islandtune/internal/shared"
	"github.com/desertthunder/islandtune/internal/tune"
	"gopkg.in/yaml.v3"
)

// TuneBook is the YAML document used to import and export saved tunes.
type TuneBook struct {
	Tunes []TuneEntry `yaml:"tunes"`
}

// TuneEntry is one named tune in a [TuneBook].
type TuneEntry struct {
	Name     string `yaml:"name"`
	Notation string `yaml:"notation"`
}

// FormatSeconds prints d as seconds with up to three decimals, e.g. "0.3s".
func FormatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + "s"
}

// EventsToText renders events as an aligned table followed by the total length.
func EventsToText(notation string, events []tune.Event) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Tune: %s\n", notation)
	fmt.Fprintf(&buf, "Events: %d\n\n", len(events))

	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tPITCH\tDURATION\tOFFSET\tCHARS")
	for i, ev := range events {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", i+1, ev.Pitch, FormatSeconds(ev.Duration), ev.Offset, notation[ev.Offset:ev.Offset+ev.Span])
	}
	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("failed to write table: %w", err)
	}

	fmt.Fprintf(&buf, "\nTotal: %s\n", FormatSeconds(tune.TotalDuration(events)))
	return buf.Bytes(), nil
}

// EventsToCSV converts events to CSV with columns: Index, Pitch, Duration, Offset, Span
func EventsToCSV(events []tune.Event) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Index", "Pitch", "Duration", "Offset", "Span"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, ev := range events {
		record := []string{
			strconv.Itoa(i + 1),
			ev.Pitch.String(),
			strconv.FormatFloat(ev.Duration.Seconds(), 'f', -1, 64),
			strconv.Itoa(ev.Offset),
			strconv.Itoa(ev.Span),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// CatalogToText renders the numbered menu listing used to pick tunes by index.
func CatalogToText(c *tune.Catalog) []byte {
	var buf bytes.Buffer
	for i, name := range c.Names() {
		fmt.Fprintf(&buf, "%2d. %s\n", i+1, name)
	}
	return buf.Bytes()
}

// PlaysToText renders playback history, newest first.
func PlaysToText(plays []*models.Play) []byte {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PLAYED\tTUNE\tEVENTS\tLENGTH")
	for _, p := range plays {
		name := p.TuneName()
		if name == "" {
			name = p.Notation()
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", p.PlayedAt().Format(time.DateTime), name, p.EventCount(), FormatSeconds(p.Duration()))
	}
	w.Flush()
	return buf.Bytes()
}

// TunesToText renders saved tunes as a table in library order.
func TunesToText(tunes []*models.Tune) []byte {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tNOTATION\tSAVED")
	for _, t := range tunes {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.Sequence(), t.Name(), t.Notation(), t.CreatedAt().Format(time.DateOnly))
	}
	w.Flush()
	return buf.Bytes()
}

// TunesToYAML converts saved tunes to a YAML [TuneBook].
func TunesToYAML(tunes []*models.Tune) ([]byte, error) {
	book := TuneBook{Tunes: make([]TuneEntry, 0, len(tunes))}
	for _, t := range tunes {
		book.Tunes = append(book.Tunes, TuneEntry{Name: t.Name(), Notation: t.Notation()})
	}

	data, err := yaml.Marshal(book)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tune book: %w", err)
	}
	return data, nil
}

// TunesFromYAML parses a YAML [TuneBook], rejecting unnamed entries, duplicate names and invalid notation.
func TunesFromYAML(data []byte) ([]TuneEntry, error) {
	var book TuneBook
	if err := yaml.Unmarshal(data, &book); err != nil {
		return nil, fmt.Errorf("%w: failed to parse tune book: %w", shared.ErrInvalidInput, err)
	}

	seen := make(map[string]bool, len(book.Tunes))
	for i, entry := range book.Tunes {
		if entry.Name == "" {
			return nil, fmt.Errorf("%w: tune %d has no name", shared.ErrInvalidInput, i+1)
		}
		if seen[entry.Name] {
			return nil, fmt.Errorf("%w: tune %q appears twice", shared.ErrInvalidInput, entry.Name)
		}
		seen[entry.Name] = true

		if entry.Notation == "" || !tune.Validate(entry.Notation) {
			return nil, fmt.Errorf("%w: %q: %w", shared.ErrInvalidInput, entry.Name, &tune.InvalidTuneError{Tune: entry.Notation, Alphabet: tune.Alphabet})
		}
	}
	return book.Tunes, nil
}

// WriteYAMLExport writes saved tunes as a YAML tune book to path.
func WriteYAMLExport(tunes []*models.Tune, path string) error {
	data, err := TunesToYAML(tunes)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write tune book: %w", err)
	}
	return nil
}

// ReadYAMLImport reads and validates the YAML tune book at path.
func ReadYAMLImport(path string) ([]TuneEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tune book: %w", err)
	}
	return TunesFromYAML(data)
}
