package tune

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

var defaultTunes = map[string]string{
	"TMBG - Ana Ng":                     "GGG-deG-ddd-c-b-",
	"TMBG - Don't Let's Start":          "D-D-CCG-xeGGA-e-",
	"White Stripes - Seven Nation Army": "e--eGe-dc--xb--x",
	"ABBA - Dancing Queen":              "cdee-f-f--e-f-f-",
	"ABBA - Lay All Your Love On Me":    "f-GAG-G-f---xxxx",
	"Mii":                               "g-ce-c-agggxxxxx",
	"Gravity Falls":                     "fffAAGFxAAAGAGf",
	"Howl's Theme":                      "e-A-C-E-EDCB-C--",
	"Wii Sports":                        "e-f-efGCBCGecded",
	"X Files":                           "a-e-d-e-G-e--xxx",
}

// ErrUnknownTune is returned when a catalog lookup finds nothing.
var ErrUnknownTune = errors.New("unknown tune")

// Catalog maps tune names to notation. The zero value is empty and usable.
type Catalog struct {
	tunes map[string]string
}

// DefaultCatalog returns a copy of the built-in example tunes.
func DefaultCatalog() *Catalog {
	return NewCatalog(defaultTunes)
}

// NewCatalog copies tunes into a new [Catalog].
func NewCatalog(tunes map[string]string) *Catalog {
	return &Catalog{tunes: maps.Clone(tunes)}
}

// Len returns the number of tunes.
func (c *Catalog) Len() int { return len(c.tunes) }

// Names returns the tune names in sorted order; this is the menu order.
func (c *Catalog) Names() []string {
	return slices.Sorted(maps.Keys(c.tunes))
}

// Get returns the notation stored under name.
func (c *Catalog) Get(name string) (string, bool) {
	n, ok := c.tunes[name]
	return n, ok
}

// At returns the name and notation at the 1-based menu position i.
func (c *Catalog) At(i int) (string, string, error) {
	names := c.Names()
	if i < 1 || i > len(names) {
		return "", "", fmt.Errorf("%w: number %d out of range 1-%d", ErrUnknownTune, i, len(names))
	}
	name := names[i-1]
	return name, c.tunes[name], nil
}

// Resolve finds a tune by menu number or by name (exact first, then case-insensitive).
func (c *Catalog) Resolve(choice string) (string, string, error) {
	choice = strings.TrimSpace(choice)
	if n, err := strconv.Atoi(choice); err == nil {
		return c.At(n)
	}
	if notation, ok := c.tunes[choice]; ok {
		return choice, notation, nil
	}
	for _, name := range c.Names() {
		if strings.EqualFold(name, choice) {
			return name, c.tunes[name], nil
		}
	}
	return "", "", fmt.Errorf("%w: %q", ErrUnknownTune, choice)
}

// Merge returns a new catalog holding c's tunes overlaid with other's.
func (c *Catalog) Merge(other *Catalog) *Catalog {
	merged := NewCatalog(c.tunes)
	if merged.tunes == nil {
		merged.tunes = map[string]string{}
	}
	maps.Copy(merged.tunes, other.tunes)
	return merged
}
