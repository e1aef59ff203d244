package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/islandtune/internal/tune"
)

var _ list.Item = tuneItem{}

// tuneItem wraps a catalog entry to implement [list.Item].
type tuneItem struct {
	index    int
	name     string
	notation string
}

func (i tuneItem) FilterValue() string { return i.name }
func (i tuneItem) Title() string       { return fmt.Sprintf("%d. %s", i.index, i.name) }
func (i tuneItem) Description() string { return i.notation }

func catalogItems(c *tune.Catalog) []list.Item {
	names := c.Names()
	items := make([]list.Item, len(names))
	for i, name := range names {
		notation, _ := c.Get(name)
		items[i] = tuneItem{index: i + 1, name: name, notation: notation}
	}
	return items
}
