package menu

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// menuJSON holds the bundled catalog so the service works without any
// filesystem layout assumptions. A MENU_PATH override replaces it at load.
//
//go:embed menu.json
var menuJSON []byte

var (
	ErrItemNotFound     = errors.New("menu item not found")
	ErrCategoryNotFound = errors.New("menu category not found")
)

type Item struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"-"`
}

type Menu struct {
	Restaurant string            `json:"restaurant"`
	Categories map[string][]Item `json:"categories"`
}

// Catalog is a lazily loaded, immutable menu snapshot. The first call that
// needs the menu triggers the load; every later call observes the same data.
type Catalog struct {
	path string

	once  sync.Once
	menu  *Menu
	index map[string]Item
	err   error
}

// New returns a catalog backed by the file at path, or by the embedded
// menu when path is empty. Nothing is read until the first lookup.
func New(path string) *Catalog {
	return &Catalog{path: path}
}

func (c *Catalog) load() {
	data := menuJSON
	if c.path != "" {
		b, err := os.ReadFile(c.path)
		if err != nil {
			c.err = fmt.Errorf("read menu file: %w", err)
			return
		}
		data = b
	}

	var m Menu
	if err := json.Unmarshal(data, &m); err != nil {
		c.err = fmt.Errorf("parse menu: %w", err)
		return
	}
	if len(m.Categories) == 0 {
		c.err = errors.New("menu has no categories")
		return
	}

	index := make(map[string]Item)
	for category, items := range m.Categories {
		for i := range items {
			items[i].Category = category
			index[items[i].ID] = items[i]
		}
	}

	c.menu = &m
	c.index = index
}

// Menu returns the full catalog. The load error, if any, is returned on
// every call so no dependent operation can silently proceed without a menu.
func (c *Catalog) Menu() (*Menu, error) {
	c.once.Do(c.load)
	return c.menu, c.err
}

// Category returns the items of a single category.
func (c *Catalog) Category(name string) ([]Item, error) {
	c.once.Do(c.load)
	if c.err != nil {
		return nil, c.err
	}
	items, ok := c.menu.Categories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, name)
	}
	return items, nil
}

// Lookup resolves a single item by id.
func (c *Catalog) Lookup(itemID string) (Item, error) {
	c.once.Do(c.load)
	if c.err != nil {
		return Item{}, c.err
	}
	item, ok := c.index[itemID]
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	return item, nil
}
