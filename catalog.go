package webtools

import (
	"sort"
	"sync"
)

// ToolFilter represents a filter for Catalog.List.
type ToolFilter struct {
	Category *string `json:"category"`
}

// Catalog is the registry of available tools, keyed by "category/slug".
// It is safe for concurrent use.
type Catalog struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewCatalog creates a catalog and registers the given tools.
// It panics on invalid or duplicate tools since that is a wiring bug.
func NewCatalog(tools ...Tool) *Catalog {
	c := &Catalog{tools: make(map[string]Tool)}
	for _, t := range tools {
		if err := c.Register(t); err != nil {
			panic(err)
		}
	}
	return c
}

// Register adds a tool to the catalog.
// Returns ECONFLICT if a tool with the same key is already registered.
func (c *Catalog) Register(t Tool) error {
	info := t.Info()
	if err := info.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.tools[info.Key()]; ok {
		return Errorf(ECONFLICT, "tool %q already registered", info.Key())
	}
	c.tools[info.Key()] = t
	return nil
}

// Find returns the tool registered under category and slug.
// Returns ENOTFOUND if no such tool exists.
func (c *Catalog) Find(category, slug string) (Tool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tools[category+"/"+slug]
	if !ok {
		return nil, Errorf(ENOTFOUND, "tool %q not found in category %q", slug, category)
	}
	return t, nil
}

// List returns metadata of all tools matching the filter,
// ordered by category and then slug.
func (c *Catalog) List(filter ToolFilter) []ToolInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	infos := make([]ToolInfo, 0, len(c.tools))
	for _, t := range c.tools {
		info := t.Info()
		if filter.Category != nil && info.Category != *filter.Category {
			continue
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Category != infos[j].Category {
			return infos[i].Category < infos[j].Category
		}
		return infos[i].Slug < infos[j].Slug
	})
	return infos
}

// Categories returns the distinct categories in sorted order.
func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]bool)
	var categories []string
	for _, t := range c.tools {
		cat := t.Info().Category
		if !seen[cat] {
			seen[cat] = true
			categories = append(categories, cat)
		}
	}
	sort.Strings(categories)
	return categories
}

// Len returns the number of registered tools.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tools)
}

// Wrap replaces every registered tool with mw(tool).
// Used to apply logging and metrics decorators after registration.
func (c *Catalog) Wrap(mw func(Tool) Tool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, t := range c.tools {
		c.tools[key] = mw(t)
	}
}
