package main

import (
	"fmt"

	"github.com/fwojciec/webtools"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	var filter webtools.ToolFilter
	if c.Category != "" {
		filter.Category = &c.Category
	}

	infos := deps.Catalog.List(filter)
	if len(infos) == 0 {
		if c.Category != "" {
			fmt.Fprintf(deps.Stdout, "No tools in category %q.\n", c.Category)
			return nil
		}
		fmt.Fprintln(deps.Stdout, "No tools registered.")
		return nil
	}

	for _, info := range infos {
		fmt.Fprintf(deps.Stdout, "%-40s  %s\n", info.Key(), info.Name)
	}
	return nil
}
