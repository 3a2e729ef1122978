package main

import (
	"fmt"
	"path/filepath"

	"github.com/fwojciec/webtools/fs"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	out, err := filepath.Abs(c.Out)
	if err != nil {
		return err
	}

	exporter := fs.NewExporter(filepath.Dir(out), filepath.Base(out))
	n, err := exporter.Export(deps.Ctx, deps.Catalog)
	if err != nil {
		return fmt.Errorf("export catalog: %w", err)
	}

	fmt.Fprintf(deps.Stdout, "Exported %d tools to %s\n", n, out)
	return nil
}
