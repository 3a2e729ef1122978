package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fwojciec/webtools"
)

// Run executes the run command and prints the result as JSON.
func (c *RunCmd) Run(deps *Dependencies) error {
	tool, err := deps.Catalog.Find(c.Category, c.Tool)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s. Use 'webtools list' to see available tools.\n", webtools.ErrorMessage(err))
		return err
	}

	input := []byte(c.Input)
	if c.Input == "-" {
		if input, err = io.ReadAll(deps.Stdin); err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	}

	result, err := tool.Run(deps.Ctx, input)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webtools.ErrorMessage(err))
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Fprintln(deps.Stdout, string(out))
	return nil
}
