package mock

import "github.com/fwojciec/webtools"

var _ webtools.Converter = (*Converter)(nil)

// Converter is a mock implementation of webtools.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
