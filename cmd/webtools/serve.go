package main

import (
	wthttp "github.com/fwojciec/webtools/http"
)

// Run executes the serve command. It blocks until the context is canceled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	s := wthttp.NewServer()
	s.Addr = c.Addr
	s.Catalog = deps.Catalog
	s.Analyzer = deps.Analyzer
	s.Runs = deps.Runs
	s.Limiter = deps.Limiter
	s.Logger = deps.Logger
	if deps.Metrics != nil {
		s.Metrics = deps.Metrics.Handler()
	}

	if err := s.Open(); err != nil {
		return err
	}
	deps.Logger.Info("listening",
		"addr", c.Addr,
		"port", s.Port(),
		"tools", deps.Catalog.Len(),
		"analysis", deps.Analyzer != nil,
	)

	<-deps.Ctx.Done()
	deps.Logger.Info("shutting down")
	return s.Close()
}
