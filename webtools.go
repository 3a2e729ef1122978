// Package webtools provides a catalog of single-purpose online tools (unit
// converters, text utilities, hash generators, structured data converters,
// SEO helpers and network diagnostics) served over a JSON API and a CLI.
//
// Every tool is a pure function over a per-request DTO. An optional Analyzer
// adds natural language commentary to results; it is never required for
// correctness.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, gemini/, etree/).
package webtools
