// Package orchestrator wires the fetch → process → build → render pipeline
// behind a single Generate call. Missing dependencies fall back to the
// built-in implementations: the fixture-free HTML renderer, the default
// theme manifest and a no-op logger.
package orchestrator
