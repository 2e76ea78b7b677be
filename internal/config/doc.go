// Package config loads voyage scenarios: the fixed set of resources and
// units a simulation runs with, plus runtime tuning.
//
// Scenarios are YAML files validated against an embedded CUE schema before
// anything is constructed, so structural errors surface before any goroutine
// starts. Runtime tuning (retry backoff, display cadence, journal path) comes
// from VOYAGER_* environment variables.
package config
