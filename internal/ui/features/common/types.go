// Package common provides shared types and utilities for UI features.
package common

import (
	"github.com/leapstack-labs/covidlens/internal/config"
	"github.com/leapstack-labs/covidlens/internal/engine"
)

// Source serves the latest pipeline result to the handlers.
type Source interface {
	// Result returns the latest successful result and the error of the latest
	// run if it failed. res is nil when no run has succeeded yet.
	Result() (res *engine.Result, err error)
	Config() *config.PipelineConfig
}

// SessionName is the cookie name of the dashboard session.
const SessionName = "covidlens"

// NavItem is one sidebar entry.
type NavItem struct {
	Label  string
	Path   string
	Active bool
}

// PageData is what every full page shares.
type PageData struct {
	Title string
	Nav   []NavItem
	// Stale is the error of a failed reload while an older result is shown.
	Stale string
}
