// Package common provides shared types and utilities for UI features.
package common

import (
	"time"

	"github.com/leapstack-labs/routelens/internal/session"
)

// View is everything the explorer shell renders for one browser session.
type View struct {
	State      session.State
	Stats      session.Stats
	ServiceURL string
	IsDev      bool
	// Notice is a one-off message such as a rejected file type.
	Notice     string
	RenderedAt time.Time
}

// SelectionSignals mirror the four selects. Datastar sends them with every
// action and the server patches them back after each state change so the
// selects follow cascaded clears.
type SelectionSignals struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Mode        string `json:"mode"`
	Period      string `json:"period"`
}

// SignalsFor returns the signals matching a selection.
func SignalsFor(sel session.Selection) SelectionSignals {
	return SelectionSignals{
		Source:      sel.Source,
		Destination: sel.Destination,
		Mode:        sel.Mode,
		Period:      sel.Period,
	}
}

// Snapshotter is the part of a session a view is built from.
type Snapshotter interface {
	Snapshot() session.State
	Stats() session.Stats
}

// NewView snapshots s for rendering.
func NewView(s Snapshotter, serviceURL string, isDev bool) View {
	return View{
		State:      s.Snapshot(),
		Stats:      s.Stats(),
		ServiceURL: serviceURL,
		IsDev:      isDev,
		RenderedAt: time.Now(),
	}
}
