package session

import (
	"time"

	"github.com/leapstack-labs/routelens/internal/dataservice"
	"github.com/leapstack-labs/routelens/internal/field"
	"github.com/leapstack-labs/routelens/internal/insight"
)

// Phase is the derived position of the selection chain.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseSourceChosen
	PhaseDestinationChosen
	// PhaseRouteReady means mode and period are both set.
	PhaseRouteReady
)

func (p Phase) String() string {
	switch p {
	case PhaseSourceChosen:
		return "source chosen"
	case PhaseDestinationChosen:
		return "destination chosen"
	case PhaseRouteReady:
		return "route ready"
	default:
		return "empty"
	}
}

// Selection is the four-level dependent chain. Empty means unset.
type Selection struct {
	Source      string `json:"source" yaml:"source"`
	Destination string `json:"destination" yaml:"destination"`
	Mode        string `json:"mode" yaml:"mode"`
	Period      string `json:"period" yaml:"period"`
}

// Tuple returns the selection as a route-insight request key.
func (s Selection) Tuple() insight.Tuple {
	return insight.Tuple{Source: s.Source, Destination: s.Destination, Mode: s.Mode, Period: s.Period}
}

// Ready reports whether every level is set.
func (s Selection) Ready() bool { return s.Tuple().Complete() }

// Phase derives the machine state from the selection.
func (s Selection) Phase() Phase {
	switch {
	case s.Source == "":
		return PhaseEmpty
	case s.Destination == "":
		return PhaseSourceChosen
	case s.Mode == "" || s.Period == "":
		return PhaseDestinationChosen
	default:
		return PhaseRouteReady
	}
}

// OptionSet is an ordered option list scoped to a parent key. Items is
// replaced wholesale and never modified in place.
type OptionSet[T any] struct {
	Scope string `json:"scope,omitempty" yaml:"scope,omitempty"`
	Items []T    `json:"items" yaml:"items"`
}

// Len returns the number of options.
func (o OptionSet[T]) Len() int { return len(o.Items) }

// Options are the cached option lists for each level.
type Options struct {
	Sources      OptionSet[string]           `json:"sources" yaml:"sources"`
	Periods      OptionSet[string]           `json:"periods" yaml:"periods"`
	Destinations OptionSet[string]           `json:"destinations" yaml:"destinations"`
	Modes        OptionSet[dataservice.Mode] `json:"modes" yaml:"modes"`
}

// HasMode reports whether code is a cached mode.
func (o Options) HasMode(code string) bool {
	for _, m := range o.Modes.Items {
		if m.Code == code {
			return true
		}
	}
	return false
}

// InsightStatus is the lifecycle of the current route insight.
type InsightStatus int

const (
	InsightIdle InsightStatus = iota
	InsightLoading
	InsightReady
	InsightFailed
)

func (s InsightStatus) String() string {
	switch s {
	case InsightLoading:
		return "loading"
	case InsightReady:
		return "ready"
	case InsightFailed:
		return "failed"
	default:
		return "idle"
	}
}

// MarshalText renders the status by name in JSON and YAML output.
func (s InsightStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// InsightState is owned by the synchronizer. Insight is set only when
// Status is InsightReady.
type InsightState struct {
	Status     InsightStatus         `json:"status" yaml:"status"`
	Tuple      insight.Tuple         `json:"tuple" yaml:"tuple"`
	Generation uint64                `json:"generation" yaml:"generation"`
	Insight    *insight.RouteInsight `json:"insight,omitempty" yaml:"insight,omitempty"`
}

// DataStatus describes the last successful ingestion.
type DataStatus struct {
	Loaded       bool         `json:"loaded" yaml:"loaded"`
	Origin       string       `json:"origin" yaml:"origin"`
	Sheets       []string     `json:"sheets" yaml:"sheets"`
	RouteCount   field.Value  `json:"route_count" yaml:"route_count"`
	PlantCount   field.Value  `json:"plant_count" yaml:"plant_count"`
	Periods      []string     `json:"periods" yaml:"periods"`
	RecordCounts field.Record `json:"record_counts" yaml:"record_counts"`
	LoadedAt     time.Time    `json:"loaded_at" yaml:"loaded_at"`
}

// DefaultOrigin names the service's bundled dataset.
const DefaultOrigin = "default dataset"

// State is one session's full display state. A State value handed out by
// Snapshot or an Event is never modified afterwards.
type State struct {
	Selection  Selection                 `json:"selection" yaml:"selection"`
	Options    Options                   `json:"options" yaml:"options"`
	Insight    InsightState              `json:"insight" yaml:"insight"`
	Data       DataStatus                `json:"data" yaml:"data"`
	Validation *ValidationError          `json:"validation,omitempty" yaml:"validation,omitempty"`
	Failure    *TransportError           `json:"failure,omitempty" yaml:"failure,omitempty"`
	Model      *insight.ModelDescription `json:"model,omitempty" yaml:"model,omitempty"`
}

// Phase is a shortcut for Selection.Phase.
func (s State) Phase() Phase { return s.Selection.Phase() }
