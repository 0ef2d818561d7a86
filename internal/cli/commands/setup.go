// Package commands implements the routelens subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/routelens/internal/cli/config"
	"github.com/leapstack-labs/routelens/internal/cli/output"
	"github.com/leapstack-labs/routelens/internal/dataservice"
	"github.com/leapstack-labs/routelens/internal/journal"
	"github.com/leapstack-labs/routelens/internal/session"
)

// CommandContext holds everything a command needs to talk to the data
// service and print results.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Client   *dataservice.Client
	Renderer *output.Renderer
	Journal  *journal.Journal
	Session  *session.Session
}

// NewCommandContext creates a CommandContext with a journaled session.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cc := NewCommandContextWithoutSession(cmd)

	j, err := journal.Open(cc.Cfg.Journal.Path)
	if err != nil {
		return nil, nil, err
	}
	cc.Journal = j
	cc.Session = session.New(cc.Client,
		session.WithID(uuid.NewString()),
		session.WithPolicy(cc.Cfg.Selection.Policy),
		session.WithLogger(cc.Logger),
		session.WithRecorder(j),
		session.WithContext(cmd.Context()),
	)

	cleanup := func() {
		cc.Session.Wait()
		_ = j.Close()
	}
	return cc, cleanup, nil
}

// NewCommandContextWithoutSession creates a CommandContext with only a
// client and renderer. Useful for commands that make a single call.
func NewCommandContextWithoutSession(cmd *cobra.Command) *CommandContext {
	cfg := config.FromContext(cmd.Context())
	logger := config.GetLogger(cmd.Context())
	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Client:   newClient(cfg, logger),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}
}

func newClient(cfg *config.Config, logger *slog.Logger) *dataservice.Client {
	return dataservice.New(cfg.Service.BaseURL,
		dataservice.WithTimeout(cfg.Service.Timeout),
		dataservice.WithLogger(logger),
	)
}

// loadOptions starts the session and waits for the dataset-wide lists.
func (cc *CommandContext) loadOptions() session.State {
	cc.Session.Start()
	cc.Session.Wait()
	return cc.Session.Snapshot()
}

// choose applies one selection level after checking value against the
// cached options, then waits for any fetch it triggers.
func (cc *CommandContext) choose(level, value string) error {
	st := cc.Session.Snapshot()
	allowed := allowedValues(st, level)
	if !slices.Contains(allowed, value) {
		if len(allowed) == 0 {
			return fmt.Errorf("no %s options are available (is a dataset loaded?)", level)
		}
		return fmt.Errorf("%s %q is not one of: %s", level, value, strings.Join(allowed, ", "))
	}

	switch level {
	case session.LevelSource:
		cc.Session.SetSource(value)
	case session.LevelDestination:
		cc.Session.SetDestination(value)
	case session.LevelMode:
		cc.Session.SetMode(value)
	case session.LevelPeriod:
		cc.Session.SetPeriod(value)
	default:
		return fmt.Errorf("unknown selection level %q", level)
	}
	cc.Session.Wait()
	return nil
}

// allowedValues lists the option identifiers currently valid for level.
func allowedValues(st session.State, level string) []string {
	switch level {
	case session.LevelSource:
		return st.Options.Sources.Items
	case session.LevelDestination:
		if st.Options.Destinations.Scope != st.Selection.Source {
			return nil
		}
		return st.Options.Destinations.Items
	case session.LevelMode:
		if st.Options.Modes.Scope != session.ModeScope(st.Selection.Source, st.Selection.Destination) {
			return nil
		}
		codes := make([]string, 0, st.Options.Modes.Len())
		for _, m := range st.Options.Modes.Items {
			codes = append(codes, m.Code)
		}
		return codes
	case session.LevelPeriod:
		return st.Options.Periods.Items
	}
	return nil
}
