package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/routelens/internal/session"
)

// RouteOptions holds options for the route command.
type RouteOptions struct {
	Source      string
	Destination string
	Mode        string
	Period      string
}

// NewRouteCommand creates the route command.
func NewRouteCommand() *cobra.Command {
	opts := &RouteOptions{}
	cmd := &cobra.Command{
		Use:   "route",
		Short: "Show the route insight for one selection",
		Long: `Walk the selection chain against the loaded dataset and print the
route insight for the resulting source, destination, mode and period.

Each level is checked against the options the data service offers for the
level above it, so a typo names the valid choices instead of failing
silently.`,
		Example: `  routelens route --source IU1 --destination GU5 --mode T1 --period 2024-Q1
  routelens route -s IU1 -d GU5 -m T1 -p 2024-Q1 -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRoute(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Source, "source", "s", "", "Source plant")
	cmd.Flags().StringVarP(&opts.Destination, "destination", "d", "", "Destination plant")
	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", "", "Transport mode code")
	cmd.Flags().StringVarP(&opts.Period, "period", "p", "", "Time period")
	for _, name := range []string{"source", "destination", "mode", "period"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runRoute(cmd *cobra.Command, opts *RouteOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cc.loadOptions()
	steps := []struct{ level, value string }{
		{session.LevelSource, opts.Source},
		{session.LevelDestination, opts.Destination},
		{session.LevelMode, opts.Mode},
		{session.LevelPeriod, opts.Period},
	}
	for _, step := range steps {
		if err := cc.choose(step.level, step.value); err != nil {
			return err
		}
	}

	return renderInsight(cc.Renderer, cc.Session.Snapshot())
}
