package commands

import (
	"github.com/spf13/cobra"
)

// NewOptionsCommand creates the options command and its per-level
// subcommands.
func NewOptionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "List the selectable values for each level",
		Long: `List what the data service offers at each level of the selection chain.

Sources and periods span the whole dataset. Destinations depend on a
source, and modes depend on a source and destination.`,
		Example: `  routelens options sources
  routelens options destinations IU1
  routelens options modes IU1 GU5 -o yaml`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "sources",
			Short: "List source plants",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cc := NewCommandContextWithoutSession(cmd)
				items, err := cc.Client.Sources(cmd.Context())
				if err != nil {
					return err
				}
				return renderStrings(cc.Renderer, "Sources", items)
			},
		},
		&cobra.Command{
			Use:   "periods",
			Short: "List time periods",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cc := NewCommandContextWithoutSession(cmd)
				items, err := cc.Client.Periods(cmd.Context())
				if err != nil {
					return err
				}
				return renderStrings(cc.Renderer, "Periods", items)
			},
		},
		&cobra.Command{
			Use:   "destinations <source>",
			Short: "List destinations reachable from a source",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cc := NewCommandContextWithoutSession(cmd)
				items, err := cc.Client.Destinations(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return renderStrings(cc.Renderer, "Destinations", items)
			},
		},
		&cobra.Command{
			Use:   "modes <source> <destination>",
			Short: "List transport modes on a route",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				cc := NewCommandContextWithoutSession(cmd)
				modes, err := cc.Client.Modes(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return renderModes(cc.Renderer, modes)
			},
		},
	)

	return cmd
}
