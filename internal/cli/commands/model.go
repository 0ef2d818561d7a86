package commands

import (
	"github.com/spf13/cobra"
)

// NewModelCommand creates the model command.
func NewModelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "model",
		Short: "Describe the optimization model",
		Long: `Print the static description of the mathematical model behind every
route insight: decision variables, objective function and constraints,
plus a summary of the loaded dataset when there is one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContextWithoutSession(cmd)
			md, err := cc.Client.Model(cmd.Context())
			if err != nil {
				return err
			}
			return renderModel(cc.Renderer, md)
		},
	}
}

// NewPlantCommand creates the plant command.
func NewPlantCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "plant <code>",
		Short:   "Show details of one plant",
		Example: `  routelens plant IU1`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContextWithoutSession(cmd)
			rec, err := cc.Client.Plant(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderRecord(cc.Renderer, "Plant "+args[0], rec)
		},
	}
}
