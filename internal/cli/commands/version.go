package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// BuildInfo is what the binary was built from.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display RouteLens version and build information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "RouteLens v%s\n", info.Version)
			if info.Commit != "" && info.Commit != "unknown" {
				_, _ = fmt.Fprintf(out, "commit %s, built %s\n", info.Commit, info.Date)
			}
			_, _ = fmt.Fprintln(out, "Clinker route insight explorer built with Go")
		},
	}
}
