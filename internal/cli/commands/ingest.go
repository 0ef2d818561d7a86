package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/routelens/internal/dataservice"
	"github.com/leapstack-labs/routelens/internal/session"
)

// NewUploadCommand creates the upload command.
func NewUploadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a dataset to the data service",
		Long: fmt.Sprintf(`Upload a spreadsheet or CSV dataset. Accepted extensions: %s.

The service checks the file for the sheets and columns it needs. If any are
missing, the full list is printed and the command fails.`, strings.Join(dataservice.AllowedExtensions, ", ")),
		Example: `  routelens upload clinker.xlsx`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			return renderIngest(cc.Renderer, uploadFile(cmd.Context(), cc.Session, args[0]))
		},
	}
}

// NewLoadDefaultCommand creates the load-default command.
func NewLoadDefaultCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "load-default",
		Short: "Load the data service's bundled dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			return renderIngest(cc.Renderer, cc.Session.LoadDefault(cmd.Context()))
		},
	}
}

// uploadFile filters by extension, then hands the file to the session.
func uploadFile(ctx context.Context, sess *session.Session, path string) session.IngestionResult {
	name := filepath.Base(path)
	if !dataservice.AllowedFile(name) {
		return session.IngestionResult{Err: fmt.Errorf("%s: unsupported file type (use %s)",
			name, strings.Join(dataservice.AllowedExtensions, ", "))}
	}
	f, err := os.Open(path)
	if err != nil {
		return session.IngestionResult{Err: fmt.Errorf("failed to open dataset: %w", err)}
	}
	defer f.Close()
	return sess.Upload(ctx, name, f)
}
