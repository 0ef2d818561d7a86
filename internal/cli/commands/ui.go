package commands

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/routelens/internal/journal"
	"github.com/leapstack-labs/routelens/internal/ui"
)

// UIOptions holds options for the ui command.
type UIOptions struct {
	NoBrowser bool
	Dev       bool
}

// NewUICommand creates the ui command.
func NewUICommand() *cobra.Command {
	opts := &UIOptions{}

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Start the RouteLens web UI",
		Long: `Start a local web server for exploring route insights in a browser.

The UI provides:
- Dataset upload and default dataset loading
- The source, destination, mode and period selectors
- Feasibility, cost, mass balance and constraint panels
- The model description

Each browser gets its own selection state. Pages update live as results
arrive from the data service.`,
		Example: `  # Start UI on default port
  routelens ui

  # Start on custom port
  routelens ui --port 3000

  # Start without auto-opening browser
  routelens ui --no-browser`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUI(cmd, opts)
		},
	}

	cmd.Flags().Int("port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Dev, "dev", false, "Enable live reload")

	return cmd
}

func runUI(cmd *cobra.Command, opts *UIOptions) error {
	cc := NewCommandContextWithoutSession(cmd)
	cfg := cc.Cfg

	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer func() { _ = j.Close() }()

	secret := cfg.UI.SessionSecret
	if secret == "" {
		secret, err = generateSessionSecret()
		if err != nil {
			return err
		}
		cc.Logger.Warn("ui.session_secret is not set; browser sessions will not survive a restart")
	}

	server := ui.NewServer(ui.Config{
		Service:       cc.Client,
		ServiceURL:    cc.Client.BaseURL(),
		Port:          cfg.UI.Port,
		SessionSecret: secret,
		SessionTTL:    cfg.UI.SessionTTL,
		Policy:        cfg.Selection.Policy,
		Recorder:      j,
		Pruner:        j,
		History:       j,
		Dev:           opts.Dev,
		Logger:        cc.Logger,
	})

	url := fmt.Sprintf("http://localhost:%d", cfg.UI.Port)
	if cfg.UI.AutoOpen && !opts.NoBrowser {
		go openBrowser(url)
	}

	cc.Renderer.Printf("Starting UI server on %s\n", url)
	cc.Renderer.Muted("Data service: " + cc.Client.BaseURL())
	cc.Renderer.Println("Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	return server.Serve(ctx)
}

// generateSessionSecret returns a random secret for this process only.
func generateSessionSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
