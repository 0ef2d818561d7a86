package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/routelens/internal/session"
	"github.com/leapstack-labs/routelens/internal/watch"
)

// ShellOptions holds options for the shell command.
type ShellOptions struct {
	Watch string
}

// NewShellCommand creates the shell command.
func NewShellCommand() *cobra.Command {
	opts := &ShellOptions{}
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Explore route insights interactively",
		Long: `Start an interactive shell over one selection session.

Set each level with source, dest, mode and period. Once all four are set
the route insight is fetched; a newer selection always wins over an
older response. Type help for the full command list.`,
		Example: `  routelens shell
  routelens shell --watch data/clinker.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Watch, "watch", "", "Upload this dataset now and again whenever it changes")
	return cmd
}

func runShell(cmd *cobra.Command, opts *ShellOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sh := &shell{cc: cc}

	historyFile := ""
	if dir, err := os.UserCacheDir(); err == nil {
		historyFile = filepath.Join(dir, "routelens", "shell_history")
		_ = os.MkdirAll(filepath.Dir(historyFile), 0750)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "routelens> ",
		HistoryFile:     historyFile,
		AutoComplete:    sh.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	if opts.Watch != "" {
		sh.upload(ctx, opts.Watch)
		w := watch.New(opts.Watch, func(path string) {
			cc.Renderer.Muted("\n" + filepath.Base(path) + " changed, uploading again")
			sh.upload(ctx, path)
			rl.Refresh()
		}, watch.WithLogger(cc.Logger))
		go func() {
			if err := w.Run(ctx); err != nil {
				cc.Renderer.Warning(err.Error())
			}
		}()
	}

	cc.Session.Start()
	cc.Renderer.Println("RouteLens shell (service: " + cc.Client.BaseURL() + ")")
	cc.Renderer.Println("Type help for commands, quit to exit")
	cc.Renderer.Println()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		quit, err := sh.exec(ctx, line)
		if err != nil {
			cc.Renderer.Error(err.Error())
		}
		if quit {
			break
		}
	}
	return nil
}

// shell interprets one line at a time against a session.
type shell struct {
	cc *CommandContext
}

var selectWords = map[string]string{
	"source":      session.LevelSource,
	"dest":        session.LevelDestination,
	"destination": session.LevelDestination,
	"mode":        session.LevelMode,
	"period":      session.LevelPeriod,
}

func (sh *shell) exec(ctx context.Context, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	r := sh.cc.Renderer
	sess := sh.cc.Session

	if level, ok := selectWords[cmd]; ok {
		if len(args) != 1 {
			return false, fmt.Errorf("usage: %s <value>", cmd)
		}
		sess.Wait()
		if err := sh.cc.choose(level, args[0]); err != nil {
			return false, err
		}
		sh.afterSelect()
		return false, nil
	}

	switch cmd {
	case "quit", "exit":
		return true, nil

	case "help":
		printShellHelp(r.Out())

	case "clear":
		if len(args) != 1 {
			return false, errors.New("usage: clear source|dest|mode|period")
		}
		level, ok := selectWords[strings.ToLower(args[0])]
		if !ok {
			return false, fmt.Errorf("unknown level %q", args[0])
		}
		switch level {
		case session.LevelSource:
			sess.SetSource("")
		case session.LevelDestination:
			sess.SetDestination("")
		case session.LevelMode:
			sess.SetMode("")
		case session.LevelPeriod:
			sess.SetPeriod("")
		}

	case "status":
		sess.Wait()
		return false, renderStatus(r, sess.Snapshot(), sess.Stats())

	case "options":
		sess.Wait()
		return false, sh.options()

	case "insight":
		sess.Wait()
		return false, renderInsight(r, sess.Snapshot())

	case "reselect":
		sess.Reselect()
		sess.Wait()
		sh.afterSelect()

	case "upload":
		if len(args) != 1 {
			return false, errors.New("usage: upload <file>")
		}
		sh.upload(ctx, args[0])

	case "default":
		if err := renderIngest(r, sess.LoadDefault(ctx)); err != nil {
			return false, err
		}

	case "model":
		md := sess.Snapshot().Model
		if md == nil {
			var err error
			if md, err = sh.cc.Client.Model(ctx); err != nil {
				return false, err
			}
		}
		return false, renderModel(r, md)

	case "history":
		limit := 20
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return false, fmt.Errorf("history: %q is not a positive number", args[0])
			}
			limit = n
		}
		entries, err := sh.cc.Journal.Recent(ctx, sess.ID(), limit)
		if err != nil {
			return false, err
		}
		return false, renderHistory(r, entries)

	case "summary":
		counts, err := sh.cc.Journal.Summary(ctx, sess.ID())
		if err != nil {
			return false, err
		}
		rows := make([][]string, 0, len(counts))
		for _, c := range counts {
			rows = append(rows, []string{string(c.Kind), string(c.Outcome), strconv.Itoa(c.N)})
		}
		r.Table([]string{"Kind", "Outcome", "Count"}, rows)

	case "dismiss":
		if len(args) != 1 {
			return false, errors.New("usage: dismiss validation|error")
		}
		switch args[0] {
		case "validation":
			sess.DismissValidation()
		case "error":
			sess.DismissFailure()
		default:
			return false, fmt.Errorf("nothing called %q to dismiss", args[0])
		}

	default:
		return false, fmt.Errorf("unknown command: %s (type help for commands)", cmd)
	}
	return false, nil
}

// afterSelect prints the verdict once a complete tuple has resolved.
func (sh *shell) afterSelect() {
	st := sh.cc.Session.Snapshot()
	r := sh.cc.Renderer
	switch st.Insight.Status {
	case session.InsightReady:
		r.Success(st.Insight.Tuple.String() + ": " + st.Insight.Insight.Feasibility.Verdict() + " (type insight for details)")
	case session.InsightFailed:
		if st.Failure != nil {
			r.Error(st.Failure.Message())
		}
	default:
		r.Muted("phase: " + st.Phase().String())
	}
}

func (sh *shell) options() error {
	st := sh.cc.Session.Snapshot()
	r := sh.cc.Renderer
	if err := renderStrings(r, "Sources", st.Options.Sources.Items); err != nil {
		return err
	}
	if err := renderStrings(r, "Periods", st.Options.Periods.Items); err != nil {
		return err
	}
	if st.Selection.Source != "" {
		if err := renderStrings(r, "Destinations", st.Options.Destinations.Items); err != nil {
			return err
		}
	}
	if st.Selection.Destination != "" {
		return renderModes(r, st.Options.Modes.Items)
	}
	return nil
}

func (sh *shell) upload(ctx context.Context, path string) {
	if err := renderIngest(sh.cc.Renderer, uploadFile(ctx, sh.cc.Session, path)); err != nil {
		sh.cc.Renderer.Error(err.Error())
	}
	sh.cc.Session.Wait()
}

func (sh *shell) completer() *readline.PrefixCompleter {
	dynamic := func(level string) readline.PrefixCompleterInterface {
		return readline.PcItemDynamic(func(string) []string {
			return allowedValues(sh.cc.Session.Snapshot(), level)
		})
	}
	levels := []readline.PrefixCompleterInterface{
		readline.PcItem("source"), readline.PcItem("dest"), readline.PcItem("mode"), readline.PcItem("period"),
	}
	return readline.NewPrefixCompleter(
		readline.PcItem("source", dynamic(session.LevelSource)),
		readline.PcItem("dest", dynamic(session.LevelDestination)),
		readline.PcItem("mode", dynamic(session.LevelMode)),
		readline.PcItem("period", dynamic(session.LevelPeriod)),
		readline.PcItem("clear", levels...),
		readline.PcItem("dismiss", readline.PcItem("validation"), readline.PcItem("error")),
		readline.PcItem("upload"),
		readline.PcItem("default"),
		readline.PcItem("status"),
		readline.PcItem("options"),
		readline.PcItem("insight"),
		readline.PcItem("reselect"),
		readline.PcItem("model"),
		readline.PcItem("history"),
		readline.PcItem("summary"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

func printShellHelp(w io.Writer) {
	help := `
Selection:
  source <id>       Select a source plant (clears everything below it)
  dest <id>         Select a destination for the current source
  mode <code>       Select a transport mode for the current route
  period <id>       Select a time period
  clear <level>     Clear source, dest, mode or period
  reselect          Fetch the current route insight again

Dataset:
  upload <file>     Upload a .xlsx, .xls or .csv dataset
  default           Load the service's bundled dataset

Display:
  status            Show the selection and request counters
  options           Show the cached options for each level
  insight           Show the full route insight
  model             Describe the optimization model
  history [n]       Show the last n journal entries (default 20)
  summary           Count journal entries by kind and outcome

Banners:
  dismiss validation|error

  quit / exit       Leave the shell
`
	_, _ = fmt.Fprintln(w, help)
}
