package commands

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/routelens/internal/field"
	"github.com/leapstack-labs/routelens/internal/session"
)

// NewPickCommand creates the pick command.
func NewPickCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pick",
		Short: "Pick a route from interactive lists",
		Long: `Walk the selection chain in a full-screen list picker.

Choose a source, then a destination, a transport mode and a period. Type /
to filter a list, esc to go back a level and q to quit. The route insight
summary is printed once all four levels are chosen.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			st := cc.loadOptions()
			if st.Failure != nil {
				return st.Failure
			}

			p := tea.NewProgram(newPickModel(cc),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
				tea.WithAltScreen(),
			)
			final, err := p.Run()
			if err != nil {
				return fmt.Errorf("picker failed: %w", err)
			}

			m := final.(pickModel)
			if m.err != nil {
				return m.err
			}
			if !m.done {
				cc.Renderer.Muted("No route picked")
				return nil
			}
			return renderInsight(cc.Renderer, cc.Session.Snapshot())
		},
	}
}

var pickLevels = []string{
	session.LevelSource,
	session.LevelDestination,
	session.LevelMode,
	session.LevelPeriod,
}

var (
	pickTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFDF5")).Background(lipgloss.Color("#25A065")).Padding(0, 1)
	pickStatusStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#626262", Dark: "#A0A0A0"})
	pickErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
)

// pickItem is one option in the picker list.
type pickItem struct {
	id    string
	title string
	desc  string
}

func (i pickItem) Title() string       { return i.title }
func (i pickItem) Description() string { return i.desc }
func (i pickItem) FilterValue() string { return i.title }

// pickAppliedMsg reports that a choice has been applied and every fetch it
// triggered has settled.
type pickAppliedMsg struct {
	err error
}

type pickModel struct {
	cc      *CommandContext
	step    int
	list    list.Model
	width   int
	height  int
	loading bool
	done    bool
	err     error
}

func newPickModel(cc *CommandContext) pickModel {
	m := pickModel{cc: cc, width: 60, height: 20}
	m.list = m.newList()
	return m
}

// pickItems builds the list items for level from the current snapshot.
func pickItems(st session.State, level string) []list.Item {
	if level == session.LevelMode {
		items := make([]list.Item, 0, st.Options.Modes.Len())
		for _, md := range st.Options.Modes.Items {
			desc := "Vehicle capacity: " + field.Render(md.VehicleCapacity, " tons")
			items = append(items, pickItem{id: md.Code, title: md.Label(), desc: desc})
		}
		return items
	}
	values := allowedValues(st, level)
	items := make([]list.Item, 0, len(values))
	for _, v := range values {
		items = append(items, pickItem{id: v, title: v})
	}
	return items
}

func (m pickModel) level() string { return pickLevels[m.step] }

func (m pickModel) newList() list.Model {
	level := m.level()
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = level == session.LevelMode

	l := list.New(pickItems(m.cc.Session.Snapshot(), level), delegate, m.width, m.height)
	l.Title = fmt.Sprintf("Choose a %s (%d/%d)", level, m.step+1, len(pickLevels))
	l.Styles.Title = pickTitleStyle
	l.SetShowStatusBar(true)
	return l
}

func (m pickModel) Init() tea.Cmd {
	return nil
}

func (m pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height-1
		m.list.SetSize(m.width, m.height)
		return m, nil

	case pickAppliedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		if st := m.cc.Session.Snapshot(); st.Failure != nil {
			m.err = st.Failure
			return m, tea.Quit
		}
		if m.step == len(pickLevels)-1 {
			m.done = true
			return m, tea.Quit
		}
		m.step++
		m.list = m.newList()
		if len(m.list.Items()) == 0 {
			m.err = fmt.Errorf("no %s options are available for this selection", m.level())
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		if m.loading && msg.String() != "ctrl+c" {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			if m.list.FilterState() == list.FilterApplied {
				break
			}
			if m.step == 0 {
				return m, tea.Quit
			}
			m.step--
			m.list = m.newList()
			return m, nil
		case "enter":
			item, ok := m.list.SelectedItem().(pickItem)
			if !ok {
				return m, nil
			}
			m.loading = true
			return m, m.apply(m.level(), item.id)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// apply runs the choice off the UI loop; choose blocks until the session
// has settled.
func (m pickModel) apply(level, id string) tea.Cmd {
	cc := m.cc
	return func() tea.Msg {
		return pickAppliedMsg{err: cc.choose(level, id)}
	}
}

func (m pickModel) View() string {
	if m.done {
		return ""
	}
	view := m.list.View()
	switch {
	case m.err != nil:
		view += "\n" + pickErrorStyle.Render(m.err.Error())
	case m.loading:
		view += "\n" + pickStatusStyle.Render("Loading "+m.level()+"...")
	}
	return view
}
