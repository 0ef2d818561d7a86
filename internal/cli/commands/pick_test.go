package commands

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/routelens/internal/session"
)

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyQuit  = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}
)

// press sends msg to m and, when it starts a choice, delivers the result
// the way the program loop would.
func press(t *testing.T, m pickModel, msg tea.KeyMsg) (pickModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(pickModel)
	if msg.Type != tea.KeyEnter || cmd == nil {
		return m, cmd
	}
	applied, ok := cmd().(pickAppliedMsg)
	require.True(t, ok, "enter should start a choice")
	next, cmd = m.Update(applied)
	return next.(pickModel), cmd
}

func itemIDs(m pickModel) []string {
	var ids []string
	for _, it := range m.list.Items() {
		ids = append(ids, it.(pickItem).id)
	}
	return ids
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestPickModel_WalksChain(t *testing.T) {
	cc, _ := newTestCommandContext(t, loadedService(t))
	m := newPickModel(cc)

	assert.Equal(t, []string{"IU1", "IU2"}, itemIDs(m))
	assert.Contains(t, m.View(), "Choose a source (1/4)")

	m, _ = press(t, m, keyDown)
	m, cmd := press(t, m, keyEnter)
	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.step)
	assert.Equal(t, []string{"GU7", "GU8"}, itemIDs(m))

	m, _ = press(t, m, keyEnter)
	assert.Equal(t, []string{"T1", "T2"}, itemIDs(m))
	assert.Equal(t, "T1 (Road)", m.list.Items()[0].(pickItem).title)

	m, _ = press(t, m, keyDown)
	m, _ = press(t, m, keyEnter)
	assert.Equal(t, []string{"2024-Q1"}, itemIDs(m))

	m, cmd = press(t, m, keyEnter)
	assert.True(t, m.done)
	assert.True(t, isQuit(cmd))
	assert.Empty(t, m.View())

	st := cc.Session.Snapshot()
	require.Equal(t, session.InsightReady, st.Insight.Status)
	assert.Equal(t, "IU2 -> GU7 via T2 @ 2024-Q1", st.Insight.Tuple.String())
}

func TestPickModel_EscGoesBack(t *testing.T) {
	cc, _ := newTestCommandContext(t, loadedService(t))
	m := newPickModel(cc)

	m, _ = press(t, m, keyEnter)
	require.Equal(t, 1, m.step)

	m, cmd := press(t, m, keyEsc)
	assert.Nil(t, cmd)
	assert.Equal(t, 0, m.step)
	assert.Equal(t, []string{"IU1", "IU2"}, itemIDs(m))

	_, cmd = press(t, m, keyEsc)
	assert.True(t, isQuit(cmd), "esc on the first level quits")
}

func TestPickModel_QuitAndLoading(t *testing.T) {
	cc, _ := newTestCommandContext(t, loadedService(t))
	m := newPickModel(cc)

	m.loading = true
	next, cmd := m.Update(keyQuit)
	assert.Nil(t, cmd, "keys other than ctrl+c wait for the choice to settle")
	assert.Contains(t, next.(pickModel).View(), "Loading source")

	m.loading = false
	_, cmd = m.Update(keyQuit)
	assert.True(t, isQuit(cmd))
	assert.False(t, m.done)
}

func TestPickModel_FailedChoiceQuits(t *testing.T) {
	cc, _ := newTestCommandContext(t, loadedService(t))
	m := newPickModel(cc)

	next, cmd := m.Update(pickAppliedMsg{err: assert.AnError})
	m = next.(pickModel)
	assert.True(t, isQuit(cmd))
	assert.ErrorIs(t, m.err, assert.AnError)
	assert.Contains(t, m.View(), assert.AnError.Error())
}
