package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/routelens/internal/session"
)

func TestShellExec_SelectionChain(t *testing.T) {
	cc, tr := newTestCommandContext(t, loadedService(t))
	sh := &shell{cc: cc}
	ctx := context.Background()

	steps := []struct {
		line    string
		wantOut string
	}{
		{"source IU2", "source chosen"},
		{"dest GU7", "destination chosen"},
		{"period 2024-Q1", "destination chosen"},
		{"mode T2", "IU2 -> GU7 via T2 @ 2024-Q1: Feasible"},
	}
	for _, step := range steps {
		tr.Reset()
		quit, err := sh.exec(ctx, step.line)
		require.NoError(t, err, step.line)
		assert.False(t, quit)
		assert.Contains(t, tr.Output(), step.wantOut, step.line)
	}

	tr.Reset()
	_, err := sh.exec(ctx, "insight")
	require.NoError(t, err)
	assert.Contains(t, tr.Output(), "# Route insight: IU2 -> GU7 via T2 @ 2024-Q1")

	tr.Reset()
	_, err = sh.exec(ctx, "status")
	require.NoError(t, err)
	assert.Contains(t, tr.Output(), "route ready")
	assert.Contains(t, tr.Output(), "1 issued, 1 applied")

	tr.Reset()
	_, err = sh.exec(ctx, "history 5")
	require.NoError(t, err)
	assert.Contains(t, tr.Output(), "Route")

	tr.Reset()
	_, err = sh.exec(ctx, "summary")
	require.NoError(t, err)
	assert.Contains(t, tr.Output(), "route")

	_, err = sh.exec(ctx, "clear dest")
	require.NoError(t, err)
	cc.Session.Wait()
	st := cc.Session.Snapshot()
	assert.Equal(t, "IU2", st.Selection.Source)
	assert.Empty(t, st.Selection.Destination)
	assert.Empty(t, st.Selection.Mode)
	assert.Equal(t, session.InsightIdle, st.Insight.Status)
}

func TestShellExec_Errors(t *testing.T) {
	cc, _ := newTestCommandContext(t, loadedService(t))
	sh := &shell{cc: cc}

	tests := []struct {
		line    string
		wantErr string
	}{
		{"frobnicate", "unknown command: frobnicate"},
		{"source", "usage: source <value>"},
		{"source IU9", `source "IU9" is not one of: IU1, IU2`},
		{"dest GU5", "no destination options are available"},
		{"clear vehicle", `unknown level "vehicle"`},
		{"history abc", `history: "abc" is not a positive number`},
		{"dismiss banner", `nothing called "banner" to dismiss`},
		{"upload", "usage: upload <file>"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			quit, err := sh.exec(context.Background(), tt.line)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.False(t, quit)
		})
	}
}

func TestShellExec_ControlLines(t *testing.T) {
	cc, tr := newTestCommandContext(t, loadedService(t))
	sh := &shell{cc: cc}
	ctx := context.Background()

	quit, err := sh.exec(ctx, "   ")
	require.NoError(t, err)
	assert.False(t, quit)

	_, err = sh.exec(ctx, "help")
	require.NoError(t, err)
	assert.Contains(t, tr.Output(), "dismiss validation|error")

	_, err = sh.exec(ctx, "dismiss error")
	require.NoError(t, err)

	for _, line := range []string{"quit", "EXIT"} {
		quit, err := sh.exec(ctx, line)
		require.NoError(t, err)
		assert.True(t, quit, line)
	}
}

func TestShellExec_Default(t *testing.T) {
	fs := loadedService(t)
	cc, tr := newTestCommandContext(t, fs)
	sh := &shell{cc: cc}

	_, err := sh.exec(context.Background(), "default")
	require.NoError(t, err)
	assert.Contains(t, tr.Output(), "Dataset loaded")
	assert.Equal(t, 1, fs.Calls("load-default"))
}
