package output

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func newTest(mode OutputMode, tty bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	return NewRendererWithTTY(out, errOut, tty, mode), out, errOut
}

func TestMode(t *testing.T) {
	tests := []struct {
		in   string
		want OutputMode
	}{
		{"", ModeAuto},
		{"auto", ModeAuto},
		{"TEXT", ModeText},
		{"md", ModeMarkdown},
		{"markdown", ModeMarkdown},
		{"json", ModeJSON},
		{"yml", ModeYAML},
		{"xml", ModeAuto},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Mode(tt.in))
		})
	}
	assert.False(t, Valid("xml"))
	assert.True(t, Valid("YAML"))
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		name string
		mode OutputMode
		tty  bool
		want OutputMode
	}{
		{"auto on terminal", ModeAuto, true, ModeText},
		{"auto piped", ModeAuto, false, ModeMarkdown},
		{"explicit json", ModeJSON, true, ModeJSON},
		{"explicit text piped", ModeText, false, ModeText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTest(tt.mode, tt.tty)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestNewRenderer_BufferIsNotTerminal(t *testing.T) {
	r := NewRenderer(new(bytes.Buffer), new(bytes.Buffer), ModeAuto)
	assert.False(t, r.IsTTY())
	assert.Equal(t, ModeMarkdown, r.EffectiveMode())
}

func TestMarkdownOutput(t *testing.T) {
	r, out, errOut := newTest(ModeMarkdown, false)

	r.Header(1, "Route")
	r.KeyValue("Source", "IU1")
	r.StatusLine("service", "success", "ok")
	r.Table([]string{"Label", "Value"}, [][]string{{"Status", "Infeasible"}})
	r.Warning("careful")

	got := out.String()
	assert.Contains(t, got, "# Route")
	assert.Contains(t, got, "**Source:** IU1")
	assert.Contains(t, got, "- **service**: success (ok)")
	assert.Contains(t, got, "| Status | Infeasible |")
	assert.Contains(t, errOut.String(), "careful")
	assert.False(t, ansi.MatchString(got+errOut.String()))
}

func TestTextOutputWithoutTerminalHasNoEscapes(t *testing.T) {
	r, out, _ := newTest(ModeText, false)

	r.Header(2, "Options")
	r.Success("loaded")
	r.Table([]string{"Code"}, [][]string{{"T1"}, {"T2"}})

	got := out.String()
	assert.Contains(t, got, "Options")
	assert.Contains(t, got, "✓ loaded")
	assert.Contains(t, got, "T2")
	assert.False(t, ansi.MatchString(got))
}

func TestEmptyTableAndList(t *testing.T) {
	r, out, _ := newTest(ModeText, false)
	r.Table([]string{"A"}, nil)
	r.List(nil)
	assert.Equal(t, "(none)\n(none)\n", out.String())
}

func TestData(t *testing.T) {
	payload := map[string]any{"source": "IU1", "count": 2}

	tests := []struct {
		name    string
		mode    OutputMode
		handled bool
		want    string
	}{
		{"json", ModeJSON, true, `"source": "IU1"`},
		{"yaml", ModeYAML, true, "source: IU1"},
		{"text", ModeText, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, out, _ := newTest(tt.mode, false)
			handled, err := r.Data(payload)
			require.NoError(t, err)
			assert.Equal(t, tt.handled, handled)
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "## Title", FormatHeader(2, "Title"))
	assert.Equal(t, "# Title", FormatHeader(0, "Title"))
	assert.Equal(t, "**Key:** v", FormatKeyValue("Key", "v"))
}
