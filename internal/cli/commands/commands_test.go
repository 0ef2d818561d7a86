package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRouteCommand(t *testing.T) {
	cmd := NewRouteCommand()

	assert.Equal(t, "route", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	for _, flag := range []string{"source", "destination", "mode", "period"} {
		f := cmd.Flags().Lookup(flag)
		if assert.NotNil(t, f, "flag %q should exist", flag) {
			assert.Equal(t, flag[:1], f.Shorthand)
		}
	}
}

func TestNewOptionsCommand(t *testing.T) {
	cmd := NewOptionsCommand()

	assert.Equal(t, "options", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"sources", "periods", "destinations", "modes"}, names)
}

func TestNewAnalyticsCommand(t *testing.T) {
	cmd := NewAnalyticsCommand()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
		assert.NotEmpty(t, sub.Short, "%s should have a Short", sub.Name())
	}
	assert.ElementsMatch(t, []string{"demand", "capacity", "routes", "inventory"}, names)
}

func TestNewUploadCommand(t *testing.T) {
	cmd := NewUploadCommand()

	assert.Equal(t, "upload <file>", cmd.Use)
	assert.Contains(t, cmd.Long, ".xlsx")
	assert.Contains(t, cmd.Long, ".csv")
}

func TestNewShellCommand(t *testing.T) {
	cmd := NewShellCommand()

	assert.Equal(t, "shell", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("watch"), "flag watch should exist")
}

func TestNewUICommand(t *testing.T) {
	cmd := NewUICommand()

	assert.Equal(t, "ui", cmd.Use)
	for _, flag := range []string{"port", "no-browser", "dev"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestSimpleCommandsMetadata(t *testing.T) {
	tests := []struct {
		name string
		use  string
		new  func() string
	}{
		{"load-default", "load-default", func() string { return NewLoadDefaultCommand().Use }},
		{"model", "model", func() string { return NewModelCommand().Use }},
		{"plant", "plant <code>", func() string { return NewPlantCommand().Use }},
		{"metadata", "metadata", func() string { return NewMetadataCommand().Use }},
		{"raw", "raw <sheet>", func() string { return NewRawCommand().Use }},
		{"doctor", "doctor", func() string { return NewDoctorCommand().Use }},
		{"pick", "pick", func() string { return NewPickCommand().Use }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.new())
		})
	}
}
