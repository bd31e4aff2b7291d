package cli

import (
	"io"
	"testing"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := map[string]bool{
		"serve":      false,
		"resolve":    false,
		"diagram":    false,
		"inspect":    false,
		"completion": false,
	}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestSetLogLevel(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.SetLogLevel(LogDebug)

	if got := c.Logger.GetLevel(); got != LogDebug {
		t.Errorf("level = %v, want debug", got)
	}
}

func TestDefaultOutputName(t *testing.T) {
	tests := []struct {
		path   string
		format string
		want   string
	}{
		{"/about-us", "svg", "about-us.svg"},
		{"/about-us/", "png", "about-us.png"},
		{"/docs/getting-started", "dot", "docs-getting-started.dot"},
		{"/", "svg", "root.svg"},
		{"", "svg", "root.svg"},
	}

	for _, tt := range tests {
		if got := defaultOutputName(tt.path, tt.format); got != tt.want {
			t.Errorf("defaultOutputName(%q, %q) = %q, want %q", tt.path, tt.format, got, tt.want)
		}
	}
}
