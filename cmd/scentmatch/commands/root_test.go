// ABOUTME: Tests for root CLI command and global flags
// ABOUTME: Verifies command structure, subcommands, and flag handling
package commands

import (
	"testing"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	if cmd.Use != "scentmatch" {
		t.Errorf("Use = %q, want %q", cmd.Use, "scentmatch")
	}
	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}
	if cmd.Long == "" {
		t.Error("Long description should not be empty")
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	want := []string{"embed", "search", "stats", "version"}
	for _, name := range want {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRootCmd_GlobalFlags(t *testing.T) {
	cmd := NewRootCmd()

	format := cmd.PersistentFlags().Lookup("format")
	if format == nil {
		t.Fatal("--format flag not registered")
	}
	if format.DefValue != "text" {
		t.Errorf("--format default = %q, want text", format.DefValue)
	}

	q := cmd.PersistentFlags().Lookup("quiet")
	if q == nil {
		t.Fatal("--quiet flag not registered")
	}
	if q.Shorthand != "q" {
		t.Errorf("--quiet shorthand = %q, want q", q.Shorthand)
	}
}
