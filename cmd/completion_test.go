package cmd

import (
	"strings"
	"testing"
)

func TestGenerateCompletion(t *testing.T) {
	tests := []struct {
		shell  string
		marker string
	}{
		{"bash", "bash completion"},
		{"zsh", "#compdef logpost"},
		{"fish", "complete -c logpost"},
		{"powershell", "Register-ArgumentCompleter"},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			env := testDeps(t)

			generateCompletion(tt.shell)

			if env.stderr.Len() != 0 {
				t.Errorf("Expected no errors, got: %s", env.stderr.String())
			}
			if !strings.Contains(env.stdout.String(), tt.marker) {
				t.Errorf("Expected %s completion script to contain %q", tt.shell, tt.marker)
			}
		})
	}
}

func TestGenerateCompletion_InvalidShell(t *testing.T) {
	tests := []string{"", "tcsh", "BASH", "bash ", "zsh\n"}

	for _, shell := range tests {
		t.Run(shell, func(t *testing.T) {
			env := testDeps(t)

			generateCompletion(shell)

			if env.exitCode != 1 {
				t.Errorf("exit code = %d, expected 1", env.exitCode)
			}
			if env.stdout.Len() != 0 {
				t.Errorf("Expected no output for invalid shell, got %d bytes", env.stdout.Len())
			}
			stderr := env.stderr.String()
			if !strings.Contains(stderr, "Error: Unsupported shell") || !strings.Contains(stderr, "Hint: Supported shells") {
				t.Errorf("unexpected stderr: %s", stderr)
			}
		})
	}
}

func TestCompletionCmd_ValidArgs(t *testing.T) {
	expected := []string{"bash", "zsh", "fish", "powershell"}
	if len(completionCmd.ValidArgs) != len(expected) {
		t.Fatalf("ValidArgs = %v, expected %v", completionCmd.ValidArgs, expected)
	}
	for i, arg := range expected {
		if completionCmd.ValidArgs[i] != arg {
			t.Errorf("ValidArgs[%d] = %q, expected %q", i, completionCmd.ValidArgs[i], arg)
		}
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	want := []string{"completion", "config", "list", "post", "restore", "schedule", "tui", "validate"}
	for _, name := range want {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command has no %q subcommand", name)
		}
	}
}
