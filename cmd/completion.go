package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// completionCmd represents the completion command
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for logpost.

The completion command allows you to generate shell completion scripts for
bash, zsh, fish, and powershell. This enables tab-completion for commands,
flags, and arguments in your shell.

Usage:
  logpost completion bash       Generate bash completion script
  logpost completion zsh        Generate zsh completion script
  logpost completion fish       Generate fish completion script
  logpost completion powershell Generate powershell completion script

Installation Instructions:

Bash:
  # Load completion temporarily (current session only):
  source <(logpost completion bash)

  # Install completion permanently:
  # Linux:
  logpost completion bash > ~/.local/share/bash-completion/completions/logpost

  # macOS (requires bash-completion from Homebrew):
  logpost completion bash > $(brew --prefix)/etc/bash_completion.d/logpost

Zsh:
  # Load completion temporarily (current session only):
  source <(logpost completion zsh)

  # Install completion permanently:
  # Add to ~/.zshrc:
  echo 'fpath=(~/.zsh/completion $fpath)' >> ~/.zshrc
  echo 'autoload -Uz compinit && compinit' >> ~/.zshrc

  # Generate completion file:
  mkdir -p ~/.zsh/completion
  logpost completion zsh > ~/.zsh/completion/_logpost

  # Then restart your shell

Fish:
  # Install completion permanently:
  logpost completion fish > ~/.config/fish/completions/logpost.fish

PowerShell:
  # Open your PowerShell profile:
  notepad $PROFILE

  # Add this line to your profile:
  logpost completion powershell | Out-String | Invoke-Expression

  # Save and restart PowerShell`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.ExactValidArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		generateCompletion(args[0])
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// generateCompletion generates the appropriate completion script based on shell type
func generateCompletion(shell string) {
	var err error

	switch shell {
	case "bash":
		err = rootCmd.GenBashCompletion(deps.Stdout)
	case "zsh":
		err = rootCmd.GenZshCompletion(deps.Stdout)
	case "fish":
		err = rootCmd.GenFishCompletion(deps.Stdout, true)
	case "powershell":
		err = rootCmd.GenPowerShellCompletionWithDesc(deps.Stdout)
	default:
		fail(fmt.Sprintf("Unsupported shell '%s'", shell), nil, "Supported shells: bash, zsh, fish, powershell")
		return
	}

	if err != nil {
		fail(fmt.Sprintf("Failed to generate %s completion", shell), err, "")
		return
	}
}
