package cmd

import (
	"github.com/spf13/cobra"
)

var listAll bool

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List logged tasks",
	Long: `List the tasks that the next daily post will include.

Examples:
  logpost list          Tasks logged today
  logpost list --all    Every task still in the store, including older days`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		listEntries(listAll)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "List every stored task")
}
