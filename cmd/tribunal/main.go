package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tribunal/cmd/tribunal/chat"
)

var (
	workspace   string
	userAddress string
)

var rootCmd = &cobra.Command{
	Use:   "tribunal",
	Short: "tribunal - LLM courtroom simulation over a case ledger",
	Long: `tribunal drives a scripted courtroom debate between three LLM agents
(judge, prosecution, defense) over cases tracked on an external ledger,
and exposes a conversational assistant that can file, inspect, and try
cases through a registry of tools.

Run without arguments to start the interactive chat interface.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(workspace)
		if err != nil {
			return err
		}
		defer a.Close()
		return chat.Run(chat.Deps{
			Assistant: a.assistant,
			Scheduler: a.scheduler,
			Registry:  a.registry,
			Cache:     a.cache,
			Sctx:      a.sctx,
			Store:     a.store,
			Ledger:    a.ledger,
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", ".", "Workspace directory")
	rootCmd.PersistentFlags().StringVarP(&userAddress, "address", "a", "", "User wallet address (or TRIBUNAL_USER_ADDRESS)")

	rootCmd.AddCommand(trialCmd)
	rootCmd.AddCommand(casesCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
