package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tribunal/internal/tools"
)

// casesCmd lists the user's cases without entering the chat UI.
var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "List the cases filed by the configured address",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(workspace)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.registry.Execute(cmd.Context(), "get_user_cases", map[string]interface{}{})
		if err != nil {
			return err
		}
		fmt.Println(tools.Format(result.ToolName, result.Value))
		return nil
	},
}

// askCmd runs one assistant command headlessly.
var askCmd = &cobra.Command{
	Use:   "ask [message...]",
	Short: "Send a single message to the assistant and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(workspace)
		if err != nil {
			return err
		}
		defer a.Close()

		text := strings.Join(args, " ")
		if err := a.store.AppendChat(cmd.Context(), "user", text); err != nil {
			return err
		}
		reply, err := a.assistant.HandleCommand(cmd.Context(), text)
		if err != nil {
			return err
		}
		if err := a.store.AppendChat(cmd.Context(), "assistant", reply); err != nil {
			return err
		}
		fmt.Println(reply)
		return nil
	},
}
