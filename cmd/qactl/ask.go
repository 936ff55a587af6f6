package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	var username, question, sessionID string
	askCmd := &cobra.Command{
		Use:   "ask",
		Short: "Submit a question and print the answer",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || question == "" {
				return fmt.Errorf("--user and --question required")
			}
			payload := map[string]interface{}{
				"username": username,
				"question": question,
			}
			if sessionID != "" {
				payload["session_id"] = sessionID
			}
			resp, err := newClient().R().
				SetHeader("Content-Type", "application/json").
				SetBody(payload).
				Post("/ask")
			return printBody(resp, err)
		},
	}
	askCmd.Flags().StringVarP(&username, "user", "u", "", "Username (required)")
	askCmd.Flags().StringVarP(&question, "question", "q", "", "Question text (required)")
	askCmd.Flags().StringVarP(&sessionID, "session", "s", "", "Session ID (optional, server generates one if omitted)")
	_ = askCmd.MarkFlagRequired("user")
	_ = askCmd.MarkFlagRequired("question")
	rootCmd.AddCommand(askCmd)
}
