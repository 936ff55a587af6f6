package main

import (
	"github.com/spf13/cobra"
)

func init() {
	analyticsCmd := &cobra.Command{
		Use:   "analytics",
		Short: "System-wide usage statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Get("/analytics")
			return printBody(resp, err)
		},
	}
	rootCmd.AddCommand(analyticsCmd)

	userCmd := &cobra.Command{
		Use:   "user USERNAME",
		Short: "Per-user analytics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().
				SetPathParam("username", args[0]).
				Get("/analytics/user/{username}")
			return printBody(resp, err)
		},
	}
	rootCmd.AddCommand(userCmd)

	exportCmd := &cobra.Command{
		Use:   "export USERNAME",
		Short: "Export a user's full history from both stores",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().
				SetPathParam("username", args[0]).
				Get("/export/user/{username}")
			return printBody(resp, err)
		},
	}
	rootCmd.AddCommand(exportCmd)
}
