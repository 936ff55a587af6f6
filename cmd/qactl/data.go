package main

import (
	"github.com/spf13/cobra"
)

func init() {
	dataCmd := &cobra.Command{Use: "data", Short: "Dual-store maintenance operations"}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check consistency between the primary store and the JSON mirror",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Get("/data/validate")
			return printBody(resp, err)
		},
	}
	dataCmd.AddCommand(validateCmd)

	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Rewrite the JSON mirror from the primary store",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Post("/data/backup")
			return printBody(resp, err)
		},
	}
	dataCmd.AddCommand(backupCmd)

	rootCmd.AddCommand(dataCmd)
}
