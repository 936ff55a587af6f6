package main

import (
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

var (
	apiFlag string
	rootCmd = &cobra.Command{
		Use:   "qactl",
		Short: "CLI client for the Q&A service REST API",
	}
)

func newClient() *resty.Client {
	return resty.New().SetBaseURL(apiFlag)
}

// printBody writes the raw response body, or returns an error for non-2xx replies.
func printBody(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	_, _ = fmt.Fprintln(os.Stdout, resp.String())
	return nil
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Q&A service base URL")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
