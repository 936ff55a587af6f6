package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/answerhub/qa-service/internal/config"
	"github.com/answerhub/qa-service/internal/demo"
	"github.com/answerhub/qa-service/internal/logger"
	"github.com/answerhub/qa-service/internal/mirror"
	"github.com/answerhub/qa-service/internal/responses"
	"github.com/answerhub/qa-service/internal/services"
	"github.com/answerhub/qa-service/internal/store"
	"github.com/answerhub/qa-service/internal/store/postgres"
	"github.com/answerhub/qa-service/internal/store/sqlite"
)

// seed writes demo data straight into the stores, so it needs the service's
// environment configuration rather than its HTTP endpoint.
func init() {
	var eventsPerDay int
	var days int
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate demo users and events directly in both stores",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New("qactl-seed")

			cfg, err := config.New()
			if err != nil {
				return err
			}

			var st store.Store
			switch cfg.DBDriver {
			case "sqlite":
				st, err = sqlite.New(cfg.SQLitePath)
			case "postgres":
				st, err = postgres.Open(cfg.PostgresDSN)
			default:
				err = fmt.Errorf("unsupported DB driver: %s", cfg.DBDriver)
			}
			if err != nil {
				return err
			}
			defer st.Close()

			mir, err := mirror.New(cfg.DataDir, log)
			if err != nil {
				return err
			}
			answers := responses.NewFileProvider(cfg.ResponsesPath, log)

			genCfg := demo.DefaultConfig()
			if eventsPerDay > 0 {
				genCfg.EventsPerDay = eventsPerDay
			}
			if days > 0 && days < len(genCfg.Dates) {
				genCfg.Dates = genCfg.Dates[:days]
			}

			ctx := context.Background()
			gen := demo.New(st, mir, answers, log, genCfg)
			summary, err := gen.Run(ctx)
			if err != nil {
				return err
			}

			// Rewrite the mirror from the primary store so both sides agree
			svc := services.New(st, mir, answers, log, 0)
			if _, err := svc.BackupToMirror(ctx); err != nil {
				return err
			}

			out, _ := json.MarshalIndent(summary, "", "  ")
			_, _ = fmt.Fprintln(os.Stdout, string(out))
			return nil
		},
	}
	seedCmd.Flags().IntVar(&eventsPerDay, "events-per-day", 0, "Events per user per day (default 100)")
	seedCmd.Flags().IntVar(&days, "days", 0, "Number of demo days to generate (default 3)")
	rootCmd.AddCommand(seedCmd)
}
