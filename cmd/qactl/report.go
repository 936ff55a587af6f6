package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/answerhub/qa-service/internal/config"
	"github.com/answerhub/qa-service/internal/logger"
	"github.com/answerhub/qa-service/internal/mirror"
	"github.com/answerhub/qa-service/internal/model"
)

// report commands analyze the JSON mirror offline, without the service running.
func init() {
	reportCmd := &cobra.Command{Use: "report", Short: "Offline reports from the JSON mirror"}

	var csvPath string
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "List all mirrored users",
		RunE: func(cmd *cobra.Command, args []string) error {
			mir, err := openMirror()
			if err != nil {
				return err
			}
			users, err := mir.ListUsers()
			if err != nil {
				return err
			}
			if len(users) == 0 {
				fmt.Println("no users found")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "USERNAME\tQUESTIONS\tFIRST SEEN\tLAST SEEN")
			for _, u := range users {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n",
					u.Username, u.TotalQuestions,
					u.FirstSeen.Format("2006-01-02 15:04:05"),
					u.LastSeen.Format("2006-01-02 15:04:05"))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Printf("total users: %d\n", len(users))

			if csvPath != "" {
				return writeUsersCSV(csvPath, users)
			}
			return nil
		},
	}
	usersCmd.Flags().StringVar(&csvPath, "csv", "", "Also export the user list to a CSV file")
	reportCmd.AddCommand(usersCmd)

	questionsCmd := &cobra.Command{
		Use:   "questions",
		Short: "Question counts per user across all mirrored dates",
		RunE: func(cmd *cobra.Command, args []string) error {
			mir, err := openMirror()
			if err != nil {
				return err
			}
			dates, err := mir.AvailableDates()
			if err != nil {
				return err
			}
			if len(dates) == 0 {
				fmt.Println("no event data found")
				return nil
			}

			counts := make(map[string]int)
			total := 0
			for _, date := range dates {
				events, err := mir.EventsOnDate(date)
				if err != nil {
					return err
				}
				for _, e := range events {
					counts[e.Username]++
					total++
				}
			}

			type row struct {
				username string
				count    int
			}
			rows := make([]row, 0, len(counts))
			for u, c := range counts {
				rows = append(rows, row{u, c})
			}
			sort.Slice(rows, func(i, j int) bool {
				if rows[i].count != rows[j].count {
					return rows[i].count > rows[j].count
				}
				return rows[i].username < rows[j].username
			})

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "USERNAME\tQUESTIONS")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%d\n", r.username, r.count)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Printf("dates: %d, total events: %d\n", len(dates), total)
			return nil
		},
	}
	reportCmd.AddCommand(questionsCmd)

	rootCmd.AddCommand(reportCmd)
}

func openMirror() (*mirror.Mirror, error) {
	log := logger.New("qactl-report")
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	return mirror.New(cfg.DataDir, log)
}

func writeUsersCSV(path string, users []*model.User) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"username", "total_questions", "first_seen", "last_seen", "created_at", "updated_at"}); err != nil {
		return err
	}
	for _, u := range users {
		rec := []string{
			u.Username,
			strconv.FormatInt(u.TotalQuestions, 10),
			u.FirstSeen.Format("2006-01-02 15:04:05"),
			u.LastSeen.Format("2006-01-02 15:04:05"),
			u.CreatedAt.Format("2006-01-02 15:04:05"),
			u.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
