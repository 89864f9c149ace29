package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent search runs from the run log",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "number of runs to show")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	recorder, closeRecorder, err := openRunLog(ctx, cfg, nil)
	if err != nil {
		return err
	}
	if recorder == nil {
		fmt.Println("Run log is disabled (runlog.driver: none).")
		return nil
	}
	if closeRecorder != nil {
		defer closeRecorder()
	}

	runs, err := recorder.RecentRuns(ctx, runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Printf("%-20s %-9s %-30s %-9s %-8s %-6s %s\n", "Started", "Took", "Query", "Collected", "Returned", "Scored", "Failed providers")
	fmt.Println(strings.Repeat("─", 110))
	for _, r := range runs {
		var failed []string
		for _, st := range r.Stats {
			if st.ErrorMessage != "" {
				failed = append(failed, st.Name)
			}
		}
		scored := "no"
		if r.Scored {
			scored = "yes"
		}
		fmt.Printf("%-20s %-9s %-30s %-9d %-8d %-6s %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Duration.Round(10*time.Millisecond),
			truncate(r.Query, 30),
			r.Collected, r.Returned, scored,
			strings.Join(failed, ", "),
		)
	}
	return nil
}
