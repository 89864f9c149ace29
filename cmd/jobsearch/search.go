package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobsearch/internal/model"
)

var (
	searchSkills []string
	searchQuery  string
	searchResume string
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one search and print the ranked results",
	Long: "Builds a query from --skills (or uses --query verbatim), searches every " +
		"configured provider, and prints the merged, ranked results.",
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringSliceVarP(&searchSkills, "skills", "s", nil, "comma-separated skills, e.g. go,kubernetes")
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "free-text query; overrides skills for the search phrase")
	searchCmd.Flags().StringVarP(&searchResume, "resume", "r", "", "path to a plain-text resume used for relevance scoring")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print the raw JSON response")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	// Logs go to stderr so --json output stays machine-readable.
	logger := newLogger(os.Stderr, debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	req := model.SearchRequest{Skills: searchSkills, Query: searchQuery}
	if searchResume != "" {
		if req.ResumeText, err = readResume(searchResume); err != nil {
			logger.Error("failed to read resume", "error", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := buildPipeline(ctx, cfg, nil, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}
	defer p.Close()

	resp, err := p.svc.Search(ctx, req)
	if err != nil {
		return err
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	printJobs(resp)
	return nil
}

func printJobs(resp model.SearchResponse) {
	if len(resp.Jobs) == 0 {
		fmt.Println(resp.Error)
		return
	}

	fmt.Printf("%-5s %-40s %-25s %-20s %s\n", "Score", "Title", "Company", "Location", "Source")
	fmt.Println(strings.Repeat("─", 110))
	for _, j := range resp.Jobs {
		score := "-"
		if j.MatchScore != nil {
			score = strconv.Itoa(*j.MatchScore)
		}
		fmt.Printf("%-5s %-40s %-25s %-20s %s\n", score, truncate(j.Title, 40), truncate(j.Company, 25), truncate(j.Location, 20), j.Source)
		if j.URL != model.NoURL {
			fmt.Printf("      %s\n", j.URL)
		}
	}
	fmt.Printf("\nTotal: %d jobs\n", len(resp.Jobs))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
