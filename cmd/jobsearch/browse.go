package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobsearch/internal/browse"
	"github.com/amishk599/jobsearch/internal/config"
	"github.com/amishk599/jobsearch/internal/model"
	"github.com/amishk599/jobsearch/internal/search"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse search results interactively (TUI)",
	Long: "With --skills or --query, runs that search; otherwise shows a picker " +
		"over watch.searches. Results open in a split-pane viewer.",
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringSliceVarP(&searchSkills, "skills", "s", nil, "comma-separated skills")
	browseCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "free-text query")
	browseCmd.Flags().StringVarP(&searchResume, "resume", "r", "", "path to a plain-text resume used for relevance scoring")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Any log output while the TUI owns the terminal corrupts the display.
	silentLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	p, err := buildPipeline(context.Background(), cfg, nil, silentLogger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build pipeline: %v\n", err)
		os.Exit(1)
	}
	defer p.Close()

	if len(searchSkills) > 0 || searchQuery != "" {
		s := config.SavedSearch{Name: "search", Skills: searchSkills, Query: searchQuery, ResumeFile: searchResume}
		_, err := browseOne(p.svc, s)
		return err
	}

	if len(cfg.Watch.Searches) == 0 {
		fmt.Println("No saved searches in config. Pass --skills or --query.")
		return nil
	}

	for {
		choice, err := browse.RunSearchPicker(cfg.Watch.Searches)
		if err != nil {
			return fmt.Errorf("picker: %w", err)
		}
		if choice < 0 {
			return nil
		}
		wantQuit, err := browseOne(p.svc, cfg.Watch.Searches[choice])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
		}
		if wantQuit {
			return nil
		}
		// else: back to the picker
	}
}

func browseOne(svc *search.Service, s config.SavedSearch) (bool, error) {
	req, err := buildRequest(s)
	if err != nil {
		return false, err
	}

	label := s.Query
	if label == "" {
		label = strings.Join(s.Skills, ", ")
	}
	resp, err := browse.RunLoader(label, func(ctx context.Context) (model.SearchResponse, error) {
		return svc.Search(ctx, req)
	})
	if err != nil {
		return false, err
	}
	return browse.RunBrowser(resp)
}
