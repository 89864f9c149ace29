package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the providers a search would query",
	Long:  "Reads the config and prints the providers in registration order with their scheduling mode.",
	RunE:  runProviders,
}

func init() {
	rootCmd.AddCommand(providersCmd)
}

func runProviders(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	sources := buildSources(cfg, http.DefaultClient, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	fmt.Printf("%-28s %s\n", "Provider", "Mode")
	fmt.Println(strings.Repeat("─", 42))
	for _, s := range sources {
		mode := "sequential"
		if s.Concurrent {
			mode = "concurrent"
		}
		fmt.Printf("%-28s %s\n", s.Fetcher.Name(), mode)
	}

	var notes []string
	if !cfg.Providers.Metasearch.Configured() {
		notes = append(notes, "metasearch: set METASEARCH_API_KEY to enable (engines default to linkedin, indeed, glassdoor, ziprecruiter)")
	}
	if !cfg.Providers.Adzuna.Configured() {
		notes = append(notes, "adzuna: set ADZUNA_APP_ID and ADZUNA_APP_KEY to enable")
	}
	cache := "off"
	if cfg.Cache.RedisURL != "" {
		cache = "redis, ttl " + cfg.Cache.TTL.String()
	}
	ai := "off"
	if cfg.AI.Enabled {
		ai = cfg.AI.Provider
	}

	fmt.Printf("\nTotal: %d providers | cache: %s | ai: %s\n", len(sources), cache, ai)
	for _, n := range notes {
		fmt.Println("  " + n)
	}
	return nil
}
