package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv blanks the credential variables so tests do not depend on the
// developer's environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"METASEARCH_API_KEY", "METASEARCH_API_HOST", "ADZUNA_APP_ID",
		"ADZUNA_APP_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEST_RAPID_KEY", "rapid-secret")
	path := writeConfig(t, `
search:
  attempt_timeout: 10s
  result_limit: 20
providers:
  remotive:
    limit: 40
  metasearch:
    api_key: ${TEST_RAPID_KEY}
    engines: [linkedin, " indeed ", ""]
  adzuna:
    app_id: id
    app_key: key
    country: gb
watch:
  schedule: "@every 1h"
  searches:
    - name: go-berlin
      skills: [Go, Kubernetes]
  filters:
    exclude_keywords: [staff]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search.AttemptTimeout != 10*time.Second {
		t.Errorf("AttemptTimeout = %v, want 10s", cfg.Search.AttemptTimeout)
	}
	if cfg.Search.ResultLimit != 20 {
		t.Errorf("ResultLimit = %d, want 20", cfg.Search.ResultLimit)
	}
	if !cfg.Providers.Remotive.Enabled || cfg.Providers.Remotive.Limit != 40 {
		t.Errorf("Remotive = %+v", cfg.Providers.Remotive)
	}
	if cfg.Providers.Metasearch.APIKey != "rapid-secret" {
		t.Errorf("APIKey = %q, want expanded env var", cfg.Providers.Metasearch.APIKey)
	}
	if got := strings.Join(cfg.Providers.Metasearch.Engines, ","); got != "linkedin,indeed" {
		t.Errorf("Engines = %q", got)
	}
	if !cfg.Providers.Metasearch.Configured() || !cfg.Providers.Adzuna.Configured() {
		t.Error("expected both paid families configured")
	}
	if len(cfg.Watch.Searches) != 1 || cfg.Watch.Searches[0].Skills[1] != "Kubernetes" {
		t.Errorf("Searches = %+v", cfg.Watch.Searches)
	}
	if cfg.Watch.Notification.Type != "log" {
		t.Errorf("Notification.Type = %q, want log default", cfg.Watch.Notification.Type)
	}
}

func TestLoad_EmptyPathUsesDefaultsAndEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADZUNA_APP_ID", "env-id")
	t.Setenv("ADZUNA_APP_KEY", "env-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search.AttemptTimeout != defaultAttemptTimeout || cfg.Search.ResultLimit != defaultResultLimit {
		t.Errorf("unexpected search defaults: %+v", cfg.Search)
	}
	if !cfg.Providers.Remotive.Enabled {
		t.Error("free source must be enabled by default")
	}
	if cfg.Providers.Metasearch.Configured() {
		t.Error("metasearch must stay unconfigured without credentials")
	}
	if !cfg.Providers.Adzuna.Configured() {
		t.Error("adzuna credentials should come from the environment")
	}
	if cfg.RunLog.Driver != "sqlite" || cfg.RunLog.DSN != defaultRunLogDSN {
		t.Errorf("RunLog = %+v", cfg.RunLog)
	}
	if cfg.Server.Addr != defaultServerAddr {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
}

func TestLoad_MetasearchKeyFromEnvUsesDefaultEngines(t *testing.T) {
	clearEnv(t)
	t.Setenv("METASEARCH_API_KEY", "secret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Providers.Metasearch.APIKey != "secret" {
		t.Errorf("APIKey = %q, want value from env", cfg.Providers.Metasearch.APIKey)
	}
	if got, want := strings.Join(cfg.Providers.Metasearch.Engines, ","), strings.Join(defaultMetasearchEngines, ","); got != want {
		t.Errorf("Engines = %q, want %q", got, want)
	}
	if !cfg.Providers.Metasearch.Configured() {
		t.Error("metasearch should be configured from the env key alone")
	}
}

func TestLoad_RemotiveCanBeDisabled(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeConfig(t, "providers:\n  remotive:\n    enabled: false\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Providers.Remotive.Enabled {
		t.Error("expected remotive disabled")
	}
}

func TestLoad_AIKeyFromProviderEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "gem-key")
	cfg, err := Load(writeConfig(t, "ai:\n  enabled: true\n  provider: Gemini\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.Provider != "gemini" || cfg.AI.APIKey != "gem-key" {
		t.Errorf("AI = %+v", cfg.AI)
	}
	if !cfg.AI.EnhanceQuery {
		t.Error("enhance_query should default to true")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "search: [broken"))
	if err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad duration", "search:\n  attempt_timeout: soon\n", "search.attempt_timeout"},
		{"negative timeout", "search:\n  attempt_timeout: -1s\n", "must be positive"},
		{"ai without key", "ai:\n  enabled: true\n", "ai.api_key"},
		{"unknown ai provider", "ai:\n  enabled: true\n  provider: llama\n  api_key: k\n", "ai.provider"},
		{"postgres without dsn", "runlog:\n  driver: postgres\n", "runlog.dsn"},
		{"unknown driver", "runlog:\n  driver: mongo\n", "runlog.driver"},
		{"slack without webhook", "watch:\n  notification:\n    type: slack\n", "webhook_url is required"},
		{"slack bad webhook", "watch:\n  notification:\n    type: slack\n    webhook_url: https://example.com/x\n", "must start with"},
		{"unnamed search", "watch:\n  searches:\n    - skills: [go]\n", "watch.searches[0].name"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeConfig(t, tc.content))
			if err == nil {
				t.Fatalf("expected error containing %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tc.wantErr)
			}
		})
	}
}
