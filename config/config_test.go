package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SEARCH_URL", "POLL_INTERVAL", "STATE_BACKEND", "STATE_FILE", "INIT_STATE", "MAX_STORED_LISTINGS", "FETCH_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.SearchURL != DefaultSearchURL {
		t.Errorf("SearchURL: got %q, want default", cfg.SearchURL)
	}
	if cfg.PollInterval != 5*time.Minute {
		t.Errorf("PollInterval: got %v, want 5m", cfg.PollInterval)
	}
	if cfg.StateBackend != BackendJSON {
		t.Errorf("StateBackend: got %q, want %q", cfg.StateBackend, BackendJSON)
	}
	if cfg.StateFile != "./apartments.json" {
		t.Errorf("StateFile: got %q", cfg.StateFile)
	}
	if cfg.InitState {
		t.Error("InitState should default to false")
	}
	if cfg.MaxStoredListings != 0 {
		t.Errorf("MaxStoredListings: got %d, want 0", cfg.MaxStoredListings)
	}
	if cfg.FetchTimeout != 90*time.Second {
		t.Errorf("FetchTimeout: got %v, want 90s", cfg.FetchTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SEARCH_URL", "https://example.org/search")
	t.Setenv("POLL_INTERVAL", "30s")
	t.Setenv("STATE_BACKEND", "Postgres")
	t.Setenv("INIT_STATE", "true")
	t.Setenv("MAX_STORED_LISTINGS", "250")
	t.Setenv("FETCH_TIMEOUT", "0s")

	cfg := Load()
	if cfg.SearchURL != "https://example.org/search" {
		t.Errorf("SearchURL: got %q", cfg.SearchURL)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("PollInterval: got %v, want 30s", cfg.PollInterval)
	}
	if cfg.StateBackend != BackendPostgres {
		t.Errorf("StateBackend: got %q, want %q", cfg.StateBackend, BackendPostgres)
	}
	if !cfg.InitState {
		t.Error("InitState: want true")
	}
	if cfg.MaxStoredListings != 250 {
		t.Errorf("MaxStoredListings: got %d, want 250", cfg.MaxStoredListings)
	}
	if cfg.FetchTimeout != 0 {
		t.Errorf("FetchTimeout: got %v, want 0", cfg.FetchTimeout)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "every five minutes")
	t.Setenv("MAX_STORED_LISTINGS", "lots")
	t.Setenv("INIT_STATE", "maybe")

	cfg := Load()
	if cfg.PollInterval != 5*time.Minute {
		t.Errorf("PollInterval: got %v, want fallback 5m", cfg.PollInterval)
	}
	if cfg.MaxStoredListings != 0 {
		t.Errorf("MaxStoredListings: got %d, want fallback 0", cfg.MaxStoredListings)
	}
	if cfg.InitState {
		t.Error("InitState: want fallback false")
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db", PostgresPort: "5433", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "apts", PostgresSSLMode: "disable",
	}
	want := "host=db port=5433 user=u password=p dbname=apts sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN: got %q, want %q", got, want)
	}
}
