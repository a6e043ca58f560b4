package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Search.DefaultTopK != 10 || cfg.Search.MaxResults != 100 {
		t.Errorf("Search = %+v, want defaults 10/100", cfg.Search)
	}
	if cfg.Kafka.Topics.RecordEvents != "record-events" {
		t.Errorf("Kafka.Topics.RecordEvents = %q, want record-events", cfg.Kafka.Topics.RecordEvents)
	}
	if cfg.Redis.CacheTTL != 60*time.Second {
		t.Errorf("Redis.CacheTTL = %v, want 60s", cfg.Redis.CacheTTL)
	}
	if cfg.Store.Table != "medical_records" {
		t.Errorf("Store.Table = %q, want medical_records", cfg.Store.Table)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want info/json", cfg.Logging)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	content := `
server:
  port: 9001
search:
  defaultTopK: 25
  maxResults: 200
redis:
  addr: "cache.internal:6379"
  cacheTTL: 2m
store:
  warmOnStart: true
  table: "records_v2"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%s) failed: %v", path, err)
	}

	if cfg.Server.Port != 9001 {
		t.Errorf("Server.Port = %d, want 9001", cfg.Server.Port)
	}
	if cfg.Search.DefaultTopK != 25 || cfg.Search.MaxResults != 200 {
		t.Errorf("Search = %+v, want 25/200", cfg.Search)
	}
	if cfg.Redis.Addr != "cache.internal:6379" {
		t.Errorf("Redis.Addr = %q", cfg.Redis.Addr)
	}
	if cfg.Redis.CacheTTL != 2*time.Minute {
		t.Errorf("Redis.CacheTTL = %v, want 2m", cfg.Redis.CacheTTL)
	}
	if !cfg.Store.WarmOnStart || cfg.Store.Table != "records_v2" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Postgres.Port != 5432 {
		t.Errorf("Postgres.Port = %d, want default 5432", cfg.Postgres.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("Load of missing file succeeded")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [not a mapping"), 0o600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load of invalid YAML succeeded")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RS_SERVER_PORT", "7070")
	t.Setenv("RS_POSTGRES_HOST", "db.internal")
	t.Setenv("RS_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("RS_SEARCH_DEFAULT_TOP_K", "15")
	t.Setenv("RS_STORE_WARM_ON_START", "true")
	t.Setenv("RS_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Postgres.Host != "db.internal" {
		t.Errorf("Postgres.Host = %q", cfg.Postgres.Host)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "k1:9092" {
		t.Errorf("Kafka.Brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Search.DefaultTopK != 15 {
		t.Errorf("Search.DefaultTopK = %d, want 15", cfg.Search.DefaultTopK)
	}
	if !cfg.Store.WarmOnStart {
		t.Error("Store.WarmOnStart not overridden")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestEnvOverrideIgnoresMalformedValues(t *testing.T) {
	t.Setenv("RS_SERVER_PORT", "not-a-number")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{
		Host: "db", Port: 5433, User: "u", Password: "pw",
		Database: "records", SSLMode: "require",
	}
	dsn := p.DSN()
	for _, part := range []string{"host=db", "port=5433", "user=u", "password=pw", "dbname=records", "sslmode=require"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("DSN %q missing %q", dsn, part)
		}
	}
}
