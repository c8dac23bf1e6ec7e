package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Server.Store != "memory" {
		t.Errorf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("unexpected cache default: %+v", cfg.Cache)
	}
	if cfg.Layout.HorizontalSpacing <= 0 {
		t.Error("layout defaults missing")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	src := `
[layout]
horizontal_spacing = 300.0

[server]
addr = ":9000"
store = "mongo"
mongo_uri = "mongodb://localhost:27017"

[cache]
backend = "redis"
redis_addr = "redis.internal:6379"
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Layout.HorizontalSpacing != 300 {
		t.Errorf("horizontal_spacing = %v", cfg.Layout.HorizontalSpacing)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.Store != "mongo" {
		t.Errorf("server overrides not applied: %+v", cfg.Server)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "redis.internal:6379" {
		t.Errorf("cache overrides not applied: %+v", cfg.Cache)
	}
}

func TestLoadConfigRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[layout\nbroken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error")
	}
}
