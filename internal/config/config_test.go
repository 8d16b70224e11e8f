package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr() != "127.0.0.1:8000" {
		t.Errorf("addr = %s", cfg.Server.Addr())
	}
	if cfg.DB.Driver != "sqlite" || cfg.DB.DSN != "" {
		t.Errorf("db = %+v", cfg.DB)
	}
	if cfg.Jira.Timeout != 30*time.Second || cfg.Jira.PageSize != 100 {
		t.Errorf("jira = %+v", cfg.Jira)
	}
	if cfg.Auth.JWTExpire != time.Hour {
		t.Errorf("jwt expire = %s", cfg.Auth.JWTExpire)
	}
	if !cfg.Sync.DefaultTarget || cfg.Report.DefaultRangeDays != 365 {
		t.Errorf("sync/report = %+v %+v", cfg.Sync, cfg.Report)
	}
	if cfg.File != "" {
		t.Errorf("unexpected config file %s", cfg.File)
	}
	if err := cfg.RequireServerSecrets(); err == nil {
		t.Errorf("missing secrets not reported")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "custom.yaml")
	yaml := `server:
  port: 9100
db:
  driver: postgres
  dsn: postgres://file
jira:
  base-url: https://example.atlassian.net
  timeout: 5s
sync:
  default-target: false
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WORKTRACK_SERVER_PORT", "9200")
	t.Setenv("WORKLOAD_DATABASE_URI", "postgres://legacy")
	t.Setenv("SECRET_KEY_FOR_JWT_TOKEN", "jwt")
	t.Setenv("WORKTRACK_AUTH_CSRF_SECRET", "csrf")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9200 {
		t.Errorf("env should override file port, got %d", cfg.Server.Port)
	}
	if cfg.DB.Driver != "postgres" || cfg.DB.DSN != "postgres://legacy" {
		t.Errorf("db = %+v", cfg.DB)
	}
	if cfg.Jira.BaseURL != "https://example.atlassian.net" || cfg.Jira.Timeout != 5*time.Second {
		t.Errorf("jira = %+v", cfg.Jira)
	}
	if cfg.Sync.DefaultTarget {
		t.Errorf("default-target should come from file")
	}
	if err := cfg.RequireServerSecrets(); err != nil {
		t.Errorf("RequireServerSecrets: %v", err)
	}
	if cfg.File != path {
		t.Errorf("File = %s", cfg.File)
	}
}

func TestLoadFindsLocalFile(t *testing.T) {
	chdirTemp(t)
	if err := os.WriteFile("worktrack.yaml", []byte("report:\n  default-range-days: 30\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Report.DefaultRangeDays != 30 {
		t.Errorf("range = %d", cfg.Report.DefaultRangeDays)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	chdirTemp(t)
	t.Setenv("WORKTRACK_DB_DRIVER", "mysql")
	if _, err := Load(""); err == nil {
		t.Errorf("unsupported driver accepted")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := chdirTemp(t)
	if _, err := Load(filepath.Join(dir, "nope.yaml")); err == nil {
		t.Errorf("missing explicit file accepted")
	}
}
