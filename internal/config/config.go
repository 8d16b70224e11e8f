package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. WORKTRACK_SERVER_PORT
const EnvPrefix = "WORKTRACK"

// Config is the resolved application configuration
type Config struct {
	Server ServerConfig
	DB     DBConfig
	Jira   JiraConfig
	Auth   AuthConfig
	Sync   SyncConfig
	Report ReportConfig
	Log    LogConfig

	// File is the config file that was read, empty when none was found
	File string
}

type ServerConfig struct {
	Host          string
	Port          int
	CORSOrigins   []string
	SecureCookies bool
}

// Addr is host:port for net/http
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DBConfig struct {
	Driver string
	DSN    string
	Debug  bool
}

type JiraConfig struct {
	BaseURL  string
	Email    string
	APIToken string
	Timeout  time.Duration
	PageSize int
}

type AuthConfig struct {
	JWTSecret  string
	CSRFSecret string
	JWTExpire  time.Duration
}

type SyncConfig struct {
	DefaultTarget bool
}

type ReportConfig struct {
	DefaultRangeDays int
}

type LogConfig struct {
	Level     string
	Format    string
	File      string
	MaxSizeMB int
	MaxBackup int
}

// newViper sets up defaults and environment bindings
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	// WORKTRACK_JIRA_API_TOKEN maps to jira.api-token
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.cors-origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})
	v.SetDefault("server.secure-cookies", true)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.debug", false)

	v.SetDefault("jira.base-url", "")
	v.SetDefault("jira.email", "")
	v.SetDefault("jira.api-token", "")
	v.SetDefault("jira.timeout", "30s")
	v.SetDefault("jira.page-size", 100)

	v.SetDefault("auth.jwt-secret", "")
	v.SetDefault("auth.csrf-secret", "")
	v.SetDefault("auth.jwt-expire", "60m")

	v.SetDefault("sync.default-target", true)
	v.SetDefault("report.default-range-days", 365)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max-size-mb", 20)
	v.SetDefault("log.max-backups", 3)

	// Variable names used by earlier deployments
	_ = v.BindEnv("db.dsn", "WORKTRACK_DB_DSN", "WORKLOAD_DATABASE_URI")
	_ = v.BindEnv("jira.base-url", "WORKTRACK_JIRA_BASE_URL", "JIRA_BASE_URL")
	_ = v.BindEnv("jira.email", "WORKTRACK_JIRA_EMAIL", "JIRA_MANAGER_EMAIL")
	_ = v.BindEnv("jira.api-token", "WORKTRACK_JIRA_API_TOKEN", "JIRA_WORKLOAD_API_TOKEN")
	_ = v.BindEnv("auth.jwt-secret", "WORKTRACK_AUTH_JWT_SECRET", "SECRET_KEY_FOR_JWT_TOKEN")
	_ = v.BindEnv("auth.csrf-secret", "WORKTRACK_AUTH_CSRF_SECRET", "SECRET_KEY_FOR_CSRF_TOKEN")
	_ = v.BindEnv("server.host", "WORKTRACK_SERVER_HOST", "FAST_API_HOST")

	return v
}

// Load reads configuration. An explicit path must exist; otherwise the first
// of ./worktrack.yaml and ~/.worktrack/config.yaml is used
// when present. Environment variables override the file.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
	} else if found := findConfigFile(); found != "" {
		v.SetConfigFile(found)
	}

	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config %s: %w", v.ConfigFileUsed(), err)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:          v.GetString("server.host"),
			Port:          v.GetInt("server.port"),
			CORSOrigins:   v.GetStringSlice("server.cors-origins"),
			SecureCookies: v.GetBool("server.secure-cookies"),
		},
		DB: DBConfig{
			Driver: v.GetString("db.driver"),
			DSN:    v.GetString("db.dsn"),
			Debug:  v.GetBool("db.debug"),
		},
		Jira: JiraConfig{
			BaseURL:  v.GetString("jira.base-url"),
			Email:    v.GetString("jira.email"),
			APIToken: v.GetString("jira.api-token"),
			Timeout:  v.GetDuration("jira.timeout"),
			PageSize: v.GetInt("jira.page-size"),
		},
		Auth: AuthConfig{
			JWTSecret:  v.GetString("auth.jwt-secret"),
			CSRFSecret: v.GetString("auth.csrf-secret"),
			JWTExpire:  v.GetDuration("auth.jwt-expire"),
		},
		Sync: SyncConfig{
			DefaultTarget: v.GetBool("sync.default-target"),
		},
		Report: ReportConfig{
			DefaultRangeDays: v.GetInt("report.default-range-days"),
		},
		Log: LogConfig{
			Level:     v.GetString("log.level"),
			Format:    v.GetString("log.format"),
			File:      v.GetString("log.file"),
			MaxSizeMB: v.GetInt("log.max-size-mb"),
			MaxBackup: v.GetInt("log.max-backups"),
		},
		File: v.ConfigFileUsed(),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("db.driver must be sqlite or postgres, got %q", c.DB.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Report.DefaultRangeDays <= 0 {
		return fmt.Errorf("report.default-range-days must be positive")
	}
	return nil
}

// RequireServerSecrets fails when the HTTP server cannot sign tokens
func (c *Config) RequireServerSecrets() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt-secret is not set (WORKTRACK_AUTH_JWT_SECRET)")
	}
	if c.Auth.CSRFSecret == "" {
		return fmt.Errorf("auth.csrf-secret is not set (WORKTRACK_AUTH_CSRF_SECRET)")
	}
	return nil
}

// findConfigFile returns the first existing default config location
func findConfigFile() string {
	candidates := []string{"worktrack.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".worktrack", "config.yaml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// RequireJira fails when Jira credentials are incomplete
func (c *Config) RequireJira() error {
	if c.Jira.BaseURL == "" || c.Jira.Email == "" || c.Jira.APIToken == "" {
		return fmt.Errorf("jira.base-url, jira.email and jira.api-token must all be set")
	}
	return nil
}
