package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/balkashynov/worktrack/internal/api"
	"github.com/balkashynov/worktrack/internal/auth"
	"github.com/balkashynov/worktrack/internal/db"
	"github.com/balkashynov/worktrack/internal/jira"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON API",
	Long: `Run the HTTP API used by the web front end.

Requires auth.jwt-secret and auth.csrf-secret. Jira endpoints are enabled
when jira.base-url, jira.email and jira.api-token are set.`,
	Args: cobra.NoArgs,
	RunE: withStore(runServe),
}

func runServe(cmd *cobra.Command, args []string, store *db.Store) error {
	if err := cfg.RequireServerSecrets(); err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}

	tokens, err := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.JWTExpire)
	if err != nil {
		return err
	}
	csrf, err := auth.NewCSRF(cfg.Auth.CSRFSecret, cfg.Server.SecureCookies)
	if err != nil {
		return err
	}

	opts := api.Options{
		Store:           store,
		Tokens:          tokens,
		CSRF:            csrf,
		CORSOrigins:     cfg.Server.CORSOrigins,
		SecureCookies:   cfg.Server.SecureCookies,
		ReportRangeDays: cfg.Report.DefaultRangeDays,
		Logger:          logger,
	}
	if cfg.RequireJira() == nil {
		client, err := newJiraClient()
		if err != nil {
			return err
		}
		opts.Jira = client
		opts.Syncer = jira.NewSyncer(client, store, cfg.Sync.DefaultTarget, logger)
	} else {
		logger.Warn("jira is not configured, sync endpoints disabled")
	}

	server, err := api.NewServer(opts)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Printf("worktrack API on %s\n", cyan("http://"+cfg.Server.Addr()))
	return server.ListenAndServe(cmd.Context(), cfg.Server.Addr())
}

func init() {
	serveCmd.Flags().String("host", "", "override server.host")
	serveCmd.Flags().IntP("port", "p", 0, "override server.port")
}
