package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/balkashynov/worktrack/internal/auth"
	"github.com/balkashynov/worktrack/internal/db"
	"github.com/balkashynov/worktrack/internal/jira"
)

// Options wires the server's collaborators
type Options struct {
	Store  *db.Store
	Jira   jira.Source  // nil when Jira is not configured
	Syncer *jira.Syncer // nil when Jira is not configured
	Tokens *auth.Tokens
	CSRF   *auth.CSRF

	// Password capabilities; default to argon2id from internal/auth
	HashPassword   func(string) (string, error)
	VerifyPassword func(hash, plain string) bool

	CORSOrigins     []string
	SecureCookies   bool
	ReportRangeDays int
	Logger          *slog.Logger
}

// Server is the JSON API in front of the store
type Server struct {
	store     *db.Store
	jira      jira.Source
	syncer    *jira.Syncer
	tokens    *auth.Tokens
	csrf      *auth.CSRF
	hash      func(string) (string, error)
	verify    func(hash, plain string) bool
	origins   map[string]bool
	secure    bool
	rangeDays int
	log       *slog.Logger
	now       func() time.Time
}

// NewServer validates opts and builds a Server
func NewServer(opts Options) (*Server, error) {
	if opts.Store == nil || opts.Tokens == nil || opts.CSRF == nil {
		return nil, fmt.Errorf("api server needs a store, token signer and csrf guard")
	}
	if opts.HashPassword == nil {
		opts.HashPassword = auth.HashPassword
	}
	if opts.VerifyPassword == nil {
		opts.VerifyPassword = auth.VerifyPassword
	}
	if opts.ReportRangeDays <= 0 {
		opts.ReportRangeDays = db.DefaultListRangeDays
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	origins := make(map[string]bool, len(opts.CORSOrigins))
	for _, o := range opts.CORSOrigins {
		origins[o] = true
	}

	return &Server{
		store:     opts.Store,
		jira:      opts.Jira,
		syncer:    opts.Syncer,
		tokens:    opts.Tokens,
		csrf:      opts.CSRF,
		hash:      opts.HashPassword,
		verify:    opts.VerifyPassword,
		origins:   origins,
		secure:    opts.SecureCookies,
		rangeDays: opts.ReportRangeDays,
		log:       opts.Logger,
		now:       time.Now,
	}, nil
}

// Handler returns the routed handler with the middleware chain applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/csrftoken", s.handleCSRFToken)

	// Users
	mux.HandleFunc("POST /api/user/signup", s.handleSignup)
	mux.HandleFunc("POST /api/user/signin", s.handleSignin)
	mux.HandleFunc("GET /api/user/logout", s.handleLogout)
	mux.HandleFunc("GET /api/user/me", s.requireUser(s.handleMe))
	mux.HandleFunc("GET /api/user/active/all", s.requireUser(s.handleActiveUsers))
	mux.HandleFunc("POST /api/user/deactivate", s.requireUser(s.handleDeactivate))
	mux.HandleFunc("POST /api/user/root/delete", s.requireSuperuser(s.handleRootDelete))
	mux.HandleFunc("POST /api/user/root/activate", s.requireSuperuser(s.handleRootActivate))
	mux.HandleFunc("POST /api/user/root/permission", s.requireSuperuser(s.handleRootPermission))

	// Projects
	mux.HandleFunc("GET /api/project/jira/all", s.requireUser(s.handleJiraProjects))
	mux.HandleFunc("GET /api/project/db/all", s.requireUser(s.handleDBProjects))
	mux.HandleFunc("POST /api/project/jira/update", s.requireUser(s.handleResync))
	mux.HandleFunc("PUT /api/project/{id}/target", s.requireSuperuser(s.handleProjectTarget))

	// Issues
	mux.HandleFunc("GET /api/issue/main-task/db/all", s.requireUser(s.handleMainIssues))
	mux.HandleFunc("GET /api/issue/subtask/db/all", s.requireUser(s.handleSubtasks))
	mux.HandleFunc("GET /api/issue/subtask_with_path/db/all", s.requireUser(s.handleSubtasksWithPath))
	mux.HandleFunc("GET /api/issue/hierarchy", s.requireUser(s.handleHierarchy))

	// Workloads
	mux.HandleFunc("GET /api/workload/db", s.requireUser(s.handleGetWorkload))
	mux.HandleFunc("DELETE /api/workload/db", s.requireUser(s.handleDeleteWorkload))
	mux.HandleFunc("POST /api/workload/db/post", s.requireUser(s.handleCreateWorkload))
	mux.HandleFunc("PUT /api/workload/db/edit", s.requireUser(s.handleEditWorkload))
	mux.HandleFunc("GET /api/workload/db/get", s.requireUser(s.handleUserWorkloads))
	mux.HandleFunc("POST /api/workload/db/search", s.requireUser(s.handleSearchWorkloads))

	return s.accessLog(s.cors(s.checkCSRF(mux)))
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight requests
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("api shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
