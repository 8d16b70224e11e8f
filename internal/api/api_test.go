package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/balkashynov/worktrack/internal/auth"
	"github.com/balkashynov/worktrack/internal/db"
	"github.com/balkashynov/worktrack/internal/jira"
	"github.com/balkashynov/worktrack/internal/models"
)

type fixture struct {
	t     *testing.T
	store *db.Store
	srv   *httptest.Server
}

// client is one browser: a cookie jar plus the csrf token it was handed
type client struct {
	f    *fixture
	http *http.Client
	csrf string
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func i64(v int64) *int64 { return &v }

type staticSource struct{}

func (staticSource) ListProjects(context.Context) ([]jira.Project, error) {
	return []jira.Project{{ID: 1, Key: "PLT", Name: "Platform"}}, nil
}

func (staticSource) SearchIssues(_ context.Context, projectID int64) ([]jira.Issue, error) {
	return []jira.Issue{
		{ID: 10, Name: "Epic A", ProjectID: i64(projectID)},
		{ID: 11, Name: "Story B", ProjectID: i64(projectID), ParentID: i64(10)},
		{ID: 12, Name: "Subtask C", ProjectID: i64(projectID), ParentID: i64(11), IsSubtask: true},
	}, nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := db.Open(db.Options{DSN: filepath.Join(t.TempDir(), "api.db"), Logger: quiet()})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	tokens, err := auth.NewTokens("jwt-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	csrf, err := auth.NewCSRF("csrf-secret", false)
	if err != nil {
		t.Fatal(err)
	}
	src := staticSource{}
	server, err := NewServer(Options{
		Store:          store,
		Jira:           src,
		Syncer:         jira.NewSyncer(src, store, true, quiet()),
		Tokens:         tokens,
		CSRF:           csrf,
		HashPassword:   func(p string) (string, error) { return "h:" + p, nil },
		VerifyPassword: func(h, p string) bool { return h == "h:"+p },
		CORSOrigins:    []string{"http://localhost:3000"},
		Logger:         quiet(),
	})
	if err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)
	return &fixture{t: t, store: store, srv: srv}
}

func (f *fixture) newClient() *client {
	f.t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		f.t.Fatal(err)
	}
	c := &client{f: f, http: &http.Client{Jar: jar}}
	var body struct {
		CSRFToken string `json:"csrf_token"`
	}
	c.do(http.MethodGet, "/api/csrftoken", nil, http.StatusOK, &body)
	if body.CSRFToken == "" {
		f.t.Fatal("empty csrf token")
	}
	c.csrf = body.CSRFToken
	return c
}

// do sends a request and checks the status; out may be nil
func (c *client) do(method, path string, in any, wantStatus int, out any) {
	c.f.t.Helper()
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			c.f.t.Fatal(err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.f.srv.URL+path, body)
	if err != nil {
		c.f.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.csrf != "" {
		req.Header.Set(auth.CSRFHeader, c.csrf)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.f.t.Fatal(err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		c.f.t.Fatalf("%s %s: status %d, want %d: %s", method, path, resp.StatusCode, wantStatus, raw)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			c.f.t.Fatalf("%s %s: decode %s: %v", method, path, raw, err)
		}
	}
}

func (c *client) signupAndSignin(name string) models.User {
	c.f.t.Helper()
	form := models.SignupForm{Name: name, Email: name + "@example.com", Password: "pw-" + name}
	c.do(http.MethodPost, "/api/user/signup", form, http.StatusOK, nil)
	var user models.User
	c.do(http.MethodPost, "/api/user/signin", models.LoginForm{Email: form.Email, Password: form.Password}, http.StatusOK, &user)
	return user
}

func TestUnauthenticatedRequestsGetFixedMessage(t *testing.T) {
	f := newFixture(t)
	c := f.newClient()

	var msg models.Message
	c.do(http.MethodGet, "/api/project/db/all", nil, http.StatusUnauthorized, &msg)
	if msg.Message != "authentication required" {
		t.Errorf("message = %q", msg.Message)
	}
}

func TestMutationsNeedCSRF(t *testing.T) {
	f := newFixture(t)
	c := f.newClient()
	c.csrf = ""
	c.do(http.MethodPost, "/api/user/signup", models.SignupForm{Name: "a", Email: "a@example.com", Password: "x"}, http.StatusForbidden, nil)
}

func TestAccountAdminNeedsCSRF(t *testing.T) {
	f := newFixture(t)
	admin := f.newClient()
	admin.signupAndSignin("root")
	bob := f.newClient()
	bobUser := bob.signupAndSignin("bob")

	token := admin.csrf
	admin.csrf = ""
	bob.csrf = ""
	query := "?user_id=" + itoa(bobUser.ID)
	for _, path := range []string{"/api/user/root/permission", "/api/user/root/activate", "/api/user/root/delete"} {
		admin.do(http.MethodPost, path+query, nil, http.StatusForbidden, nil)
		admin.do(http.MethodGet, path+query, nil, http.StatusMethodNotAllowed, nil)
	}
	bob.do(http.MethodPost, "/api/user/deactivate", nil, http.StatusForbidden, nil)
	bob.do(http.MethodGet, "/api/user/deactivate", nil, http.StatusMethodNotAllowed, nil)

	got, err := f.store.GetUser(context.Background(), bobUser.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.IsSuperuser || !got.IsActive {
		t.Errorf("bob changed without a csrf token: %+v", got)
	}

	admin.csrf = token
	admin.do(http.MethodPost, "/api/user/root/permission"+query, nil, http.StatusOK, nil)
	if got, _ := f.store.GetUser(context.Background(), bobUser.ID); !got.IsSuperuser {
		t.Errorf("grant with csrf token did not apply")
	}
}

func TestSignupConflictIsAMessage(t *testing.T) {
	f := newFixture(t)
	c := f.newClient()
	root := c.signupAndSignin("root")
	if !root.IsSuperuser {
		t.Errorf("first account should be superuser")
	}

	var msg models.Message
	c.do(http.MethodPost, "/api/user/signup",
		models.SignupForm{Name: "other", Email: "root@example.com", Password: "pw"},
		http.StatusOK, &msg)
	if msg.Message == "" {
		t.Errorf("expected a conflict message")
	}

	var users []models.UserSummary
	c.do(http.MethodGet, "/api/user/active/all", nil, http.StatusOK, &users)
	if len(users) != 1 {
		t.Errorf("got %d users after conflicting signup, want 1", len(users))
	}
}

func TestSigninRejectsBadPassword(t *testing.T) {
	f := newFixture(t)
	c := f.newClient()
	c.signupAndSignin("ann")
	c.do(http.MethodPost, "/api/user/signin", models.LoginForm{Email: "ann@example.com", Password: "wrong"}, http.StatusUnauthorized, nil)
}

func TestSyncAndWorkloadFlow(t *testing.T) {
	f := newFixture(t)
	admin := f.newClient()
	admin.signupAndSignin("root")

	var report jira.SyncReport
	admin.do(http.MethodPost, "/api/project/jira/update", nil, http.StatusOK, &report)
	if report.SyncedProjects != 1 || report.Issues != 3 {
		t.Fatalf("report = %+v", report)
	}

	var triples []struct {
		Ancestor1 int64 `json:"ancestor_1"`
		Ancestor2 int64 `json:"ancestor_2"`
		SubtaskID int64 `json:"subtask_id"`
	}
	admin.do(http.MethodGet, "/api/issue/hierarchy", nil, http.StatusOK, &triples)
	if len(triples) != 1 || triples[0].Ancestor1 != 10 || triples[0].Ancestor2 != 11 || triples[0].SubtaskID != 12 {
		t.Errorf("triples = %+v", triples)
	}

	var withPath []models.SubtaskWithPath
	admin.do(http.MethodGet, "/api/issue/subtask_with_path/db/all", nil, http.StatusOK, &withPath)
	if len(withPath) != 1 || withPath[0].Path == nil || *withPath[0].Path != "/1/10>11>12." {
		t.Errorf("subtask_with_path = %+v", withPath)
	}

	alice := f.newClient()
	aliceUser := alice.signupAndSignin("alice")

	var created models.Workload
	alice.do(http.MethodPost, "/api/workload/db/post",
		map[string]any{"subtask_id": 12, "work_date": "2025-01-10", "workload_minute": 90, "detail": "review"},
		http.StatusOK, &created)
	if created.UserID != aliceUser.ID {
		t.Errorf("workload user = %d, want %d", created.UserID, aliceUser.ID)
	}

	var rows []models.RegisteredWorkload
	admin.do(http.MethodPost, "/api/workload/db/search",
		map[string]any{"lower_date": "2025-01-01", "upper_date": "2025-01-31"},
		http.StatusOK, &rows)
	if len(rows) != 1 {
		t.Fatalf("search returned %d rows", len(rows))
	}
	r := rows[0]
	if r.ProjectID == nil || *r.ProjectID != 1 || r.IssueID1 == nil || *r.IssueID1 != 10 ||
		r.IssueID2 == nil || *r.IssueID2 != 11 || r.SubtaskID != 12 || r.UserName != "alice" || r.WorkloadMinute != 90 {
		t.Errorf("row = %+v", r)
	}

	var listed []models.RegisteredWorkload
	alice.do(http.MethodGet, "/api/workload/db/get?lower_date=2025-01-01&upper_date=2025-12-31", nil, http.StatusOK, &listed)
	if len(listed) != 1 {
		t.Errorf("user listing returned %d rows", len(listed))
	}

	// a third user may not delete alice's entry
	mallory := f.newClient()
	mallory.signupAndSignin("mallory")
	path := "/api/workload/db?workload_id=" + itoa(created.ID)
	mallory.do(http.MethodDelete, path, nil, http.StatusForbidden, nil)
	mallory.do(http.MethodGet, path, nil, http.StatusOK, nil)

	alice.do(http.MethodPut, "/api/workload/db/edit?workload_id="+itoa(created.ID),
		map[string]any{"subtask_id": 12, "work_date": "2025-01-11", "workload_minute": 30},
		http.StatusOK, nil)
	alice.do(http.MethodDelete, path, nil, http.StatusOK, nil)
	alice.do(http.MethodGet, path, nil, http.StatusNotFound, nil)
}

func TestProjectTargetNeedsSuperuser(t *testing.T) {
	f := newFixture(t)
	admin := f.newClient()
	admin.signupAndSignin("root")
	admin.do(http.MethodPost, "/api/project/jira/update", nil, http.StatusOK, nil)

	user := f.newClient()
	user.signupAndSignin("ann")
	user.do(http.MethodPut, "/api/project/1/target", map[string]bool{"is_target": false}, http.StatusForbidden, nil)

	var project models.Project
	admin.do(http.MethodPut, "/api/project/1/target", map[string]bool{"is_target": false}, http.StatusOK, &project)
	if project.IsTarget {
		t.Errorf("project still targeted")
	}
	admin.do(http.MethodPut, "/api/project/99/target", map[string]bool{"is_target": true}, http.StatusNotFound, nil)
}

func TestDeactivatedUserIsSignedOut(t *testing.T) {
	f := newFixture(t)
	c := f.newClient()
	c.signupAndSignin("root")
	ann := f.newClient()
	annUser := ann.signupAndSignin("ann")

	ann.do(http.MethodPost, "/api/user/deactivate", nil, http.StatusOK, nil)
	ann.do(http.MethodGet, "/api/user/me", nil, http.StatusUnauthorized, nil)
	ann.do(http.MethodPost, "/api/user/signin", models.LoginForm{Email: "ann@example.com", Password: "pw-ann"}, http.StatusUnauthorized, nil)

	c.do(http.MethodPost, "/api/user/root/activate?user_id="+itoa(annUser.ID), nil, http.StatusOK, nil)
	ann.do(http.MethodPost, "/api/user/signin", models.LoginForm{Email: "ann@example.com", Password: "pw-ann"}, http.StatusOK, nil)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)
	req, _ := http.NewRequest(http.MethodOptions, f.srv.URL+"/api/workload/db/post", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("allow-origin = %q", got)
	}
	if resp.Header.Get("Access-Control-Allow-Credentials") != "true" {
		t.Errorf("credentials not allowed")
	}
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }
