package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/balkashynov/worktrack/internal/models"
)

// DefaultPageSize is the maxResults sent to the issue search endpoint
const DefaultPageSize = 100

// issueFields are the only fields requested from the search endpoint
var issueFields = []string{"summary", "issuetype", "status", "duedate", "parent", "project", "description"}

// UpstreamError is a non-success response from Jira
type UpstreamError struct {
	Op         string
	URL        string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("jira %s: %s returned %d: %s", e.Op, e.URL, e.StatusCode, e.Body)
}

// Project is a project as Jira reports it
type Project struct {
	ID          int64
	Key         string
	Name        string
	Description string
}

// Issue is an issue as Jira reports it, description already flattened
type Issue struct {
	ID          int64
	Key         string
	Name        string
	Type        string
	Status      string
	DueDate     *models.Date
	ParentID    *int64
	ProjectID   *int64
	IsSubtask   bool
	Description string
}

// Config holds the connection settings for Client
type Config struct {
	BaseURL  string
	Email    string
	APIToken string
	Timeout  time.Duration
	PageSize int
}

// Client reads projects and issues from the Jira Cloud REST API v3
type Client struct {
	baseURL  string
	email    string
	token    string
	pageSize int
	http     *http.Client
}

// NewClient builds a Client; it does not contact Jira
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("jira base URL is not configured")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid jira base URL: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		email:    cfg.Email,
		token:    cfg.APIToken,
		pageSize: cfg.PageSize,
		http:     &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type projectPayload struct {
	ID          string          `json:"id"`
	Key         string          `json:"key"`
	Name        string          `json:"name"`
	Description json.RawMessage `json:"description"`
}

type issuePayload struct {
	ID     string `json:"id"`
	Key    string `json:"key"`
	Fields struct {
		Summary   string `json:"summary"`
		IssueType struct {
			Name    string `json:"name"`
			Subtask bool   `json:"subtask"`
		} `json:"issuetype"`
		Status struct {
			Name string `json:"name"`
		} `json:"status"`
		DueDate *string `json:"duedate"`
		Parent  *struct {
			ID string `json:"id"`
		} `json:"parent"`
		Project *struct {
			ID string `json:"id"`
		} `json:"project"`
		Description json.RawMessage `json:"description"`
	} `json:"fields"`
}

type searchPayload struct {
	StartAt    int            `json:"startAt"`
	MaxResults int            `json:"maxResults"`
	Total      int            `json:"total"`
	Issues     []issuePayload `json:"issues"`
}

// ListProjects returns every project visible to the API user
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var payload []projectPayload
	if err := c.get(ctx, "list projects", "/rest/api/3/project", url.Values{"expand": {"description"}}, &payload); err != nil {
		return nil, err
	}

	projects := make([]Project, 0, len(payload))
	for _, p := range payload {
		id, err := strconv.ParseInt(p.ID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("project %s has non-numeric id %q", p.Key, p.ID)
		}
		projects = append(projects, Project{
			ID:          id,
			Key:         p.Key,
			Name:        p.Name,
			Description: FlattenDescription(p.Description),
		})
	}
	return projects, nil
}

// SearchIssues pages through every issue of one project
func (c *Client) SearchIssues(ctx context.Context, projectID int64) ([]Issue, error) {
	var issues []Issue
	startAt := 0
	for {
		query := url.Values{
			"jql":        {fmt.Sprintf("project = %d ORDER BY id ASC", projectID)},
			"fields":     {strings.Join(issueFields, ",")},
			"startAt":    {strconv.Itoa(startAt)},
			"maxResults": {strconv.Itoa(c.pageSize)},
		}
		var page searchPayload
		if err := c.get(ctx, "search issues", "/rest/api/3/search", query, &page); err != nil {
			return nil, err
		}

		for _, p := range page.Issues {
			issue, err := convertIssue(p)
			if err != nil {
				return nil, err
			}
			issues = append(issues, issue)
		}

		startAt += len(page.Issues)
		if len(page.Issues) == 0 || startAt >= page.Total {
			break
		}
	}
	return issues, nil
}

func convertIssue(p issuePayload) (Issue, error) {
	id, err := strconv.ParseInt(p.ID, 10, 64)
	if err != nil {
		return Issue{}, fmt.Errorf("issue %s has non-numeric id %q", p.Key, p.ID)
	}
	issue := Issue{
		ID:          id,
		Key:         p.Key,
		Name:        p.Fields.Summary,
		Type:        p.Fields.IssueType.Name,
		Status:      p.Fields.Status.Name,
		IsSubtask:   p.Fields.IssueType.Subtask,
		Description: FlattenDescription(p.Fields.Description),
	}
	if p.Fields.Parent != nil {
		issue.ParentID = parseOptionalID(p.Fields.Parent.ID)
	}
	if p.Fields.Project != nil {
		issue.ProjectID = parseOptionalID(p.Fields.Project.ID)
	}
	if p.Fields.DueDate != nil && *p.Fields.DueDate != "" {
		due, err := models.ParseDate(*p.Fields.DueDate)
		if err != nil {
			return Issue{}, fmt.Errorf("issue %s: %w", p.Key, err)
		}
		issue.DueDate = &due
	}
	return issue, nil
}

func parseOptionalID(s string) *int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

// get issues an authenticated GET and decodes a JSON body into dst
func (c *Client) get(ctx context.Context, op, path string, query url.Values, dst any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.email, c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("jira %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &UpstreamError{Op: op, URL: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("jira %s: decode response: %w", op, err)
	}
	return nil
}
