package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	projectKeyRegex = regexp.MustCompile(`^[A-Z][A-Z0-9_]+$`)
	issueKeyRegex   = regexp.MustCompile(`^([A-Z][A-Z0-9_]+)-(\d+)$`)
)

// NormalizeProjectKey uppercases and validates a Jira project key
// Accepts formats like "plt", "PLT", "app2" -> "PLT", "PLT", "APP2"
func NormalizeProjectKey(key string) (string, error) {
	key = strings.ToUpper(strings.TrimSpace(key))
	if !projectKeyRegex.MatchString(key) {
		return "", fmt.Errorf("invalid Jira project key %q", key)
	}
	return key, nil
}

// IsValidIssueKey checks if a string matches the Jira XXX-111 format
func IsValidIssueKey(key string) bool {
	return issueKeyRegex.MatchString(strings.ToUpper(strings.TrimSpace(key)))
}

// ProjectRef is a project named either by numeric id or by key
type ProjectRef struct {
	ID  int64
	Key string
}

// ParseTargetAssignment parses "<id|KEY>=true|false" as used by
// `projects --target`
func ParseTargetAssignment(input string) (ProjectRef, bool, error) {
	ref, value, ok := strings.Cut(strings.TrimSpace(input), "=")
	if !ok {
		return ProjectRef{}, false, fmt.Errorf("expected <project>=true|false, got %q", input)
	}
	target, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return ProjectRef{}, false, fmt.Errorf("invalid target value %q", value)
	}

	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil && id > 0 {
		return ProjectRef{ID: id}, target, nil
	}
	key, err := NormalizeProjectKey(ref)
	if err != nil {
		return ProjectRef{}, false, err
	}
	return ProjectRef{Key: key}, target, nil
}
