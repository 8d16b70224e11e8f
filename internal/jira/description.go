package jira

import (
	"encoding/json"
	"strings"
)

// adfNode is the subset of an Atlassian Document Format node we read
type adfNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text"`
	Content []adfNode `json:"content"`
}

// FlattenDescription turns a Jira description into plain text.
//
// A JSON string is returned as is. A rich-text document has the text of each
// top-level block's inline children concatenated, and the blocks joined with
// newlines. Anything else (null aside) is returned as the raw JSON text.
func FlattenDescription(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	if !strings.HasPrefix(trimmed, "{") {
		return trimmed
	}
	var doc adfNode
	if err := json.Unmarshal(raw, &doc); err != nil {
		return trimmed
	}

	blocks := make([]string, 0, len(doc.Content))
	for _, block := range doc.Content {
		var b strings.Builder
		for _, inline := range block.Content {
			b.WriteString(inline.Text)
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n")
}
