package hierarchy

import (
	"strconv"
	"strings"
)

// Path encodes a subtask's ancestry as "/<project_id>/<a1>>a2>...>subtask."
//
// The project segment is empty when the subtask carries no project. Every
// container id is followed by '>' and the subtask id by '.', so an id can be
// matched as a whole segment without numeric-substring collisions.
type Path string

// NewPath renders a chain (shallowest container first, subtask last)
func NewPath(projectID *int64, chain []int64) Path {
	var b strings.Builder
	b.WriteByte('/')
	if projectID != nil {
		b.WriteString(strconv.FormatInt(*projectID, 10))
	}
	b.WriteByte('/')
	for i, id := range chain {
		if i > 0 {
			b.WriteByte('>')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	b.WriteByte('.')
	return Path(b.String())
}

// projectSegment returns the raw project segment ("" when absent or malformed)
func (p Path) projectSegment() string {
	s := string(p)
	if !strings.HasPrefix(s, "/") {
		return ""
	}
	end := strings.IndexByte(s[1:], '/')
	if end < 0 {
		return ""
	}
	return s[1 : end+1]
}

// ProjectID parses the project segment; nil when it is empty or not numeric
func (p Path) ProjectID() *int64 {
	id, err := strconv.ParseInt(p.projectSegment(), 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

// Chain parses the id chain. It returns nil for malformed paths.
func (p Path) Chain() []int64 {
	s := string(p)
	if !strings.HasPrefix(s, "/") || !strings.HasSuffix(s, ".") {
		return nil
	}
	end := strings.IndexByte(s[1:], '/')
	if end < 0 {
		return nil
	}
	body := strings.TrimSuffix(s[end+2:], ".")
	if body == "" {
		return nil
	}
	parts := strings.Split(body, ">")
	chain := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil
		}
		chain = append(chain, id)
	}
	return chain
}

// SubtaskID returns the trailing id of the chain
func (p Path) SubtaskID() (int64, bool) {
	chain := p.Chain()
	if len(chain) == 0 {
		return 0, false
	}
	return chain[len(chain)-1], true
}

// ContainsAncestor reports whether id appears as a container segment.
// The SQL join in the db package uses the same "/id>" or ">id>" rule.
func (p Path) ContainsAncestor(id int64) bool {
	s := string(p)
	seg := strconv.FormatInt(id, 10) + ">"
	return strings.Contains(s, "/"+seg) || strings.Contains(s, ">"+seg)
}
