package hierarchy

import (
	"fmt"
	"sort"

	"github.com/balkashynov/worktrack/internal/models"
)

// NodesFromIssues reduces issues to deriver input
func NodesFromIssues(issues []models.Issue) []Node {
	nodes := make([]Node, 0, len(issues))
	for _, is := range issues {
		nodes = append(nodes, Node{
			ID:        is.ID,
			ParentID:  is.ParentIssueID,
			ProjectID: is.ProjectID,
			IsSubtask: is.IsSubtask,
		})
	}
	return nodes
}

// Materialize computes the subtask_with_parent_path rows in memory. It is a
// pure function of the issue set and orders rows like the view is read:
// project_id, parent_issue_id, id with missing ids first.
func Materialize(issues []models.Issue) []models.SubtaskWithPath {
	paths := DerivePaths(NodesFromIssues(issues))

	var rows []models.SubtaskWithPath
	for _, is := range issues {
		if !is.IsSubtask {
			continue
		}
		row := models.SubtaskWithPath{
			ID:              is.ID,
			Name:            is.Name,
			ProjectID:       is.ProjectID,
			ParentIssueID:   is.ParentIssueID,
			Type:            is.Type,
			IsSubtask:       true,
			Status:          is.Status,
			LimitDate:       is.LimitDate,
			Description:     is.Description,
			UpdateTimestamp: is.UpdateTimestamp,
			CreateTimestamp: is.CreateTimestamp,
		}
		if p, ok := paths[is.ID]; ok {
			s := string(p)
			row.Path = &s
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if c := compareOptional(rows[i].ProjectID, rows[j].ProjectID); c != 0 {
			return c < 0
		}
		if c := compareOptional(rows[i].ParentIssueID, rows[j].ParentIssueID); c != 0 {
			return c < 0
		}
		return rows[i].ID < rows[j].ID
	})
	return rows
}

// compareOptional orders nil before any value
func compareOptional(a, b *int64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}

// Mismatch describes a subtask whose stored path disagrees with the deriver
type Mismatch struct {
	SubtaskID int64  `json:"subtask_id"`
	Stored    string `json:"stored"`
	Derived   string `json:"derived"`
	Reason    string `json:"reason"`
}

func (m Mismatch) String() string {
	return fmt.Sprintf("subtask %d: %s (stored %q, derived %q)", m.SubtaskID, m.Reason, m.Stored, m.Derived)
}

// Verify cross-checks view rows against both in-memory formulations: the
// rows Materialize would produce and the flattened triples. A stored path
// must have a matching triple, and every subtask must appear in the view.
func Verify(view []models.SubtaskWithPath, issues []models.Issue) ([]Mismatch, error) {
	triples, err := Triples(NodesFromIssues(issues))
	if err != nil {
		return nil, err
	}
	byTriple := make(map[int64]Triple, len(triples))
	for _, t := range triples {
		byTriple[t.SubtaskID] = t
	}

	expected := make(map[int64]string)
	var order []int64
	for _, row := range Materialize(issues) {
		if _, dup := expected[row.ID]; dup {
			continue
		}
		expected[row.ID] = pathString(row.Path)
		order = append(order, row.ID)
	}

	var out []Mismatch
	inView := make(map[int64]bool, len(view))
	for _, row := range view {
		inView[row.ID] = true
		stored := pathString(row.Path)
		want, known := expected[row.ID]
		if !known {
			out = append(out, Mismatch{SubtaskID: row.ID, Stored: stored, Reason: "not a subtask in the issue table"})
			continue
		}
		if stored != want {
			out = append(out, Mismatch{SubtaskID: row.ID, Stored: stored, Derived: want, Reason: "path differs"})
			continue
		}
		if stored == "" {
			continue
		}

		t, placed := byTriple[row.ID]
		if !placed {
			out = append(out, Mismatch{SubtaskID: row.ID, Stored: stored, Reason: "path has no reporting triple"})
			continue
		}
		fromPath, ok := TripleFromPath(Path(stored))
		if ok && fromPath != t {
			out = append(out, Mismatch{
				SubtaskID: row.ID,
				Stored:    stored,
				Derived:   fmt.Sprintf("%d>%d>%d", t.Ancestor1, t.Ancestor2, t.SubtaskID),
				Reason:    "reporting ancestors differ",
			})
		}
	}

	for _, id := range order {
		if !inView[id] {
			out = append(out, Mismatch{SubtaskID: id, Derived: expected[id], Reason: "missing from view"})
		}
	}
	return out, nil
}

func pathString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
