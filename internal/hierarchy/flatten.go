package hierarchy

import (
	"errors"
	"fmt"
	"sort"
)

// DefaultMaxLevels bounds how many levels Flatten will expand before giving up
const DefaultMaxLevels = 100

// ErrTooDeep is returned when the tree is still growing at the level cap,
// which in practice means a malformed (cyclic or duplicated) parent link.
var ErrTooDeep = errors.New("issue tree exceeds maximum depth")

// Node is the part of an Issue the deriver looks at
type Node struct {
	ID        int64
	ParentID  *int64
	ProjectID *int64
	IsSubtask bool
}

// Row is one flattened root-to-leaf chain; Row[0] is the root (id_1),
// Row[1] is id_2 and so on.
type Row []int64

// flattenState drives the level-by-level expansion
type flattenState int

const (
	stateExpand flattenState = iota
	stateSettled
	stateOverflow
)

// Flatten expands the issue forest one level per pass, the way a chain of
// left self-joins would: every row whose deepest column was filled in the
// previous pass is joined against the nodes whose parent is that column.
// Rows without children keep their width (a NULL in the new column). The
// walk settles when a pass adds no column to any row.
func Flatten(nodes []Node, maxLevels int) ([]Row, error) {
	if maxLevels < 1 {
		maxLevels = DefaultMaxLevels
	}

	byID := indexNodes(nodes)
	children := childIndex(byID)

	var rows []Row
	for _, id := range sortedIDs(byID) {
		if byID[id].ParentID == nil {
			rows = append(rows, Row{id})
		}
	}

	level := 1
	state := stateExpand
	for {
		switch state {
		case stateExpand:
			if level >= maxLevels {
				state = stateOverflow
				continue
			}
			next, grew := expandLevel(rows, level, children)
			rows = next
			if !grew {
				state = stateSettled
				continue
			}
			level++

		case stateSettled:
			return rows, nil

		case stateOverflow:
			// one more probe: a tree exactly maxLevels deep is still fine
			if _, grew := expandLevel(rows, level, children); !grew {
				return rows, nil
			}
			return nil, fmt.Errorf("%w: still expanding after %d levels", ErrTooDeep, maxLevels)
		}
	}
}

// expandLevel performs one left join of the current deepest column
func expandLevel(rows []Row, level int, children map[int64][]int64) ([]Row, bool) {
	next := make([]Row, 0, len(rows))
	grew := false
	for _, row := range rows {
		if len(row) != level {
			next = append(next, row)
			continue
		}
		kids := children[row[level-1]]
		if len(kids) == 0 {
			next = append(next, row)
			continue
		}
		grew = true
		for _, kid := range kids {
			wider := make(Row, level+1)
			copy(wider, row)
			wider[level] = kid
			next = append(next, wider)
		}
	}
	return next, grew
}

// indexNodes keys nodes by id; the first occurrence of a duplicated id wins
func indexNodes(nodes []Node) map[int64]Node {
	byID := make(map[int64]Node, len(nodes))
	for _, n := range nodes {
		if _, dup := byID[n.ID]; dup {
			continue
		}
		byID[n.ID] = n
	}
	return byID
}

// childIndex maps parent id to its children, ordered by id
func childIndex(byID map[int64]Node) map[int64][]int64 {
	children := make(map[int64][]int64)
	for _, id := range sortedIDs(byID) {
		n := byID[id]
		if n.ParentID == nil {
			continue
		}
		children[*n.ParentID] = append(children[*n.ParentID], id)
	}
	return children
}

func sortedIDs(byID map[int64]Node) []int64 {
	ids := make([]int64, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
