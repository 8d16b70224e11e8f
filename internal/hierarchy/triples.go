package hierarchy

import "sort"

// Triple is a subtask with its two reporting levels. Ancestor1 is the root
// container, Ancestor2 the container directly below it on the way down (or
// Ancestor1 again when the subtask hangs straight off the root). Anything
// deeper is folded away.
type Triple struct {
	Ancestor1 int64 `json:"ancestor_1"`
	Ancestor2 int64 `json:"ancestor_2"`
	SubtaskID int64 `json:"subtask_id"`
}

// Triples flattens the forest and reduces every row to one triple per subtask
func Triples(nodes []Node) ([]Triple, error) {
	return triplesWithLimit(nodes, DefaultMaxLevels)
}

func triplesWithLimit(nodes []Node, maxLevels int) ([]Triple, error) {
	rows, err := Flatten(nodes, maxLevels)
	if err != nil {
		return nil, err
	}

	subtask := make(map[int64]bool, len(nodes))
	for _, n := range nodes {
		if n.IsSubtask {
			subtask[n.ID] = true
		}
	}

	seen := make(map[int64]bool)
	var out []Triple
	for _, row := range rows {
		idx := firstSubtask(row, subtask)
		// idx 0 would make a root its own ancestor; the view has no path for it either
		if idx < 1 {
			continue
		}
		id := row[idx]
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, tripleFromChain(row[:idx+1]))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].SubtaskID < out[j].SubtaskID })
	return out, nil
}

// firstSubtask scans from the root; anything below the first subtask on a
// row is not placed, the same as the upward walk that stops at a subtask parent
func firstSubtask(row Row, subtask map[int64]bool) int {
	for i := range row {
		if subtask[row[i]] {
			return i
		}
	}
	return -1
}

// tripleFromChain expects at least one ancestor before the subtask
func tripleFromChain(chain []int64) Triple {
	t := Triple{
		Ancestor1: chain[0],
		Ancestor2: chain[0],
		SubtaskID: chain[len(chain)-1],
	}
	if len(chain) > 2 {
		t.Ancestor2 = chain[1]
	}
	return t
}

// TripleFromPath reads the same two reporting levels out of a path
func TripleFromPath(p Path) (Triple, bool) {
	chain := p.Chain()
	if len(chain) < 2 {
		return Triple{}, false
	}
	return tripleFromChain(chain), true
}
