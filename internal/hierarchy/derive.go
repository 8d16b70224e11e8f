package hierarchy

// DerivePaths walks upward from every subtask through container parents and
// renders the chain as a Path prefixed with the subtask's project.
//
// The walk stops at a missing parent, at a parent that is itself a subtask,
// at an id already on the chain, or after DefaultMaxLevels containers, so
// dangling or cyclic links give a partial path instead of an error. A
// subtask with no container above it gets no path.
func DerivePaths(nodes []Node) map[int64]Path {
	byID := indexNodes(nodes)
	paths := make(map[int64]Path)

	for _, id := range sortedIDs(byID) {
		n := byID[id]
		if !n.IsSubtask {
			continue
		}
		if chain := ancestry(n, byID); len(chain) > 1 {
			paths[id] = NewPath(n.ProjectID, chain)
		}
	}
	return paths
}

// ancestry returns root-first ids ending with the subtask itself
func ancestry(sub Node, byID map[int64]Node) []int64 {
	reversed := []int64{sub.ID}
	onChain := map[int64]bool{sub.ID: true}

	cur := sub.ParentID
	for cur != nil && len(reversed) <= DefaultMaxLevels {
		parent, ok := byID[*cur]
		if !ok || parent.IsSubtask || onChain[parent.ID] {
			break
		}
		reversed = append(reversed, parent.ID)
		onChain[parent.ID] = true
		cur = parent.ParentID
	}

	chain := make([]int64, len(reversed))
	for i, id := range reversed {
		chain[len(reversed)-1-i] = id
	}
	return chain
}
