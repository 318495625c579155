package core

// WouldCreateCycle reports whether adding an edge source -> target to the
// snapshot's graph would close a cycle. It searches forward from target over
// outgoing edges; if source is reachable, source would end up depending on
// itself through target. When a cycle is found, the second return value is
// the would-be cycle path starting and ending at source.
//
// Self-loops are the caller's responsibility and must be rejected before
// this search runs.
func WouldCreateCycle(snap *Snapshot, sourceID, targetID string) (bool, []string) {
	parent := map[string]string{targetID: ""}
	queue := []string{targetID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current == sourceID {
			// Reconstruct source -> target -> ... -> source.
			var rev []string
			for at := current; at != ""; at = parent[at] {
				rev = append(rev, at)
			}
			cycle := make([]string, 0, len(rev)+1)
			cycle = append(cycle, sourceID)
			for i := len(rev) - 1; i >= 0; i-- {
				cycle = append(cycle, rev[i])
			}
			return true, cycle
		}

		for _, edge := range snap.Outgoing[current] {
			if _, seen := parent[edge.TargetID]; seen {
				continue
			}
			parent[edge.TargetID] = current
			queue = append(queue, edge.TargetID)
		}
	}

	return false, nil
}

// ValidateAcyclic checks the entire snapshot graph for cycles using
// white/gray/black DFS coloring. The graph invariant makes this impossible
// for edges created through AddDependency; the check exists to detect
// corrupted persisted data when a workspace is loaded. Returns the cycle
// path when one is found, nil otherwise.
func ValidateAcyclic(snap *Snapshot) []string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(snap.Tasks))
	var stack []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = gray
		stack = append(stack, id)
		for _, edge := range snap.Outgoing[id] {
			next := edge.TargetID
			switch color[next] {
			case gray:
				// Back-edge: the cycle is the stack suffix from next.
				for i, s := range stack {
					if s == next {
						cycle = append(append(cycle, stack[i:]...), next)
						return true
					}
				}
				cycle = []string{next, next}
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return false
	}

	for id := range snap.Outgoing {
		if color[id] == white {
			if visit(id) {
				return cycle
			}
		}
	}
	return nil
}
