// Package graph provides a generic breadth-first traversal.
package graph

// Walk visits every node reachable from roots breadth first, each exactly
// once, roots included. Successors are enqueued in the order succ returns
// them, so the visit order is deterministic when succ is. Returning false
// from visit stops the walk.
func Walk[N comparable](roots []N, succ func(N) []N, visit func(N) bool) {
	visited := make(map[N]bool, len(roots))
	queue := make([]N, 0, len(roots))
	for _, r := range roots {
		if !visited[r] {
			visited[r] = true
			queue = append(queue, r)
		}
	}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if !visit(n) {
			return
		}
		for _, next := range succ(n) {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
}

// Reachable returns the nodes reachable from roots in visit order, roots
// included.
func Reachable[N comparable](roots []N, succ func(N) []N) []N {
	var out []N
	Walk(roots, succ, func(n N) bool {
		out = append(out, n)
		return true
	})
	return out
}
