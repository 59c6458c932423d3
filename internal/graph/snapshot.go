package graph

// Snapshot is an immutable, index-based copy of the follow graph, taken
// atomically under the read lock. Long-running computations (PageRank)
// iterate over a snapshot so they never hold the store lock and are
// insulated from concurrent mutation.
type Snapshot struct {
	names []string // creation order
	index map[string]int
	out   [][]int
}

// Snapshot copies the current follow adjacency into an immutable view.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{
		names: append([]string(nil), s.accountOrder...),
		index: make(map[string]int, len(s.accountOrder)),
		out:   make([][]int, len(s.accountOrder)),
	}
	for i, name := range snap.names {
		snap.index[name] = i
	}
	for i, name := range snap.names {
		followees := s.following[name]
		if len(followees) == 0 {
			continue
		}
		edges := make([]int, len(followees))
		for j, f := range followees {
			edges[j] = snap.index[f]
		}
		snap.out[i] = edges
	}
	return snap
}

// Size returns the number of accounts in the snapshot.
func (s *Snapshot) Size() int {
	return len(s.names)
}
