package graph

import "socialgraph/pkg/errors"

// ShortestPath runs an unweighted directed BFS over the follow graph
// from one account to another. Ties between equally short paths are
// broken by edge insertion order. An unreachable target is a normal
// Found=false result, not an error.
func (s *Store) ShortestPath(from, to string) (Path, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.accounts[from]; !ok {
		return Path{}, errors.NotFound("account", from)
	}
	if _, ok := s.accounts[to]; !ok {
		return Path{}, errors.NotFound("account", to)
	}
	if from == to {
		return Path{Found: true, Nodes: []string{from}, Length: 0}, nil
	}

	parent := map[string]string{from: ""}
	queue := []string{from}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range s.following[current] {
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = current
			if next == to {
				return Path{Found: true, Nodes: rebuildPath(parent, from, to), Length: pathLength(parent, from, to)}, nil
			}
			queue = append(queue, next)
		}
	}

	return Path{Found: false}, nil
}

// Connections returns the distinct accounts reachable from name within
// depth outgoing hops, each tagged with its minimum hop distance and
// listed in BFS discovery order. The origin itself is excluded; depth 0
// yields an empty result.
func (s *Store) Connections(name string, depth int) ([]Connection, error) {
	if depth < 0 {
		return nil, errors.New(errors.KindInvalidArgument, "depth must be non-negative, got %d", depth)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.accounts[name]; !ok {
		return nil, errors.NotFound("account", name)
	}

	visited := map[string]struct{}{name: {}}
	var result []Connection
	frontier := []string{name}
	for dist := 1; dist <= depth && len(frontier) > 0; dist++ {
		var next []string
		for _, current := range frontier {
			for _, followee := range s.following[current] {
				if _, seen := visited[followee]; seen {
					continue
				}
				visited[followee] = struct{}{}
				result = append(result, Connection{Name: followee, Distance: dist})
				next = append(next, followee)
			}
		}
		frontier = next
	}
	return result, nil
}

func rebuildPath(parent map[string]string, from, to string) []string {
	var reversed []string
	for node := to; node != ""; node = parent[node] {
		reversed = append(reversed, node)
		if node == from {
			break
		}
	}
	nodes := make([]string, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		nodes = append(nodes, reversed[i])
	}
	return nodes
}

func pathLength(parent map[string]string, from, to string) int {
	length := 0
	for node := to; node != from; node = parent[node] {
		length++
	}
	return length
}
