package nlquery

import (
	"context"
	"fmt"

	"socialgraph/internal/graph"
)

// Executor dispatches structured queries against the graph engine.
type Executor struct {
	store *graph.Store
}

// NewExecutor creates an executor over the given store.
func NewExecutor(store *graph.Store) *Executor {
	return &Executor{store: store}
}

// Execute runs a structured query and returns its result. Unknown
// operations and missing arguments are reported as errors; domain
// errors from the engine pass through unchanged.
func (e *Executor) Execute(ctx context.Context, q *Query) (interface{}, error) {
	switch q.Op {
	case "shortest_path":
		from, err := stringArg(q, "from")
		if err != nil {
			return nil, err
		}
		to, err := stringArg(q, "to")
		if err != nil {
			return nil, err
		}
		return e.store.ShortestPath(from, to)

	case "connections":
		name, err := stringArg(q, "name")
		if err != nil {
			return nil, err
		}
		depth := intArg(q, "depth", 1)
		return e.store.Connections(name, depth)

	case "pagerank":
		result, err := e.store.PageRank(ctx, graph.RankOptions{
			Damping:       floatArg(q, "damping", 0),
			MaxIterations: intArg(q, "iterations", 0),
		})
		if err != nil {
			return nil, err
		}
		return result.Ranked(), nil

	case "common_connections":
		a, err := stringArg(q, "account1")
		if err != nil {
			return nil, err
		}
		b, err := stringArg(q, "account2")
		if err != nil {
			return nil, err
		}
		return e.store.CommonConnections(a, b)

	case "similar_accounts":
		name, err := stringArg(q, "name")
		if err != nil {
			return nil, err
		}
		return e.store.SimilarAccounts(name, intArg(q, "limit", 0))

	case "recommended_posts":
		name, err := stringArg(q, "name")
		if err != nil {
			return nil, err
		}
		return e.store.RecommendedPosts(name, intArg(q, "limit", 0))

	case "account_posts":
		name, err := stringArg(q, "name")
		if err != nil {
			return nil, err
		}
		posts, err := e.store.PostsByAccount(name)
		if err != nil {
			return nil, err
		}
		if limit := intArg(q, "limit", 0); limit > 0 && len(posts) > limit {
			posts = posts[:limit]
		}
		return posts, nil

	case "statistics":
		return e.store.Statistics(), nil

	default:
		return nil, fmt.Errorf("unsupported operation: %s", q.Op)
	}
}

func stringArg(q *Query, key string) (string, error) {
	v, ok := q.Args[key]
	if !ok {
		return "", fmt.Errorf("operation %s requires argument %q", q.Op, key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("argument %q must be a non-empty string", key)
	}
	return s, nil
}

// intArg tolerates JSON numbers arriving as float64.
func intArg(q *Query, key string, fallback int) int {
	switch v := q.Args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}

func floatArg(q *Query, key string, fallback float64) float64 {
	switch v := q.Args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return fallback
}
