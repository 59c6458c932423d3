package graph

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"socialgraph/pkg/errors"
)

// Rank defaults match the original service parameters.
const (
	DefaultDamping    = 0.85
	DefaultIterations = 20
	DefaultTolerance  = 1e-6
)

// RankOptions tune a PageRank run. Zero values fall back to defaults.
type RankOptions struct {
	Damping       float64
	MaxIterations int
	Tolerance     float64
}

func (o RankOptions) withDefaults() RankOptions {
	if o.Damping == 0 {
		o.Damping = DefaultDamping
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = DefaultIterations
	}
	if o.Tolerance == 0 {
		o.Tolerance = DefaultTolerance
	}
	return o
}

// RankResult holds the PageRank scores and the number of iterations the
// computation actually ran. Reaching MaxIterations without convergence
// is a normal termination, not an error.
type RankResult struct {
	Scores     map[string]float64 `json:"scores"`
	Iterations int                `json:"iterations"`
}

// Ranked returns the scores as a list sorted by descending score, ties
// broken alphabetically.
func (r *RankResult) Ranked() []AccountScore {
	out := make([]AccountScore, 0, len(r.Scores))
	for name, score := range r.Scores {
		out = append(out, AccountScore{Name: name, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// PageRank computes the classic importance ranking over the follow
// graph (a follow edge passes rank from follower to followee). The
// computation runs on an immutable snapshot so the store lock is never
// held across iterations, and it honors ctx cancellation. Concurrent
// calls with the same options share a single computation.
func (s *Store) PageRank(ctx context.Context, opts RankOptions) (*RankResult, error) {
	opts = opts.withDefaults()
	if opts.Damping <= 0 || opts.Damping >= 1 {
		return nil, errors.New(errors.KindInvalidArgument, "damping factor must be in (0, 1), got %v", opts.Damping)
	}
	if opts.MaxIterations < 0 {
		return nil, errors.New(errors.KindInvalidArgument, "max iterations must be non-negative, got %d", opts.MaxIterations)
	}

	key := fmt.Sprintf("%v/%d/%v", opts.Damping, opts.MaxIterations, opts.Tolerance)
	for {
		ch := s.rankGroup.DoChan(key, func() (interface{}, error) {
			return pagerank(ctx, s.Snapshot(), opts)
		})

		select {
		case res := <-ch:
			if res.Err != nil {
				// The shared run aborts when the initiating caller's
				// context dies. That is not this caller's failure:
				// rerun under our own context instead of surfacing a
				// context error the caller never triggered.
				if isContextErr(res.Err) && ctx.Err() == nil {
					continue
				}
				return nil, res.Err
			}
			return res.Val.(*RankResult), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func isContextErr(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}

func pagerank(ctx context.Context, snap *Snapshot, opts RankOptions) (*RankResult, error) {
	n := snap.Size()
	if n == 0 {
		return &RankResult{Scores: map[string]float64{}}, nil
	}

	prev := make([]float64, n)
	next := make([]float64, n)
	for i := range prev {
		prev[i] = 1.0 / float64(n)
	}

	d := opts.Damping
	base := (1 - d) / float64(n)
	iterations := 0

	for iter := 0; iter < opts.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Dangling accounts redistribute their mass uniformly so the
		// total stays 1.
		dangling := 0.0
		for i := 0; i < n; i++ {
			if len(snap.out[i]) == 0 {
				dangling += prev[i]
			}
		}

		uniform := base + d*dangling/float64(n)
		for i := range next {
			next[i] = uniform
		}
		for u := 0; u < n; u++ {
			edges := snap.out[u]
			if len(edges) == 0 {
				continue
			}
			share := d * prev[u] / float64(len(edges))
			for _, v := range edges {
				next[v] += share
			}
		}

		iterations = iter + 1
		delta := floats.Distance(next, prev, 1)
		prev, next = next, prev
		if delta < opts.Tolerance {
			break
		}
	}

	scores := make(map[string]float64, n)
	for i, name := range snap.names {
		scores[name] = prev[i]
	}
	return &RankResult{Scores: scores, Iterations: iterations}, nil
}
