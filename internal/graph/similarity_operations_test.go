package graph

import (
	"context"
	"reflect"
	"sort"
	"testing"

	"socialgraph/pkg/errors"
)

func TestCommonConnections(t *testing.T) {
	s := newTestStore(t, "alice", "bob", "carol", "dave")
	mustFollow(t, s,
		[2]string{"alice", "carol"},
		[2]string{"alice", "dave"},
		[2]string{"bob", "carol"},
		[2]string{"bob", "dave"},
	)

	common, err := s.CommonConnections("alice", "bob")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(common, []string{"carol", "dave"}) {
		t.Errorf("expected [carol dave], got %v", common)
	}
}

func TestCommonConnections_Symmetric(t *testing.T) {
	s := newTestStore(t, "alice", "bob", "carol", "dave", "eve")
	mustFollow(t, s,
		[2]string{"alice", "carol"},
		[2]string{"alice", "eve"},
		[2]string{"bob", "eve"},
		[2]string{"bob", "carol"},
		[2]string{"bob", "dave"},
	)

	ab, err := s.CommonConnections("alice", "bob")
	if err != nil {
		t.Fatal(err)
	}
	ba, err := s.CommonConnections("bob", "alice")
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(ab)
	sort.Strings(ba)
	if !reflect.DeepEqual(ab, ba) {
		t.Errorf("common connections not symmetric: %v vs %v", ab, ba)
	}
}

func TestCommonConnections_UnknownAccount(t *testing.T) {
	s := newTestStore(t, "alice")
	if _, err := s.CommonConnections("alice", "ghost"); errors.KindOf(err) != errors.KindNotFound {
		t.Errorf("expected not_found, got %v", err)
	}
}

func TestSimilarAccounts_IdenticalFollowSets(t *testing.T) {
	s := newTestStore(t, "alice", "bob", "carol", "dave")
	// alice and bob both follow carol and dave; no edge between them.
	mustFollow(t, s,
		[2]string{"alice", "carol"},
		[2]string{"alice", "dave"},
		[2]string{"bob", "carol"},
		[2]string{"bob", "dave"},
	)

	similar, err := s.SimilarAccounts("alice", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(similar) != 1 {
		t.Fatalf("expected exactly one similar account, got %v", similar)
	}
	if similar[0].Name != "bob" || similar[0].Similarity != 1.0 {
		t.Errorf("expected bob with similarity 1.0, got %+v", similar[0])
	}
	if similar[0].CommonFollows != 2 {
		t.Errorf("expected 2 common follows, got %d", similar[0].CommonFollows)
	}
}

func TestSimilarAccounts_RankingAndTieBreak(t *testing.T) {
	s := newTestStore(t, "me", "zoe", "amy", "x", "y", "z")
	mustFollow(t, s,
		[2]string{"me", "x"},
		[2]string{"me", "y"},
		// zoe and amy have identical overlap with me; the tie must be
		// broken alphabetically.
		[2]string{"zoe", "x"},
		[2]string{"zoe", "y"},
		[2]string{"amy", "x"},
		[2]string{"amy", "y"},
		// z overlaps on one of two, diluted by an extra followee.
		[2]string{"z", "x"},
		[2]string{"z", "amy"},
	)

	similar, err := s.SimilarAccounts("me", 0)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, sim := range similar {
		names = append(names, sim.Name)
	}
	if !reflect.DeepEqual(names, []string{"amy", "zoe", "z"}) {
		t.Errorf("expected [amy zoe z], got %v", names)
	}

	limited, _ := s.SimilarAccounts("me", 2)
	if len(limited) != 2 {
		t.Errorf("expected 2 results with limit=2, got %d", len(limited))
	}
}

func TestSimilarAccounts_NoFollows(t *testing.T) {
	s := newTestStore(t, "loner", "other", "x")
	mustFollow(t, s, [2]string{"other", "x"})

	similar, err := s.SimilarAccounts("loner", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(similar) != 0 {
		t.Errorf("account with no follows has no similar accounts, got %v", similar)
	}
}

func TestRecommendedPosts(t *testing.T) {
	s := newTestStore(t, "alice", "bob", "carol", "dave")
	ctx := context.Background()
	mustFollow(t, s,
		[2]string{"alice", "carol"},
		[2]string{"alice", "dave"},
		[2]string{"bob", "carol"},
		[2]string{"bob", "dave"},
	)

	// bob is alice's only similar account; his posts are candidates.
	if _, err := s.CreatePost(ctx, "b1", "bob", "first"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreatePost(ctx, "b2", "bob", "second"); err != nil {
		t.Fatal(err)
	}
	// Posts by non-similar accounts must not appear.
	if _, err := s.CreatePost(ctx, "c1", "carol", "noise"); err != nil {
		t.Fatal(err)
	}
	// Already-liked posts are excluded.
	if err := s.Like(ctx, "alice", "b1"); err != nil {
		t.Fatal(err)
	}

	recs, err := s.RecommendedPosts("alice", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected exactly one recommendation, got %v", recs)
	}
	if recs[0].Post.ID != "b2" || recs[0].Score != 1.0 {
		t.Errorf("expected b2 scored 1.0, got %+v", recs[0])
	}
}

func TestRecommendedPosts_TiesByRecency(t *testing.T) {
	s := newTestStore(t, "me", "twin", "x", "y")
	ctx := context.Background()
	mustFollow(t, s,
		[2]string{"me", "x"},
		[2]string{"twin", "x"},
	)

	// Same author, same score; the later post must come first.
	if _, err := s.CreatePost(ctx, "old", "twin", "old post"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreatePost(ctx, "new", "twin", "new post"); err != nil {
		t.Fatal(err)
	}

	recs, err := s.RecommendedPosts("me", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || recs[0].Post.ID != "new" || recs[1].Post.ID != "old" {
		t.Errorf("expected [new old], got %v", recs)
	}

	limited, _ := s.RecommendedPosts("me", 1)
	if len(limited) != 1 || limited[0].Post.ID != "new" {
		t.Errorf("expected top-1 [new], got %v", limited)
	}
}

func TestStatistics(t *testing.T) {
	s := newTestStore(t, "alice", "bob", "carol")
	ctx := context.Background()
	mustFollow(t, s,
		[2]string{"alice", "carol"},
		[2]string{"bob", "carol"},
		[2]string{"carol", "alice"},
	)
	if _, err := s.CreatePost(ctx, "p1", "alice", "hi"); err != nil {
		t.Fatal(err)
	}
	if err := s.Like(ctx, "bob", "p1"); err != nil {
		t.Fatal(err)
	}

	stats := s.Statistics()
	if stats.Accounts != 3 || stats.Posts != 1 || stats.Follows != 3 || stats.Likes != 1 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.AvgOutDegree != 1.0 {
		t.Errorf("expected average out-degree 1.0, got %v", stats.AvgOutDegree)
	}
	if stats.MaxInDegree != 2 || !reflect.DeepEqual(stats.MostFollowed, []string{"carol"}) {
		t.Errorf("expected carol with in-degree 2, got %+v", stats)
	}
}

func TestStatistics_Empty(t *testing.T) {
	s := newTestStore(t)
	stats := s.Statistics()
	if stats.Accounts != 0 || stats.AvgOutDegree != 0 || len(stats.MostFollowed) != 0 {
		t.Errorf("unexpected stats for empty graph: %+v", stats)
	}
}
