package dataset

import (
	"context"
	"reflect"
	"testing"

	"socialgraph/internal/graph"
)

func testParams() Params {
	return Params{
		Accounts:          30,
		MaxPostsPerUser:   4,
		FollowProbability: 0.2,
		LikeProbability:   0.15,
		Seed:              42,
	}
}

func TestGenerate_PopulatesStore(t *testing.T) {
	store := graph.NewStore()
	g := NewGenerator(42)

	if err := g.Generate(context.Background(), store, testParams()); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	stats := store.Statistics()
	if stats.Accounts != 30 {
		t.Errorf("expected 30 accounts, got %d", stats.Accounts)
	}
	if stats.Follows == 0 {
		t.Error("expected some follow edges")
	}
	if stats.Posts == 0 {
		t.Error("expected some posts")
	}
	if stats.Likes == 0 {
		t.Error("expected some like edges")
	}
}

func TestGenerate_DeterministicForSeed(t *testing.T) {
	run := func() graph.Stats {
		store := graph.NewStore()
		if err := NewGenerator(7).Generate(context.Background(), store, testParams()); err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		return store.Statistics()
	}

	first := run()
	second := run()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same seed produced different graphs: %+v vs %+v", first, second)
	}
}

func TestGenerate_RejectsEmptyDataset(t *testing.T) {
	if err := NewGenerator(1).Generate(context.Background(), graph.NewStore(), Params{}); err == nil {
		t.Error("expected error for zero accounts")
	}
}
