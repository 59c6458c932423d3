// Package dataset generates random social network data for seeding a
// graph store, in memory or through a write-through persistence
// backend.
package dataset

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"socialgraph/internal/graph"
	"socialgraph/pkg/logger"
)

// Params control the shape of a generated dataset.
type Params struct {
	Accounts          int
	MaxPostsPerUser   int
	FollowProbability float64
	LikeProbability   float64
	Seed              int64
}

// DefaultParams mirror the original generator script.
func DefaultParams() Params {
	return Params{
		Accounts:          1000,
		MaxPostsPerUser:   10,
		FollowProbability: 0.05,
		LikeProbability:   0.1,
		Seed:              1,
	}
}

// Generator writes a random social network into a graph store.
type Generator struct {
	rng    *rand.Rand
	logger *zap.Logger
}

// NewGenerator creates a generator with a deterministic seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger.Get(),
	}
}

var (
	firstNames = []string{
		"ada", "björn", "carmen", "dmitri", "elena", "farah", "gustav",
		"hana", "ivan", "june", "kofi", "lena", "marco", "nadia", "omar",
		"priya", "quinn", "rosa", "sven", "tara", "umar", "vera", "wei",
		"xenia", "yusuf", "zara",
	}
	interests = []string{
		"photography", "cycling", "cooking", "chess", "gardening",
		"climbing", "jazz", "poetry", "astronomy", "woodworking",
	}
	sentences = []string{
		"Spent the whole morning on this and it was worth it.",
		"Can anyone recommend a good book on the subject?",
		"Today I learned something that changed how I think about it.",
		"Not sure this was a good idea, but here we are.",
		"Finally finished the project I started last winter.",
		"The weather was perfect for it today.",
		"Sharing a few notes from this weekend.",
		"This took three attempts but the result speaks for itself.",
	}
)

// Generate populates the store with accounts, follows, posts and likes
// according to the parameters. Mutations go through the store's normal
// operations, so an attached Recorder sees everything.
func (g *Generator) Generate(ctx context.Context, store *graph.Store, p Params) error {
	if p.Accounts <= 0 {
		return fmt.Errorf("dataset needs at least one account, got %d", p.Accounts)
	}

	names := make([]string, p.Accounts)
	for i := range names {
		base := firstNames[g.rng.Intn(len(firstNames))]
		names[i] = fmt.Sprintf("%s%d", base, i)
		attrs := map[string]string{
			"interest": interests[g.rng.Intn(len(interests))],
		}
		if _, err := store.CreateAccount(ctx, names[i], attrs); err != nil {
			return fmt.Errorf("failed to create account %s: %w", names[i], err)
		}
	}
	g.logger.Info("created accounts", zap.Int("count", len(names)))

	follows := 0
	for _, follower := range names {
		for _, followee := range names {
			if follower == followee || g.rng.Float64() >= p.FollowProbability {
				continue
			}
			if err := store.Follow(ctx, follower, followee); err != nil {
				return fmt.Errorf("failed to create follow edge: %w", err)
			}
			follows++
		}
	}
	g.logger.Info("created follow edges", zap.Int("count", follows))

	var postIDs []string
	for _, author := range names {
		for i := 0; i < g.rng.Intn(p.MaxPostsPerUser+1); i++ {
			content := g.paragraph()
			post, err := store.CreatePost(ctx, "", author, content)
			if err != nil {
				return fmt.Errorf("failed to create post for %s: %w", author, err)
			}
			postIDs = append(postIDs, post.ID)
		}
	}
	g.logger.Info("created posts", zap.Int("count", len(postIDs)))

	likes := 0
	for _, account := range names {
		for _, postID := range postIDs {
			if g.rng.Float64() >= p.LikeProbability {
				continue
			}
			if err := store.Like(ctx, account, postID); err != nil {
				return fmt.Errorf("failed to create like edge: %w", err)
			}
			likes++
		}
	}
	g.logger.Info("created like edges", zap.Int("count", likes))

	return nil
}

// paragraph builds one to five sentences of filler content.
func (g *Generator) paragraph() string {
	n := 1 + g.rng.Intn(5)
	parts := make([]string, n)
	for i := range parts {
		parts[i] = sentences[g.rng.Intn(len(sentences))]
	}
	return strings.Join(parts, " ")
}
