// Command seed generates a random social network dataset and writes it
// through to Neo4j, so a server started with NEO4J_ENABLED picks it up
// as its initial snapshot.
package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"socialgraph/internal/dataset"
	"socialgraph/internal/graph"
	"socialgraph/internal/persistence"
	"socialgraph/pkg/config"
	"socialgraph/pkg/logger"
)

func main() {
	defaults := dataset.DefaultParams()
	accounts := flag.Int("accounts", defaults.Accounts, "number of accounts to generate")
	maxPosts := flag.Int("max-posts", defaults.MaxPostsPerUser, "maximum posts per account")
	followProb := flag.Float64("follow-prob", defaults.FollowProbability, "probability of a follow edge between two accounts")
	likeProb := flag.Float64("like-prob", defaults.LikeProbability, "probability of an account liking a post")
	seed := flag.Int64("seed", defaults.Seed, "random seed")
	dryRun := flag.Bool("dry-run", false, "generate in memory only, skip Neo4j")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	ctx := context.Background()

	store := graph.NewStore()

	if !*dryRun {
		driver, err := neo4j.NewDriverWithContext(
			cfg.Neo4jURI,
			neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
		)
		if err != nil {
			log.Fatal("Failed to create Neo4j driver", zap.Error(err))
		}
		defer driver.Close(ctx)

		if err := driver.VerifyConnectivity(ctx); err != nil {
			log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
		}

		repo := persistence.NewRepository(driver)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatal("Failed to ensure Neo4j schema", zap.Error(err))
		}
		store.AttachRecorder(repo)
	}

	params := dataset.Params{
		Accounts:          *accounts,
		MaxPostsPerUser:   *maxPosts,
		FollowProbability: *followProb,
		LikeProbability:   *likeProb,
		Seed:              *seed,
	}

	log.Info("Generating dataset",
		zap.Int("accounts", params.Accounts),
		zap.Int("max_posts", params.MaxPostsPerUser),
		zap.Float64("follow_prob", params.FollowProbability),
		zap.Float64("like_prob", params.LikeProbability),
		zap.Bool("dry_run", *dryRun),
	)

	if err := dataset.NewGenerator(params.Seed).Generate(ctx, store, params); err != nil {
		log.Fatal("Dataset generation failed", zap.Error(err))
	}

	stats := store.Statistics()
	log.Info("Dataset generated",
		zap.Int("accounts", stats.Accounts),
		zap.Int("posts", stats.Posts),
		zap.Int("follows", stats.Follows),
		zap.Int("likes", stats.Likes),
	)
}
