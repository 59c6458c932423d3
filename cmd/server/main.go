package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"socialgraph/internal/api"
	"socialgraph/internal/graph"
	"socialgraph/internal/nlquery"
	"socialgraph/internal/persistence"
	"socialgraph/pkg/config"
	"socialgraph/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting social graph API server...")

	var repo *persistence.Repository

	// The Neo4j backend is optional; without it the engine runs pure
	// in-memory.
	if cfg.Neo4jEnabled {
		driver, err := neo4j.NewDriverWithContext(
			cfg.Neo4jURI,
			neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
		)
		if err != nil {
			log.Fatal("Failed to create Neo4j driver", zap.Error(err))
		}
		defer driver.Close(context.Background())

		ctx := context.Background()
		if err := driver.VerifyConnectivity(ctx); err != nil {
			log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
		}

		repo = persistence.NewRepository(driver)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatal("Failed to ensure Neo4j schema", zap.Error(err))
		}
		log.Info("Neo4j write-through enabled", zap.String("uri", cfg.Neo4jURI))
	}

	store := graph.NewStore()

	// Replay the persisted snapshot first, then attach write-through so
	// the replay itself is not echoed back to Neo4j.
	if repo != nil {
		if err := repo.LoadInto(context.Background(), store); err != nil {
			log.Fatal("Failed to load graph snapshot from Neo4j", zap.Error(err))
		}
		store.AttachRecorder(repo)
	}

	var translator api.Translator
	if cfg.LLMAPIKey != "" || cfg.LLMBaseURL != "" {
		translator = nlquery.NewTranslator(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)
	}

	server := api.NewServer(store, translator, graph.RankOptions{
		Damping:       cfg.PageRankDamping,
		MaxIterations: cfg.PageRankIterations,
		Tolerance:     cfg.PageRankTolerance,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.Router(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
