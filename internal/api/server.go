// Package api is the HTTP glue layer over the graph engine. It owns
// request parsing, JSON shapes and status-code mapping only; all graph
// semantics live in internal/graph.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"socialgraph/internal/graph"
	"socialgraph/internal/nlquery"
	"socialgraph/pkg/errors"
	"socialgraph/pkg/logger"
)

// Translator converts a natural language question into a structured
// query. Satisfied by *nlquery.Translator; nil means the LLM bridge is
// not configured.
type Translator interface {
	Translate(ctx context.Context, question string) (*nlquery.Query, error)
}

// Server wires the graph engine and the optional LLM bridge into a gin
// router.
type Server struct {
	store      *graph.Store
	translator Translator
	executor   *nlquery.Executor
	rank       graph.RankOptions // request-level defaults
	logger     *zap.Logger
}

// NewServer creates an API server. translator may be nil; the natural
// language endpoints then report 503.
func NewServer(store *graph.Store, translator Translator, rankDefaults graph.RankOptions) *Server {
	return &Server{
		store:      store,
		translator: translator,
		executor:   nlquery.NewExecutor(store),
		rank:       rankDefaults,
		logger:     logger.Get(),
	}
}

// Router builds the gin engine with all routes and middleware.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(s.logger))
	router.Use(gin.Recovery())
	router.Use(cors())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("/graph/nodes", s.handleAllNodes)
		api.POST("/graph/shortest-path", s.handleShortestPath)
		api.POST("/graph/connections", s.handleConnections)

		api.POST("/accounts", s.handleCreateAccount)
		api.POST("/accounts/follow", s.handleFollow)
		api.POST("/accounts/unfollow", s.handleUnfollow)
		api.GET("/accounts/:name", s.handleGetAccount)
		api.PUT("/accounts/:name/attributes", s.handleUpdateAttributes)
		api.GET("/accounts/:name/posts", s.handleAccountPosts)
		api.GET("/accounts/:name/similar", s.handleSimilarAccounts)
		api.GET("/accounts/:name/recommended-posts", s.handleRecommendedPosts)

		api.POST("/posts", s.handleCreatePost)
		api.POST("/posts/like", s.handleLike)
		api.POST("/posts/unlike", s.handleUnlike)
		api.GET("/posts/:id", s.handleGetPost)

		api.GET("/analytics/pagerank", s.handlePageRank)
		api.GET("/analytics/statistics", s.handleStatistics)
		api.POST("/analytics/common-connections", s.handleCommonConnections)

		api.POST("/query", s.handleQuery)
		api.POST("/convert", s.handleConvert)
	}

	return router
}

// respondError maps domain error kinds onto HTTP status codes.
func (s *Server) respondError(c *gin.Context, err error) {
	switch errors.KindOf(err) {
	case errors.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
	case errors.KindDuplicateKey:
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
	case errors.KindInvalidOperation, errors.KindInvalidArgument:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	default:
		s.logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
	}
}

// respondStatus writes the uniform error envelope with an explicit
// status code, for failures that happen before a domain error exists
// (malformed bodies, unavailable collaborators).
func respondStatus(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestLogger logs every request with status and latency.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
