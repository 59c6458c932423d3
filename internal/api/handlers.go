package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"socialgraph/internal/nlquery"
)

func (s *Server) handleAllNodes(c *gin.Context) {
	limit := queryInt(c, "limit", 100)

	accounts := s.store.Accounts()
	if limit > 0 && len(accounts) > limit {
		accounts = accounts[:limit]
	}
	posts := s.store.Posts()
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}

	c.JSON(http.StatusOK, gin.H{
		"accounts": accounts,
		"posts":    posts,
		"count":    len(accounts) + len(posts),
	})
}

func (s *Server) handleShortestPath(c *gin.Context) {
	var req struct {
		From string `json:"from" binding:"required"`
		To   string `json:"to" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	path, err := s.store.ShortestPath(req.From, req.To)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, path)
}

func (s *Server) handleConnections(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Depth *int   `json:"depth"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	depth := 1
	if req.Depth != nil {
		depth = *req.Depth
	}

	conns, err := s.store.Connections(req.Name, depth)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"connections": conns, "count": len(conns)})
}

// handleCreateAccount accepts {"name": "...", <arbitrary profile
// fields>}; everything besides name becomes a profile attribute.
func (s *Server) handleCreateAccount(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	name, _ := body["name"].(string)
	if name == "" {
		respondStatus(c, http.StatusBadRequest, "account name is required")
		return
	}

	attrs := make(map[string]string)
	for k, v := range body {
		if k == "name" {
			continue
		}
		if str, ok := v.(string); ok {
			attrs[k] = str
		} else {
			attrs[k] = fmt.Sprintf("%v", v)
		}
	}
	if len(attrs) == 0 {
		attrs = nil
	}

	account, err := s.store.CreateAccount(c.Request.Context(), name, attrs)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "account": account})
}

func (s *Server) handleGetAccount(c *gin.Context) {
	account, err := s.store.GetAccount(c.Param("name"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (s *Server) handleUpdateAttributes(c *gin.Context) {
	var attrs map[string]string
	if err := c.ShouldBindJSON(&attrs); err != nil {
		respondStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	account, err := s.store.UpdateAttributes(c.Request.Context(), c.Param("name"), attrs)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "account": account})
}

func (s *Server) handleFollow(c *gin.Context) {
	s.handleFollowEdge(c, s.store.Follow)
}

func (s *Server) handleUnfollow(c *gin.Context) {
	s.handleFollowEdge(c, s.store.Unfollow)
}

func (s *Server) handleFollowEdge(c *gin.Context, op func(ctx context.Context, follower, followee string) error) {
	var req struct {
		Follower string `json:"follower" binding:"required"`
		Followee string `json:"followee" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := op(c.Request.Context(), req.Follower, req.Followee); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleAccountPosts(c *gin.Context) {
	posts, err := s.store.PostsByAccount(c.Param("name"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	skip := queryInt(c, "skip", 0)
	limit := queryInt(c, "limit", 50)
	if skip > len(posts) {
		skip = len(posts)
	}
	posts = posts[skip:]
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts)})
}

func (s *Server) handleSimilarAccounts(c *gin.Context) {
	similar, err := s.store.SimilarAccounts(c.Param("name"), queryInt(c, "limit", 10))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"similar_accounts": similar, "count": len(similar)})
}

func (s *Server) handleRecommendedPosts(c *gin.Context) {
	recs, err := s.store.RecommendedPosts(c.Param("name"), queryInt(c, "limit", 10))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommended_posts": recs, "count": len(recs)})
}

func (s *Server) handleCreatePost(c *gin.Context) {
	var req struct {
		AccountName string `json:"account_name" binding:"required"`
		Content     string `json:"content" binding:"required"`
		PostID      string `json:"post_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	post, err := s.store.CreatePost(c.Request.Context(), req.PostID, req.AccountName, req.Content)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "post": post})
}

func (s *Server) handleGetPost(c *gin.Context) {
	post, err := s.store.GetPost(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) handleLike(c *gin.Context) {
	s.handleLikeEdge(c, s.store.Like)
}

func (s *Server) handleUnlike(c *gin.Context) {
	s.handleLikeEdge(c, s.store.Unlike)
}

func (s *Server) handleLikeEdge(c *gin.Context, op func(ctx context.Context, account, postID string) error) {
	var req struct {
		AccountName string `json:"account_name" binding:"required"`
		PostID      string `json:"post_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := op(c.Request.Context(), req.AccountName, req.PostID); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handlePageRank(c *gin.Context) {
	opts := s.rank
	if v := queryInt(c, "iterations", 0); v != 0 {
		opts.MaxIterations = v
	}
	if raw := c.Query("damping"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			opts.Damping = v
		}
	}

	result, err := s.store.PageRank(c.Request.Context(), opts)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pagerank":   result.Ranked(),
		"iterations": result.Iterations,
	})
}

func (s *Server) handleStatistics(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Statistics())
}

func (s *Server) handleCommonConnections(c *gin.Context) {
	var req struct {
		Account1 string `json:"account1" binding:"required"`
		Account2 string `json:"account2" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	common, err := s.store.CommonConnections(req.Account1, req.Account2)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"common_connections": common, "count": len(common)})
}

func (s *Server) handleQuery(c *gin.Context) {
	query, ok := s.translate(c)
	if !ok {
		return
	}

	results, err := s.executor.Execute(c.Request.Context(), query)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": query, "results": results})
}

func (s *Server) handleConvert(c *gin.Context) {
	query, ok := s.translate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": query})
}

// translate parses the {"query": "..."} body and runs the LLM
// translation, writing the error response itself on failure.
func (s *Server) translate(c *gin.Context) (*nlquery.Query, bool) {
	if s.translator == nil {
		respondStatus(c, http.StatusServiceUnavailable, "natural language querying is not configured")
		return nil, false
	}

	var req struct {
		Query string `json:"query" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondStatus(c, http.StatusBadRequest, err.Error())
		return nil, false
	}

	query, err := s.translator.Translate(c.Request.Context(), req.Query)
	if err != nil {
		s.logger.Error("query translation failed", zap.Error(err))
		respondStatus(c, http.StatusBadGateway, "failed to translate query")
		return nil, false
	}
	return query, true
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
