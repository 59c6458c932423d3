package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialgraph/internal/graph"
	"socialgraph/internal/nlquery"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubTranslator struct {
	query *nlquery.Query
	err   error
}

func (s *stubTranslator) Translate(_ context.Context, _ string) (*nlquery.Query, error) {
	return s.query, s.err
}

func newTestServer(t *testing.T, translator Translator) (*Server, *gin.Engine) {
	t.Helper()
	store := graph.NewStore()
	ctx := context.Background()
	for _, name := range []string{"alice", "bob", "carol"} {
		if _, err := store.CreateAccount(ctx, name, nil); err != nil {
			t.Fatal(err)
		}
	}
	require.NoError(t, store.Follow(ctx, "alice", "bob"))
	require.NoError(t, store.Follow(ctx, "bob", "carol"))
	_, err := store.CreatePost(ctx, "p1", "bob", "hello world")
	require.NoError(t, err)

	srv := NewServer(store, translator, graph.RankOptions{})
	return srv, srv.Router()
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	_, router := newTestServer(t, nil)
	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestShortestPathEndpoint(t *testing.T) {
	_, router := newTestServer(t, nil)

	w := doJSON(t, router, http.MethodPost, "/api/graph/shortest-path",
		gin.H{"from": "alice", "to": "carol"})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, true, body["found"])
	assert.Equal(t, []interface{}{"alice", "bob", "carol"}, body["path"])
	assert.Equal(t, float64(2), body["length"])
}

func TestShortestPathEndpoint_UnknownAccount(t *testing.T) {
	_, router := newTestServer(t, nil)
	w := doJSON(t, router, http.MethodPost, "/api/graph/shortest-path",
		gin.H{"from": "alice", "to": "ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConnectionsEndpoint(t *testing.T) {
	_, router := newTestServer(t, nil)

	w := doJSON(t, router, http.MethodPost, "/api/graph/connections",
		gin.H{"name": "alice", "depth": 2})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(2), body["count"])
}

func TestConnectionsEndpoint_NegativeDepth(t *testing.T) {
	_, router := newTestServer(t, nil)
	w := doJSON(t, router, http.MethodPost, "/api/graph/connections",
		gin.H{"name": "alice", "depth": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAccountEndpoint(t *testing.T) {
	_, router := newTestServer(t, nil)

	// Arbitrary extra fields become profile attributes.
	w := doJSON(t, router, http.MethodPost, "/api/accounts",
		gin.H{"name": "dave", "bio": "new here", "age": 30})
	require.Equal(t, http.StatusOK, w.Code)

	account := decode(t, w)["account"].(map[string]interface{})
	attrs := account["attributes"].(map[string]interface{})
	assert.Equal(t, "new here", attrs["bio"])
	assert.Equal(t, "30", attrs["age"])

	// Duplicate name conflicts.
	w = doJSON(t, router, http.MethodPost, "/api/accounts", gin.H{"name": "dave"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestFollowEndpoint_ErrorMapping(t *testing.T) {
	_, router := newTestServer(t, nil)

	cases := []struct {
		body gin.H
		code int
	}{
		{gin.H{"follower": "alice", "followee": "carol"}, http.StatusOK},
		{gin.H{"follower": "alice", "followee": "alice"}, http.StatusBadRequest},
		{gin.H{"follower": "alice", "followee": "ghost"}, http.StatusNotFound},
		{gin.H{"follower": "alice"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		w := doJSON(t, router, http.MethodPost, "/api/accounts/follow", tc.body)
		assert.Equal(t, tc.code, w.Code, "body %v", tc.body)
	}
}

func TestErrorEnvelope_Uniform(t *testing.T) {
	_, router := newTestServer(t, nil)

	// Binding failures and domain errors share the same envelope.
	cases := []struct {
		name string
		w    *httptest.ResponseRecorder
	}{
		{"missing field", doJSON(t, router, http.MethodPost, "/api/accounts/follow",
			gin.H{"follower": "alice"})},
		{"unknown account", doJSON(t, router, http.MethodPost, "/api/accounts/follow",
			gin.H{"follower": "alice", "followee": "ghost"})},
		{"nl not configured", doJSON(t, router, http.MethodPost, "/api/query",
			gin.H{"query": "who follows alice?"})},
	}
	for _, tc := range cases {
		body := decode(t, tc.w)
		assert.Equal(t, false, body["success"], "%s: %s", tc.name, tc.w.Body.String())
		assert.NotEmpty(t, body["error"], "%s: %s", tc.name, tc.w.Body.String())
	}
}

func TestLikeUnlikeEndpoints(t *testing.T) {
	_, router := newTestServer(t, nil)

	w := doJSON(t, router, http.MethodPost, "/api/posts/like",
		gin.H{"account_name": "alice", "post_id": "p1"})
	require.Equal(t, http.StatusOK, w.Code)

	// Idempotent unlike: both calls succeed.
	for i := 0; i < 2; i++ {
		w = doJSON(t, router, http.MethodPost, "/api/posts/unlike",
			gin.H{"account_name": "alice", "post_id": "p1"})
		assert.Equal(t, http.StatusOK, w.Code, "unlike attempt %d", i+1)
	}
}

func TestCreatePostEndpoint_GeneratedID(t *testing.T) {
	_, router := newTestServer(t, nil)

	w := doJSON(t, router, http.MethodPost, "/api/posts",
		gin.H{"account_name": "alice", "content": "my first post"})
	require.Equal(t, http.StatusOK, w.Code)

	post := decode(t, w)["post"].(map[string]interface{})
	assert.NotEmpty(t, post["post_id"])
	assert.Equal(t, "alice", post["author"])
}

func TestAccountPostsEndpoint_Pagination(t *testing.T) {
	_, router := newTestServer(t, nil)
	for i := 0; i < 5; i++ {
		w := doJSON(t, router, http.MethodPost, "/api/posts",
			gin.H{"account_name": "carol", "content": fmt.Sprintf("post %d", i)})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/api/accounts/carol/posts?limit=2&skip=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode(t, w)["count"])
}

func TestPageRankEndpoint(t *testing.T) {
	_, router := newTestServer(t, nil)

	w := doJSON(t, router, http.MethodGet, "/api/analytics/pagerank?iterations=30", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	ranked := body["pagerank"].([]interface{})
	require.Len(t, ranked, 3)
	top := ranked[0].(map[string]interface{})
	assert.Equal(t, "carol", top["account"])
	assert.Greater(t, body["iterations"], float64(0))
}

func TestStatisticsEndpoint(t *testing.T) {
	_, router := newTestServer(t, nil)

	w := doJSON(t, router, http.MethodGet, "/api/analytics/statistics", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(3), body["account_count"])
	assert.Equal(t, float64(2), body["follow_count"])
}

func TestCommonConnectionsEndpoint(t *testing.T) {
	_, router := newTestServer(t, nil)
	// alice and carol both follow bob after this.
	w := doJSON(t, router, http.MethodPost, "/api/accounts/follow",
		gin.H{"follower": "carol", "followee": "bob"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/analytics/common-connections",
		gin.H{"account1": "alice", "account2": "carol"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"bob"}, decode(t, w)["common_connections"])
}

func TestSimilarAccountsEndpoint(t *testing.T) {
	_, router := newTestServer(t, nil)
	w := doJSON(t, router, http.MethodPost, "/api/accounts/follow",
		gin.H{"follower": "carol", "followee": "bob"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/accounts/alice/similar", nil)
	require.Equal(t, http.StatusOK, w.Code)

	similar := decode(t, w)["similar_accounts"].([]interface{})
	require.Len(t, similar, 1)
	assert.Equal(t, "carol", similar[0].(map[string]interface{})["similar_account"])
}

func TestQueryEndpoint_NotConfigured(t *testing.T) {
	_, router := newTestServer(t, nil)
	w := doJSON(t, router, http.MethodPost, "/api/query", gin.H{"query": "who follows alice?"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestQueryEndpoint_TranslatesAndExecutes(t *testing.T) {
	stub := &stubTranslator{query: &nlquery.Query{
		Op:   "shortest_path",
		Args: map[string]interface{}{"from": "alice", "to": "carol"},
	}}
	_, router := newTestServer(t, stub)

	w := doJSON(t, router, http.MethodPost, "/api/query", gin.H{"query": "how do alice and carol connect?"})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	results := body["results"].(map[string]interface{})
	assert.Equal(t, true, results["found"])
}

func TestConvertEndpoint(t *testing.T) {
	stub := &stubTranslator{query: &nlquery.Query{Op: "statistics"}}
	_, router := newTestServer(t, stub)

	w := doJSON(t, router, http.MethodPost, "/api/convert", gin.H{"query": "how big is the graph?"})
	require.Equal(t, http.StatusOK, w.Code)

	plan := decode(t, w)["plan"].(map[string]interface{})
	assert.Equal(t, "statistics", plan["op"])
}

func TestUpdateAttributesEndpoint(t *testing.T) {
	_, router := newTestServer(t, nil)

	w := doJSON(t, router, http.MethodPut, "/api/accounts/alice/attributes",
		gin.H{"bio": "updated"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/accounts/alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	attrs := decode(t, w)["attributes"].(map[string]interface{})
	assert.Equal(t, "updated", attrs["bio"])
}
