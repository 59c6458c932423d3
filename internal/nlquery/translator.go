// Package nlquery bridges natural language to the graph engine: an LLM
// translates free-form questions into one of the engine's structured
// query operations, and an executor dispatches the result.
package nlquery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"socialgraph/pkg/logger"
)

// Query is a structured graph query produced by translation.
type Query struct {
	Op   string                 `json:"op"`
	Args map[string]interface{} `json:"args,omitempty"`
}

const systemPrompt = `You are an expert query planner for a social graph engine.

The engine supports these operations:
- shortest_path        args: from (string), to (string)
- connections          args: name (string), depth (int)
- pagerank             args: iterations (int, optional), damping (float, optional)
- common_connections   args: account1 (string), account2 (string)
- similar_accounts     args: name (string), limit (int, optional)
- recommended_posts    args: name (string), limit (int, optional)
- account_posts        args: name (string), limit (int, optional)
- statistics           args: none

Entities: Account {name}, Post {post_id, content}. Relationships:
Account -Follows-> Account, Account -Posts-> Post, Account -Likes-> Post.

Examples:
Q: How do alice and carol connect?
A: {"op": "shortest_path", "args": {"from": "alice", "to": "carol"}}
Q: Who can bob reach within two hops?
A: {"op": "connections", "args": {"name": "bob", "depth": 2}}
Q: Which accounts are most influential?
A: {"op": "pagerank", "args": {}}
Q: Who do alice and bob both follow?
A: {"op": "common_connections", "args": {"account1": "alice", "account2": "bob"}}
Q: Suggest posts for carol
A: {"op": "recommended_posts", "args": {"name": "carol", "limit": 10}}

Convert the user's question into exactly one operation. Respond with
only the JSON object, no explanations or markdown.`

// Translator converts natural language queries into structured graph
// queries via an OpenAI-compatible chat endpoint.
type Translator struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewTranslator creates a translator against the given endpoint. An
// empty apiKey is replaced with a placeholder so OpenAI-compatible
// proxies without auth still work.
func NewTranslator(baseURL, apiKey, model string) *Translator {
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &Translator{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: logger.Get(),
	}
}

// Translate converts a natural language question into a structured
// query. The model's answer must be a single JSON object; markdown
// fences are tolerated and stripped.
func (t *Translator) Translate(ctx context.Context, question string) (*Query, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       t.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("translation request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("translation returned no choices")
	}

	raw := stripFences(resp.Choices[0].Message.Content)
	t.logger.Debug("translated natural language query",
		zap.String("question", question),
		zap.String("plan", raw),
	)

	var query Query
	if err := json.Unmarshal([]byte(raw), &query); err != nil {
		return nil, fmt.Errorf("model returned invalid plan %q: %w", raw, err)
	}
	if query.Op == "" {
		return nil, fmt.Errorf("model returned a plan without an operation: %q", raw)
	}
	return &query, nil
}

// stripFences removes a surrounding markdown code block, which some
// models insist on adding despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
