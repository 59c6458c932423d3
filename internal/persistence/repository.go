// Package persistence is the optional Neo4j collaborator: it mirrors
// every in-memory mutation (write-through) and can replay a stored
// graph into the engine at startup. The engine never depends on it.
package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"socialgraph/internal/graph"
	"socialgraph/pkg/logger"
)

// Repository handles all Neo4j database operations. It implements
// graph.Recorder.
type Repository struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewRepository creates a new Neo4j-backed repository.
func NewRepository(driver neo4j.DriverWithContext) *Repository {
	return &Repository{
		driver: driver,
		logger: logger.Get(),
	}
}

// Close closes the Neo4j driver connection.
func (r *Repository) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

// EnsureSchema creates the uniqueness constraints and indexes the
// graph relies on. Safe to run repeatedly.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE CONSTRAINT account_name_unique IF NOT EXISTS
		 FOR (a:Account) REQUIRE a.name IS UNIQUE`,
		`CREATE CONSTRAINT post_id_unique IF NOT EXISTS
		 FOR (p:Post) REQUIRE p.post_id IS UNIQUE`,
		`CREATE INDEX post_timestamp_index IF NOT EXISTS
		 FOR (p:Post) ON (p.timestamp)`,
	}

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	for _, stmt := range statements {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

func (r *Repository) write(ctx context.Context, query string, params map[string]interface{}) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	if _, err := result.Consume(ctx); err != nil {
		return fmt.Errorf("failed to consume result: %w", err)
	}
	return nil
}

// AccountCreated persists a new account node with its attributes.
func (r *Repository) AccountCreated(ctx context.Context, account *graph.Account) error {
	query := `
		MERGE (a:Account {name: $name})
		SET a += $attrs
	`
	return r.write(ctx, query, map[string]interface{}{
		"name":  account.Name,
		"attrs": attrsToProps(account.Attributes),
	})
}

// AttributesUpdated merges updated profile attributes onto the node.
func (r *Repository) AttributesUpdated(ctx context.Context, account *graph.Account) error {
	query := `
		MATCH (a:Account {name: $name})
		SET a += $attrs
	`
	return r.write(ctx, query, map[string]interface{}{
		"name":  account.Name,
		"attrs": attrsToProps(account.Attributes),
	})
}

// PostCreated persists a post node linked to its author.
func (r *Repository) PostCreated(ctx context.Context, post *graph.Post) error {
	query := `
		MATCH (a:Account {name: $author})
		MERGE (p:Post {post_id: $post_id})
		SET p.post_content = $content, p.timestamp = $timestamp
		MERGE (a)-[:Posts]->(p)
	`
	return r.write(ctx, query, map[string]interface{}{
		"author":    post.Author,
		"post_id":   post.ID,
		"content":   post.Content,
		"timestamp": post.CreatedAt,
	})
}

// Followed persists a follow edge. MERGE keeps it idempotent.
func (r *Repository) Followed(ctx context.Context, follower, followee string) error {
	query := `
		MATCH (follower:Account {name: $follower})
		MATCH (followee:Account {name: $followee})
		MERGE (follower)-[rel:Follows]->(followee)
		ON CREATE SET rel.since = datetime()
	`
	return r.write(ctx, query, map[string]interface{}{
		"follower": follower,
		"followee": followee,
	})
}

// Unfollowed removes a follow edge if present.
func (r *Repository) Unfollowed(ctx context.Context, follower, followee string) error {
	query := `
		MATCH (follower:Account {name: $follower})-[rel:Follows]->(followee:Account {name: $followee})
		DELETE rel
	`
	return r.write(ctx, query, map[string]interface{}{
		"follower": follower,
		"followee": followee,
	})
}

// Liked persists a like edge. MERGE keeps it idempotent.
func (r *Repository) Liked(ctx context.Context, account, postID string) error {
	query := `
		MATCH (a:Account {name: $account})
		MATCH (p:Post {post_id: $post_id})
		MERGE (a)-[rel:Likes]->(p)
		ON CREATE SET rel.timestamp = datetime()
	`
	return r.write(ctx, query, map[string]interface{}{
		"account": account,
		"post_id": postID,
	})
}

// Unliked removes a like edge if present.
func (r *Repository) Unliked(ctx context.Context, account, postID string) error {
	query := `
		MATCH (a:Account {name: $account})-[rel:Likes]->(p:Post {post_id: $post_id})
		DELETE rel
	`
	return r.write(ctx, query, map[string]interface{}{
		"account": account,
		"post_id": postID,
	})
}

// LoadInto replays the stored graph into the in-memory store. Accounts
// are replayed in name order, which becomes the store's canonical
// iteration order across restarts.
func (r *Repository) LoadInto(ctx context.Context, store *graph.Store) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	loaded := struct{ accounts, posts, follows, likes int }{}

	// Accounts with their profile attributes.
	result, err := session.Run(ctx, `MATCH (a:Account) RETURN properties(a) AS props ORDER BY a.name`, nil)
	if err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}
	for result.Next(ctx) {
		props, _ := result.Record().Get("props")
		propsMap, ok := props.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := propsMap["name"].(string)
		if name == "" {
			continue
		}
		if _, err := store.CreateAccount(ctx, name, propsToAttrs(propsMap)); err != nil {
			return fmt.Errorf("failed to replay account %s: %w", name, err)
		}
		loaded.accounts++
	}
	if err := result.Err(); err != nil {
		return fmt.Errorf("account load iteration failed: %w", err)
	}

	// Posts, oldest first so replay preserves per-author ordering. The
	// stored timestamp is passed through so created_at survives the
	// restart instead of being restamped with the load time.
	result, err = session.Run(ctx, `
		MATCH (a:Account)-[:Posts]->(p:Post)
		RETURN a.name AS author, p.post_id AS post_id, p.post_content AS content, p.timestamp AS timestamp
		ORDER BY p.timestamp ASC, p.post_id ASC`, nil)
	if err != nil {
		return fmt.Errorf("failed to load posts: %w", err)
	}
	for result.Next(ctx) {
		record := result.Record()
		author := stringValue(record, "author")
		postID := stringValue(record, "post_id")
		content := stringValue(record, "content")
		createdAt := timeValue(record, "timestamp")
		if _, err := store.CreatePostAt(ctx, postID, author, content, createdAt); err != nil {
			return fmt.Errorf("failed to replay post %s: %w", postID, err)
		}
		loaded.posts++
	}
	if err := result.Err(); err != nil {
		return fmt.Errorf("post load iteration failed: %w", err)
	}

	// Follow edges, ordered by creation time where available.
	result, err = session.Run(ctx, `
		MATCH (follower:Account)-[rel:Follows]->(followee:Account)
		RETURN follower.name AS follower, followee.name AS followee
		ORDER BY rel.since ASC, follower.name ASC, followee.name ASC`, nil)
	if err != nil {
		return fmt.Errorf("failed to load follows: %w", err)
	}
	for result.Next(ctx) {
		record := result.Record()
		if err := store.Follow(ctx, stringValue(record, "follower"), stringValue(record, "followee")); err != nil {
			return fmt.Errorf("failed to replay follow: %w", err)
		}
		loaded.follows++
	}
	if err := result.Err(); err != nil {
		return fmt.Errorf("follow load iteration failed: %w", err)
	}

	// Like edges.
	result, err = session.Run(ctx, `
		MATCH (a:Account)-[rel:Likes]->(p:Post)
		RETURN a.name AS account, p.post_id AS post_id
		ORDER BY rel.timestamp ASC, a.name ASC, p.post_id ASC`, nil)
	if err != nil {
		return fmt.Errorf("failed to load likes: %w", err)
	}
	for result.Next(ctx) {
		record := result.Record()
		if err := store.Like(ctx, stringValue(record, "account"), stringValue(record, "post_id")); err != nil {
			return fmt.Errorf("failed to replay like: %w", err)
		}
		loaded.likes++
	}
	if err := result.Err(); err != nil {
		return fmt.Errorf("like load iteration failed: %w", err)
	}

	r.logger.Info("loaded graph snapshot from Neo4j",
		zap.Int("accounts", loaded.accounts),
		zap.Int("posts", loaded.posts),
		zap.Int("follows", loaded.follows),
		zap.Int("likes", loaded.likes),
	)
	return nil
}

func attrsToProps(attrs map[string]string) map[string]interface{} {
	props := make(map[string]interface{}, len(attrs))
	for k, v := range attrs {
		props[k] = v
	}
	return props
}

func propsToAttrs(props map[string]interface{}) map[string]string {
	attrs := make(map[string]string)
	for k, v := range props {
		if k == "name" {
			continue
		}
		switch value := v.(type) {
		case string:
			attrs[k] = value
		default:
			attrs[k] = fmt.Sprintf("%v", value)
		}
	}
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}

func stringValue(record *neo4j.Record, key string) string {
	v, ok := record.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func timeValue(record *neo4j.Record, key string) time.Time {
	v, ok := record.Get(key)
	if !ok {
		return time.Time{}
	}
	t, _ := v.(time.Time)
	return t
}

var _ graph.Recorder = (*Repository)(nil)
