package graph

import "time"

// Account is a registered user in the social graph. The name is the
// primary key and never changes; attributes are free-form profile
// fields and are the only part of an account that may be updated.
type Account struct {
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Post is a piece of content authored by an account. Immutable after
// creation; likes live in the store's edge indices, not on the post.
type Post struct {
	ID        string    `json:"post_id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Connection is an account reached by a bounded-depth traversal,
// tagged with the minimum hop distance at which it was found.
type Connection struct {
	Name     string `json:"connection"`
	Distance int    `json:"distance"`
}

// Path is the result of a shortest-path query. An unreachable target
// is a normal result (Found=false), not an error.
type Path struct {
	Found  bool     `json:"found"`
	Nodes  []string `json:"path"`
	Length int      `json:"length"`
}

// AccountSimilarity scores another account against the query account
// by Jaccard similarity of their outgoing-follow sets.
type AccountSimilarity struct {
	Name          string  `json:"similar_account"`
	CommonFollows int     `json:"common_follows"`
	Similarity    float64 `json:"similarity_score"`
}

// PostRecommendation is a candidate post for an account, scored by the
// similarity of its author to that account.
type PostRecommendation struct {
	Post  Post    `json:"post"`
	Score float64 `json:"recommendation_score"`
}

// AccountScore is one entry of a PageRank ranking.
type AccountScore struct {
	Name  string  `json:"account"`
	Score float64 `json:"pagerank"`
}

// Stats are aggregate counts over the current graph state.
type Stats struct {
	Accounts     int      `json:"account_count"`
	Posts        int      `json:"post_count"`
	Follows      int      `json:"follow_count"`
	Likes        int      `json:"like_count"`
	AvgOutDegree float64  `json:"avg_out_degree"`
	MaxInDegree  int      `json:"max_in_degree"`
	MostFollowed []string `json:"most_followed"`
}
