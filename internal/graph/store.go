// Package graph implements the in-memory social graph engine: entity
// storage, follow/like edges, traversal, PageRank, similarity and
// aggregate statistics. The Store is the single owner of all mutable
// state; every other component reads through it.
package graph

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"socialgraph/pkg/errors"
)

// Recorder is an optional write-through persistence collaborator. It is
// notified after each successful in-memory mutation. The store is fully
// functional with a nil recorder; recorder failures are surfaced to the
// caller but never roll back the in-memory change.
type Recorder interface {
	AccountCreated(ctx context.Context, account *Account) error
	AttributesUpdated(ctx context.Context, account *Account) error
	PostCreated(ctx context.Context, post *Post) error
	Followed(ctx context.Context, follower, followee string) error
	Unfollowed(ctx context.Context, follower, followee string) error
	Liked(ctx context.Context, account, postID string) error
	Unliked(ctx context.Context, account, postID string) error
}

// Store holds all accounts, posts and relationship indices. Mutations
// take the write lock; queries take the read lock, so every read sees a
// consistent point-in-time state (forward and reverse indices are
// always updated together under the same lock).
type Store struct {
	mu sync.RWMutex

	accounts     map[string]*Account
	accountOrder []string // creation order, canonical iteration order

	posts         map[string]*Post
	postOrder     []string
	postsByAuthor map[string][]string

	// Follow adjacency: insertion-ordered slices for deterministic BFS
	// tie-breaking, backed by sets for O(1) membership checks.
	following    map[string][]string
	followingSet map[string]map[string]struct{}
	followers    map[string][]string
	followersSet map[string]map[string]struct{}

	likes    map[string][]string // account -> liked post IDs, insertion order
	likesSet map[string]map[string]struct{}
	likedBy  map[string]map[string]struct{} // post ID -> liking accounts

	followCount int
	likeCount   int

	now      func() time.Time
	recorder Recorder

	rankGroup singleflight.Group
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithClock overrides the timestamp source used for new posts.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithRecorder attaches a write-through persistence collaborator.
func WithRecorder(r Recorder) Option {
	return func(s *Store) { s.recorder = r }
}

// AttachRecorder attaches a write-through collaborator after
// construction. Used to replay a persisted snapshot into the store
// first without echoing every replayed mutation back to the backend.
func (s *Store) AttachRecorder(r Recorder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorder = r
}

// NewStore creates an empty in-memory graph store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		accounts:      make(map[string]*Account),
		posts:         make(map[string]*Post),
		postsByAuthor: make(map[string][]string),
		following:     make(map[string][]string),
		followingSet:  make(map[string]map[string]struct{}),
		followers:     make(map[string][]string),
		followersSet:  make(map[string]map[string]struct{}),
		likes:         make(map[string][]string),
		likesSet:      make(map[string]map[string]struct{}),
		likedBy:       make(map[string]map[string]struct{}),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAccount registers a new account with optional profile
// attributes. The name is the primary key and must be unique.
func (s *Store) CreateAccount(ctx context.Context, name string, attrs map[string]string) (*Account, error) {
	if name == "" {
		return nil, errors.New(errors.KindInvalidArgument, "account name must not be empty")
	}

	s.mu.Lock()
	if _, ok := s.accounts[name]; ok {
		s.mu.Unlock()
		return nil, errors.DuplicateKey("account", name)
	}

	account := &Account{Name: name, Attributes: cloneAttrs(attrs)}
	s.accounts[name] = account
	s.accountOrder = append(s.accountOrder, name)
	s.followingSet[name] = make(map[string]struct{})
	s.followersSet[name] = make(map[string]struct{})
	s.likesSet[name] = make(map[string]struct{})
	out := account.clone()
	rec := s.recorder
	s.mu.Unlock()

	if rec != nil {
		if err := rec.AccountCreated(ctx, out); err != nil {
			return out, err
		}
	}
	return out, nil
}

// UpdateAttributes merges the given attributes into an existing
// account's profile. Existing keys are overwritten.
func (s *Store) UpdateAttributes(ctx context.Context, name string, attrs map[string]string) (*Account, error) {
	s.mu.Lock()
	account, ok := s.accounts[name]
	if !ok {
		s.mu.Unlock()
		return nil, errors.NotFound("account", name)
	}
	if account.Attributes == nil {
		account.Attributes = make(map[string]string, len(attrs))
	}
	for k, v := range attrs {
		account.Attributes[k] = v
	}
	out := account.clone()
	rec := s.recorder
	s.mu.Unlock()

	if rec != nil {
		if err := rec.AttributesUpdated(ctx, out); err != nil {
			return out, err
		}
	}
	return out, nil
}

// CreatePost stores a new post for the given author. An empty postID
// gets a generated UUID. The timestamp comes from the store's clock.
func (s *Store) CreatePost(ctx context.Context, postID, author, content string) (*Post, error) {
	return s.CreatePostAt(ctx, postID, author, content, time.Time{})
}

// CreatePostAt stores a post with an explicit creation time. Used when
// replaying a persisted snapshot, where stamping the load time would
// rewrite the post's original creation time. A zero createdAt falls
// back to the store's clock.
func (s *Store) CreatePostAt(ctx context.Context, postID, author, content string, createdAt time.Time) (*Post, error) {
	if postID == "" {
		postID = uuid.NewString()
	}

	s.mu.Lock()
	if _, ok := s.accounts[author]; !ok {
		s.mu.Unlock()
		return nil, errors.NotFound("account", author)
	}
	if _, ok := s.posts[postID]; ok {
		s.mu.Unlock()
		return nil, errors.DuplicateKey("post", postID)
	}

	if createdAt.IsZero() {
		createdAt = s.now()
	}
	post := &Post{ID: postID, Author: author, Content: content, CreatedAt: createdAt}
	s.posts[postID] = post
	s.postOrder = append(s.postOrder, postID)
	s.postsByAuthor[author] = append(s.postsByAuthor[author], postID)
	s.likedBy[postID] = make(map[string]struct{})
	out := *post
	rec := s.recorder
	s.mu.Unlock()

	if rec != nil {
		if err := rec.PostCreated(ctx, &out); err != nil {
			return &out, err
		}
	}
	return &out, nil
}

// Follow inserts a directed follow edge. Already-following is a
// success no-op; self-follow is rejected.
func (s *Store) Follow(ctx context.Context, follower, followee string) error {
	s.mu.Lock()
	if _, ok := s.accounts[follower]; !ok {
		s.mu.Unlock()
		return errors.NotFound("account", follower)
	}
	if _, ok := s.accounts[followee]; !ok {
		s.mu.Unlock()
		return errors.NotFound("account", followee)
	}
	if follower == followee {
		s.mu.Unlock()
		return errors.New(errors.KindInvalidOperation, "account %s cannot follow itself", follower)
	}
	if _, ok := s.followingSet[follower][followee]; ok {
		s.mu.Unlock()
		return nil
	}

	s.following[follower] = append(s.following[follower], followee)
	s.followingSet[follower][followee] = struct{}{}
	s.followers[followee] = append(s.followers[followee], follower)
	s.followersSet[followee][follower] = struct{}{}
	s.followCount++
	rec := s.recorder
	s.mu.Unlock()

	if rec != nil {
		return rec.Followed(ctx, follower, followee)
	}
	return nil
}

// Unfollow removes a follow edge. Removing an absent edge is a
// success no-op; absent accounts are still an error.
func (s *Store) Unfollow(ctx context.Context, follower, followee string) error {
	s.mu.Lock()
	if _, ok := s.accounts[follower]; !ok {
		s.mu.Unlock()
		return errors.NotFound("account", follower)
	}
	if _, ok := s.accounts[followee]; !ok {
		s.mu.Unlock()
		return errors.NotFound("account", followee)
	}
	if _, ok := s.followingSet[follower][followee]; !ok {
		s.mu.Unlock()
		return nil
	}

	s.following[follower] = removeString(s.following[follower], followee)
	delete(s.followingSet[follower], followee)
	s.followers[followee] = removeString(s.followers[followee], follower)
	delete(s.followersSet[followee], follower)
	s.followCount--
	rec := s.recorder
	s.mu.Unlock()

	if rec != nil {
		return rec.Unfollowed(ctx, follower, followee)
	}
	return nil
}

// Like inserts a like edge from an account to a post. Already-liked is
// a success no-op.
func (s *Store) Like(ctx context.Context, account, postID string) error {
	s.mu.Lock()
	if _, ok := s.accounts[account]; !ok {
		s.mu.Unlock()
		return errors.NotFound("account", account)
	}
	if _, ok := s.posts[postID]; !ok {
		s.mu.Unlock()
		return errors.NotFound("post", postID)
	}
	if _, ok := s.likesSet[account][postID]; ok {
		s.mu.Unlock()
		return nil
	}

	s.likes[account] = append(s.likes[account], postID)
	s.likesSet[account][postID] = struct{}{}
	s.likedBy[postID][account] = struct{}{}
	s.likeCount++
	rec := s.recorder
	s.mu.Unlock()

	if rec != nil {
		return rec.Liked(ctx, account, postID)
	}
	return nil
}

// Unlike removes a like edge; absent edges are a success no-op.
func (s *Store) Unlike(ctx context.Context, account, postID string) error {
	s.mu.Lock()
	if _, ok := s.accounts[account]; !ok {
		s.mu.Unlock()
		return errors.NotFound("account", account)
	}
	if _, ok := s.posts[postID]; !ok {
		s.mu.Unlock()
		return errors.NotFound("post", postID)
	}
	if _, ok := s.likesSet[account][postID]; !ok {
		s.mu.Unlock()
		return nil
	}

	s.likes[account] = removeString(s.likes[account], postID)
	delete(s.likesSet[account], postID)
	delete(s.likedBy[postID], account)
	s.likeCount--
	rec := s.recorder
	s.mu.Unlock()

	if rec != nil {
		return rec.Unliked(ctx, account, postID)
	}
	return nil
}

// GetAccount returns a copy of the named account.
func (s *Store) GetAccount(name string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[name]
	if !ok {
		return nil, errors.NotFound("account", name)
	}
	return account.clone(), nil
}

// GetPost returns a copy of the post with the given ID.
func (s *Store) GetPost(postID string) (*Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[postID]
	if !ok {
		return nil, errors.NotFound("post", postID)
	}
	out := *post
	return &out, nil
}

// Accounts lists all accounts in creation order.
func (s *Store) Accounts() []*Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Account, 0, len(s.accountOrder))
	for _, name := range s.accountOrder {
		out = append(out, s.accounts[name].clone())
	}
	return out
}

// Posts lists all posts in creation order.
func (s *Store) Posts() []*Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Post, 0, len(s.postOrder))
	for _, id := range s.postOrder {
		p := *s.posts[id]
		out = append(out, &p)
	}
	return out
}

// PostsByAccount returns the account's posts, most recent first.
func (s *Store) PostsByAccount(name string) ([]*Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.accounts[name]; !ok {
		return nil, errors.NotFound("account", name)
	}

	ids := s.postsByAuthor[name]
	out := make([]*Post, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		p := *s.posts[ids[i]]
		out = append(out, &p)
	}
	// Insertion order already tracks the clock, but a custom clock in
	// tests may hand out non-monotonic timestamps.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Likes returns the IDs of the posts the account has liked, in the
// order the likes were made.
func (s *Store) Likes(name string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.accounts[name]; !ok {
		return nil, errors.NotFound("account", name)
	}
	return append([]string(nil), s.likes[name]...), nil
}

// Following returns the accounts the named account follows, in the
// order the edges were created.
func (s *Store) Following(name string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.accounts[name]; !ok {
		return nil, errors.NotFound("account", name)
	}
	return append([]string(nil), s.following[name]...), nil
}

// Followers returns the accounts following the named account.
func (s *Store) Followers(name string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.accounts[name]; !ok {
		return nil, errors.NotFound("account", name)
	}
	return append([]string(nil), s.followers[name]...), nil
}

func (a *Account) clone() *Account {
	return &Account{Name: a.Name, Attributes: cloneAttrs(a.Attributes)}
}

func cloneAttrs(attrs map[string]string) map[string]string {
	if attrs == nil {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

func removeString(s []string, v string) []string {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
