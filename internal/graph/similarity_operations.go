package graph

import (
	"sort"

	"socialgraph/pkg/errors"
)

// CommonConnections returns the accounts that both given accounts
// follow directly, in the order the first account followed them. The
// result is symmetric in content; only the ordering depends on the
// argument order.
func (s *Store) CommonConnections(account1, account2 string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.accounts[account1]; !ok {
		return nil, errors.NotFound("account", account1)
	}
	if _, ok := s.accounts[account2]; !ok {
		return nil, errors.NotFound("account", account2)
	}

	other := s.followingSet[account2]
	var common []string
	for _, followee := range s.following[account1] {
		if _, ok := other[followee]; ok {
			common = append(common, followee)
		}
	}
	return common, nil
}

// SimilarAccounts ranks all other accounts by Jaccard similarity of
// their outgoing-follow sets against the named account's. Only nonzero
// similarities are returned, sorted descending with alphabetical tie
// break. A non-positive limit returns all matches.
func (s *Store) SimilarAccounts(name string, limit int) ([]AccountSimilarity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.accounts[name]; !ok {
		return nil, errors.NotFound("account", name)
	}
	return s.similarAccountsLocked(name, limit), nil
}

// similarAccountsLocked assumes the read lock is held.
func (s *Store) similarAccountsLocked(name string, limit int) []AccountSimilarity {
	mine := s.followingSet[name]

	var similar []AccountSimilarity
	for _, other := range s.accountOrder {
		if other == name {
			continue
		}
		theirs := s.followingSet[other]
		common := 0
		for followee := range theirs {
			if _, ok := mine[followee]; ok {
				common++
			}
		}
		union := len(mine) + len(theirs) - common
		if common == 0 || union == 0 {
			continue
		}
		similar = append(similar, AccountSimilarity{
			Name:          other,
			CommonFollows: common,
			Similarity:    float64(common) / float64(union),
		})
	}

	sort.Slice(similar, func(i, j int) bool {
		if similar[i].Similarity != similar[j].Similarity {
			return similar[i].Similarity > similar[j].Similarity
		}
		return similar[i].Name < similar[j].Name
	})
	if limit > 0 && len(similar) > limit {
		similar = similar[:limit]
	}
	return similar
}

// RecommendedPosts suggests posts authored by accounts similar to the
// named account, excluding posts it already liked. Candidates are
// scored by their author's similarity; ties go to the most recent post.
// A non-positive limit returns all candidates.
func (s *Store) RecommendedPosts(name string, limit int) ([]PostRecommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.accounts[name]; !ok {
		return nil, errors.NotFound("account", name)
	}

	liked := s.likesSet[name]
	var recs []PostRecommendation
	for _, sim := range s.similarAccountsLocked(name, 0) {
		for _, postID := range s.postsByAuthor[sim.Name] {
			if _, ok := liked[postID]; ok {
				continue
			}
			recs = append(recs, PostRecommendation{Post: *s.posts[postID], Score: sim.Similarity})
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].Post.CreatedAt.After(recs[j].Post.CreatedAt)
	})
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}
