package graph

// Statistics computes aggregate counts over the current graph state.
func (s *Store) Statistics() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		Accounts: len(s.accounts),
		Posts:    len(s.posts),
		Follows:  s.followCount,
		Likes:    s.likeCount,
	}
	if stats.Accounts > 0 {
		stats.AvgOutDegree = float64(s.followCount) / float64(stats.Accounts)
	}

	for _, name := range s.accountOrder {
		in := len(s.followersSet[name])
		switch {
		case in > stats.MaxInDegree:
			stats.MaxInDegree = in
			stats.MostFollowed = []string{name}
		case in == stats.MaxInDegree && in > 0:
			stats.MostFollowed = append(stats.MostFollowed, name)
		}
	}
	return stats
}
