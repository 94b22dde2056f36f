package testpool

import "context"

// VisibleTests assembles the bounded visible set for one requester: default
// cases always, then (once the contribution gate is passed) the requester's
// own cases and a sample of public peer cases. Admins see the whole pool.
func (e *Engine) VisibleTests(ctx context.Context, pool string, viewer Principal, opts Options) ([]TestCase, error) {
	all, err := e.store.ListPool(ctx, pool)
	if err != nil {
		return nil, err
	}
	if viewer.IsAdmin() {
		return all, nil
	}

	var defaults, own, peers []TestCase
	ownPublic := 0
	for _, tc := range all {
		switch {
		case tc.IsDefault:
			defaults = append(defaults, tc)
		case tc.Author == viewer.ID:
			own = append(own, tc)
			if tc.IsPublic {
				ownPublic++
			}
		case tc.IsPublic:
			peers = append(peers, tc)
		}
	}

	// Contribution gate: until the requester has shared enough public cases
	// of their own, even their own private cases stay withheld.
	if ownPublic < opts.NumPublicTestsForAccess {
		return defaults, nil
	}

	sampled := e.samplePeers(peers, opts.MaxNumReturnedTests, opts.WeightReturnedTests)
	out := make([]TestCase, 0, len(defaults)+len(own)+len(sampled))
	out = append(out, defaults...)
	out = append(out, own...)
	out = append(out, sampled...)
	return out, nil
}

// samplePeers draws at most max items without replacement. Uniform mode is a
// truncated Fisher-Yates permutation; weighted mode draws proportionally to
// (likes+1), removing each pick from the candidate set. The weight floor of 1
// keeps every candidate reachable.
func (e *Engine) samplePeers(peers []TestCase, max int, weighted bool) []TestCase {
	if max <= 0 || len(peers) == 0 {
		return nil
	}
	if len(peers) <= max {
		out := make([]TestCase, len(peers))
		copy(out, peers)
		return out
	}

	pool := make([]TestCase, len(peers))
	copy(pool, peers)

	if !weighted {
		for i := len(pool) - 1; i > 0; i-- {
			j := e.intn(i + 1)
			pool[i], pool[j] = pool[j], pool[i]
		}
		return pool[:max]
	}

	weights := make([]int, len(pool))
	total := 0
	for i, tc := range pool {
		weights[i] = tc.NumLiked() + 1
		total += weights[i]
	}

	out := make([]TestCase, 0, max)
	for len(out) < max && len(pool) > 0 {
		r := e.intn(total)
		idx := 0
		for r >= weights[idx] {
			r -= weights[idx]
			idx++
		}
		out = append(out, pool[idx])
		total -= weights[idx]
		pool = append(pool[:idx], pool[idx+1:]...)
		weights = append(weights[:idx], weights[idx+1:]...)
	}
	return out
}
