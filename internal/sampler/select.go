package sampler

import (
	"fmt"
	"math/rand"
)

// SelectCategoryIDs picks k distinct ids from universe uniformly at random
// without replacement: a Fisher–Yates shuffle over a deduplicated copy,
// truncated to k. The result is deterministic for a seeded rng. universe is
// not modified.
func SelectCategoryIDs(universe []int, k int, rng *rand.Rand) ([]int, error) {
	if k < 0 {
		return nil, fmt.Errorf("sampler: negative selection size %d", k)
	}
	ids := dedupe(universe)
	if len(ids) < k {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientCandidates, len(ids), k)
	}
	for i := len(ids) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids[:k:k], nil
}

// dedupe returns a copy of ids without repeats, first occurrence kept.
func dedupe(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
