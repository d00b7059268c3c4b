package common

import (
	"cmp"
	"math/rand"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// Partition splits set into the elements for which pred holds and the rest.
func Partition[T comparable](set mapset.Set[T], pred func(T) bool) (matching, rest mapset.Set[T]) {
	matching = mapset.NewSet[T]()
	rest = mapset.NewSet[T]()
	for _, v := range set.ToSlice() {
		if pred(v) {
			matching.Add(v)
		} else {
			rest.Add(v)
		}
	}
	return matching, rest
}

// Sample picks k distinct elements of set uniformly at random. k is clamped
// to [0, |set|]. Elements are ordered before sampling so that a seeded rng
// gives reproducible picks.
func Sample[T cmp.Ordered](set mapset.Set[T], k int, rng *rand.Rand) []T {
	items := set.ToSlice()
	k = min(max(k, 0), len(items))
	if k == 0 {
		return []T{}
	}
	slices.Sort(items)

	// partial Fisher-Yates
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(items)-i)
		items[i], items[j] = items[j], items[i]
	}
	return items[:k]
}
