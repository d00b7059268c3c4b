package common

import (
	"math/rand"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
)

func TestPartition(t *testing.T) {
	tests := []struct {
		name         string
		set          mapset.Set[int]
		pred         func(int) bool
		wantMatching mapset.Set[int]
		wantRest     mapset.Set[int]
	}{
		{
			name:         "Empty set",
			set:          mapset.NewSet[int](),
			pred:         func(int) bool { return true },
			wantMatching: mapset.NewSet[int](),
			wantRest:     mapset.NewSet[int](),
		},
		{
			name:         "Split by membership",
			set:          mapset.NewSet(1, 2, 3, 4),
			pred:         func(v int) bool { return v%2 == 0 },
			wantMatching: mapset.NewSet(2, 4),
			wantRest:     mapset.NewSet(1, 3),
		},
		{
			name:         "Nothing matches",
			set:          mapset.NewSet(5, 6),
			pred:         func(int) bool { return false },
			wantMatching: mapset.NewSet[int](),
			wantRest:     mapset.NewSet(5, 6),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matching, rest := Partition(tt.set, tt.pred)
			if !matching.Equal(tt.wantMatching) {
				t.Errorf("Partition() matching = %v, want %v", matching, tt.wantMatching)
			}
			if !rest.Equal(tt.wantRest) {
				t.Errorf("Partition() rest = %v, want %v", rest, tt.wantRest)
			}
		})
	}
}

func TestSample(t *testing.T) {
	set := mapset.NewSet(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)

	tests := []struct {
		name    string
		k       int
		wantLen int
	}{
		{name: "Negative", k: -1, wantLen: 0},
		{name: "Zero", k: 0, wantLen: 0},
		{name: "Some", k: 3, wantLen: 3},
		{name: "All", k: 10, wantLen: 10},
		{name: "More than available", k: 25, wantLen: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sample(set, tt.k, rand.New(rand.NewSource(1)))
			if len(got) != tt.wantLen {
				t.Fatalf("Sample() returned %d elements, want %d", len(got), tt.wantLen)
			}
			picked := mapset.NewSet(got...)
			if picked.Cardinality() != len(got) {
				t.Errorf("Sample() = %v, contains duplicates", got)
			}
			if !picked.IsSubset(set) {
				t.Errorf("Sample() = %v, not a subset of %v", got, set)
			}
		})
	}
}

func TestSampleIsReproducible(t *testing.T) {
	set := mapset.NewSet(10, 20, 30, 40, 50)
	first := Sample(set, 2, rand.New(rand.NewSource(42)))
	second := Sample(set, 2, rand.New(rand.NewSource(42)))
	if !mapset.NewSet(first...).Equal(mapset.NewSet(second...)) {
		t.Errorf("Sample() with equal seeds = %v and %v", first, second)
	}
}
