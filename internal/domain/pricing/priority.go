package pricing

import (
	"sort"

	"github.com/google/uuid"
)

// RankByPurchasePriority orders the appropriate cars for restocking.
// Cars already sold before come first, fewest sales first; ties keep appropriate order.
// Cars never sold follow in appropriate order. Cars absent from appropriate are dropped.
func RankByPurchasePriority(appropriate []uuid.UUID, historyCounts map[uuid.UUID]int64) []uuid.UUID {
	type ranked struct {
		carID uuid.UUID
		count int64
	}

	seen := make(map[uuid.UUID]struct{}, len(appropriate))
	sold := make([]ranked, 0, len(appropriate))
	unsold := make([]uuid.UUID, 0, len(appropriate))

	for _, carID := range appropriate {
		if _, dup := seen[carID]; dup {
			continue
		}
		seen[carID] = struct{}{}

		if count := historyCounts[carID]; count > 0 {
			sold = append(sold, ranked{carID: carID, count: count})
		} else {
			unsold = append(unsold, carID)
		}
	}

	sort.SliceStable(sold, func(i, j int) bool {
		return sold[i].count < sold[j].count
	})

	result := make([]uuid.UUID, 0, len(sold)+len(unsold))
	for _, r := range sold {
		result = append(result, r.carID)
	}
	return append(result, unsold...)
}
