package core

import (
	"sort"

	"pkgs-web/internal/types"
)

// LatestPackages returns up to n records, most recently updated first. Ties
// are broken by name so the order does not depend on map iteration.
func LatestPackages(set types.EnrichedSet, n int) []types.EnrichedRecord {
	if n <= 0 || len(set) == 0 {
		return []types.EnrichedRecord{}
	}
	records := make([]types.EnrichedRecord, 0, len(set))
	for _, record := range set {
		records = append(records, record)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].LastUpdate != records[j].LastUpdate {
			return records[i].LastUpdate > records[j].LastUpdate
		}
		return records[i].Name < records[j].Name
	})
	if n < len(records) {
		records = records[:n]
	}
	return records
}
