package shopping

import "github.com/household-hub/companion/internal/domain/entity"

// Partition splits aggregated lists into active and archived buckets by completion date,
// preserving input order within each bucket.
func Partition(lists []entity.AggregatedList) entity.ListPartition {
	partition := entity.ListPartition{
		Active:   make([]entity.AggregatedList, 0, len(lists)),
		Archived: make([]entity.AggregatedList, 0),
	}

	for _, list := range lists {
		if list.List.IsArchived() {
			partition.Archived = append(partition.Archived, list)
		} else {
			partition.Active = append(partition.Active, list)
		}
	}

	return partition
}
