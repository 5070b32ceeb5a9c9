package ecs

import "sort"

// StorageStats is a snapshot of storage occupancy.
type StorageStats struct {
	IssuedIds          int
	TotalEntityCount   int
	ComponentBreakdown []ComponentStats
	SingletonCount     int
	SingletonTypes     []string
}

// ComponentStats reports how many entities carry one component type.
type ComponentStats struct {
	Bit   uint8
	Name  string
	Count int
}

// CollectStats walks the storage and returns occupancy statistics.
func (s *Storage) CollectStats() StorageStats {
	stats := StorageStats{
		IssuedIds:      int(s.MaxId()),
		SingletonCount: len(s.singletons),
	}

	for id := EntityId(1); id < s.nextId; id++ {
		if !s.masks[id].Empty() {
			stats.TotalEntityCount++
		}
	}

	for bit, storage := range s.storages {
		if storage.Len() == 0 {
			continue
		}
		stats.ComponentBreakdown = append(stats.ComponentBreakdown, ComponentStats{
			Bit:   uint8(bit),
			Name:  s.registry.TypeOf(uint8(bit)).String(),
			Count: storage.Len(),
		})
	}

	for t := range s.singletons {
		stats.SingletonTypes = append(stats.SingletonTypes, t.String())
	}
	sort.Strings(stats.SingletonTypes)

	return stats
}
