package models

// Stats 定義快取操作統計的快照
type Stats struct {
	Hits            uint64 `json:"hits"`
	Misses          uint64 `json:"misses"`
	Puts            uint64 `json:"puts"`
	Deletes         uint64 `json:"deletes"`
	TotalOperations uint64 `json:"total_operations"`
}

// HitRatio returns hits / (hits + misses), or 0 when nothing was read.
func (s Stats) HitRatio() float64 {
	reads := s.Hits + s.Misses
	if reads == 0 {
		return 0
	}
	return float64(s.Hits) / float64(reads)
}
