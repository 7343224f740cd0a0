package player

import "github.com/avelkov/skipstream/internal/models"

// LookbackBuckets bounds how far Lookup searches behind the queried
// bucket. Classification arrives with processing latency, so the overlay
// tolerates results up to LookbackBuckets*BucketWidth seconds stale.
const LookbackBuckets = 4

// ClassificationStore caches the most recent classification per bucket.
// Keys are unique; a second record for the same bucket overwrites the
// first. The store never evicts: a session's record count is bounded by
// media duration divided by bucket width.
type ClassificationStore struct {
	records map[int64]*models.ClassificationRecord
}

func NewClassificationStore() *ClassificationStore {
	return &ClassificationStore{
		records: make(map[int64]*models.ClassificationRecord),
	}
}

// Put inserts or overwrites the record for its bucket.
func (s *ClassificationStore) Put(rec *models.ClassificationRecord) {
	s.records[bucketIndex(rec.BucketTime)] = rec
}

// Lookup returns the record for the nearest populated bucket at or before
// currentTime, searching back at most LookbackBuckets buckets. Returns nil
// when the whole window is empty.
func (s *ClassificationStore) Lookup(currentTime float64) *models.ClassificationRecord {
	idx := bucketIndex(currentTime)
	for i := int64(0); i <= LookbackBuckets; i++ {
		if rec, ok := s.records[idx-i]; ok {
			return rec
		}
	}
	return nil
}

// Len reports how many buckets hold a record.
func (s *ClassificationStore) Len() int {
	return len(s.records)
}
