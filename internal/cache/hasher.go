package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"cyclicexec/domain"
)

// TaskSetHash computes a deterministic cache key for a TaskSet: a
// canonical byte representation (tasks already carry a stable insertion
// order, so no extra sort is needed) fed through SHA-256. The schedule
// window is deliberately excluded — frame
// geometry depends only on the task records, so two windows over the same
// tasks share one cache entry.
func TaskSetHash(ts *domain.TaskSet) string {
	var buf []byte
	for _, t := range ts.Tasks {
		buf = append(buf, []byte(fmt.Sprintf("t:%d:%d:%.6f:%d:%d;", t.ID, t.Period, t.WCET, t.Deadline, t.Offset))...)
	}
	hash := sha256.Sum256(buf)
	return hex.EncodeToString(hash[:16])
}

// BuildGeometryKey builds the cache key a GeometryCache stores under.
func BuildGeometryKey(taskSetHash string) string {
	return fmt.Sprintf("geometry:%s", taskSetHash)
}
