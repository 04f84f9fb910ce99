package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cyclicexec/domain"
	"cyclicexec/geometry"
)

// GeometryCache memoizes geometry.Compute results keyed by TaskSetHash:
// JSON-serialized geometry behind a generic Cache, keyed by a content hash
// of the task records.
type GeometryCache struct {
	cache      Cache
	defaultTTL time.Duration
}

// cachedGeometry is the JSON wire shape: FrameGeometry's valid-frame map is
// unexported, so it is rebuilt from the stored per-job lists on load.
type cachedGeometry struct {
	Hyperperiod int64              `json:"hyperperiod"`
	FrameSize   int64              `json:"frame_size"`
	NumFrames   int64              `json:"num_frames"`
	ValidFrames map[string][]int64 `json:"valid_frames"`
}

// NewGeometryCache wraps cache with a default TTL of 10 minutes if none is
// given.
func NewGeometryCache(cache Cache, defaultTTL time.Duration) *GeometryCache {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	return &GeometryCache{cache: cache, defaultTTL: defaultTTL}
}

// Get returns a previously cached FrameGeometry for ts, or (nil, false) on
// a cache miss or decode failure (a corrupt entry is treated as absent, not
// an error, since geometry.Compute can always rebuild it).
func (gc *GeometryCache) Get(ctx context.Context, ts *domain.TaskSet) (*geometry.FrameGeometry, bool) {
	key := BuildGeometryKey(TaskSetHash(ts))
	data, err := gc.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}

	var cached cachedGeometry
	if err := json.Unmarshal(data, &cached); err != nil {
		_ = gc.cache.Delete(ctx, key)
		return nil, false
	}

	return geometry.Rehydrate(cached.Hyperperiod, cached.FrameSize, cached.NumFrames, decodeValidFrames(cached.ValidFrames)), true
}

// Set stores geo under ts's hash.
func (gc *GeometryCache) Set(ctx context.Context, ts *domain.TaskSet, geo *geometry.FrameGeometry) error {
	key := BuildGeometryKey(TaskSetHash(ts))

	cached := cachedGeometry{
		Hyperperiod: geo.Hyperperiod,
		FrameSize:   geo.FrameSize,
		NumFrames:   geo.NumFrames,
		ValidFrames: encodeValidFrames(geo.AllValidFrames()),
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return err
	}
	return gc.cache.Set(ctx, key, data, gc.defaultTTL)
}

func encodeValidFrames(m map[domain.JobKey][]int64) map[string][]int64 {
	out := make(map[string][]int64, len(m))
	for k, v := range m {
		out[jobKeyString(k)] = v
	}
	return out
}

func decodeValidFrames(m map[string][]int64) map[domain.JobKey][]int64 {
	out := make(map[domain.JobKey][]int64, len(m))
	for k, v := range m {
		key, ok := parseJobKeyString(k)
		if !ok {
			continue
		}
		out[key] = v
	}
	return out
}

func jobKeyString(k domain.JobKey) string {
	return fmt.Sprintf("%d.%d", k.TaskID, k.Index)
}

func parseJobKeyString(s string) (domain.JobKey, bool) {
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 {
		return domain.JobKey{}, false
	}
	taskID, err1 := strconv.ParseInt(parts[0], 10, 64)
	index, err2 := strconv.ParseInt(parts[1], 10, 64)
	if err1 != nil || err2 != nil {
		return domain.JobKey{}, false
	}
	return domain.JobKey{TaskID: taskID, Index: index}, true
}
