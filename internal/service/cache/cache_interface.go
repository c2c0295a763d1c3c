package cache

import "github.com/idgrid/user-service/internal/domain/model"

// Cache defines the interface for token cache operations. Keys are token
// strings; values are the stored token records.
type Cache interface {
	Get(key string) (model.Token, bool)
	Set(key string, value model.Token)
	Invalidate(key string)
	Clear()
	Stop()
}

// Metrics provides cache performance metrics.
type Metrics struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	Capacity  int
}

// CacheWithMetrics extends Cache with metrics reporting.
type CacheWithMetrics interface {
	Cache
	Metrics() Metrics
}
