package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/idgrid/user-service/internal/domain/model"
	"github.com/stretchr/testify/assert"
)

func TestNewShardedCache(t *testing.T) {
	tests := []struct {
		name       string
		capacity   int
		ttl        time.Duration
		numShards  int
		wantShards int
	}{
		{
			name:       "default shards when zero",
			capacity:   100,
			ttl:        time.Minute,
			numShards:  0,
			wantShards: 16,
		},
		{
			name:       "default shards when negative",
			capacity:   100,
			ttl:        time.Minute,
			numShards:  -1,
			wantShards: 16,
		},
		{
			name:       "rounds up to power of 2",
			capacity:   100,
			ttl:        time.Minute,
			numShards:  3,
			wantShards: 4,
		},
		{
			name:       "exact power of 2",
			capacity:   100,
			ttl:        time.Minute,
			numShards:  8,
			wantShards: 8,
		},
		{
			name:       "rounds 5 to 8",
			capacity:   100,
			ttl:        time.Minute,
			numShards:  5,
			wantShards: 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewShardedCache(tt.capacity, tt.ttl, tt.numShards)
			defer cache.Stop()

			assert.NotNil(t, cache)
			assert.Equal(t, tt.wantShards, cache.numShards)
			assert.Equal(t, tt.wantShards-1, cache.shardMask)
			assert.Len(t, cache.shards, tt.wantShards)
		})
	}
}

func TestShardedCache_GetSet(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   model.Token
		wantHit bool
	}{
		{
			name:    "set and get single value",
			key:     "token-100",
			value:   blacklistEntry(100, "token-100"),
			wantHit: true,
		},
		{
			name:    "set and get empty key",
			key:     "",
			value:   blacklistEntry(250, ""),
			wantHit: true,
		},
		{
			name:    "set and get long key",
			key:     "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.payload.signature",
			value:   blacklistEntry(999999, "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.payload.signature"),
			wantHit: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewShardedCache(100, time.Minute, 4)
			defer cache.Stop()

			// Initially should miss
			_, found := cache.Get(tt.key)
			assert.False(t, found)

			// Set value
			cache.Set(tt.key, tt.value)

			// Should now hit
			result, found := cache.Get(tt.key)
			assert.Equal(t, tt.wantHit, found)
			if tt.wantHit {
				assert.Equal(t, tt.value.UserID, result.UserID)
				assert.Equal(t, tt.value.Token, result.Token)
			}
		})
	}
}

func TestShardedCache_Invalidate(t *testing.T) {
	tests := []struct {
		name          string
		keys          []string
		invalidateKey string
	}{
		{
			name:          "invalidate existing key",
			keys:          []string{"token-1", "token-2", "token-3"},
			invalidateKey: "token-2",
		},
		{
			name:          "invalidate non-existing key",
			keys:          []string{"token-1", "token-3"},
			invalidateKey: "token-2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewShardedCache(100, time.Minute, 4)
			defer cache.Stop()

			// Set initial values
			for i, key := range tt.keys {
				cache.Set(key, blacklistEntry(uint64(i+1), key))
			}

			// Invalidate
			cache.Invalidate(tt.invalidateKey)

			// Check invalidated key is gone
			_, found := cache.Get(tt.invalidateKey)
			assert.False(t, found)

			// Other keys should still exist
			for _, key := range tt.keys {
				if key != tt.invalidateKey {
					_, found := cache.Get(key)
					assert.True(t, found)
				}
			}
		})
	}
}

func TestShardedCache_Clear(t *testing.T) {
	cache := NewShardedCache(100, time.Minute, 4)
	defer cache.Stop()

	// Add some values
	for i := 0; i < 10; i++ {
		key := fmt.Sprintf("token-%d", i)
		cache.Set(key, blacklistEntry(uint64(i), key))
	}

	// Verify they exist
	for i := 0; i < 10; i++ {
		_, found := cache.Get(fmt.Sprintf("token-%d", i))
		assert.True(t, found)
	}

	// Clear
	cache.Clear()

	// All should be gone
	for i := 0; i < 10; i++ {
		_, found := cache.Get(fmt.Sprintf("token-%d", i))
		assert.False(t, found)
	}
}

func TestShardedCache_Metrics(t *testing.T) {
	cache := NewShardedCache(100, time.Minute, 4)
	defer cache.Stop()

	// Set some values
	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("token-%d", i)
		cache.Set(key, blacklistEntry(uint64(i), key))
	}

	// Generate hits
	for i := 0; i < 5; i++ {
		cache.Get(fmt.Sprintf("token-%d", i))
	}

	// Generate misses
	for i := 100; i < 105; i++ {
		cache.Get(fmt.Sprintf("token-%d", i))
	}

	metrics := cache.Metrics()
	assert.Equal(t, int64(5), metrics.Hits)
	assert.Equal(t, int64(5), metrics.Misses)
}

func TestShardedCache_ShardDistribution(t *testing.T) {
	cache := NewShardedCache(400, time.Minute, 4)
	defer cache.Stop()

	// Add values that should be distributed across shards
	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("token-%d", i)
		cache.Set(key, blacklistEntry(uint64(i), key))
	}

	// Verify all can be retrieved
	for i := 0; i < 100; i++ {
		result, found := cache.Get(fmt.Sprintf("token-%d", i))
		assert.True(t, found)
		assert.Equal(t, uint64(i), result.UserID)
	}
}

func TestShardedCache_SameKeySameShard(t *testing.T) {
	cache := NewShardedCache(100, time.Minute, 8)
	defer cache.Stop()

	key := "token-shard-check"
	first := cache.getShard(key)
	second := cache.getShard(key)

	assert.Same(t, first, second, "shard selection must be deterministic")
}
