package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock hands out strictly increasing times so LRU ordering is exact.
func fakeClock() func() time.Time {
	t := time.Unix(0, 0)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestCache_PutGet(t *testing.T) {
	c := New[string, int](10)
	c.now = fakeClock()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Put("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, c.Len())
}

func TestCache_NeverExceedsMaxSize(t *testing.T) {
	c := New[int, string](8)
	c.now = fakeClock()

	for i := 0; i < 50; i++ {
		c.Put(i, fmt.Sprintf("value-%d", i))
		assert.LessOrEqual(t, c.Len(), 8, "cache exceeded its bound after insertion %d", i)
	}
}

func TestCache_EvictsOldestQuarter(t *testing.T) {
	c := New[int, string](8)
	c.now = fakeClock()

	for i := 0; i < 8; i++ {
		c.Put(i, "v")
	}

	// Refresh everything except 0 and 1 so they are the coldest.
	for i := 2; i < 8; i++ {
		c.Get(i)
	}

	c.EvictLRU()

	assert.Equal(t, 6, c.Len())
	_, ok := c.Get(0)
	assert.False(t, ok)
	_, ok = c.Get(1)
	assert.False(t, ok)
	_, ok = c.Get(7)
	assert.True(t, ok)
}

func TestCache_EvictsAtLeastOne(t *testing.T) {
	c := New[int, string](10)
	c.now = fakeClock()

	c.Put(1, "v")
	c.Put(2, "v")
	c.EvictLRU()

	assert.Equal(t, 1, c.Len())
}

func TestCache_InsertionOrderFallback(t *testing.T) {
	c := New[int, string](8)
	c.now = fakeClock()

	for i := 0; i < 8; i++ {
		c.Put(i, "v")
	}
	// Simulate missing access data: the cold-start fallback must evict by
	// insertion order.
	c.accessTimes = make(map[int]time.Time)

	c.EvictLRU()

	assert.Equal(t, 6, c.Len())
	_, ok := c.entries[0]
	assert.False(t, ok)
	_, ok = c.entries[1]
	assert.False(t, ok)
	_, ok = c.entries[7]
	assert.True(t, ok)
}

func TestCache_DeleteLeavesAccessRecordForPrune(t *testing.T) {
	c := New[string, int](10)
	c.now = fakeClock()

	c.Put("a", 1)
	c.Put("b", 2)
	c.Delete("a")

	assert.Equal(t, 1, c.Len())
	assert.Len(t, c.accessTimes, 2)

	pruned := c.PruneOrphans()
	assert.Equal(t, 1, pruned)
	assert.Len(t, c.accessTimes, 1)
	assert.Equal(t, 0, c.PruneOrphans())
}

func TestCache_DeleteFunc(t *testing.T) {
	c := New[int, string](10)
	c.now = fakeClock()

	for i := 0; i < 6; i++ {
		c.Put(i, "v")
	}
	c.DeleteFunc(func(k int) bool { return k%2 == 0 })

	assert.Equal(t, 3, c.Len())
	_, ok := c.Get(2)
	assert.False(t, ok)
	_, ok = c.Get(3)
	assert.True(t, ok)
}

func TestCache_Clear(t *testing.T) {
	c := New[string, int](10)
	c.now = fakeClock()

	c.Put("a", 1)
	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.accessTimes)
}

func TestCache_OverThreshold(t *testing.T) {
	c := New[int, string](10)
	c.now = fakeClock()

	for i := 0; i < 8; i++ {
		c.Put(i, "v")
	}
	assert.False(t, c.OverThreshold(0.8))

	c.Put(8, "v")
	assert.True(t, c.OverThreshold(0.8))
}
