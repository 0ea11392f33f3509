package projection

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClock_UsesWallClockMillis(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	c := NewClockWith(func() time.Time { return now })

	assert.Equal(t, int64(1_700_000_000_000), c.Next())
}

func TestClock_FallsBackToCounterWhenTimeStalls(t *testing.T) {
	now := time.UnixMilli(5000)
	c := NewClockWith(func() time.Time { return now })

	assert.Equal(t, int64(5000), c.Next())
	assert.Equal(t, int64(5001), c.Next())
	assert.Equal(t, int64(5002), c.Next())
}

func TestClock_SurvivesWallClockGoingBackwards(t *testing.T) {
	now := time.UnixMilli(9000)
	c := NewClockWith(func() time.Time { return now })

	first := c.Next()
	now = time.UnixMilli(1000)
	second := c.Next()

	assert.Greater(t, second, first)
}

func TestClock_Observe(t *testing.T) {
	now := time.UnixMilli(100)
	c := NewClockWith(func() time.Time { return now })

	c.Observe(500)
	assert.Equal(t, int64(500), c.Current())
	assert.Equal(t, int64(501), c.Next())

	c.Observe(10)
	assert.Equal(t, int64(501), c.Current(), "observing an older sequence must not rewind")
}

func TestClock_ConcurrentNextIsUnique(t *testing.T) {
	c := NewClockWith(func() time.Time { return time.UnixMilli(1) })
	const goroutines = 50
	const calls = 100

	var mu sync.Mutex
	seen := make(map[int64]bool, goroutines*calls)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			local := make([]int64, calls)
			for j := range local {
				local[j] = c.Next()
			}
			mu.Lock()
			for _, v := range local {
				seen[v] = true
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, goroutines*calls)
}
