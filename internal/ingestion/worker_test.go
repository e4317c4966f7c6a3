package ingestion

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThiagoRGoveia/csv-files/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPool(t *testing.T) {
	assert.Equal(t, 1, NewPool(0, nil).workers)
	assert.Equal(t, 1, NewPool(-3, nil).workers)
	assert.Equal(t, 4, NewPool(4, nil).workers)
}

func TestPool_Run(t *testing.T) {
	t.Run("keeps outcomes in input order", func(t *testing.T) {
		pool := NewPool(4, nil)
		names := make([]string, 20)
		for i := range names {
			names[i] = fmt.Sprintf("file%02d.csv", i)
		}

		outcomes := pool.Run(context.Background(), names, func(ctx context.Context, fileName string) Outcome {
			// later files finish first
			var idx int
			fmt.Sscanf(fileName, "file%02d.csv", &idx)
			time.Sleep(time.Duration(len(names)-idx) * time.Millisecond)
			return Outcome{Result: &models.FileResult{File: fileName}}
		})

		require.Len(t, outcomes, len(names))
		for i, outcome := range outcomes {
			assert.Equal(t, names[i], outcome.FileName)
			assert.Equal(t, names[i], outcome.Result.File)
		}
	})

	t.Run("never runs more jobs than workers at once", func(t *testing.T) {
		const workers = 3
		pool := NewPool(workers, nil)
		var running, peak int32

		pool.Run(context.Background(), make([]string, 15), func(ctx context.Context, fileName string) Outcome {
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return Outcome{}
		})

		assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(workers))
		assert.Greater(t, atomic.LoadInt32(&peak), int32(0))
	})

	t.Run("a panicking job only loses its own slot", func(t *testing.T) {
		pool := NewPool(2, nil)

		outcomes := pool.Run(context.Background(), []string{"a.csv", "boom.csv", "c.csv"}, func(ctx context.Context, fileName string) Outcome {
			if fileName == "boom.csv" {
				panic("unexpected")
			}
			return Outcome{Result: &models.FileResult{File: fileName}}
		})

		require.Len(t, outcomes, 3)
		assert.Equal(t, "a.csv", outcomes[0].Result.File)
		assert.Nil(t, outcomes[1].Result)
		require.NotNil(t, outcomes[1].Err)
		assert.Equal(t, "panic", outcomes[1].Err.Reason)
		assert.Equal(t, "boom.csv", outcomes[1].Err.FileName)
		assert.Equal(t, "c.csv", outcomes[2].Result.File)
	})

	t.Run("returns empty for no files", func(t *testing.T) {
		outcomes := NewPool(2, nil).Run(context.Background(), nil, func(ctx context.Context, fileName string) Outcome {
			t.Fatal("job should not run")
			return Outcome{}
		})

		assert.Empty(t, outcomes)
	})

	t.Run("stops dispatching once the context is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		var calls int32

		outcomes := NewPool(1, nil).Run(ctx, []string{"a.csv", "b.csv", "c.csv"}, func(ctx context.Context, fileName string) Outcome {
			atomic.AddInt32(&calls, 1)
			cancel()
			return Outcome{Result: &models.FileResult{File: fileName}}
		})

		require.Len(t, outcomes, 3)
		assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(2))
		assert.Nil(t, outcomes[2].Result)
	})
}
