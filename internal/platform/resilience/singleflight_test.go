package resilience

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSingleFlight_CollapsesConcurrentCalls(t *testing.T) {
	var g SingleFlight[[]string]
	var calls atomic.Int32

	const workers = 16
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			got, _, err := g.Do("XBT,ETH", func() ([]string, error) {
				calls.Add(1)
				time.Sleep(20 * time.Millisecond)
				return []string{"XBT", "ETH"}, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, []string{"XBT", "ETH"}, got)
		}()
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
}

func TestSingleFlight_ZeroValueOnError(t *testing.T) {
	var g SingleFlight[*int]
	errBoom := errors.New("boom")

	got, shared, err := g.Do("k", func() (*int, error) { return nil, errBoom })
	assert.ErrorIs(t, err, errBoom)
	assert.Nil(t, got)
	assert.False(t, shared)
}
