package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingSweeper struct {
	sweeps atomic.Int32
	ttl    atomic.Int64
}

func (c *countingSweeper) Sweep(ttl time.Duration) int {
	c.sweeps.Add(1)
	c.ttl.Store(int64(ttl))
	return 1
}

func (c *countingSweeper) Len() int { return 0 }

func TestScheduler_SweepsUntilCancelled(t *testing.T) {
	sweeper := &countingSweeper{}
	s := NewScheduler(zap.NewNop(), sweeper, 30*time.Minute, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return sweeper.sweeps.Load() >= 2 }, time.Second, time.Millisecond)
	assert.Equal(t, int64(30*time.Minute), sweeper.ttl.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestNewScheduler_DefaultInterval(t *testing.T) {
	s := NewScheduler(zap.NewNop(), &countingSweeper{}, time.Minute, 0)
	assert.Equal(t, time.Minute, s.interval)
}
