package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tedivm/fedimapper/config"
)

func newTestRunner() *Runner {
	cfg := config.Default().Queue
	cfg.PreventRequeuingTime = 300
	cfg.MaxQueueSize = 10
	return New(cfg, nil, nil)
}

func TestWasRecentlyEnqueuedFalseForUnseenHost(t *testing.T) {
	r := newTestRunner()
	assert.False(t, r.wasRecentlyEnqueued("mastodon.social"))
}

func TestMarkEnqueuedSuppressesWithinWindow(t *testing.T) {
	r := newTestRunner()
	r.markEnqueued("mastodon.social")
	assert.True(t, r.wasRecentlyEnqueued("mastodon.social"))
}

func TestQueueFillRatio(t *testing.T) {
	r := newTestRunner()
	assert.Equal(t, 0.0, r.queueFillRatio())

	r.queue <- "a.example"
	r.queue <- "b.example"
	assert.InDelta(t, 0.2, r.queueFillRatio(), 0.001)
}

func TestCloseAllWorkersEnqueuesOneSentinelPerProcess(t *testing.T) {
	r := newTestRunner()
	r.cfg.NumProcesses = 3
	r.closeAllWorkers()

	count := 0
	for i := 0; i < 3; i++ {
		<-r.queue
		count++
	}
	assert.Equal(t, 3, count)
}
