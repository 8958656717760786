package utils

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Tests that un-register works as expected.
func TestCron(t *testing.T) {
	prov := NewCron()
	var called int32
	var id int
	id, _ = prov.AddFunc("@every 1s", func() {
		if 2 == atomic.AddInt32(&called, 1) {
			prov.RemoveFunc(id)
		}
	})

	time.Sleep(4 * time.Second)

	assert.Equal(t, int32(2), atomic.LoadInt32(&called))
}

// Tests cron specs formatting.
func TestSpecs(t *testing.T) {
	assert.Equal(t, "@every 30s", EverySpec(30*time.Second))
	assert.Equal(t, "@every 1s", EverySpec(500*time.Millisecond))
	assert.Equal(t, "@every 2s", EverySpec(1500*time.Millisecond))
	assert.Equal(t, "@every 1s", EverySpec(0))
	assert.Equal(t, "0 30 7 * * *", DailySpec(7, 30))
}
