package suites

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestThroughput(t *testing.T) {
	assert.Equal(t, 50.0, Throughput(100, 2*time.Second))
	assert.Equal(t, 1000.0, Throughput(100, 100*time.Millisecond))
}

func TestThroughputZeroElapsed(t *testing.T) {
	assert.Equal(t, 0.0, Throughput(100, 0))
	assert.Equal(t, 0.0, Throughput(100, -time.Second))
	assert.Equal(t, 0.0, Throughput(0, time.Second))
}
