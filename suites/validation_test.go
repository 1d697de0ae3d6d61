package suites

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpectedBalance(t *testing.T) {
	assert.Equal(t, 875.0, ExpectedBalance(1000, []float64{-100, 50, -75}))
	assert.Equal(t, 1000.0, ExpectedBalance(1000, nil))
	assert.Equal(t, -50.0, ExpectedBalance(0, []float64{-50}))
}

func TestPct(t *testing.T) {
	assert.Equal(t, 25.0, pct(250, 1000))
	assert.Equal(t, 0.0, pct(5, 0))
}
