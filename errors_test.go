package acceptor

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuntimeError(t *testing.T) {
	base := errors.New("mongo unreachable")
	err := NewRuntimeError(base)

	assert.True(t, IsRuntimeError(err))
	assert.False(t, IsSuiteFailureError(err))
	assert.ErrorIs(t, err, base)

	wrapped := fmt.Errorf("setup: %w", err)
	assert.True(t, IsRuntimeError(wrapped))
}

func TestSuiteFailureError(t *testing.T) {
	err := NewSuiteFailureError("2 of 4 suites failed")

	assert.True(t, IsSuiteFailureError(err))
	assert.False(t, IsRuntimeError(err))
	assert.Contains(t, err.Error(), "2 of 4 suites failed")

	wrapped := fmt.Errorf("run: %w", err)
	assert.True(t, IsSuiteFailureError(wrapped))
}

func TestErrorPredicatesNil(t *testing.T) {
	assert.False(t, IsRuntimeError(nil))
	assert.False(t, IsSuiteFailureError(nil))
}
